// ABOUTME: Decodes loosely-typed argument bundles into typed request structs.
// ABOUTME: Checks required fields and primitive kinds against a Shape before unmarshalling.

package packs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// DecodeArgs validates raw against shape and unmarshals it into dst.
// The first violated field is reported as an InvalidArgument error.
func DecodeArgs(raw json.RawMessage, shape Shape, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return InvalidArgument("arguments", "expected object, got %s", jsonKind(raw))
	}

	if err := checkObject("", obj, shape.Fields, shape.Required); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return InvalidArgument(typeErr.Field, "expected %s, got %s", typeErr.Type.Kind(), typeErr.Value)
		}
		return InvalidArgument("arguments", "%v", err)
	}
	return nil
}

func checkObject(prefix string, obj map[string]json.RawMessage, fields []Field, required []string) error {
	for _, name := range required {
		v, ok := obj[name]
		if !ok || isNull(v) {
			return InvalidArgument(prefix+name, "missing required field")
		}
	}
	for _, f := range fields {
		v, ok := obj[f.Name]
		if !ok || isNull(v) {
			continue
		}
		if err := checkField(prefix+f.Name, v, f); err != nil {
			return err
		}
	}
	return nil
}

func checkField(path string, v json.RawMessage, f Field) error {
	got := jsonKind(v)
	switch f.Type {
	case TypeInteger:
		if got != "number" {
			return InvalidArgument(path, "expected integer, got %s", got)
		}
		var n float64
		if err := json.Unmarshal(v, &n); err != nil || n != math.Trunc(n) {
			return InvalidArgument(path, "expected integer, got %s", string(v))
		}
		return nil
	case TypeArray:
		if got != "array" {
			return InvalidArgument(path, "expected array, got %s", got)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return InvalidArgument(path, "%v", err)
		}
		if f.MinItems > 0 && len(items) < f.MinItems {
			return InvalidArgument(path, "expected at least %d item(s), got %d", f.MinItems, len(items))
		}
		if f.Items == nil {
			return nil
		}
		for i, item := range items {
			if err := checkField(fmt.Sprintf("%s[%d]", path, i), item, *f.Items); err != nil {
				return err
			}
		}
		return nil
	case TypeObject:
		if got != "object" {
			return InvalidArgument(path, "expected object, got %s", got)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err != nil {
			return InvalidArgument(path, "%v", err)
		}
		return checkObject(path+".", obj, f.Properties, f.Required)
	case "":
		return nil
	default:
		if got != string(f.Type) {
			return InvalidArgument(path, "expected %s, got %s", f.Type, got)
		}
		return nil
	}
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// jsonKind names the JSON kind of a raw value the way callers see it.
func jsonKind(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "nothing"
	}
	switch v[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
