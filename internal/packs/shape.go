// ABOUTME: Input shape descriptions for commands, rendered as JSON-Schema-like objects.
// ABOUTME: Shapes document arguments and drive the coarse type checks done before decoding.

package packs

import (
	"encoding/json"
)

// Type is the primitive kind of an argument field.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Field describes one named argument.
type Field struct {
	Name        string
	Type        Type
	Description string

	// Items describes array elements when Type is TypeArray.
	Items *Field
	// MinItems is the minimum array length; zero means unbounded.
	MinItems int

	// Properties and Required describe nested objects.
	Properties []Field
	Required   []string
}

// Shape is the top-level argument object of a command.
type Shape struct {
	Fields   []Field
	Required []string
}

// Schema renders the shape as a JSON-Schema object.
func (s Shape) Schema() map[string]any {
	return objectSchema(s.Fields, s.Required)
}

// MarshalJSON emits the schema form so shapes can be embedded in listings.
func (s Shape) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Schema())
}

func objectSchema(fields []Field, required []string) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f.Name] = fieldSchema(f)
	}
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       string(TypeObject),
		"properties": props,
		"required":   required,
	}
}

func fieldSchema(f Field) map[string]any {
	var out map[string]any
	if f.Type == TypeObject {
		out = objectSchema(f.Properties, f.Required)
	} else {
		out = map[string]any{"type": string(f.Type)}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	if f.Type == TypeArray {
		if f.Items != nil {
			out["items"] = fieldSchema(*f.Items)
		}
		if f.MinItems > 0 {
			out["minItems"] = f.MinItems
		}
	}
	return out
}
