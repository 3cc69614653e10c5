// ABOUTME: Command descriptors, handlers and result content for in-process commands.
// ABOUTME: A handler receives the opaque call context and raw arguments and returns ordered content.

package packs

import (
	"context"
	"encoding/json"
	"time"
)

// Descriptor is the immutable public description of one command.
type Descriptor struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Input       Shape  `json:"inputSchema"`

	// Timeout overrides the router default when positive.
	Timeout time.Duration `json:"-"`
}

// Content is one item of a command result.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`

	// Kind is set to KindPartialDataWarning on non-fatal warning items.
	Kind ErrorKind `json:"-"`
}

// Result is the ordered content returned by a command.
type Result []Content

// Text builds a single text content item.
func Text(s string) Content {
	return Content{Type: "text", Text: s}
}

// Warning builds a text item flagged as a partial-data warning.
func Warning(s string) Content {
	return Content{Type: "text", Text: s, Kind: KindPartialDataWarning}
}

// TextResult builds a result with one text item per string.
func TextResult(texts ...string) Result {
	out := make(Result, 0, len(texts))
	for _, t := range texts {
		out = append(out, Text(t))
	}
	return out
}

// Warnings returns the texts of the items flagged as partial-data warnings.
func (r Result) Warnings() []string {
	var out []string
	for _, c := range r {
		if c.Kind == KindPartialDataWarning {
			out = append(out, c.Text)
		}
	}
	return out
}

// Handler executes a command. Handlers own the validation of their arguments.
type Handler func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error)

// Command pairs a descriptor with its handler.
type Command struct {
	Descriptor Descriptor
	Handler    Handler
}

// Notifier delivers out-of-band progress messages for an in-flight call.
type Notifier interface {
	Notify(ctx context.Context, level, logger, data string) error
}

// CallContext is passed through unchanged from the transport into the handler.
type CallContext struct {
	SessionID string
	RequestID string
	Notifier  Notifier
}

// Notify sends a notification when the transport supplied a notifier.
// Delivery is best-effort; a missing notifier is not an error.
func (c *CallContext) Notify(ctx context.Context, level, logger, data string) error {
	if c == nil || c.Notifier == nil {
		return nil
	}
	return c.Notifier.Notify(ctx, level, logger, data)
}

// entry stores a registered command with its owning group.
type entry struct {
	Command
	Group string
}
