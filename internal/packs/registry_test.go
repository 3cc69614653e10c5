// ABOUTME: Tests for the command registry including overwrite policy and ordering.
// ABOUTME: Validates concurrent lookups and group attribution.

package packs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textHandler(text string) Handler {
	return func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
		return TextResult(text), nil
	}
}

func testDescriptor(name string) Descriptor {
	return Descriptor{Name: name, Title: name + " title", Description: name + " description"}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("registers and looks up a command", func(t *testing.T) {
		registry := NewRegistry(slog.Default())

		require.NoError(t, registry.Register(testDescriptor("echo"), textHandler("hi")))

		cmd, ok := registry.Lookup("echo")
		require.True(t, ok)
		assert.Equal(t, "echo", cmd.Descriptor.Name)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("lookup of unknown name misses", func(t *testing.T) {
		registry := NewRegistry(slog.Default())
		_, ok := registry.Lookup("missing")
		assert.False(t, ok)
	})

	t.Run("rejects empty name and nil handler", func(t *testing.T) {
		registry := NewRegistry(slog.Default())

		err := registry.Register(Descriptor{}, textHandler("x"))
		assert.ErrorIs(t, err, ErrInvalidCommand)

		err = registry.Register(testDescriptor("nil-handler"), nil)
		assert.ErrorIs(t, err, ErrInvalidCommand)
		assert.Equal(t, 0, registry.Len())
	})
}

func TestRegistryOverwrite(t *testing.T) {
	registry := NewRegistry(slog.Default())

	require.NoError(t, registry.Register(testDescriptor("first"), textHandler("a")))
	require.NoError(t, registry.Register(testDescriptor("dup"), textHandler("old")))
	require.NoError(t, registry.Register(testDescriptor("last"), textHandler("c")))

	replacement := testDescriptor("dup")
	replacement.Description = "replacement"
	err := registry.Register(replacement, textHandler("new"))
	require.ErrorIs(t, err, ErrDuplicateCommand)

	list := registry.List()
	require.Len(t, list, 3)

	count := 0
	for _, d := range list {
		if d.Name == "dup" {
			count++
			assert.Equal(t, "replacement", d.Description)
		}
	}
	assert.Equal(t, 1, count, "exactly one descriptor per name")

	// The overwritten name keeps its first slot.
	assert.Equal(t, []string{"first", "dup", "last"}, []string{list[0].Name, list[1].Name, list[2].Name})

	cmd, ok := registry.Lookup("dup")
	require.True(t, ok)
	result, err := cmd.Handler(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "new", result[0].Text)
}

func TestRegistryGroups(t *testing.T) {
	registry := NewRegistry(slog.Default())

	require.NoError(t, registry.For("alpha").Register(testDescriptor("a1"), textHandler("")))
	require.NoError(t, registry.For("beta").Register(testDescriptor("b1"), textHandler("")))
	require.NoError(t, registry.For("alpha").Register(testDescriptor("a2"), textHandler("")))

	groups := registry.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "alpha", groups[0].Group)
	assert.Equal(t, []string{"a1", "a2"}, groups[0].Commands)
	assert.Equal(t, "beta", groups[1].Group)
}

func TestRegistryAddJoinsErrors(t *testing.T) {
	registry := NewRegistry(slog.Default())

	err := registry.Add(
		Command{Descriptor: testDescriptor("ok"), Handler: textHandler("")},
		Command{Descriptor: testDescriptor("ok"), Handler: textHandler("")},
		Command{Descriptor: Descriptor{}, Handler: textHandler("")},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCommand))
	assert.True(t, errors.Is(err, ErrInvalidCommand))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry(slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(testDescriptor(fmt.Sprintf("cmd-%d", i)), textHandler(""))
			registry.Lookup("cmd-0")
			registry.List()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, registry.Len())
}

func TestShapeSchema(t *testing.T) {
	shape := Shape{
		Required: []string{"terms"},
		Fields: []Field{
			{Name: "terms", Type: TypeArray, MinItems: 1, Items: &Field{Type: TypeString}, Description: "terms"},
			{Name: "flag", Type: TypeBoolean},
		},
	}

	raw, err := json.Marshal(shape)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"terms"}, schema["required"])

	props := schema["properties"].(map[string]any)
	terms := props["terms"].(map[string]any)
	assert.Equal(t, "array", terms["type"])
	assert.Equal(t, float64(1), terms["minItems"])
	assert.Equal(t, map[string]any{"type": "string"}, terms["items"])
}

func TestShapeSchemaEmptyRequired(t *testing.T) {
	schema := Shape{Fields: []Field{{Name: "school", Type: TypeString}}}.Schema()
	assert.Equal(t, []string{}, schema["required"])
}
