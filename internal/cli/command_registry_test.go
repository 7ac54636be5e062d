package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCommand struct {
	args []string
}

func (c *recordingCommand) Execute(ctx context.Context, args []string) error {
	c.args = args
	return nil
}

func TestNewCommandRegistry(t *testing.T) {
	app, _ := setupTestApp(t)

	registry := NewCommandRegistry(app)

	assert.Equal(t, []string{
		"add", "batch-delete", "batch-status", "delete", "edit", "export",
		"list", "move", "reorder", "show", "status",
	}, registry.Names())
}

func TestCommandRegistry_Execute(t *testing.T) {
	app, _ := setupTestApp(t)
	registry := NewCommandRegistry(app)
	ctx := context.Background()

	t.Run("passes the remaining args", func(t *testing.T) {
		cmd := &recordingCommand{}
		registry.Register("record", cmd)

		require.NoError(t, registry.Execute(ctx, "record", []string{"a", "b"}))
		assert.Equal(t, []string{"a", "b"}, cmd.args)
	})

	t.Run("unknown command", func(t *testing.T) {
		err := registry.Execute(ctx, "nope", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown command")
	})

	t.Run("get", func(t *testing.T) {
		cmd, ok := registry.Get("list")
		require.True(t, ok)
		assert.IsType(t, &ListCommand{}, cmd)

		_, ok = registry.Get("nope")
		assert.False(t, ok)
	})
}

func TestCommandRegistry_GetUsage(t *testing.T) {
	app, _ := setupTestApp(t)
	registry := NewCommandRegistry(app)

	usage := registry.GetUsage()
	assert.Contains(t, usage, "usage: todo <")
	for _, name := range registry.Names() {
		assert.Contains(t, usage, name)
	}
}
