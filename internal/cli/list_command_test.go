package cli

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list/internal/domain"
)

func seedListTasks(t *testing.T, app *App) {
	t.Helper()
	ctx := context.Background()
	soon := time.Now().Add(36 * time.Hour).UTC()
	later := time.Now().Add(20 * 24 * time.Hour).UTC()
	work := "work"

	inputs := []domain.CreateTaskInput{
		{Title: "Write report", Priority: domain.PriorityHigh, DueDate: &soon, Category: &work, Tags: []string{"q3"}},
		{Title: "Review report", DueDate: &later, Category: &work},
		{Title: "Buy milk", Priority: domain.PriorityLow},
	}
	for _, input := range inputs {
		_, err := app.tasks.Create(ctx, app.owner, input)
		require.NoError(t, err)
	}
}

func TestListCommand_Table(t *testing.T) {
	app, out := setupTestApp(t)
	seedListTasks(t, app)

	require.NoError(t, runCommand(t, NewListCommand(app)))
	output := out.String()
	assert.Contains(t, output, "ORDER")
	assert.Contains(t, output, "Write report")
	assert.Contains(t, output, "Buy milk")
	assert.Contains(t, output, "Page 1 of 1 (3 tasks)")
	assert.Less(t, strings.Index(output, "Write report"), strings.Index(output, "Buy milk"))
}

func TestListCommand_Filters(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		expected []string
	}{
		{"search words", []string{"report"}, []string{"Write report", "Review report"}},
		{"search flag is case insensitive", []string{"--search", "MILK"}, []string{"Buy milk"}},
		{"time window", []string{"2d"}, []string{"Write report"}},
		{"time window and text", []string{"4w", "review"}, []string{"Review report"}},
		{"priority", []string{"-p", "low"}, []string{"Buy milk"}},
		{"category", []string{"-c", "work"}, []string{"Write report", "Review report"}},
		{"tags", []string{"-t", "q3,other"}, []string{"Write report"}},
		{"sorted by title descending", []string{"--sort", "title", "--order", "desc"}, []string{"Write report", "Review report", "Buy milk"}},
		{"paged", []string{"--limit", "1", "--page", "2"}, []string{"Review report"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, out := setupTestApp(t)
			seedListTasks(t, app)

			argv := append([]string{"--format", "json"}, tt.argv...)
			require.NoError(t, runCommand(t, NewListCommand(app), argv...))

			var page domain.TaskPage
			require.NoError(t, sonic.Unmarshal(out.Bytes(), &page), out.String())
			assert.Equal(t, tt.expected, titles(page.Items))
		})
	}
}

func TestListCommand_AllAsCSV(t *testing.T) {
	app, out := setupTestApp(t)
	for i := 0; i < 7; i++ {
		createTask(t, app, "Task "+string(rune('A'+i)))
	}

	require.NoError(t, runCommand(t, NewListCommand(app), "--all", "--limit", "3", "--format", "csv"))

	records, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Task A", records[1][2])
	assert.Equal(t, "Task G", records[7][2])
}

func TestListCommand_Rejected(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"unknown sort field", []string{"--sort", "colour"}},
		{"bad sort order", []string{"--order", "sideways"}},
		{"unknown status", []string{"--status", "done"}},
		{"limit above maximum", []string{"--limit", "500"}},
		{"bad date", []string{"--from", "yesterday"}},
		{"unknown format", []string{"--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)
			err := runCommand(t, NewListCommand(app), tt.argv...)
			require.Error(t, err)
			assert.True(t, NewErrorHandler().IsValidationError(err), err.Error())
		})
	}
}

func TestListCommand_Empty(t *testing.T) {
	app, out := setupTestApp(t)

	require.NoError(t, runCommand(t, NewListCommand(app)))
	assert.Equal(t, "No tasks found\n", out.String())
}

func TestExportCommand(t *testing.T) {
	app, out := setupTestApp(t)

	t.Run("empty json is an empty array", func(t *testing.T) {
		out.Reset()
		require.NoError(t, runCommand(t, NewExportCommand(app), "format=json"))
		assert.Equal(t, "[]", strings.TrimSpace(out.String()))
	})

	createTask(t, app, "First")
	createTask(t, app, "Second")

	t.Run("json in list order", func(t *testing.T) {
		out.Reset()
		require.NoError(t, runCommand(t, NewExportCommand(app), "format=json"))
		var tasks []domain.Task
		require.NoError(t, sonic.Unmarshal(out.Bytes(), &tasks))
		assert.Equal(t, []string{"First", "Second"}, titles(tasks))
	})

	t.Run("csv", func(t *testing.T) {
		out.Reset()
		require.NoError(t, runCommand(t, NewExportCommand(app), "format=csv"))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "ID,Order,Title"))
	})

	tests := []struct {
		name string
		argv []string
	}{
		{"missing format", nil},
		{"no prefix", []string{"csv"}},
		{"unsupported", []string{"format=xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCommand(t, NewExportCommand(app), tt.argv...)
			require.Error(t, err)
			assert.True(t, NewErrorHandler().IsValidationError(err))
		})
	}
}
