package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriority_Rank(t *testing.T) {
	tests := []struct {
		priority Priority
		rank     int
		valid    bool
	}{
		{PriorityLow, 1, true},
		{PriorityMedium, 2, true},
		{PriorityHigh, 3, true},
		{Priority("urgent"), 0, false},
		{Priority(""), 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.rank, tt.priority.Rank())
			assert.Equal(t, tt.valid, tt.priority.IsValid())
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("done").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestTask_SetStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name          string
		initial       Task
		status        Status
		wantCompleted *time.Time
	}{
		{
			name:          "completing sets completedAt",
			initial:       Task{Status: StatusPending},
			status:        StatusCompleted,
			wantCompleted: &now,
		},
		{
			name:          "re-completing keeps original time",
			initial:       Task{Status: StatusCompleted, CompletedAt: &earlier},
			status:        StatusCompleted,
			wantCompleted: &earlier,
		},
		{
			name:          "leaving completed clears completedAt",
			initial:       Task{Status: StatusCompleted, CompletedAt: &earlier},
			status:        StatusInProgress,
			wantCompleted: nil,
		},
		{
			name:          "archiving never sets completedAt",
			initial:       Task{Status: StatusPending},
			status:        StatusArchived,
			wantCompleted: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tt.initial
			task.SetStatus(tt.status, now)

			assert.Equal(t, tt.status, task.Status)
			if tt.wantCompleted == nil {
				assert.Nil(t, task.CompletedAt)
				return
			}
			require.NotNil(t, task.CompletedAt)
			assert.True(t, tt.wantCompleted.Equal(*task.CompletedAt))
		})
	}
}

func TestTaskPatch_Apply(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)
	desc := "old description"
	cat := "work"

	base := Task{
		Title:       "Old",
		Description: &desc,
		Priority:    PriorityLow,
		Status:      StatusPending,
		DueDate:     &due,
		Tags:        []string{"a"},
		Category:    &cat,
	}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		task := base
		patch := TaskPatch{}
		assert.True(t, patch.IsEmpty())
		patch.Apply(&task, now)
		assert.Equal(t, base, task)
	})

	t.Run("sets fields and couples completedAt", func(t *testing.T) {
		task := base
		title := "New"
		high := PriorityHigh
		completed := StatusCompleted
		tags := []string{"x", "y"}
		patch := TaskPatch{Title: &title, Priority: &high, Status: &completed, Tags: &tags}

		assert.False(t, patch.IsEmpty())
		patch.Apply(&task, now)

		assert.Equal(t, "New", task.Title)
		assert.Equal(t, PriorityHigh, task.Priority)
		assert.Equal(t, []string{"x", "y"}, task.Tags)
		require.NotNil(t, task.CompletedAt)
		assert.True(t, now.Equal(*task.CompletedAt))
	})

	t.Run("empty strings and ClearDueDate clear optional fields", func(t *testing.T) {
		task := base
		empty := ""
		patch := TaskPatch{Description: &empty, Category: &empty, ClearDueDate: true}
		patch.Apply(&task, now)

		assert.Nil(t, task.Description)
		assert.Nil(t, task.Category)
		assert.Nil(t, task.DueDate)
	})
}

func TestTaskQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, TaskQuery{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, TaskQuery{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, TaskQuery{Page: 0, Limit: 20}.Offset())
	assert.Equal(t, 0, TaskQuery{Page: 3, Limit: 0}.Offset())
	assert.Equal(t, math.MaxInt, TaskQuery{Page: 1<<62 + 1, Limit: 50}.Offset())
}

func TestSortField_IsValid(t *testing.T) {
	assert.True(t, SortByCreatedAt.IsValid())
	assert.True(t, SortByOrder.IsValid())
	assert.False(t, SortField("owner_id").IsValid())
	assert.True(t, SortAsc.IsValid())
	assert.False(t, SortOrder("up").IsValid())
}

func TestNewBatchResult(t *testing.T) {
	assert.Equal(t, BatchResult{Requested: 3, Affected: 2, Failed: 1}, NewBatchResult(3, 2))
	assert.Equal(t, BatchResult{Requested: 1, Affected: 1, Failed: 0}, NewBatchResult(1, 1))
}
