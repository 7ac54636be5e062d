// Package ordering maintains the dense, owner-scoped order of tasks.
//
// Plans are pure functions over an owner's current positions. They return
// only the slots whose order value changes, so applying a plan to an
// already-ordered list writes nothing.
package ordering

import (
	"todo-list/internal/domain"
	"todo-list/internal/errors"
)

// PlanMove places taskID at position newOrder of the owner's sequence.
// Positions outside 0..N-1 are clamped, so the task becomes first or last.
// current must be sorted by (order, id).
func PlanMove(current []domain.OrderSlot, taskID string, newOrder int) ([]domain.OrderSlot, error) {
	from := -1
	for i, slot := range current {
		if slot.ID == taskID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, errors.NewNotFoundError("task", taskID)
	}

	sequence := make([]string, 0, len(current))
	for i, slot := range current {
		if i != from {
			sequence = append(sequence, slot.ID)
		}
	}

	to := clamp(newOrder, 0, len(sequence))
	sequence = append(sequence, "")
	copy(sequence[to+1:], sequence[to:])
	sequence[to] = taskID

	return renumber(current, sequence), nil
}

// PlanReorder puts the listed ids first, in the given sequence, followed by
// the owner's remaining tasks in their current relative order. Ids the owner
// does not have are skipped, as are repeats. It returns the changed slots
// and how many listed ids matched an owned task.
func PlanReorder(current []domain.OrderSlot, ids []string) ([]domain.OrderSlot, int) {
	owned := make(map[string]bool, len(current))
	for _, slot := range current {
		owned[slot.ID] = true
	}

	sequence := make([]string, 0, len(current))
	placed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if owned[id] && !placed[id] {
			placed[id] = true
			sequence = append(sequence, id)
		}
	}
	matched := len(sequence)

	for _, slot := range current {
		if !placed[slot.ID] {
			sequence = append(sequence, slot.ID)
		}
	}

	return renumber(current, sequence), matched
}

// IsDense reports whether slots hold exactly the orders 0..len-1.
func IsDense(slots []domain.OrderSlot) bool {
	seen := make([]bool, len(slots))
	for _, slot := range slots {
		if slot.Order < 0 || slot.Order >= len(slots) || seen[slot.Order] {
			return false
		}
		seen[slot.Order] = true
	}
	return true
}

// renumber assigns position i to sequence[i] and returns the slots whose
// order differs from current.
func renumber(current []domain.OrderSlot, sequence []string) []domain.OrderSlot {
	previous := make(map[string]int, len(current))
	for _, slot := range current {
		previous[slot.ID] = slot.Order
	}

	changes := []domain.OrderSlot{}
	for i, id := range sequence {
		if old, ok := previous[id]; !ok || old != i {
			changes = append(changes, domain.OrderSlot{ID: id, Order: i})
		}
	}
	return changes
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
