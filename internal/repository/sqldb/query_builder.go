package sqldb

import (
	"strings"

	"todo-list/internal/domain"
)

// likeEscape is the escape character used in LIKE patterns.
const likeEscape = `\`

// EscapeLike escapes LIKE wildcards so term matches literally.
func EscapeLike(term string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(term)
}

// taskFilter is the WHERE clause and arguments of a task query.
type taskFilter struct {
	where string
	args  []interface{}
}

// buildTaskFilter translates a query into an owner-scoped WHERE clause.
func buildTaskFilter(d Dialect, ownerID string, q domain.TaskQuery) taskFilter {
	conditions := []string{"t.owner_id = ?"}
	args := []interface{}{ownerID}

	if q.Status != nil {
		conditions = append(conditions, "t.status = ?")
		args = append(args, string(*q.Status))
	}
	if q.Priority != nil {
		conditions = append(conditions, "t.priority = ?")
		args = append(args, string(*q.Priority))
	}
	if q.Category != nil {
		conditions = append(conditions, "t.category = ?")
		args = append(args, *q.Category)
	}
	if len(q.Tags) > 0 {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.owner_id = t.owner_id AND tt.tag IN ("+placeholders(len(q.Tags))+"))")
		args = append(args, stringArgs(q.Tags)...)
	}
	if q.Search != nil && *q.Search != "" {
		pattern := "%" + EscapeLike(FoldCase(*q.Search)) + "%"
		conditions = append(conditions,
			"("+d.Fold("t.title")+" LIKE ? ESCAPE '"+likeEscape+"' OR "+
				d.Fold("COALESCE(t.description, '')")+" LIKE ? ESCAPE '"+likeEscape+"')")
		args = append(args, pattern, pattern)
	}
	if q.StartDate != nil {
		conditions = append(conditions, "t.due_date >= ?")
		args = append(args, FormatTimeForDB(*q.StartDate))
	}
	if q.EndDate != nil {
		conditions = append(conditions, "t.due_date <= ?")
		args = append(args, FormatTimeForDB(*q.EndDate))
	}

	return taskFilter{where: strings.Join(conditions, " AND "), args: args}
}

// sortExpressions maps sort fields to column expressions. Nullable columns
// are listed in nullableSorts so their NULLs sort last in both directions.
var sortExpressions = map[domain.SortField]string{
	domain.SortByTitle:       "t.title",
	domain.SortByDescription: "t.description",
	domain.SortByPriority:    "CASE t.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END",
	domain.SortByStatus:      "t.status",
	domain.SortByDueDate:     "t.due_date",
	domain.SortByCategory:    "t.category",
	domain.SortByOrder:       "t.sort_order",
	domain.SortByCreatedAt:   "t.created_at",
	domain.SortByUpdatedAt:   "t.updated_at",
	domain.SortByCompletedAt: "t.completed_at",
}

var nullableSorts = map[domain.SortField]bool{
	domain.SortByDescription: true,
	domain.SortByDueDate:     true,
	domain.SortByCategory:    true,
	domain.SortByCompletedAt: true,
}

// buildOrderBy returns a total ORDER BY: the requested field, then id.
// Unknown fields fall back to created_at; callers validate beforehand.
func buildOrderBy(q domain.TaskQuery) string {
	expr, ok := sortExpressions[q.SortBy]
	if !ok {
		expr = sortExpressions[domain.SortByCreatedAt]
	}
	direction := "DESC"
	if q.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	var parts []string
	if nullableSorts[q.SortBy] {
		parts = append(parts, "("+expr+" IS NULL) ASC")
	}
	parts = append(parts, expr+" "+direction, "t.id ASC")
	return strings.Join(parts, ", ")
}
