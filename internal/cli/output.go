package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"

	"todo-list/internal/domain"
)

const displayTimeFormat = "2006-01-02 15:04"

// Output formats shared by list and export.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func printTaskTable(w io.Writer, tasks []domain.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			task.Order, task.ID, task.Status, task.Priority, formatOptionalTime(task.DueDate), task.Title)
	}
	return tw.Flush()
}

func printTask(w io.Writer, task *domain.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", task.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", task.Title)
	if task.Description != nil {
		fmt.Fprintf(tw, "Description:\t%s\n", *task.Description)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", task.Status)
	fmt.Fprintf(tw, "Priority:\t%s\n", task.Priority)
	fmt.Fprintf(tw, "Order:\t%d\n", task.Order)
	if task.Category != nil {
		fmt.Fprintf(tw, "Category:\t%s\n", *task.Category)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(task.Tags, ", "))
	}
	if task.DueDate != nil {
		fmt.Fprintf(tw, "Due:\t%s\n", task.DueDate.Format(displayTimeFormat))
	}
	if task.CompletedAt != nil {
		fmt.Fprintf(tw, "Completed:\t%s\n", task.CompletedAt.Format(displayTimeFormat))
	}
	fmt.Fprintf(tw, "Created:\t%s\n", task.CreatedAt.Format(displayTimeFormat))
	fmt.Fprintf(tw, "Updated:\t%s\n", task.UpdatedAt.Format(displayTimeFormat))
	return tw.Flush()
}

func printBatchResult(w io.Writer, verb string, result domain.BatchResult) {
	fmt.Fprintf(w, "%s %d of %d tasks (%d skipped)\n", verb, result.Affected, result.Requested, result.Failed)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var csvHeader = []string{"ID", "Order", "Title", "Description", "Status", "Priority", "Category", "Tags", "Due", "Completed", "Created", "Updated"}

func writeCSV(w io.Writer, tasks []domain.Task) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, task := range tasks {
		row := []string{
			task.ID,
			strconv.Itoa(task.Order),
			task.Title,
			optionalString(task.Description),
			string(task.Status),
			string(task.Priority),
			optionalString(task.Category),
			strings.Join(task.Tags, ";"),
			formatRFC3339(task.DueDate),
			formatRFC3339(task.CompletedAt),
			task.CreatedAt.Format(time.RFC3339),
			task.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(displayTimeFormat)
}

func formatRFC3339(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
