package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/nibzard/tasktracker/internal/task"
)

// Column widths of the task table, in terminal cells.
const (
	idWidth          = 5
	descriptionWidth = 30
	statusWidth      = 12
	dateWidth        = 12
)

// RuleWidth is the total width of the task table.
const RuleWidth = idWidth + descriptionWidth + statusWidth + 2*dateWidth + 4

// WriteTable renders tasks as a fixed-width table in the order given.
func WriteTable(w io.Writer, tasks []task.Task) error {
	var b strings.Builder
	b.WriteString(row("ID", "Description", "Status", "Created", "Updated"))
	b.WriteString(strings.Repeat("-", RuleWidth) + "\n")
	for _, t := range tasks {
		b.WriteString(row(
			t.ID.String(),
			Truncate(t.Description, descriptionWidth),
			string(t.Status),
			FormatDate(t.CreatedAt, t.RawCreatedAt),
			FormatDate(t.UpdatedAt, t.RawUpdatedAt),
		))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func row(id, desc, status, created, updated string) string {
	return fmt.Sprintf("%s %s %s %s %s\n",
		runewidth.FillRight(id, idWidth),
		runewidth.FillRight(desc, descriptionWidth),
		runewidth.FillRight(status, statusWidth),
		runewidth.FillRight(created, dateWidth),
		updated,
	)
}

// Truncate shortens s to at most width cells, ending in "..." when cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// FormatDate returns the YYYY-MM-DD part of ts. When ts is unset it falls
// back to raw up to the first date/time separator, or N/A.
func FormatDate(ts time.Time, raw string) string {
	if !ts.IsZero() {
		return ts.Format(time.DateOnly)
	}
	if raw == "" {
		return "N/A"
	}
	if i := strings.IndexAny(raw, "T "); i > 0 {
		return raw[:i]
	}
	return raw
}
