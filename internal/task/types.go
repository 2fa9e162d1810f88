package task

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Status represents a task status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses returns the accepted status values in display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// Valid reports whether s is one of the accepted status values.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// StatusList returns the accepted statuses joined for messages.
func StatusList() string {
	names := make([]string, 0, 3)
	for _, s := range Statuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// ID identifies a task. Numeric ids are the norm; a non-numeric id read
// from a hand-edited file is kept verbatim so the file round-trips.
// The zero ID is "no id".
type ID struct {
	num     int
	label   string
	numeric bool
}

// IntID returns a numeric ID.
func IntID(n int) ID {
	return ID{num: n, numeric: true}
}

// ParseID normalizes s: a string of ASCII digits becomes a numeric ID,
// anything else is kept as a label.
func ParseID(s string) ID {
	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return IntID(n)
		}
	}
	return ID{label: s}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Int returns the numeric value and whether the ID is numeric.
func (id ID) Int() (int, bool) {
	return id.num, id.numeric
}

// IsZero returns true if the ID was never set.
func (id ID) IsZero() bool {
	return !id.numeric && id.label == ""
}

func (id ID) String() string {
	if id.numeric {
		return strconv.Itoa(id.num)
	}
	return id.label
}

// Less orders numeric ids ascending and puts non-numeric ids last.
// Two non-numeric ids compare equal so a stable sort keeps file order.
func (id ID) Less(other ID) bool {
	switch {
	case id.numeric && other.numeric:
		return id.num < other.num
	case id.numeric:
		return true
	default:
		return false
	}
}

// MarshalJSON writes numeric ids as JSON numbers, labels as strings and
// the zero ID as null.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(strconv.Itoa(id.num)), nil
	}
	return json.Marshal(id.label)
}

// UnmarshalJSON accepts a JSON number or string. null yields the zero ID
// and any other value is kept as a label of its JSON text.
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*id = ID{}
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ParseID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		*id = ID{label: raw}
		return nil
	}
	if n, err := strconv.Atoi(num.String()); err == nil {
		*id = IntID(n)
		return nil
	}
	// Non-integral numbers (1.5, 1e3) are preserved as written.
	*id = ID{label: num.String()}
	return nil
}

// Task represents a single tracked unit of work.
type Task struct {
	ID          ID        `json:"id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// RawCreatedAt and RawUpdatedAt hold a stored timestamp no known layout
	// accepts. They are only consulted while the parsed time is zero.
	RawCreatedAt string `json:"-"`
	RawUpdatedAt string `json:"-"`
}

// New returns a todo task stamped with now for both timestamps.
func New(id ID, description string, now time.Time) Task {
	return Task{
		ID:          id,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Sort orders tasks by ID in place. Tasks with non-numeric ids keep their
// relative order after all numeric ones.
func Sort(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ID.Less(tasks[j].ID)
	})
}

// Dedupe returns tasks with later duplicates of an ID dropped.
// The first occurrence wins.
func Dedupe(tasks []Task) []Task {
	seen := make(map[ID]bool, len(tasks))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// Filter returns the tasks whose status equals status exactly.
// An empty status matches everything.
func Filter(tasks []Task, status Status) []Task {
	if status == "" {
		return tasks
	}
	var out []Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
