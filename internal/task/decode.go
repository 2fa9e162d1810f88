package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the offset-less layouts earlier versions and hand
// edits produce. Fractional seconds are accepted after the seconds field by
// time.Parse.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// record is the on-disk shape accepted on read, legacy fields included.
// Field values are kept raw so an unexpected type never fails the file.
type record struct {
	ID              ID              `json:"id"`
	Description     json.RawMessage `json:"description"`
	Status          json.RawMessage `json:"status"`
	CreatedAt       json.RawMessage `json:"createdAt"`
	LegacyCreatedAt json.RawMessage `json:"created_at"`
	UpdatedAt       json.RawMessage `json:"updatedAt"`
}

// UnmarshalJSON decodes a task record and migrates legacy shapes. Values of
// an unexpected type or layout are kept as text rather than rejected.
func (t *Task) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	created := r.CreatedAt
	if isNull(created) {
		created = r.LegacyCreatedAt
	}
	createdAt, rawCreated := decodeTimestamp(created)
	updatedAt, rawUpdated := decodeTimestamp(r.UpdatedAt)

	*t = Task{
		ID:           r.ID,
		Description:  decodeDescription(r.Description),
		Status:       Status(decodeText(r.Status)),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		RawCreatedAt: rawCreated,
		RawUpdatedAt: rawUpdated,
	}
	return nil
}

// MarshalJSON writes the task in the current file shape. A timestamp that
// could not be parsed on load is written back as it was read.
func (t Task) MarshalJSON() ([]byte, error) {
	out := struct {
		ID          ID     `json:"id"`
		Description string `json:"description"`
		Status      Status `json:"status"`
		CreatedAt   any    `json:"createdAt"`
		UpdatedAt   any    `json:"updatedAt"`
	}{
		ID:          t.ID,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   timestampValue(t.CreatedAt, t.RawCreatedAt),
		UpdatedAt:   timestampValue(t.UpdatedAt, t.RawUpdatedAt),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func timestampValue(ts time.Time, raw string) any {
	if ts.IsZero() && raw != "" {
		return raw
	}
	return ts
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// decodeText returns a JSON string's value, "" for null, and the compact
// JSON text of any other value.
func decodeText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return b.String()
}

// decodeDescription also joins the list-of-strings form older files used.
func decodeDescription(raw json.RawMessage) string {
	var parts []string
	if !isNull(raw) && json.Unmarshal(raw, &parts) == nil {
		return strings.Join(parts, ", ")
	}
	return decodeText(raw)
}

// decodeTimestamp parses raw with the accepted layouts. A value no layout
// accepts is returned as text with a zero time.
func decodeTimestamp(raw json.RawMessage) (time.Time, string) {
	v := strings.TrimSpace(decodeText(raw))
	if v == "" {
		return time.Time{}, ""
	}
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return ts, ""
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return ts, ""
		}
	}
	return time.Time{}, v
}

// DecodeCollection parses a task file body. A bare object is wrapped into
// a one-element collection when it carries an "id" key and yields an empty
// collection otherwise. Blank input is an empty collection.
func DecodeCollection(data []byte) ([]Task, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return []Task{}, nil
	}

	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, err
		}
		if _, ok := probe["id"]; !ok {
			return []Task{}, nil
		}
		var t Task
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return []Task{t}, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// EncodeCollection renders tasks the way the task file stores them:
// 4-space indentation, no HTML escaping, trailing newline.
func EncodeCollection(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return []byte(b.String()), nil
}
