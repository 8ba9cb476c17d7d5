package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tasktrack/internal/service"
)

// taskRecord is a row of the task table as PostgREST returns it.
// Every field is optional at the JSON level so absent columns can be
// detected instead of silently becoming zero values.
type taskRecord struct {
	ID          json.RawMessage `json:"id"`
	Title       *string         `json:"title"`
	IsCompleted *bool           `json:"is_completed"`
	UserID      *string         `json:"user_id"`
	CreatedAt   *timestamp      `json:"created_at"`
}

// task converts the record, rejecting rows with missing columns.
func (r taskRecord) task() (service.Task, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return service.Task{}, fmt.Errorf("%w: %v", service.ErrOperationFailed, err)
	}

	var missing []string
	if r.Title == nil {
		missing = append(missing, "title")
	}
	if r.IsCompleted == nil {
		missing = append(missing, "is_completed")
	}
	if r.UserID == nil {
		missing = append(missing, "user_id")
	}
	if r.CreatedAt == nil {
		missing = append(missing, "created_at")
	}
	if len(missing) > 0 {
		return service.Task{}, fmt.Errorf("%w: task %s missing %s", service.ErrOperationFailed, id, strings.Join(missing, ", "))
	}

	return service.Task{
		ID:          id,
		Title:       *r.Title,
		IsCompleted: *r.IsCompleted,
		OwnerID:     *r.UserID,
		CreatedAt:   r.CreatedAt.Time,
	}, nil
}

// parseID accepts string (uuid) and numeric (bigint) primary keys.
func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("task missing id")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid id: %w", err)
		}
		if s == "" {
			return "", fmt.Errorf("task missing id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid id %s", raw)
	}
	return n.String(), nil
}

// timestamp parses Postgres timestamps with or without a zone.
// Zoneless values are taken as UTC.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", raw)
}
