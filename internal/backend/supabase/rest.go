package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"tasktrack/internal/service"
)

// Rest implements service.Storage using the PostgREST task table.
// Requests carry the user's access token so row-level security applies;
// every write is additionally filtered by owner.
type Rest struct {
	opts Options
	auth *Auth
}

// NewRest creates the storage half of the client.
func NewRest(opts Options, auth *Auth) *Rest {
	return &Rest{opts: opts.withDefaults(), auth: auth}
}

func (r *Rest) tableURL(query url.Values) string {
	u := r.opts.URL + "/rest/v1/" + url.PathEscape(r.opts.Table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func ownedRow(ownerID, id string) url.Values {
	return url.Values{
		"id":      {"eq." + id},
		"user_id": {"eq." + ownerID},
	}
}

// ListByOwner returns the owner's tasks, newest first. Rows that fail
// validation are logged and skipped.
func (r *Rest) ListByOwner(ctx context.Context, ownerID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	client, err := r.auth.Client(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":  {"*"},
		"user_id": {"eq." + ownerID},
		"order":   {"created_at.desc"},
	}
	var rows []json.RawMessage
	if err := do(ctx, client, r.opts.Logger, http.MethodGet, r.tableURL(query), nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]service.Task, 0, len(rows))
	for _, row := range rows {
		task, err := decodeRow(row)
		if err != nil {
			r.opts.Logger.Warn("skipping malformed task row", "err", err)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Insert creates a task and returns the stored row.
func (r *Rest) Insert(ctx context.Context, title, ownerID string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	client, err := r.auth.Client(ctx)
	if err != nil {
		return service.Task{}, err
	}

	header := http.Header{"Prefer": {"return=representation"}}
	body := []map[string]string{{"title": title, "user_id": ownerID}}
	var rows []json.RawMessage
	if err := do(ctx, client, r.opts.Logger, http.MethodPost, r.tableURL(nil), header, body, &rows); err != nil {
		return service.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if len(rows) == 0 {
		return service.Task{}, fmt.Errorf("%w: insert returned no rows", service.ErrOperationFailed)
	}
	return decodeRow(rows[0])
}

// UpdateCompletion sets is_completed on one of the owner's tasks.
func (r *Rest) UpdateCompletion(ctx context.Context, ownerID, id string, completed bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	client, err := r.auth.Client(ctx)
	if err != nil {
		return err
	}

	header := http.Header{"Prefer": {"return=minimal"}}
	body := map[string]bool{"is_completed": completed}
	if err := do(ctx, client, r.opts.Logger, http.MethodPatch, r.tableURL(ownedRow(ownerID, id)), header, body, nil); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// DeleteByID deletes one of the owner's tasks.
func (r *Rest) DeleteByID(ctx context.Context, ownerID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	client, err := r.auth.Client(ctx)
	if err != nil {
		return err
	}

	if err := do(ctx, client, r.opts.Logger, http.MethodDelete, r.tableURL(ownedRow(ownerID, id)), nil, nil, nil); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func decodeRow(row json.RawMessage) (service.Task, error) {
	var rec taskRecord
	if err := json.Unmarshal(row, &rec); err != nil {
		return service.Task{}, fmt.Errorf("%w: decode task: %v", service.ErrOperationFailed, err)
	}
	return rec.task()
}
