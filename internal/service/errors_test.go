package service_test

import (
	"errors"
	"testing"
	"time"

	"tasktrack/internal/service"
)

func TestFailed_MatchesOperationFailed(t *testing.T) {
	cause := errors.New("boom")
	err := service.Failed("insert", cause)

	if !errors.Is(err, service.ErrOperationFailed) {
		t.Error("expected error to match ErrOperationFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to wrap its cause")
	}
	if err.Error() != "insert: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if service.Failed("insert", nil) != nil {
		t.Error("expected nil for nil cause")
	}
}

func TestUnavailable_NamesMissingSettings(t *testing.T) {
	err := service.Unavailable("SUPABASE_URL", "SUPABASE_ANON_KEY")
	if !errors.Is(err, service.ErrServiceUnavailable) {
		t.Fatal("expected ErrServiceUnavailable")
	}
	expected := "service unavailable: missing SUPABASE_URL, SUPABASE_ANON_KEY"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestValidateTask(t *testing.T) {
	good := service.Task{
		ID:        "t1",
		Title:     "Buy milk",
		OwnerID:   "u1",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(*service.Task)
		wantErr bool
	}{
		{"valid", func(*service.Task) {}, false},
		{"missing id", func(t *service.Task) { t.ID = "" }, true},
		{"blank title", func(t *service.Task) { t.Title = "  " }, true},
		{"missing owner", func(t *service.Task) { t.OwnerID = "" }, true},
		{"foreign owner", func(t *service.Task) { t.OwnerID = "u2" }, true},
		{"zero created_at", func(t *service.Task) { t.CreatedAt = time.Time{} }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := good
			tc.mutate(&task)
			err := service.ValidateTask(task, "u1")
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
			if err != nil && !errors.Is(err, service.ErrOperationFailed) {
				t.Errorf("expected ErrOperationFailed, got %v", err)
			}
		})
	}
}
