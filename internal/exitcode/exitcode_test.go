package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"unavailable", service.Unavailable("SUPABASE_URL"), exitcode.Unavailable},
		{"unauthenticated", fmt.Errorf("get user: %w", service.ErrUnauthenticated), exitcode.AuthError},
		{"operation failed", service.Failed("insert", errors.New("boom")), exitcode.BackendError},
		{"other", errors.New("connection refused"), exitcode.BackendError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitcode.For(tt.err); got != tt.want {
				t.Errorf("For(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
