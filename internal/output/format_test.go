package output_test

import (
	"bytes"
	"testing"

	"tasktrack/internal/output"
	"tasktrack/internal/service"
	"tasktrack/internal/view"
)

func TestTask_PlainOutput(t *testing.T) {
	tests := []struct {
		name string
		num  int
		task service.Task
		want string
	}{
		{"open", 1, service.Task{Title: "Buy milk"}, "   1  [ ] Buy milk\n"},
		{"completed", 12, service.Task{Title: "Walk dog", IsCompleted: true}, "  12  [x] Walk dog\n"},
		{"multiline title", 4, service.Task{Title: "a\r\nb"}, "   4  [ ] a  b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.NewPrinter(&buf).Task(tt.num, tt.task)
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestHeaderAndFooter(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf)
	p.Header(view.Pending)
	p.Footer(view.Counts{All: 1, Pending: 1})

	want := "------------\nPending\n------------\n1 task, 1 pending, 0 completed\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestUser(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf)
	p.User(service.Session{UserID: "u1", Email: "a@example.com"})
	p.User(service.Session{UserID: "list-1"})

	want := "a@example.com (u1)\nlist-1\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
