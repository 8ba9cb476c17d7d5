package session_test

import (
	"context"
	"errors"
	"testing"

	"tasktrack/internal/service"
	"tasktrack/internal/session"
	"tasktrack/internal/taskstore"
	"tasktrack/internal/testutil"
)

type navCounter struct {
	calls  int
	reason error
}

func (n *navCounter) ToLogin(reason error) {
	n.calls++
	n.reason = reason
}

func TestResolve_SignedIn(t *testing.T) {
	svc := testutil.SignedInAs("u1", "u1@example.com")
	nav := &navCounter{}

	sess, err := session.NewGate(svc, nav).Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess.UserID != "u1" || sess.Email != "u1@example.com" {
		t.Errorf("unexpected session %+v", sess)
	}
	if nav.calls != 0 {
		t.Errorf("expected no navigation, got %d", nav.calls)
	}
}

func TestResolve_NoUserRedirectsWithoutListing(t *testing.T) {
	svc := testutil.NewFakeService()
	nav := &navCounter{}

	_, err := session.NewGate(svc, nav).Resolve(context.Background())
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if nav.calls != 1 {
		t.Errorf("expected 1 navigation to login, got %d", nav.calls)
	}
	if svc.CallCount("ListByOwner") != 0 {
		t.Error("expected no task list request")
	}
}

func TestResolve_LookupErrorRedirects(t *testing.T) {
	svc := testutil.SignedInAs("u1", "u1@example.com")
	svc.CurrentUserErr = errors.New("jwt expired")
	nav := &navCounter{}

	_, err := session.NewGate(svc, nav).Resolve(context.Background())
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if nav.calls != 1 {
		t.Errorf("expected 1 navigation to login, got %d", nav.calls)
	}
}

func TestResolve_Unconfigured(t *testing.T) {
	nav := &navCounter{}

	_, err := session.NewGate(nil, nav).Resolve(context.Background())
	if !errors.Is(err, service.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if nav.calls != 0 {
		t.Error("an unconfigured service must not navigate to login")
	}
}

func TestResolve_SessionScopesStore(t *testing.T) {
	svc := testutil.SignedInAs("u1", "u1@example.com")
	svc.AddTask("u1", "mine", false)
	svc.AddTask("u2", "theirs", false)

	sess, err := session.NewGate(svc, nil).Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	store := taskstore.New(sess, svc, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "mine" {
		t.Errorf("expected only the session owner's task, got %+v", tasks)
	}
}

func TestSignOut(t *testing.T) {
	svc := testutil.SignedInAs("u1", "u1@example.com")
	nav := &navCounter{}
	gate := session.NewGate(svc, nav)

	if err := gate.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if nav.calls != 1 {
		t.Errorf("expected navigation after sign out, got %d", nav.calls)
	}
	if _, err := gate.Resolve(context.Background()); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated after sign out, got %v", err)
	}
}

func TestSignOut_Failure(t *testing.T) {
	svc := testutil.SignedInAs("u1", "u1@example.com")
	svc.SignOutErr = errors.New("network error")
	nav := &navCounter{}

	if err := session.NewGate(svc, nav).SignOut(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if nav.calls != 0 {
		t.Error("expected no navigation when sign out fails")
	}
}
