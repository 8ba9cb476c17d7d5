// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasktrack/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// It behaves like a remote store with row-level security: every call is
// scoped to the owner passed in.
type FakeService struct {
	mu    sync.RWMutex
	user  *service.User
	users map[string]string // email -> password
	tasks []service.Task
	clock time.Time

	// Error injection for testing
	CurrentUserErr      error
	SignOutErr          error
	SignInErr           error
	SignUpErr           error
	ListByOwnerErr      error
	InsertErr           error
	UpdateCompletionErr error
	DeleteByIDErr       error

	// Extra records returned by ListByOwner, used to simulate malformed rows.
	ExtraRecords []service.Task

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewFakeService creates a new FakeService with nobody signed in.
func NewFakeService() *FakeService {
	return &FakeService{
		users: make(map[string]string),
		clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Calls: make(map[string]int),
	}
}

// SignedInAs returns a FakeService with the given user signed in.
func SignedInAs(id, email string) *FakeService {
	f := NewFakeService()
	f.user = &service.User{ID: id, Email: email}
	return f
}

// AddTask stores a task directly, bypassing error injection.
// It returns the stored record.
func (f *FakeService) AddTask(ownerID, title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.newTask(ownerID, title)
	t.IsCompleted = completed
	f.tasks = append(f.tasks, t)
	return t
}

// Remote returns the tasks the store holds for ownerID, newest first.
func (f *FakeService) Remote(ownerID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listLocked(ownerID)
}

// CallCount returns how many times method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[method]++
}

func (f *FakeService) newTask(ownerID, title string) service.Task {
	f.clock = f.clock.Add(time.Second)
	return service.Task{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: f.clock,
	}
}

func (f *FakeService) listLocked(ownerID string) []service.Task {
	var result []service.Task
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// CurrentUser implements service.Identity.
func (f *FakeService) CurrentUser(ctx context.Context) (*service.User, error) {
	f.record("CurrentUser")
	if f.CurrentUserErr != nil {
		return nil, f.CurrentUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.user == nil {
		return nil, nil
	}
	u := *f.user
	return &u, nil
}

// SignOut implements service.Identity.
func (f *FakeService) SignOut(ctx context.Context) error {
	f.record("SignOut")
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	return nil
}

// SignInWithCredentials implements service.Identity.
func (f *FakeService) SignInWithCredentials(ctx context.Context, email, password string) error {
	f.record("SignInWithCredentials")
	if f.SignInErr != nil {
		return f.SignInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if pw, ok := f.users[email]; !ok || pw != password {
		return errors.New("invalid login credentials")
	}
	f.user = &service.User{ID: "user-" + email, Email: email}
	return nil
}

// SignUp implements service.Identity.
func (f *FakeService) SignUp(ctx context.Context, email, password string) error {
	f.record("SignUp")
	if f.SignUpErr != nil {
		return f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := f.users[email]; ok {
		return errors.New("user already registered")
	}
	f.users[email] = password
	return nil
}

// ListByOwner implements service.Storage.
func (f *FakeService) ListByOwner(ctx context.Context, ownerID string) ([]service.Task, error) {
	f.record("ListByOwner")
	if f.ListByOwnerErr != nil {
		return nil, f.ListByOwnerErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append(f.listLocked(ownerID), f.ExtraRecords...), nil
}

// Insert implements service.Storage.
func (f *FakeService) Insert(ctx context.Context, title, ownerID string) (service.Task, error) {
	f.record("Insert")
	if f.InsertErr != nil {
		return service.Task{}, f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.newTask(ownerID, title)
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateCompletion implements service.Storage.
func (f *FakeService) UpdateCompletion(ctx context.Context, ownerID, id string, completed bool) error {
	f.record("UpdateCompletion")
	if f.UpdateCompletionErr != nil {
		return f.UpdateCompletionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			f.tasks[i].IsCompleted = completed
			return nil
		}
	}
	return nil
}

// DeleteByID implements service.Storage.
func (f *FakeService) DeleteByID(ctx context.Context, ownerID, id string) error {
	f.record("DeleteByID")
	if f.DeleteByIDErr != nil {
		return f.DeleteByIDErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}
