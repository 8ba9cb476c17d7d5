// Package service defines the backend-agnostic contracts for the identity
// and task storage collaborators.
package service

import "context"

// Identity resolves and manages the authenticated user.
// Commands and the session gate never import a backend SDK directly.
type Identity interface {
	// CurrentUser returns the active user.
	// A nil user with a nil error means nobody is signed in.
	CurrentUser(ctx context.Context) (*User, error)

	// SignOut terminates the current session.
	SignOut(ctx context.Context) error

	// SignInWithCredentials starts a session from an email and password.
	SignInWithCredentials(ctx context.Context, email, password string) error

	// SignUp registers a new account.
	SignUp(ctx context.Context, email, password string) error
}

// Storage is the remote table of task records.
type Storage interface {
	// ListByOwner returns all tasks owned by ownerID, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Task, error)

	// Insert creates a task. The store assigns ID and CreatedAt.
	Insert(ctx context.Context, title, ownerID string) (Task, error)

	// UpdateCompletion sets the completion flag of a task owned by ownerID.
	UpdateCompletion(ctx context.Context, ownerID, id string, completed bool) error

	// DeleteByID deletes a task owned by ownerID.
	DeleteByID(ctx context.Context, ownerID, id string) error
}

// Service is a complete backend: one identity and one storage collaborator.
type Service interface {
	Identity
	Storage
}
