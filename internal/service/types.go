package service

import "time"

// Task represents a single task record.
type Task struct {
	ID          string
	Title       string
	IsCompleted bool
	OwnerID     string
	CreatedAt   time.Time
}

// User holds the identity claims of a signed-in account.
type User struct {
	ID    string
	Email string
}

// Session is the authenticated identity scoping all task operations.
// It is a value; copies cannot affect the gate that produced it.
type Session struct {
	UserID string
	Email  string
}

// Valid reports whether the session carries a user.
func (s Session) Valid() bool {
	return s.UserID != ""
}
