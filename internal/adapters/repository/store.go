// Package repository defines the activity registry store and its errors.
package repository

import "context"

// Record is one activity and its roster.
type Record struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// Store provides read/write access to the activity registry.
type Store interface {
	// List returns every activity ordered by name. Records are copies.
	List(ctx context.Context) []Record

	// Get returns one activity. Returns ErrActivityNotFound if unknown.
	Get(ctx context.Context, name string) (Record, error)

	// Signup appends email to the activity roster and returns the new roster size.
	// Returns ErrActivityNotFound, ErrAlreadySignedUp or ErrActivityFull.
	Signup(ctx context.Context, name, email string) (int, error)

	// Remove deletes email from the activity roster and returns the new roster size.
	// Returns ErrActivityNotFound or ErrNotSignedUp.
	Remove(ctx context.Context, name, email string) (int, error)

	// Count returns the number of activities.
	Count(ctx context.Context) int

	// Participants returns the number of enrollments across all activities.
	Participants(ctx context.Context) int
}
