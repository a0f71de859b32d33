// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// RosterChange identifies the kind of roster mutation.
type RosterChange string

// Roster change kinds.
const (
	ChangeSignup  RosterChange = "signup"
	ChangeRemoval RosterChange = "removal"
)

// RosterEvent records one applied roster mutation.
type RosterEvent struct {
	ID       string       `json:"id"`
	Kind     RosterChange `json:"kind"`
	Activity string       `json:"activity"`
	Email    string       `json:"email"`
	// Enrolled is the roster size right after the change.
	Enrolled int       `json:"enrolled"`
	At       time.Time `json:"at"`
}

// NewRosterEvent stamps a new event with a random id and the current time.
func NewRosterEvent(kind RosterChange, activity, email string, enrolled int) RosterEvent {
	return RosterEvent{
		ID:       uuid.NewString(),
		Kind:     kind,
		Activity: activity,
		Email:    email,
		Enrolled: enrolled,
		At:       time.Now().UTC(),
	}
}
