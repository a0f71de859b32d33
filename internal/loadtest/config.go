package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumSignups int           // Number of distinct signups to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON file for the generated signups
	Verbose    bool          // Log every failed request
}

// Signup is one generated (activity, email) pair.
type Signup struct {
	Activity string `json:"activity"`
	Email    string `json:"email"`
}

// Activity mirrors the fields of GET /activities the tool reads.
type Activity struct {
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// errorResponse mirrors the API error body.
type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Stats holds run statistics.
type Stats struct {
	SignupsGenerated  int
	SignupsAccepted   int
	SignupsFull       int
	SignupsFailed     int
	DuplicatesRefused int
	RemovalsAccepted  int
	RemovalsRefused   int
	Mismatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// outcome classifies one HTTP roundtrip.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeRefused
	outcomeFull
	outcomeFailed
)
