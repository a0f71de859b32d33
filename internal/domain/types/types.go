// Package types contains the JSON shapes shared by the API and its clients.
package types

// Activity is the public view of one activity in GET /activities.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft reports remaining capacity, never below zero.
func (a Activity) SpotsLeft() int {
	if left := a.MaxParticipants - len(a.Participants); left > 0 {
		return left
	}
	return 0
}

// Message is the success body returned by roster mutations.
type Message struct {
	Message string `json:"message"`
}
