package api

import (
	"errors"
	"net/http"
	"strings"
)

// participantParams carries the inputs of the signup and removal routes.
type participantParams struct {
	Activity string
	Email    string
}

func participantParamsFrom(r *http.Request) participantParams {
	return participantParams{
		Activity: r.PathValue("activity_name"),
		Email:    strings.TrimSpace(r.URL.Query().Get("email")),
	}
}

// validate checks presence only. The email format is not inspected.
func (p participantParams) validate() error {
	switch {
	case strings.TrimSpace(p.Activity) == "":
		return errors.New("missing activity name")
	case p.Email == "":
		return errors.New("missing email query parameter")
	}
	return nil
}
