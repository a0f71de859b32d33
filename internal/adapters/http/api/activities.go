package api

import (
	"context"
	"net/http"

	"github.com/okian/mergington/internal/domain/types"
)

// ActivityDependencies defines the registry operations the handlers need.
type ActivityDependencies interface {
	ListActivities(ctx context.Context) map[string]types.Activity
	Signup(ctx context.Context, activity, email string) (string, error)
	Remove(ctx context.Context, activity, email string) (string, error)
}

// ActivitiesHandler serves the activity and roster routes.
type ActivitiesHandler struct {
	deps ActivityDependencies
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps ActivityDependencies) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps}
}

// HandleList handles GET /activities requests.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ListActivities(r.Context()))
}

// HandleSignup handles POST /activities/{activity_name}/signup requests.
func (h *ActivitiesHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	const op = "api.signup"
	params := participantParamsFrom(r)
	if err := params.validate(); err != nil {
		writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}

	msg, err := h.deps.Signup(r.Context(), params.Activity, params.Email)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.Message{Message: msg})
}

// HandleRemove handles DELETE /activities/{activity_name}/participants requests.
func (h *ActivitiesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove"
	params := participantParamsFrom(r)
	if err := params.validate(); err != nil {
		writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}

	msg, err := h.deps.Remove(r.Context(), params.Activity, params.Email)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.Message{Message: msg})
}
