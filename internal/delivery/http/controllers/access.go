package controllers

import (
	"net/http"

	"programscheduler/internal/delivery/http/helpers"
	"programscheduler/internal/delivery/http/middleware"
	"programscheduler/internal/domain"
)

// callerAccess returns the authenticated caller's scope or writes a 401.
func callerAccess(w http.ResponseWriter, r *http.Request) (domain.AccessContext, bool) {
	access, ok := middleware.AccessFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.AccessContext{}, false
	}
	return access, true
}

// StatusResponse is the data payload of delete endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

var deleted = StatusResponse{Status: "deleted"}
