package controllers

import (
	"log/slog"
	"net/http"
	"regexp"

	"programscheduler/internal/delivery/http/helpers"
	"programscheduler/internal/domain"
)

// sessionizeIDPattern matches Sessionize endpoint ids (short lowercase alphanumerics).
var sessionizeIDPattern = regexp.MustCompile(`^[a-z0-9]{4,32}$`)

type ImportController struct {
	Logger  *slog.Logger
	Service domain.ImportService
}

func NewImportController(logger *slog.Logger, svc domain.ImportService) *ImportController {
	return &ImportController{
		Logger:  logger,
		Service: svc,
	}
}

// ImportReportSuccessResponse is the success envelope for the Sessionize import (200).
type ImportReportSuccessResponse struct {
	Data  *domain.ImportReport `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ImportSessionize godoc
// @Summary Import schedule from Sessionize
// @Description Books the GridSmart schedule of a Sessionize event: dates become days, rooms become venues, sessions are booked through the usual validation and conflict checks. Sessions that cannot be booked are listed in data.skipped.
// @Tags import
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param sessionizeID path string true "Sessionize endpoint ID"
// @Success 200 {object} controllers.ImportReportSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/import/sessionize/{sessionizeID} [post]
func (c *ImportController) ImportSessionize(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	sessionizeID := r.PathValue("sessionizeID")
	if !sessionizeIDPattern.MatchString(sessionizeID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid sessionizeID")
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	report, err := c.Service.ImportSessionize(r.Context(), access, eventID, sessionizeID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}
