package controllers

import (
	"log/slog"
	"net/http"

	"programscheduler/internal/delivery/http/helpers"
	"programscheduler/internal/domain"
)

type ProgramController struct {
	Logger  *slog.Logger
	Service domain.ProgramService
}

func NewProgramController(logger *slog.Logger, svc domain.ProgramService) *ProgramController {
	return &ProgramController{
		Logger:  logger,
		Service: svc,
	}
}

// CheckConflictRequest is the request body for POST /venues/{venueID}/conflicts/check.
type CheckConflictRequest struct {
	StartTime        string `json:"start_time" validate:"required" example:"09:00"`
	EndTime          string `json:"end_time" validate:"required" example:"10:30"`
	ExcludeSessionID string `json:"exclude_session_id" validate:"omitempty,uuid"`
}

// ConflictCheckSuccessResponse is the success envelope for the conflict check (200).
type ConflictCheckSuccessResponse struct {
	Data  *domain.ConflictCheck `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CheckConflict godoc
// @Summary Check a time range against a venue
// @Description Reports the sessions in the venue that overlap [start_time, end_time). Ranges that only touch do not conflict.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Param range body CheckConflictRequest true "Candidate range"
// @Success 200 {object} controllers.ConflictCheckSuccessResponse
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /venues/{venueID}/conflicts/check [post]
func (c *ProgramController) CheckConflict(w http.ResponseWriter, r *http.Request) {
	venueID, ok := helpers.PathUUID(w, r, "venueID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req CheckConflictRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	check, err := c.Service.CheckSessionConflict(r.Context(), access, venueID, req.StartTime, req.EndTime, req.ExcludeSessionID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, check)
}

// SessionRequest is the request body for creating or replacing a program session.
type SessionRequest struct {
	VenueID      string             `json:"venue_id" validate:"required"`
	Title        string             `json:"title" validate:"required,max=500"`
	Description  string             `json:"description"`
	StartTime    string             `json:"start_time" validate:"required" example:"09:00"`
	EndTime      string             `json:"end_time" validate:"required" example:"10:30"`
	Type         domain.SessionType `json:"session_type" enums:"plenary,parallel,workshop,poster,break,lunch,social,keynote,panel"`
	IsBreak      bool               `json:"is_break"`
	IsFeatured   bool               `json:"is_featured"`
	SponsorID    *string            `json:"sponsor_id"`
	CategoryIDs  []string           `json:"category_ids"`
	ModeratorIDs []string           `json:"moderator_ids"`
	SortOrder    int                `json:"sort_order"`
}

func (req SessionRequest) input() domain.SessionInput {
	return domain.SessionInput{
		VenueID:      req.VenueID,
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Type:         req.Type,
		IsBreak:      req.IsBreak,
		IsFeatured:   req.IsFeatured,
		SponsorID:    req.SponsorID,
		CategoryIDs:  req.CategoryIDs,
		ModeratorIDs: req.ModeratorIDs,
		SortOrder:    req.SortOrder,
	}
}

// SessionSuccessResponse is the success envelope for endpoints returning one session.
type SessionSuccessResponse struct {
	Data  *domain.ProgramSession `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// CreateSession godoc
// @Summary Book a program session
// @Description Validates the range (15 to 480 minutes), references (venue, sponsor, categories, moderators must belong to the event) and the venue's free time.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param session body SessionRequest true "Session"
// @Success 201 {object} controllers.SessionSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, error.conflicts lists overlapping sessions"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed, error.fields per field"
// @Router /events/{eventID}/sessions [post]
func (c *ProgramController) CreateSession(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req SessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.CreateSession(r.Context(), access, eventID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, session)
}

// GetSession godoc
// @Summary Get a program session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.SessionSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sessions/{sessionID} [get]
func (c *ProgramController) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := helpers.PathUUID(w, r, "sessionID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	session, err := c.Service.GetSession(r.Context(), access, sessionID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// UpdateSession godoc
// @Summary Replace a program session
// @Description Moves or edits a booking. The session's own range is ignored by the conflict check; participants are notified when the venue or time changes.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Param session body SessionRequest true "Session"
// @Success 200 {object} controllers.SessionSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /sessions/{sessionID} [put]
func (c *ProgramController) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := helpers.PathUUID(w, r, "sessionID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req SessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.UpdateSession(r.Context(), access, sessionID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// DeleteSession godoc
// @Summary Delete a program session
// @Description Fails while the session has presentations.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 409 {object} helpers.APIResponse "error.code: dependent_records"
// @Router /sessions/{sessionID} [delete]
func (c *ProgramController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := helpers.PathUUID(w, r, "sessionID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteSession(r.Context(), access, sessionID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}

// SpeakerRequest assigns a participant to a presentation.
type SpeakerRequest struct {
	ParticipantID string             `json:"participant_id" validate:"required"`
	Role          domain.SpeakerRole `json:"role" enums:"primary,co_speaker,discussant,secondary,moderator"`
	SortOrder     int                `json:"sort_order"`
}

// PresentationRequest is the request body for creating or replacing a presentation.
type PresentationRequest struct {
	Title     string                  `json:"title" validate:"required,max=500"`
	Abstract  *string                 `json:"abstract"`
	Type      domain.PresentationType `json:"presentation_type" enums:"oral,poster,keynote,panel,workshop"`
	StartTime string                  `json:"start_time" validate:"required" example:"09:00"`
	EndTime   string                  `json:"end_time" validate:"required" example:"09:20"`
	Speakers  []SpeakerRequest        `json:"speakers" validate:"dive"`
	SponsorID *string                 `json:"sponsor_id"`
	SortOrder int                     `json:"sort_order"`
}

func (req PresentationRequest) input() domain.PresentationInput {
	speakers := make([]domain.SpeakerAssignment, 0, len(req.Speakers))
	for _, s := range req.Speakers {
		speakers = append(speakers, domain.SpeakerAssignment{ParticipantID: s.ParticipantID, Role: s.Role, SortOrder: s.SortOrder})
	}
	return domain.PresentationInput{
		Title:     req.Title,
		Abstract:  req.Abstract,
		Type:      req.Type,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Speakers:  speakers,
		SponsorID: req.SponsorID,
		SortOrder: req.SortOrder,
	}
}

// PresentationSuccessResponse is the success envelope for endpoints returning one presentation.
type PresentationSuccessResponse struct {
	Data  *domain.Presentation `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CreatePresentation godoc
// @Summary Add a presentation to a session
// @Description The presentation's range must lie inside the session's range. Speakers must be participants of the event.
// @Tags presentations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Param presentation body PresentationRequest true "Presentation"
// @Success 201 {object} controllers.PresentationSuccessResponse
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /sessions/{sessionID}/presentations [post]
func (c *ProgramController) CreatePresentation(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := helpers.PathUUID(w, r, "sessionID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req PresentationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.CreatePresentation(r.Context(), access, sessionID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, p)
}

// UpdatePresentation godoc
// @Summary Replace a presentation
// @Tags presentations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param presentationID path string true "Presentation ID (UUID)"
// @Param presentation body PresentationRequest true "Presentation"
// @Success 200 {object} controllers.PresentationSuccessResponse
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /presentations/{presentationID} [put]
func (c *ProgramController) UpdatePresentation(w http.ResponseWriter, r *http.Request) {
	presentationID, ok := helpers.PathUUID(w, r, "presentationID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req PresentationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.UpdatePresentation(r.Context(), access, presentationID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// DeletePresentation godoc
// @Summary Delete a presentation
// @Tags presentations
// @Produce json
// @Security BearerAuth
// @Param presentationID path string true "Presentation ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Router /presentations/{presentationID} [delete]
func (c *ProgramController) DeletePresentation(w http.ResponseWriter, r *http.Request) {
	presentationID, ok := helpers.PathUUID(w, r, "presentationID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeletePresentation(r.Context(), access, presentationID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}
