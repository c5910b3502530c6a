package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"programscheduler/internal/delivery/http/helpers"
	"programscheduler/internal/domain"
)

const dateLayout = "2006-01-02"

type ScheduleController struct {
	Logger  *slog.Logger
	Service domain.ScheduleService
}

func NewScheduleController(logger *slog.Logger, svc domain.ScheduleService) *ScheduleController {
	return &ScheduleController{
		Logger:  logger,
		Service: svc,
	}
}

// GenerateDaysRequest is the request body for POST /events/{eventID}/days/generate.
type GenerateDaysRequest struct {
	Strategy     domain.DayGenerationStrategy `json:"strategy" validate:"required" enums:"all_days,business_days,custom"`
	CustomDates  []string                     `json:"custom_dates" validate:"omitempty,dive,datetime=2006-01-02"`
	TitleFormat  domain.DayTitleFormat        `json:"title_format" enums:"day_number,date,custom"`
	CustomTitles []string                     `json:"custom_titles" validate:"omitempty,dive,max=255"`
}

// EventDaysSuccessResponse is the success envelope for endpoints returning event days.
type EventDaysSuccessResponse struct {
	Data  []*domain.EventDay `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GenerateDays godoc
// @Summary Generate event days
// @Description Creates one event day per date selected by the strategy. Dates that already have a day are skipped; all days of the event are renumbered by date afterwards.
// @Tags days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param options body GenerateDaysRequest true "Generation options"
// @Success 201 {object} controllers.EventDaysSuccessResponse "data contains the created days"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/{eventID}/days/generate [post]
func (c *ScheduleController) GenerateDays(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req GenerateDaysRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	opts := domain.GenerateDaysOptions{
		Strategy:     req.Strategy,
		TitleFormat:  req.TitleFormat,
		CustomTitles: req.CustomTitles,
	}
	for _, s := range req.CustomDates {
		d, _ := time.Parse(dateLayout, s) // format checked by the validator
		opts.CustomDates = append(opts.CustomDates, d)
	}
	days, err := c.Service.GenerateDays(r.Context(), access, eventID, opts)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, days)
}

// CreateEventDayRequest is the request body for POST /events/{eventID}/days.
type CreateEventDayRequest struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02" example:"2025-06-15"`
	Title string `json:"title" validate:"max=255"`
}

// EventDaySuccessResponse is the success envelope for POST /events/{eventID}/days (201).
type EventDaySuccessResponse struct {
	Data  *domain.EventDay  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEventDay godoc
// @Summary Add a single event day
// @Description The date must fall inside the event's range. An empty title defaults to the date.
// @Tags days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param day body CreateEventDayRequest true "Day"
// @Success 201 {object} controllers.EventDaySuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (date already exists)"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/{eventID}/days [post]
func (c *ScheduleController) CreateEventDay(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req CreateEventDayRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)
	day, err := c.Service.CreateEventDay(r.Context(), access, eventID, domain.DayInput{Date: date, Title: req.Title})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, day)
}

// ListEventDays godoc
// @Summary List event days
// @Tags days
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDaysSuccessResponse "days ordered by sort_order"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/days [get]
func (c *ScheduleController) ListEventDays(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	days, err := c.Service.ListEventDays(r.Context(), access, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, days)
}

// DeleteEventDay godoc
// @Summary Delete an event day
// @Description Fails while any venue of the day still has sessions. Empty venues are removed with the day.
// @Tags days
// @Produce json
// @Security BearerAuth
// @Param dayID path string true "Day ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 409 {object} helpers.APIResponse "error.code: dependent_records"
// @Router /days/{dayID} [delete]
func (c *ScheduleController) DeleteEventDay(w http.ResponseWriter, r *http.Request) {
	dayID, ok := helpers.PathUUID(w, r, "dayID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEventDay(r.Context(), access, dayID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}

// DayScheduleSuccessResponse is the success envelope for GET /days/{dayID}/schedule (200).
type DayScheduleSuccessResponse struct {
	Data  *domain.DaySchedule `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetDaySchedule godoc
// @Summary Day schedule grid
// @Description Venues in display order and sessions bucketed by start time (HH:MM).
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param dayID path string true "Day ID (UUID)"
// @Success 200 {object} controllers.DayScheduleSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /days/{dayID}/schedule [get]
func (c *ScheduleController) GetDaySchedule(w http.ResponseWriter, r *http.Request) {
	dayID, ok := helpers.PathUUID(w, r, "dayID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	schedule, err := c.Service.BuildDaySchedule(r.Context(), access, dayID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, schedule)
}

// CreateVenueRequest is the request body for POST /days/{dayID}/venues.
type CreateVenueRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	DisplayName string `json:"display_name" validate:"max=255"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	SortOrder   int    `json:"sort_order"`
}

// VenueSuccessResponse is the success envelope for POST /days/{dayID}/venues (201).
type VenueSuccessResponse struct {
	Data  *domain.Venue     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// VenuesSuccessResponse is the success envelope for GET /days/{dayID}/venues (200).
type VenuesSuccessResponse struct {
	Data  []*domain.Venue   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateVenue godoc
// @Summary Add a venue to a day
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayID path string true "Day ID (UUID)"
// @Param venue body CreateVenueRequest true "Venue"
// @Success 201 {object} controllers.VenueSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name already used on this day)"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /days/{dayID}/venues [post]
func (c *ScheduleController) CreateVenue(w http.ResponseWriter, r *http.Request) {
	dayID, ok := helpers.PathUUID(w, r, "dayID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req CreateVenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	venue, err := c.Service.CreateVenue(r.Context(), access, dayID, domain.VenueInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Capacity:    req.Capacity,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, venue)
}

// ListVenues godoc
// @Summary List a day's venues
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param dayID path string true "Day ID (UUID)"
// @Success 200 {object} controllers.VenuesSuccessResponse
// @Router /days/{dayID}/venues [get]
func (c *ScheduleController) ListVenues(w http.ResponseWriter, r *http.Request) {
	dayID, ok := helpers.PathUUID(w, r, "dayID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	venues, err := c.Service.ListVenues(r.Context(), access, dayID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venues)
}

// DeleteVenue godoc
// @Summary Delete a venue
// @Description Fails while the venue has sessions.
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 409 {object} helpers.APIResponse "error.code: dependent_records"
// @Router /venues/{venueID} [delete]
func (c *ScheduleController) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	venueID, ok := helpers.PathUUID(w, r, "venueID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteVenue(r.Context(), access, venueID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}

// VenueConflictReportSuccessResponse is the success envelope for GET /venues/{venueID}/conflicts (200).
type VenueConflictReportSuccessResponse struct {
	Data  *domain.VenueConflictReport `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// GetVenueConflicts godoc
// @Summary Overlap report for a venue
// @Description Lists every pair of existing bookings in the venue that overlap, with the overlap in minutes.
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Success 200 {object} controllers.VenueConflictReportSuccessResponse
// @Router /venues/{venueID}/conflicts [get]
func (c *ScheduleController) GetVenueConflicts(w http.ResponseWriter, r *http.Request) {
	venueID, ok := helpers.PathUUID(w, r, "venueID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	report, err := c.Service.VenueConflictReport(r.Context(), access, venueID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// CreateCategoryRequest is the request body for POST /events/{eventID}/categories.
type CreateCategoryRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	SortOrder int    `json:"sort_order"`
}

// CategorySuccessResponse is the success envelope for POST /events/{eventID}/categories (201).
type CategorySuccessResponse struct {
	Data  *domain.ProgramSessionCategory `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// CategoriesSuccessResponse is the success envelope for GET /events/{eventID}/categories (200).
type CategoriesSuccessResponse struct {
	Data  []*domain.ProgramSessionCategory `json:"data"`
	Error *helpers.APIError                `json:"error"`
}

// CreateCategory godoc
// @Summary Create a session category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param category body CreateCategoryRequest true "Category"
// @Success 201 {object} controllers.CategorySuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name already used in this event)"
// @Router /events/{eventID}/categories [post]
func (c *ScheduleController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.CreateCategory(r.Context(), access, eventID, domain.CategoryInput{
		Name:      req.Name,
		Color:     req.Color,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, category)
}

// ListCategories godoc
// @Summary List session categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CategoriesSuccessResponse
// @Router /events/{eventID}/categories [get]
func (c *ScheduleController) ListCategories(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	categories, err := c.Service.ListCategories(r.Context(), access, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// DeleteCategory godoc
// @Summary Delete a session category
// @Description Fails while any session references the category.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param categoryID path string true "Category ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 409 {object} helpers.APIResponse "error.code: dependent_records"
// @Router /categories/{categoryID} [delete]
func (c *ScheduleController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := helpers.PathUUID(w, r, "categoryID")
	if !ok {
		return
	}
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteCategory(r.Context(), access, categoryID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, deleted)
}
