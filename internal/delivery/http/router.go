package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"programscheduler/internal/delivery/http/controllers"
	"programscheduler/internal/delivery/http/helpers"
	"programscheduler/internal/delivery/http/middleware"
	"programscheduler/internal/domain"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps bundles what NewRouter wires together.
type RouterDeps struct {
	Schedule *controllers.ScheduleController
	Program  *controllers.ProgramController
	Import   *controllers.ImportController
	Verifier domain.TokenVerifier
	DB       Pinger
	Metrics  http.Handler
	Logger   *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)

	// Days and schedule
	mux.HandleFunc("POST /events/{eventID}/days/generate", auth(d.Schedule.GenerateDays))
	mux.HandleFunc("GET /events/{eventID}/days", auth(d.Schedule.ListEventDays))
	mux.HandleFunc("POST /events/{eventID}/days", auth(d.Schedule.CreateEventDay))
	mux.HandleFunc("DELETE /days/{dayID}", auth(d.Schedule.DeleteEventDay))
	mux.HandleFunc("GET /days/{dayID}/schedule", auth(d.Schedule.GetDaySchedule))

	// Venues
	mux.HandleFunc("GET /days/{dayID}/venues", auth(d.Schedule.ListVenues))
	mux.HandleFunc("POST /days/{dayID}/venues", auth(d.Schedule.CreateVenue))
	mux.HandleFunc("DELETE /venues/{venueID}", auth(d.Schedule.DeleteVenue))
	mux.HandleFunc("GET /venues/{venueID}/conflicts", auth(d.Schedule.GetVenueConflicts))
	mux.HandleFunc("POST /venues/{venueID}/conflicts/check", auth(d.Program.CheckConflict))

	// Categories
	mux.HandleFunc("GET /events/{eventID}/categories", auth(d.Schedule.ListCategories))
	mux.HandleFunc("POST /events/{eventID}/categories", auth(d.Schedule.CreateCategory))
	mux.HandleFunc("DELETE /categories/{categoryID}", auth(d.Schedule.DeleteCategory))

	// Sessions and presentations
	mux.HandleFunc("POST /events/{eventID}/sessions", auth(d.Program.CreateSession))
	mux.HandleFunc("GET /sessions/{sessionID}", auth(d.Program.GetSession))
	mux.HandleFunc("PUT /sessions/{sessionID}", auth(d.Program.UpdateSession))
	mux.HandleFunc("DELETE /sessions/{sessionID}", auth(d.Program.DeleteSession))
	mux.HandleFunc("POST /sessions/{sessionID}/presentations", auth(d.Program.CreatePresentation))
	mux.HandleFunc("PUT /presentations/{presentationID}", auth(d.Program.UpdatePresentation))
	mux.HandleFunc("DELETE /presentations/{presentationID}", auth(d.Program.DeletePresentation))

	// Import
	mux.HandleFunc("POST /events/{eventID}/import/sessionize/{sessionizeID}", auth(d.Import.ImportSessionize))

	// Operations
	mux.HandleFunc("GET /health", health(d.DB, d.Logger))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// HealthResponse is the data payload of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// health godoc
// @Summary Liveness and database reachability
// @Tags operations
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "data.status: degraded"
// @Router /health [get]
func health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Database: "unknown"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.WarnContext(r.Context(), "health check failed", "err", err)
			helpers.WriteJSONSuccess(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unreachable"})
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
	}
}
