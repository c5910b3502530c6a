package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"programscheduler/internal/domain"
)

// WriteServiceError maps a service error onto the response envelope. Anything
// outside the domain taxonomy is logged and reported as a 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		rangeErr     *domain.InvalidRangeError
		validErr     *domain.ValidationError
		conflictErr  *domain.ConflictError
		dependentErr *domain.DependentRecordsError
	)
	switch {
	case errors.As(err, &validErr):
		WriteAPIError(w, http.StatusUnprocessableEntity, &APIError{
			Code: ErrCodeValidation, Message: "reference violation", Fields: validErr.Fields,
		})
	case errors.As(err, &rangeErr):
		WriteAPIError(w, http.StatusUnprocessableEntity, &APIError{
			Code: ErrCodeValidation, Message: "invalid time range",
			Fields: map[string][]string{rangeErr.Field: {rangeErr.Reason}},
		})
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.As(err, &conflictErr):
		refs := make([]domain.SessionRef, 0, len(conflictErr.Conflicts))
		for _, s := range conflictErr.Conflicts {
			refs = append(refs, domain.RefOf(s))
		}
		WriteAPIError(w, http.StatusConflict, &APIError{
			Code: ErrCodeConflict, Message: err.Error(), Conflicts: refs,
		})
	case errors.Is(err, domain.ErrSchedulingConflict):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "the venue is already booked for this time")
	case errors.As(err, &dependentErr):
		WriteJSONError(w, http.StatusConflict, ErrCodeDependentRecords, dependentErr.Error())
	case errors.Is(err, domain.ErrDuplicate):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
