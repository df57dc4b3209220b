package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sable-ads/internal/core/domain"
	"sable-ads/internal/core/engine"
	"sable-ads/internal/core/port"
)

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and move on
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps domain and port errors onto HTTP statuses. Validation
// failures are the caller's fault; not-found and duplicate conditions map
// to 404 and 409; anything else is logged and reported as a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *engine.ValidationError
	var ferr *domain.FieldError
	switch {
	case errors.As(err, &verr), errors.As(err, &ferr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, port.ErrBrandNotFound),
		errors.Is(err, port.ErrCampaignNotFound),
		errors.Is(err, port.ErrScheduleNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, port.ErrDuplicateBrand),
		errors.Is(err, port.ErrDuplicateExpense):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// idParam parses a path parameter as an int64 id.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

const dateLayout = "2006-01-02"

// parseDate parses an optional YYYY-MM-DD value. An empty string returns
// nil without error.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseAt parses an optional RFC3339 `at` query parameter. A zero time is
// returned when absent, which downstream code treats as "now".
func parseAt(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("at")
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
