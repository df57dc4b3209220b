package httpadapter

import (
	"encoding/json"
	"net/http"

	"sable-ads/internal/core/domain"
)

// schedulePayload is the request body for setting a campaign's dayparting
// schedule. Hours describe the half-open interval [start_hour, end_hour);
// end_hour 24 means end of day.
type schedulePayload struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

type scheduleResponse struct {
	CampaignID int64 `json:"campaign_id"`
	StartHour  int   `json:"start_hour"`
	EndHour    int   `json:"end_hour"`
}

// handlePutSchedule creates or replaces the campaign's single schedule.
func (h *Handler) handlePutSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var in schedulePayload
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s, err := h.svc.PutSchedule(r.Context(), domain.Schedule{
		CampaignID: id,
		StartHour:  in.StartHour,
		EndHour:    in.EndHour,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, scheduleResponse{
		CampaignID: s.CampaignID,
		StartHour:  s.StartHour,
		EndHour:    s.EndHour,
	})
}

// handleDeleteSchedule removes the campaign's schedule, lifting the hour
// restriction.
func (h *Handler) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	if err = h.svc.DeleteSchedule(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
