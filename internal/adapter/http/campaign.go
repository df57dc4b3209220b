package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"sable-ads/internal/core/domain"
)

// campaignPayload is the request body for creating or updating a campaign.
// Dates use YYYY-MM-DD; an absent date leaves the window unbounded on that
// side. Zero budgets defer to the brand caps.
type campaignPayload struct {
	Name          string          `json:"name"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Active        *bool           `json:"active"`
	StartDate     string          `json:"start_date,omitempty"`
	EndDate       string          `json:"end_date,omitempty"`
}

func (p campaignPayload) toDomain() (domain.Campaign, error) {
	c := domain.Campaign{
		Name:          p.Name,
		DailyBudget:   p.DailyBudget,
		MonthlyBudget: p.MonthlyBudget,
		Active:        true,
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	var err error
	if c.StartDate, err = parseDate(p.StartDate); err != nil {
		return c, &domain.FieldError{Field: "start_date", Reason: "must be YYYY-MM-DD"}
	}
	if c.EndDate, err = parseDate(p.EndDate); err != nil {
		return c, &domain.FieldError{Field: "end_date", Reason: "must be YYYY-MM-DD"}
	}
	return c, nil
}

type campaignResponse struct {
	ID            int64           `json:"id"`
	BrandID       int64           `json:"brand_id"`
	Name          string          `json:"name"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Active        bool            `json:"active"`
	StartDate     string          `json:"start_date,omitempty"`
	EndDate       string          `json:"end_date,omitempty"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	out := campaignResponse{
		ID:            c.ID,
		BrandID:       c.BrandID,
		Name:          c.Name,
		DailyBudget:   c.DailyBudget,
		MonthlyBudget: c.MonthlyBudget,
		Active:        c.Active,
	}
	if c.StartDate != nil {
		out.StartDate = c.StartDate.Format(dateLayout)
	}
	if c.EndDate != nil {
		out.EndDate = c.EndDate.Format(dateLayout)
	}
	return out
}

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	brandID, err := idParam(r, "brandID")
	if err != nil {
		http.Error(w, "invalid brand id", http.StatusBadRequest)
		return
	}
	var in campaignPayload
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := in.toDomain()
	if err != nil {
		h.writeError(w, err)
		return
	}
	c.BrandID = brandID
	created, err := h.svc.CreateCampaign(r.Context(), c)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCampaignResponse(*created))
}

// handleListCampaigns lists campaigns, optionally limited to one brand via
// the brand_id query parameter.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	var brandID *int64
	if s := r.URL.Query().Get("brand_id"); s != "" {
		id, err := parseID(s)
		if err != nil {
			http.Error(w, "invalid brand_id", http.StatusBadRequest)
			return
		}
		brandID = &id
	}
	campaigns, err := h.svc.ListCampaigns(r.Context(), brandID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]campaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, toCampaignResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	c, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(*c))
}

func (h *Handler) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var in campaignPayload
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := in.toDomain()
	if err != nil {
		h.writeError(w, err)
		return
	}
	c.ID = id
	updated, err := h.svc.UpdateCampaign(r.Context(), c)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(*updated))
}

func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	if err = h.svc.DeleteCampaign(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
