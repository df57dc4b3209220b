package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"sable-ads/internal/core/domain"
)

// brandPayload is the request body for creating or updating a brand.
// Budgets parse from JSON numbers or strings; zero means no cap.
type brandPayload struct {
	Name          string          `json:"name"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
}

type brandResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
}

func toBrandResponse(b domain.Brand) brandResponse {
	return brandResponse{ID: b.ID, Name: b.Name, DailyBudget: b.DailyBudget, MonthlyBudget: b.MonthlyBudget}
}

func (h *Handler) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var in brandPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	b, err := h.svc.CreateBrand(r.Context(), domain.Brand{
		Name:          in.Name,
		DailyBudget:   in.DailyBudget,
		MonthlyBudget: in.MonthlyBudget,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toBrandResponse(*b))
}

func (h *Handler) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.svc.ListBrands(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]brandResponse, 0, len(brands))
	for _, b := range brands {
		out = append(out, toBrandResponse(b))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		http.Error(w, "invalid brand id", http.StatusBadRequest)
		return
	}
	b, err := h.svc.GetBrand(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBrandResponse(*b))
}

func (h *Handler) handleUpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		http.Error(w, "invalid brand id", http.StatusBadRequest)
		return
	}
	var in brandPayload
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	b, err := h.svc.UpdateBrand(r.Context(), domain.Brand{
		ID:            id,
		Name:          in.Name,
		DailyBudget:   in.DailyBudget,
		MonthlyBudget: in.MonthlyBudget,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBrandResponse(*b))
}

// handleDeleteBrand removes a brand; campaigns, schedules and expenses
// under it go with it by cascade.
func (h *Handler) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		http.Error(w, "invalid brand id", http.StatusBadRequest)
		return
	}
	if err = h.svc.DeleteBrand(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
