package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"sable-ads/internal/core/domain"
	"sable-ads/internal/core/port"
)

// spendPayload is the request body for authorizing or recording a spend.
// Ref is an optional idempotency token, At an optional RFC3339 evaluation
// instant defaulting to now.
type spendPayload struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
	Ref    string          `json:"ref,omitempty"`
	At     string          `json:"at,omitempty"`
}

func (p spendPayload) at() (time.Time, error) {
	if p.At == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, p.At)
}

// handleAuthorize is the dry run: it returns the decision and the
// four-scope headroom report without recording anything. Denials are a
// normal 200 response; only malformed input is an HTTP error.
func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var in spendPayload
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	at, err := in.at()
	if err != nil {
		http.Error(w, "invalid 'at' timestamp", http.StatusBadRequest)
		return
	}
	res, err := h.svc.Authorize(r.Context(), id, in.Amount, at)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// handleRecordSpend authorizes and, when allowed, records the expense.
func (h *Handler) handleRecordSpend(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var in spendPayload
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	at, err := in.at()
	if err != nil {
		http.Error(w, "invalid 'at' timestamp", http.StatusBadRequest)
		return
	}
	res, err := h.svc.RecordSpend(r.Context(), port.RecordSpendReq{
		CampaignID: id,
		Ref:        in.Ref,
		Amount:     in.Amount,
		Notes:      in.Notes,
		At:         at,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// handleHeadroom returns the four-scope headroom report for a campaign at
// an optional `at` instant (RFC3339, default now).
func (h *Handler) handleHeadroom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	at, err := parseAt(r)
	if err != nil {
		http.Error(w, "invalid 'at' timestamp", http.StatusBadRequest)
		return
	}
	rep, err := h.svc.Headroom(r.Context(), id, at)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

type expenseResponse struct {
	ID         int64           `json:"id"`
	CampaignID int64           `json:"campaign_id"`
	Ref        string          `json:"ref"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Notes      string          `json:"notes,omitempty"`
}

// handleListExpenses lists a campaign's expenses for an optional
// from/to date range (YYYY-MM-DD, default the current month to date).
func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	now := time.Now()
	from := domain.MonthStart(now)
	to := now
	if p, err := parseDate(q.Get("from")); err != nil {
		http.Error(w, "invalid 'from' date", http.StatusBadRequest)
		return
	} else if p != nil {
		from = *p
	}
	if p, err := parseDate(q.Get("to")); err != nil {
		http.Error(w, "invalid 'to' date", http.StatusBadRequest)
		return
	} else if p != nil {
		to = *p
	}
	expenses, err := h.svc.ListExpenses(r.Context(), id, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:         e.ID,
			CampaignID: e.CampaignID,
			Ref:        e.Ref,
			Amount:     e.Amount,
			Date:       e.Date.Format(dateLayout),
			Notes:      e.Notes,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
