package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sable-ads/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds a BudgetUseCase to execute business logic and a logger for
// structured logging. Routes are registered on a chi.Router for convenient
// method handling.
type Handler struct {
	svc    port.BudgetUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. It accepts a
// BudgetUseCase implementation and a logger. The returned Handler registers
// handlers for each endpoint on a new chi.Router.
func NewHandler(svc port.BudgetUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/brands", func(r chi.Router) {
			r.Post("/", h.handleCreateBrand)
			r.Get("/", h.handleListBrands)
			r.Route("/{brandID}", func(r chi.Router) {
				r.Get("/", h.handleGetBrand)
				r.Put("/", h.handleUpdateBrand)
				r.Delete("/", h.handleDeleteBrand)
				r.Post("/campaigns", h.handleCreateCampaign)
			})
		})
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.handleListCampaigns)
			r.Route("/{campaignID}", func(r chi.Router) {
				r.Get("/", h.handleGetCampaign)
				r.Put("/", h.handleUpdateCampaign)
				r.Delete("/", h.handleDeleteCampaign)
				r.Put("/schedule", h.handlePutSchedule)
				r.Delete("/schedule", h.handleDeleteSchedule)
				r.Post("/authorize", h.handleAuthorize)
				r.Post("/spend", h.handleRecordSpend)
				r.Get("/headroom", h.handleHeadroom)
				r.Get("/expenses", h.handleListExpenses)
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
