package crm

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aushadhi-pos/aushadhi-pos/internal/auth"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

// Handler exposes customer summary endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers CRM routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.list)
	r.Get("/customers/due", h.due)
	r.Post("/customers/reminder", h.reminder)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	customers, err := h.service.Customers(r.Context(), id.AccountID, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if customers == nil {
		customers = []CustomerSummary{}
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) due(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	customers, err := h.service.DueCustomers(r.Context(), id.AccountID)
	if err != nil {
		h.logger.Error("list due customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if customers == nil {
		customers = []CustomerSummary{}
	}
	httpx.JSON(w, http.StatusOK, customers)
}

type reminderResponse struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *Handler) reminder(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var customer CustomerSummary
	if err := httpx.DecodeJSON(r, &customer); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if customer.Phone == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "phone is required")
		return
	}
	message, err := h.service.ReminderMessage(r.Context(), id.AccountID, customer)
	if err != nil {
		h.logger.Error("build reminder", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reminderResponse{
		Phone:   NormalizePhone(customer.Phone),
		Message: message,
	})
}
