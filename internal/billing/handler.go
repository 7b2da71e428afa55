package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/auth"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

// Handler exposes bill reconstruction endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bills/{billID}", h.show)
	r.Get("/bills/{billID}/receipt", h.receipt)
}

func (h *Handler) loadBill(w http.ResponseWriter, r *http.Request) *Bill {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil
	}
	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "bill id must be a UUID")
		return nil
	}
	bill, err := h.service.Reconstruct(r.Context(), id.AccountID, billID)
	if err != nil {
		h.logger.Error("reconstruct bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return nil
	}
	return bill
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	if bill := h.loadBill(w, r); bill != nil {
		httpx.JSON(w, http.StatusOK, bill)
	}
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	bill := h.loadBill(w, r)
	if bill == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Render(bill)))
}
