package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aushadhi-pos/aushadhi-pos/internal/auth"
	"github.com/aushadhi-pos/aushadhi-pos/internal/billing"
	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/crm"
	"github.com/aushadhi-pos/aushadhi-pos/internal/observability"
	"github.com/aushadhi-pos/aushadhi-pos/internal/reports"
	"github.com/aushadhi-pos/aushadhi-pos/internal/sales"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
	"github.com/aushadhi-pos/aushadhi-pos/internal/subscription"
	"github.com/aushadhi-pos/aushadhi-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthHandler         *auth.Handler
	AuthMiddleware      auth.Middleware
	SubscriptionGate    *subscription.Gate
	CatalogHandler      *catalog.Handler
	SalesHandler        *sales.Handler
	SettingsHandler     *settings.Handler
	BillingHandler      *billing.Handler
	CRMHandler          *crm.Handler
	SubscriptionHandler *subscription.Handler
	ReportsHandler      *reports.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router for the POS API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)

		// Billing endpoints stay reachable so an expired account can renew.
		if params.SubscriptionHandler != nil {
			params.SubscriptionHandler.MountRoutes(r)
		}

		r.Group(func(r chi.Router) {
			if params.SubscriptionGate != nil {
				r.Use(params.SubscriptionGate.Require)
			}

			if params.CatalogHandler != nil {
				params.CatalogHandler.MountRoutes(r)
			}
			if params.SalesHandler != nil {
				params.SalesHandler.MountRoutes(r)
			}
			if params.SettingsHandler != nil {
				params.SettingsHandler.MountRoutes(r)
			}
			if params.BillingHandler != nil {
				params.BillingHandler.MountRoutes(r)
			}
			if params.CRMHandler != nil {
				params.CRMHandler.MountRoutes(r)
			}
			if params.ReportsHandler != nil {
				params.ReportsHandler.MountRoutes(r)
			}
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
