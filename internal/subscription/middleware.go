package subscription

import (
	"log/slog"
	"net/http"

	"github.com/aushadhi-pos/aushadhi-pos/internal/auth"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

// Gate blocks mutating requests for accounts without an active subscription.
// Reads stay available so an expired account can still see its data. A
// subscription lookup failure fails open with a warning rather than locking
// every tenant out.
type Gate struct {
	Service *Service
	Logger  *slog.Logger
}

// Require wraps a router subtree with the subscription check.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}

		sub, active, err := g.Service.Status(r.Context(), id.AccountID)
		if err != nil {
			g.Logger.Warn("subscription check failed, allowing request",
				slog.String("account_id", id.AccountID.String()),
				slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}
		if sub == nil || !active {
			httpx.RespondError(w, httpx.ErrSubscriptionGated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
