package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/ledger"
	"github.com/ledgerly/ledgerly/internal/masterdata/banks"
	"github.com/ledgerly/ledgerly/internal/masterdata/parties"
	"github.com/ledgerly/ledgerly/internal/payments"
	"github.com/ledgerly/ledgerly/internal/posting"
	"github.com/ledgerly/ledgerly/internal/reports"
	"github.com/ledgerly/ledgerly/internal/shared"
	"github.com/ledgerly/ledgerly/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	AuthHandler     *auth.Handler
	PostingHandler  *posting.Handler
	PaymentsHandler *payments.Handler
	LedgerHandler   *ledger.Handler
	BanksHandler    *banks.Handler
	PartiesHandler  *parties.Handler
	ReportsHandler  *reports.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router: auth endpoints open, everything else
// behind the bearer-session middleware.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: params.Logger, Config: params.Config}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(params.SessionManager))
		params.PostingHandler.MountRoutes(r)
		params.PaymentsHandler.MountRoutes(r)
		params.LedgerHandler.MountRoutes(r)
		params.BanksHandler.MountRoutes(r)
		params.PartiesHandler.MountRoutes(r)
		params.ReportsHandler.MountRoutes(r)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
