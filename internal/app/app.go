package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"BookShelf/internal/catalog"
	"BookShelf/internal/customer"
	"BookShelf/pkg/kit"
)

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

const (
	loginLimitPerMin    = 5
	registerLimitPerMin = 3
	limitWindow         = 60 * time.Second

	readyTimeout = 1 * time.Second
)

// NewHandler assembles the whole service: public book routes at the root,
// session-scoped customer routes under /customer, the token gate under
// /customer/auth.
func NewHandler(books *catalog.Server, cust *customer.Server, deps Deps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(books.Store, cust.Users, deps.Log))

	registerLimiter := kit.NewIPRateLimiter(registerLimitPerMin, limitWindow)
	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)

	r.With(registerLimiter.Middleware).Post("/register", cust.HandleRegister)

	r.Route("/customer", func(cr chi.Router) {
		cr.Use(customer.WithSession(cust.Sessions))
		cr.With(loginLimiter.Middleware).Post("/login", cust.HandleLogin)

		cr.Route("/auth", func(ar chi.Router) {
			ar.Use(customer.RequireToken(cust.JWT))
			ar.Put("/review/{isbn}", cust.HandleUpsertReview)
			ar.Delete("/review/{isbn}", cust.HandleDeleteReview)
		})
	})

	r.Mount("/", books.Routes())

	return r
}

func setupMiddleware(r *chi.Mux, deps Deps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps Deps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.ExpositionAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(books catalog.Store, users customer.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := books.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: catalog", zap.Error(err))
			}
			kit.WriteMessage(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
		if err := users.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: users", zap.Error(err))
			}
			kit.WriteMessage(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
