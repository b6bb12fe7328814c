package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rakapradana/kasirpoint-backend/api/controllers"
	"github.com/rakapradana/kasirpoint-backend/api/middleware"
	"github.com/rakapradana/kasirpoint-backend/internal/settings"
	"github.com/rakapradana/kasirpoint-backend/internal/transactions"
	"github.com/rakapradana/kasirpoint-backend/internal/users"
	"github.com/rakapradana/kasirpoint-backend/pkg/config"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	Users       users.Service
	Executor    transactions.Executor
	Query       transactions.Query
	Settings    settings.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, map[string]controllers.Pinger{
			"postgres": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Users, deps.Logger))
		if !deps.Config.App.IsProd() {
			r.Post("/register", controllers.AuthRegister(deps.Users, deps.Logger))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Users, deps.Logger))

		r.Post("/checkout", controllers.Checkout(deps.Executor, deps.Logger))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(deps.Query, deps.Logger))
			r.Get("/{transactionRef}", controllers.TransactionDetail(deps.Query, deps.Logger))
		})

		r.Route("/settings/point-rules", func(r chi.Router) {
			r.Get("/", controllers.PointRulesGet(deps.Settings, deps.Logger))
			r.With(middleware.RequireRole("admin", deps.Logger)).
				Put("/", controllers.PointRulesUpdate(deps.Settings, deps.Logger))
		})
	})

	return r
}
