package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/authdash-backend/api/controllers"
	"github.com/angelmondragon/authdash-backend/api/middleware"
	"github.com/angelmondragon/authdash-backend/internal/auditlog"
	"github.com/angelmondragon/authdash-backend/internal/devices"
	"github.com/angelmondragon/authdash-backend/internal/relay"
	"github.com/angelmondragon/authdash-backend/internal/users"
	"github.com/angelmondragon/authdash-backend/pkg/config"
	"github.com/angelmondragon/authdash-backend/pkg/db"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"github.com/angelmondragon/authdash-backend/pkg/metrics"
	"github.com/angelmondragon/authdash-backend/pkg/redis"
)

// Deps carries everything the dashboard router mounts. Relay is nil unless
// the relay runs embedded in the API process. Redis may be nil.
type Deps struct {
	DB       *db.Client
	Redis    *redis.Client
	Users    users.Service
	Logs     auditlog.Service
	Devices  devices.Service
	Relay    *relay.Broadcaster
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)

	checkUserPolicy := middleware.NewRateLimitPolicy(
		"check_user",
		cfg.RateLimit.CheckUserWindow,
		cfg.RateLimit.CheckUserIPLimit,
		cfg.RateLimit.CheckUserEmailLimit,
	)
	signUpPolicy := middleware.NewRateLimitPolicy(
		"sign_up",
		cfg.RateLimit.SignUpWindow,
		cfg.RateLimit.SignUpIPLimit,
		cfg.RateLimit.SignUpEmailLimit,
	)
	limiter := rateLimiter(deps.Redis)

	mountOps(r, cfg, logg, deps.Gatherer, readiness(deps.DB, deps.Redis)...)

	r.With(middleware.RateLimit(checkUserPolicy, limiter, logg)).Post("/checkUser", controllers.CheckUser(deps.Users, logg))
	r.With(middleware.RateLimit(signUpPolicy, limiter, logg)).Post("/storeAuthInfo", controllers.StoreAuthInfo(deps.Users, logg))
	r.Post("/updateProfile", controllers.UpdateProfile(deps.Users, logg))
	r.Post("/updateCompanyInfo", controllers.UpdateCompanyInfo(deps.Users, logg))
	r.Get("/fetchCompanyInfo/{email}", controllers.FetchCompanyInfo(deps.Users, logg))

	r.Post("/storeToken", controllers.StoreToken(deps.Users, logg))
	r.Get("/fetchToken/{email}", controllers.FetchToken(deps.Users, logg))
	r.Put("/updateToken/{email}", controllers.UpdateToken(deps.Users, logg))

	r.Get("/logs", controllers.Logs(deps.Logs, logg))

	saveDevice := controllers.SaveDevice(deps.Devices, logg)
	r.Post("/saveDeviceData", saveDevice)
	r.Post("/storeDeviceInfo", saveDevice)

	if deps.Relay != nil {
		mountRelay(r, deps.Relay, logg)
	}

	return r
}

// NewRelayRouter serves the standalone relay process.
func NewRelayRouter(cfg *config.Config, logg *logger.Logger, b *relay.Broadcaster, m *metrics.HTTPMetrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(m),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)

	mountOps(r, cfg, logg, gatherer)
	mountRelay(r, b, logg)
	return r
}

func mountRelay(r chi.Router, b *relay.Broadcaster, logg *logger.Logger) {
	r.Post("/webhook", controllers.Webhook(b, logg))
	r.Get("/sse", controllers.SSE(b, logg))
}

func mountOps(r chi.Router, cfg *config.Config, logg *logger.Logger, gatherer prometheus.Gatherer, deps ...controllers.Dependency) {
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps...))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

func readiness(dbClient *db.Client, redisClient *redis.Client) []controllers.Dependency {
	var deps []controllers.Dependency
	if dbClient != nil {
		deps = append(deps, controllers.Dependency{Name: "db", Pinger: dbClient})
	}
	if redisClient != nil {
		deps = append(deps, controllers.Dependency{Name: "redis", Pinger: redisClient})
	}
	return deps
}

// rateLimiter keeps a nil client from becoming a non-nil interface.
func rateLimiter(client *redis.Client) middleware.RateLimitStore {
	if client == nil {
		return nil
	}
	return client
}
