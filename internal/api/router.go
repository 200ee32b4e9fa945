package api

import (
	"context"
	"net/http"

	"github.com/brewvote/server/internal/api/handlers"
	"github.com/brewvote/server/internal/api/middleware"
	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/config"
	"github.com/brewvote/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  config.Config
	Logger  zerolog.Logger
	JWT     *auth.JWTManager
	Ballots handlers.BallotService
	Brewers handlers.FeedbackService
	Gateway handlers.AdminGateway
	Sheets  handlers.PrintService
	Health  *handlers.HealthChecker
	Build   BuildInfo
}

type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter builds the HTTP handler. ctx bounds background work owned by
// middleware such as the rate limiter's cleanup loop.
func NewRouter(ctx context.Context, deps Deps) http.Handler {
	cfg := deps.Config

	vote := handlers.NewVoteHandler(deps.Ballots, cfg.Environment)
	feedback := handlers.NewFeedbackHandler(deps.Brewers, cfg.Environment)
	admin := handlers.NewAdminEventsHandler(deps.Gateway, deps.Sheets, cfg.Environment)

	formPost := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.Auth.CSRFKey != "" {
		csrf := middleware.CSRFProtection([]byte(cfg.Auth.CSRFKey), cfg.IsProduction())
		formPost = func(h http.HandlerFunc) http.Handler { return csrf(h) }
	}

	mux := http.NewServeMux()

	if deps.Health != nil {
		mux.Handle("GET /healthz", deps.Health.Healthz())
		mux.Handle("GET /readyz", deps.Health.Readyz())
		mux.Handle("GET /health", deps.Health.Health())
	}
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /version", VersionHandler(deps.Build))

	mux.HandleFunc("GET /api/v1/vote/{event_code}/{voter_code}", vote.Get)
	mux.HandleFunc("GET /api/v1/feedback/{code}", feedback.ByCode)
	mux.HandleFunc("GET /api/v1/feedback/tokens/{brewer_token}", feedback.ByToken)

	mux.HandleFunc("GET /api/v1/admin/events/{id}", admin.Dashboard)
	mux.Handle("POST /api/v1/admin/events/{id}/results-visibility", formPost(admin.SetResultsVisible))
	mux.Handle("POST /api/v1/admin/events/{id}/beers/delete", formPost(admin.DeleteBeer))
	mux.Handle("POST /api/v1/admin/events/{id}/admins", formPost(admin.AddAdmin))
	mux.Handle("POST /api/v1/admin/events/{id}/admins/remove", formPost(admin.RemoveAdmin))
	mux.Handle("POST /api/v1/admin/events/{id}/voter-codes", formPost(admin.MintVoterCodes))
	mux.HandleFunc("GET /api/v1/admin/events/{code}/print", admin.Print)

	// metrics and route tagging read r.Pattern, which the mux sets on the
	// request it receives, so both must see the same *http.Request.
	var handler http.Handler = metrics.HTTPMiddleware(middleware.RouteTagging(mux))
	handler = middleware.Identity(deps.JWT, cfg.Auth.CookieName)(handler)
	handler = middleware.RequestSize(cfg.Server.MaxBodyBytes)(handler)
	handler = middleware.RateLimit(ctx, cfg.RateLimit)(handler)
	handler = middleware.SecurityHeaders(cfg.IsProduction())(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}
