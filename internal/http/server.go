package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"

	"budget/internal/auth"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	"budget/internal/services"
)

// AuthProvider is the remote identity service behind /api/auth/*.
// *auth.GoTrueClient satisfies it.
type AuthProvider interface {
	SignUp(ctx context.Context, creds auth.Credentials) (json.RawMessage, error)
	Login(ctx context.Context, creds auth.Credentials) (auth.Session, error)
	Logout(ctx context.Context, token string) error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EventsHealth is implemented by the AMQP client.
type EventsHealth interface {
	Healthy() bool
}

// Dependencies are the collaborators the handlers call.
type Dependencies struct {
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Profiles     *services.ProfileService
	Verifier     auth.Verifier

	// Optional. A nil AuthProvider answers the proxy routes with 503.
	AuthProvider AuthProvider
	// Store is pinged by /readyz.
	Store Pinger
	// Optional. Reported by /readyz and /metrics when set.
	Events EventsHealth

	Logger *applog.Logger
}

// Options tune the middleware chain.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	TrustedProxies     []string
}

// Server wraps the HTTP server with the API handlers and middleware.
type Server struct {
	http.Server
	deps     Dependencies
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Call Shutdown to stop it and release the rate limiter.
func NewServer(addr string, deps Dependencies, opts Options) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	detector, err := security.NewDetector(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		deps:     deps,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
	}
	s.tracer = trace.NewMiddleware(logger, detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{trace.HeaderRequestID, "Retry-After"},
		MaxAge:         600,
	})

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, ratelimit.Mutating)(h)
	h = corsHandler.Handler(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	protect := auth.Middleware(s.deps.Verifier)
	p := func(h http.HandlerFunc) http.Handler { return protect(h) }

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metricsHandler())

	mux.HandleFunc("GET /api/categories", s.handleListCategories)

	mux.Handle("GET /api/transactions", p(s.handleListTransactions))
	mux.Handle("POST /api/transactions", p(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/stats", p(s.handleTransactionStats))
	mux.Handle("GET /api/transactions/breakdown", p(s.handleTransactionBreakdown))
	mux.Handle("GET /api/transactions/{id}", p(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", p(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", p(s.handleDeleteTransaction))

	mux.Handle("GET /api/budget", p(s.handleGetBudget))
	mux.Handle("PUT /api/budget", p(s.handleSaveBudget))
	mux.Handle("GET /api/budget/overview", p(s.handleBudgetOverview))

	mux.Handle("GET /api/profile", p(s.handleGetProfile))
	mux.Handle("PUT /api/profile", p(s.handleSaveProfile))

	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("POST /api/auth/logout", p(s.handleLogout))
	mux.Handle("GET /api/auth/user", p(s.handleCurrentUser))
}

// Shutdown gracefully stops the server and background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
