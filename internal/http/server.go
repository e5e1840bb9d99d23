// Package http exposes the ledger over a JSON API: authentication,
// household, account and transaction resources, and the dashboard view.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hearth/internal/auth"
	"hearth/internal/log"
	"hearth/internal/metrics"
	"hearth/internal/middleware/ratelimit"
	"hearth/internal/middleware/security"
	"hearth/internal/middleware/trace"
	"hearth/internal/services"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Auth         *services.AuthService
	Households   *services.HouseholdService
	Accounts     *services.AccountService
	Transactions *services.TransactionService
	Dashboards   *services.DashboardService
	Tokens       *auth.JWTManager
	Logger       *log.Logger
	Metrics      *metrics.Metrics
	RateLimit    ratelimit.Config
}

// Server wraps http.Server with the ledger handlers and the middleware
// chain: security headers, suspicious-request detection, rate limiting
// and request tracing.
type Server struct {
	http.Server

	authSvc      *services.AuthService
	households   *services.HouseholdService
	accounts     *services.AccountService
	transactions *services.TransactionService
	dashboards   *services.DashboardService

	tokens   *auth.JWTManager
	logger   *log.Logger
	observer *metrics.Metrics
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		authSvc:      deps.Auth,
		households:   deps.Households,
		accounts:     deps.Accounts,
		transactions: deps.Transactions,
		dashboards:   deps.Dashboards,
		tokens:       deps.Tokens,
		logger:       deps.Logger.WithComponent("http"),
		observer:     deps.Metrics,
		limiter:      ratelimit.NewLimiter(deps.RateLimit),
		detector:     security.NewDetector(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	if s.observer != nil {
		mux.Handle("GET /metrics", s.observer.Handler())
	}

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/household/me", s.requireAuth(s.handleGetMyHousehold))
	mux.Handle("GET /api/household/members", s.requireAuth(s.handleListMembers))
	mux.Handle("PUT /api/household/{id}", s.requireAuth(s.handleUpdateHousehold))

	mux.Handle("GET /api/accounts", s.requireAuth(s.handleListAccounts))
	mux.Handle("POST /api/accounts", s.requireAuth(s.handleCreateAccount))
	mux.Handle("GET /api/accounts/{id}", s.requireAuth(s.handleGetAccount))
	mux.Handle("PUT /api/accounts/{id}", s.requireAuth(s.handleUpdateAccount))
	mux.Handle("DELETE /api/accounts/{id}", s.requireAuth(s.handleDeleteAccount))

	mux.Handle("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.Handle("GET /api/dashboard", s.requireAuth(s.handleDashboard))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middlewareChain(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// middlewareChain wraps the mux with the shared request pipeline. Trace
// sits outermost so even rejected requests are logged and measured.
func (s *Server) middlewareChain(mux http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		if s.observer != nil {
			s.observer.RateLimitedTotal.Inc()
		}
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
	}

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, onLimit)(h)
	h = s.flagSuspicious(h)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	h = headers.Middleware(h)

	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, s.logger, s.observer)
	return tracer.Middleware(h)
}

// flagSuspicious counts and logs probing requests without blocking
// them; rejection stays the rate limiter's job.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			if s.observer != nil {
				s.observer.SuspiciousTotal.Inc()
			}
			s.logger.WarnContext(r.Context(), "suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter's background goroutine and drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
