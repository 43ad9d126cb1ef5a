package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"bankist/internal/cache"
	"bankist/internal/journal"
	applog "bankist/internal/log"
	"bankist/internal/middleware/ratelimit"
	"bankist/internal/middleware/security"
	"bankist/internal/middleware/trace"
	"bankist/internal/ui"
	appweb "bankist/web"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

type Options struct {
	Addr               string
	SessionSecret      string
	SessionTTL         time.Duration
	RateLimitPerMinute int
	TrustedProxies     []string
	// Health checks the journal backend for /readyz; nil means healthy.
	Health func(context.Context) error
	// Activity backs GET /activity; nil serves an empty list.
	Activity journal.Lister
	Logger   *applog.Logger
}

type Server struct {
	http.Server
	logger     *applog.Logger
	access     *applog.StructuredLogger
	templates  *template.Template
	controller *ui.Controller
	hub        *LiveHub
	sessions   *sessionStore
	caches     *cache.Manager
	health     func(context.Context) error
	activity   journal.Lister

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	clientIP        *security.ClientIP
	metrics         *appMetrics
}

// NewServer wires routes and middleware. Templates are parsed from the
// embedded filesystem; a parse failure is logged and surfaces as 500s.
func NewServer(controller *ui.Controller, hub *LiveHub, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	if hub == nil {
		hub = NewLiveHub(logger.WithComponent(applog.ComponentLive).Slog())
	}
	health := opts.Health
	if health == nil {
		health = func(context.Context) error { return nil }
	}

	s := &Server{
		logger:     logger,
		access:     applog.NewStructuredLogger(logger),
		controller: controller,
		hub:        hub,
		sessions:   newSessionStore(opts.SessionSecret, opts.SessionTTL, logger.WithComponent(applog.ComponentSession).Slog()),
		caches:     cache.NewManager(logger.WithComponent(applog.ComponentSession).Slog()),
		health:     health,
		activity:   opts.Activity,
		clientIP:   security.NewClientIP(),
		metrics:    newAppMetrics(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	s.caches.Register("sessions", s.sessions.sessions)
	for _, cidr := range opts.TrustedProxies {
		if err := s.clientIP.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.clientIP.Extract)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Failure(context.Background(), "Failed parsing templates", err, applog.FieldComponent, applog.ComponentTemplate)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/app", s.handleApp)
	mux.HandleFunc("GET /ws", s.handleLive)
	mux.HandleFunc("GET /activity", s.handleActivity)
	mux.HandleFunc("/login", s.handleAction(applog.OpLogin, "login", tmplApp, s.controller.Login))
	mux.HandleFunc("/transfer", s.handleAction(applog.OpTransfer, "transfer", tmplApp, s.controller.Transfer))
	mux.HandleFunc("/loan", s.handleAction(applog.OpLoan, "loan", tmplApp, s.controller.RequestLoan))
	mux.HandleFunc("/close", s.handleAction(applog.OpClose, "close", tmplApp, s.controller.CloseAccount))
	mux.HandleFunc("/sort", s.handleAction(applog.OpSort, "", tmplMovements, s.toggleSort))
	mux.HandleFunc("/logout", s.handleLogout)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(s.clientIP.Extract, s.onRateLimited)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.traceMiddleware.Middleware(headers.Middleware(limited(mux))),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.clientIP.Extract(r),
		applog.FieldPath, r.URL.Path)
	Refused("Too many requests, slow down").Status(http.StatusTooManyRequests).Write(w)
}

// Run serves until ctx is cancelled, together with the session sweeper
// and the rate limiter cleanup.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return s.caches.Run(gctx, sessionSweepInterval) })
	g.Go(func() error { return s.rateLimiter.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.hub.CloseAll()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
