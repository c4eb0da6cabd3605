package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/middleware/ratelimit"
	"finsmart/internal/middleware/security"
	"finsmart/internal/middleware/trace"
	"finsmart/internal/services"
	"finsmart/internal/session"
	appweb "finsmart/web"
)

// Accounts signs users up and in.
type Accounts interface {
	Signup(ctx context.Context, email, password string, budget decimal.Decimal) error
	Login(ctx context.Context, email, password string) (core.User, error)
}

// Ledger records transactions and computes the dashboard.
type Ledger interface {
	Record(ctx context.Context, tx core.Transaction) (services.Dashboard, error)
	Dashboard(ctx context.Context, email string) services.Dashboard
}

type Adviser interface {
	Advise(ctx context.Context, email string) (string, error)
}

type ReviewBoard interface {
	Submit(ctx context.Context, r core.Review) error
	List(ctx context.Context) []core.Review
}

// Pinger reports whether the storage medium is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators the screens need. Readiness may be nil.
type Dependencies struct {
	Accounts  Accounts
	Ledger    Ledger
	Advice    Adviser
	Reviews   ReviewBoard
	Sessions  *session.Registry
	Readiness Pinger
	Logger    *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template

	accounts  Accounts
	ledger    Ledger
	advice    Adviser
	reviews   ReviewBoard
	sessions  *session.Registry
	readiness Pinger

	logger      *log.Logger
	tracer      *trace.Middleware
	detector    *security.Detector
	authLimiter *ratelimit.Limiter
	metrics     *appMetrics

	now           func() time.Time
	secureCookies bool
	authLimit     ratelimit.Config
	proxies       []string
	shutdownOnce  sync.Once
}

type Option func(*Server)

// WithSecureCookies marks the session cookie Secure (serve behind TLS).
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secureCookies = secure }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAuthRateLimit sets the per-IP budget for signup and login posts.
func WithAuthRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) { s.authLimit = cfg }
}

// WithTrustedProxies lists CIDRs whose X-Forwarded-For is believed.
func WithTrustedProxies(cidrs []string) Option {
	return func(s *Server) { s.proxies = cidrs }
}

// NewServer wires the routes and middleware. Templates that fail to parse
// are logged and every page then answers 500.
func NewServer(addr string, deps Dependencies, opts ...Option) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewRegistry(session.DefaultTTL)
	}

	s := &Server{
		accounts:  deps.Accounts,
		ledger:    deps.Ledger,
		advice:    deps.Advice,
		reviews:   deps.Reviews,
		sessions:  deps.Sessions,
		readiness: deps.Readiness,
		logger:    logger.WithComponent(log.ComponentHTTP),
		metrics:   newAppMetrics(),
		now:       time.Now,
		authLimit: ratelimit.Config{RequestsPerMinute: 10},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.detector = security.NewDetector(logger)
	for _, cidr := range s.proxies {
		if err := s.detector.AddTrustedProxy(strings.TrimSpace(cidr)); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.authLimiter = ratelimit.NewLimiter(s.authLimit, ratelimit.WithLogger(logger))

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed to parse templates",
			log.FieldError, err, "error_type", log.ErrorTypeConfiguration)
	} else {
		s.templates = tmpl
	}

	limited := s.authLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /signup", s.handleSignupForm)
	mux.Handle("POST /signup", limited(http.HandlerFunc(s.handleSignup)))
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.Handle("POST /login", limited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("POST /transactions", s.handleRecordTransaction)
	mux.HandleFunc("POST /advice", s.handleAdvice)
	mux.HandleFunc("GET /reviews", s.handleReviews)
	mux.HandleFunc("POST /reviews", s.handleSubmitReview)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	if static, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
			http.StripPrefix("/static/", http.FileServer(http.FS(static)))))
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.detector.Middleware(headers.Middleware(s.tracer.Middleware(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// advice calls retry a slow upstream
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// AuthLimiter exposes the login/signup limiter so its idle clients can be
// swept by the cache manager.
func (s *Server) AuthLimiter() *ratelimit.Limiter {
	return s.authLimiter
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// render executes a named template into a buffer so a failing template
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body, err := s.execute(name, data)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, log.FieldOperation, log.OpRender, log.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) execute(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	ErrorResponse(http.StatusTooManyRequests, "Terlalu banyak percobaan, coba lagi dalam satu menit.").Write(w)
}
