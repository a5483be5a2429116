// Package web serves the browser front end: login, dashboard, logs, a JSON state
// endpoint and an SSE stream of dashboard updates.
package web

import (
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/cryptoguard/walletwatch/internal/domain"
	"github.com/cryptoguard/walletwatch/internal/orchestrator"
)

const (
	defaultHeartbeat = 20 * time.Second
	defaultIdleTTL   = 12 * time.Hour
	shutdownTimeout  = 5 * time.Second

	readHeaderTimeout = 15 * time.Second
	idleTimeout       = 120 * time.Second
	defaultCertCache  = "cert-cache"
)

// Gateway is the data access the front end needs: authentication plus the
// dashboard, logs and market data calls.
type Gateway interface {
	Login(ctx context.Context, username, password string) domain.LoginResult
	GetDashboard(ctx context.Context, wallet string) (domain.DashboardSummary, error)
	GetLogs(ctx context.Context) ([]domain.Transaction, error)
	GetTopCoins(ctx context.Context, count int) []domain.CoinQuote
	GetCoinHistory(ctx context.Context, coinID string, days int) domain.PriceHistory
}

// Server exposes the HTML pages and the dashboard stream.
type Server struct {
	Addr string

	gw        Gateway
	logger    *zap.Logger
	browsers  *registry
	pages     map[string]*template.Template
	loc       *time.Location
	heartbeat time.Duration

	// ctx outlives single requests; background dashboard loads run under it.
	ctx context.Context
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithDashboardOptions passes options to every per-browser dashboard.
func WithDashboardOptions(opts ...orchestrator.Option) ServerOption {
	return func(s *Server) {
		s.browsers.dashboardOpts = append(s.browsers.dashboardOpts, opts...)
	}
}

// WithLocation sets the time zone used for transaction times.
func WithLocation(loc *time.Location) ServerOption {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIdleTTL sets how long an unused browser session is kept.
func WithIdleTTL(ttl time.Duration) ServerOption {
	return func(s *Server) {
		if ttl > 0 {
			s.browsers.idleTTL = ttl
		}
	}
}

// NewServer creates a new web server instance.
func NewServer(addr string, gw Gateway, logger *zap.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("web")

	s := &Server{
		Addr:      addr,
		gw:        gw,
		logger:    logger,
		browsers:  newRegistry(gw, logger, defaultIdleTTL),
		pages:     parsePages(),
		loc:       time.Local,
		heartbeat: defaultHeartbeat,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", compress(http.HandlerFunc(s.handleHome)))
	mux.Handle("GET /login", compress(http.HandlerFunc(s.handleLoginPage)))
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.Handle("GET /dashboard", compress(http.HandlerFunc(s.handleDashboard)))
	mux.HandleFunc("POST /dashboard/select", s.handleSelect)
	mux.Handle("GET /dashboard/state", compress(http.HandlerFunc(s.handleState)))
	mux.Handle("GET /dashboard/comparison", compress(http.HandlerFunc(s.handleComparison)))
	mux.HandleFunc("GET /dashboard/stream", s.handleStream)
	mux.Handle("GET /logs", compress(http.HandlerFunc(s.handleLogs)))
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx

	server := newHTTPServer(s.Addr, s.Handler())
	go s.shutdownOnDone(ctx, server)

	s.logger.Info("listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen")
	}
	return nil
}

// StartWithAutoTLS serves HTTPS with ACME certificates for domains. Port 80 answers
// the HTTP-01 challenges and redirects everything else.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	manager, err := certManager(domains, cacheDir)
	if err != nil {
		return err
	}
	s.ctx = ctx

	challenges := newHTTPServer(":80", manager.HTTPHandler(nil))
	server := newHTTPServer(s.Addr, s.Handler())
	server.TLSConfig = manager.TLSConfig()
	server.TLSConfig.MinVersion = tls.VersionTLS12

	go s.shutdownOnDone(ctx, challenges, server)
	go func() {
		if err := challenges.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("acme challenge listener", zap.Error(err))
		}
	}()

	s.logger.Info("listening with automatic TLS", zap.String("addr", s.Addr), zap.Strings("domains", domains))
	if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen tls")
	}
	return nil
}

func certManager(domains []string, cacheDir string) (*autocert.Manager, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = defaultCertCache
	}
	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}, nil
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}

func (s *Server) shutdownOnDone(ctx context.Context, servers ...*http.Server) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
}
