package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KirkDiggler/spinwin/internal/services/announce"
	"github.com/KirkDiggler/spinwin/internal/services/campaign"
	"github.com/KirkDiggler/spinwin/internal/services/leaderboard"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 5
	DefaultRequestTimeout = 15 * time.Second
)

// Board is the leaderboard as seen by the transport
type Board interface {
	Snapshot() *leaderboard.Snapshot
	AddListener(l leaderboard.Listener) func()
}

// Pinger checks that storage is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the dependencies of the HTTP API
type Config struct {
	Campaign  campaign.Service
	Board     Board
	Announcer announce.Service
	Storage   Pinger
	Logger    *zap.Logger

	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer

	// RateLimitRPS and RateLimitBurst apply per client address to POST routes
	RateLimitRPS   float64
	RateLimitBurst int

	// AllowedOrigins are host patterns accepted for websocket upgrades;
	// empty allows same-origin only
	AllowedOrigins []string

	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Only enable it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// Server serves the wheel API and the leaderboard websocket
type Server struct {
	campaign  campaign.Service
	board     Board
	announcer announce.Service
	storage   Pinger
	logger    *zap.Logger
	gatherer  prometheus.Gatherer
	limiter   *IPRateLimiter
	origins   []string
	trustIP   bool

	hub            *Hub
	removeListener func()
	cancel         context.CancelFunc
}

// New creates the API server and subscribes its hub to the board
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Campaign == nil {
		return nil, errors.New("campaign service cannot be nil")
	}
	if cfg.Board == nil {
		return nil, errors.New("board cannot be nil")
	}
	if cfg.Announcer == nil {
		return nil, errors.New("announcer cannot be nil")
	}
	if cfg.Storage == nil {
		return nil, errors.New("storage cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = DefaultRateLimitRPS
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		campaign:  cfg.Campaign,
		board:     cfg.Board,
		announcer: cfg.Announcer,
		storage:   cfg.Storage,
		logger:    logger,
		gatherer:  gatherer,
		limiter:   NewIPRateLimiter(rps, burst),
		origins:   cfg.AllowedOrigins,
		trustIP:   cfg.TrustProxyHeaders,
		hub:       NewHub(logger),
		cancel:    cancel,
	}
	s.removeListener = s.board.AddListener(s.hub.Broadcast)
	go s.limiter.Run(ctx)

	return s, nil
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// the limiter and stored entries key on the client address
	if s.trustIP {
		r.Use(middleware.RealIP)
	}
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// websocket connections outlive the request timeout
	r.Get("/ws/leaderboard", s.leaderboardSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(DefaultRequestTimeout))

		r.Get("/wheel", s.getWheel)
		r.Get("/leaderboard", s.getLeaderboard)
		r.Get("/spins/{sessionID}", s.getSpin)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Post("/entries", s.createEntry)
			r.Post("/spins", s.createSpin)
		})
	})

	return r
}

// Close detaches from the board and drops websocket clients
func (s *Server) Close() {
	s.removeListener()
	s.cancel()
	s.hub.Close()
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			s.writeError(w, r, http.StatusTooManyRequests, announce.ErrorTypeRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_ip", clientIP(r)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
