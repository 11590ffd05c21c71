// Package api serves the monument map over HTTP: selectable options, map
// layers, the legend and the municipality ranking.
package api

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/render"
	"github.com/sells-group/monument-map/internal/scale"
)

// Options configures a Server.
type Options struct {
	Palette     scale.Palette
	Tiles       render.TileLayer
	LegendTitle string
	CORSOrigins []string

	// RateLimit is the per-client request rate; 0 disables limiting.
	RateLimit float64
	RateBurst int

	CacheEntries int
	CacheTTL     time.Duration
}

// Server holds the active dataset and serves requests against it. The
// dataset can be swapped at any time without blocking readers.
type Server struct {
	opts       Options
	dataset    atomic.Pointer[model.Dataset]
	generation atomic.Uint64
	cache      *ResponseCache
	limiter    *clientLimiter
	log        *zap.Logger
}

// New creates a Server with no dataset loaded.
func New(opts Options) *Server {
	if len(opts.Palette.Colors) == 0 {
		opts.Palette = scale.DefaultPalette
	}
	opts.Tiles = opts.Tiles.OrDefault()
	if opts.LegendTitle == "" {
		opts.LegendTitle = render.DefaultLegendTitle
	}
	s := &Server{
		opts:  opts,
		cache: NewResponseCache(opts.CacheEntries, opts.CacheTTL),
		log:   zap.L().With(zap.String("component", "api")),
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.RateBurst)
	}
	return s
}

// SetDataset makes ds the active dataset and drops cached responses.
func (s *Server) SetDataset(ds *model.Dataset) {
	s.dataset.Store(ds)
	s.generation.Add(1)
	s.cache.Invalidate("")
	if ds != nil {
		s.log.Info("api: dataset activated",
			zap.String("source", ds.Source),
			zap.Int("regions", len(ds.Regions)),
			zap.Int("monuments", len(ds.Monuments)),
		)
	}
}

// Dataset returns the active dataset, or nil.
func (s *Server) Dataset() *model.Dataset {
	return s.dataset.Load()
}

// CacheStats reports response cache usage.
func (s *Server) CacheStats() CacheStats {
	return s.cache.Stats()
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		r.Get("/options", s.handleOptions)
		r.Get("/map", s.handleMap)
		r.Get("/legend", s.handleLegend)
		r.Get("/ranking", s.handleRanking)
		r.Get("/stats", s.handleStats)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// cacheKey scopes key to the active dataset.
func (s *Server) cacheKey(endpoint, key string) string {
	return strconv.FormatUint(s.generation.Load(), 10) + "|" + endpoint + "|" + key
}
