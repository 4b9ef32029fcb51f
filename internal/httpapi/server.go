package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/linkchecker/internal/httpapi/middleware"
	"github.com/hamed0406/linkchecker/internal/linkcheck"
	"github.com/hamed0406/linkchecker/internal/repo"
)

// LinkValidator is satisfied by *linkcheck.Validator.
type LinkValidator interface {
	ValidateOne(ctx context.Context, raw string) linkcheck.Result
	ValidateBatch(ctx context.Context, urls []string) ([]linkcheck.Result, error)
}

// PageExtractor is satisfied by *extract.Extractor.
type PageExtractor interface {
	Links(ctx context.Context, pageURL string) ([]string, error)
}

type Server struct {
	Logger    *zap.Logger
	Targets   repo.TargetStore
	Results   repo.ResultStore
	Validator LinkValidator
	Extractor PageExtractor
	Metrics   http.Handler // mounted at /metrics when set

	// Guard screens URLs added to the watch list.
	Guard    func(raw string) error
	MaxBatch int
}

func NewServer(l *zap.Logger, ts repo.TargetStore, rs repo.ResultStore, v LinkValidator, x PageExtractor) *Server {
	return &Server{
		Logger:    l,
		Targets:   ts,
		Results:   rs,
		Validator: v,
		Extractor: x,
		Guard:     linkcheck.CheckURL,
		MaxBatch:  linkcheck.DefaultMaxBatch,
	}
}

// Router wires the routes. Empty origins means any origin; rpm <= 0
// disables rate limiting.
func (s *Server) Router(keys apimw.Keys, origins []string, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(origins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(rpm, burst))

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAny(keys))
			r.Post("/links/validate", s.handleValidate)
			r.Post("/links/check", s.handleCheck)
			r.Post("/pages/links", s.handlePageLinks)
			r.Get("/watch", s.handleListTargets)
			r.Get("/results/latest", s.handleLatest)
		})

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAdmin(keys))
			r.Post("/watch", s.handleAddTarget)
		})
	})

	return r
}

// normalizeHTTPURL lowercases scheme and host, drops default ports and a
// bare trailing slash so equivalent URLs collide on the watch list.
func normalizeHTTPURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}
	if u.Path == "/" {
		u.Path = ""
	}
	u.Fragment = ""
	return u.String()
}
