// Package server exposes the explorer's dataset over HTTP.
//
// Browser hosts of the widget fetch JSON assets from /data/*; the server
// answers those from the configured data directory through the persistent
// asset cache, so one instance can front a remote bucket for many clients.
// The /api routes answer the same questions the widget asks internally
// (layout for a width, a sample's defaults, a reconstruction), which makes
// them handy for scripting and debugging.
//
// Routes:
//
//	GET /healthz
//	GET /metrics
//	GET /data/{asset}
//	GET /api/settings
//	GET /api/layout?width=W&first=false
//	GET /api/samples/random
//	GET /api/samples/{sample}
//	GET /api/samples/{sample}/reconstruction?z=0,1,2,0,1
package server

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/explorer"
	"github.com/matzehuels/latentscope/pkg/geometry"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/recon"
)

// AssetReader returns raw asset bytes by name.
type AssetReader interface {
	Asset(ctx context.Context, name string) ([]byte, error)
}

// Options configures a [Server].
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Settings supplies the sample range and container id reported to
	// clients. It must already be validated.
	Settings  explorer.Settings
	Constants geometry.Constants

	Metrics *Metrics
	Logger  *log.Logger
}

// Server serves assets and API routes.
type Server struct {
	opts    Options
	assets  AssetReader
	store   *recon.Shared
	metrics *Metrics
	logger  *log.Logger
	router  chi.Router
}

// New builds a server reading raw assets from assets and decoded ones from
// store.
func New(assets AssetReader, store *recon.Shared, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Constants.CanvasWidth == 0 {
		opts.Constants = geometry.DefaultConstants()
	}
	s := &Server{
		opts:    opts,
		assets:  assets,
		store:   store,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/data/{asset}", s.handleAsset)

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", s.handleSettings)
		r.Get("/layout", s.handleLayout)
		r.Route("/samples", func(r chi.Router) {
			r.Get("/random", s.handleRandomSample)
			r.Get("/{sample}", s.handleSample)
			r.Get("/{sample}/reconstruction", s.handleReconstruction)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on Options.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return ctx.Err()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	data, err := s.assets.Asset(r.Context(), chi.URLParam(r, "asset"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

type settingsResponse struct {
	ContainerID   string `json:"container_id"`
	MinRange      int    `json:"min_range"`
	MaxRange      int    `json:"max_range"`
	FrameRate     int    `json:"frame_rate"`
	RelayoutEvery int    `json:"relayout_every"`
	Dims          int    `json:"dims"`
	Levels        int    `json:"levels"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	st := s.opts.Settings
	respondJSON(w, http.StatusOK, settingsResponse{
		ContainerID:   st.ContainerID,
		MinRange:      st.MinRange,
		MaxRange:      st.MaxRange,
		FrameRate:     st.FrameRate,
		RelayoutEvery: st.RelayoutEvery,
		Dims:          latent.Dims,
		Levels:        latent.Levels,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := strconv.ParseFloat(q.Get("width"), 64)
	if err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "width must be a number"))
		return
	}
	first := q.Get("first") == "true" || q.Get("first") == "1"
	respondJSON(w, http.StatusOK, newLayoutResponse(geometry.Compute(s.opts.Constants, width, first)))
}

type sampleResponse struct {
	Sample int    `json:"sample"`
	Text   string `json:"text"`
	Z      []int  `json:"z"`
}

func (s *Server) handleRandomSample(w http.ResponseWriter, r *http.Request) {
	st := s.opts.Settings
	s.writeSample(w, r, st.MinRange+rand.IntN(st.MaxRange-st.MinRange))
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	sample, err := s.sampleParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeSample(w, r, sample)
}

func (s *Server) writeSample(w http.ResponseWriter, r *http.Request, sample int) {
	d, err := s.store.Defaults(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	text, v, err := d.Sample(sample)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sampleResponse{Sample: sample, Text: text, Z: v})
}

type reconstructionResponse struct {
	Sample int    `json:"sample"`
	Z      []int  `json:"z"`
	Text   string `json:"text"`
}

func (s *Server) handleReconstruction(w http.ResponseWriter, r *http.Request) {
	sample, err := s.sampleParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var v latent.Vector
	if z := r.URL.Query().Get("z"); z != "" {
		if v, err = latent.Parse(z); err != nil {
			s.respondError(w, r, err)
			return
		}
	} else {
		d, err := s.store.Defaults(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if _, v, err = d.Sample(sample); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	text, err := s.store.Reconstruction(r.Context(), sample, v)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reconstructionResponse{Sample: sample, Z: v, Text: text})
}

func (s *Server) sampleParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "sample")
	sample, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidSample, "sample %q is not an integer", raw)
	}
	st := s.opts.Settings
	if sample < st.MinRange || sample >= st.MaxRange {
		return 0, errors.New(errors.ErrCodeInvalidSample, "sample %d outside [%d, %d)", sample, st.MinRange, st.MaxRange)
	}
	return sample, nil
}
