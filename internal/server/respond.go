package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/geometry"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", w.Header().Get(RequestIDHeader), "err", err)
	}
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, status, errorResponse{
		Error:     http.StatusText(status),
		Status:    status,
		Code:      string(errors.GetCode(err)),
		Message:   errors.UserMessage(err),
		RequestID: w.Header().Get(RequestIDHeader),
	})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidVector, errors.ErrCodeInvalidSample,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUnavailable:
		return http.StatusNotFound
	case errors.ErrCodeMalformed, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// requestMiddleware tags each request with an id, logs it and records
// metrics under its route pattern.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.observeRequest(route, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", elapsed.Round(time.Microsecond), "request_id", id)
	})
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type layoutResponse struct {
	Mode           string  `json:"mode"`
	CanvasWidth    float64 `json:"canvas_width"`
	CanvasHeight   float64 `json:"canvas_height"`
	TextboxSize    float64 `json:"textbox_size"`
	SliderWidth    float64 `json:"slider_width"`
	SliderHeight   float64 `json:"slider_height"`
	Original       point   `json:"original"`
	Reconstruction point   `json:"reconstruction"`
	Sliders        []point `json:"sliders"`
	Buttons        []point `json:"buttons"`
	Captions       []point `json:"captions"`
}

func newLayoutResponse(l geometry.Layout) layoutResponse {
	conv := func(ps []geometry.Point) []point {
		out := make([]point, len(ps))
		for i, p := range ps {
			out[i] = point{p.X, p.Y}
		}
		return out
	}
	return layoutResponse{
		Mode:           l.Mode.String(),
		CanvasWidth:    l.CanvasWidth,
		CanvasHeight:   l.CanvasHeight,
		TextboxSize:    l.TextboxSize,
		SliderWidth:    l.SliderWidth,
		SliderHeight:   l.SliderHeight,
		Original:       point{l.Original.X, l.Original.Y},
		Reconstruction: point{l.Reconstruction.X, l.Reconstruction.Y},
		Sliders:        conv(l.Sliders),
		Buttons:        conv(l.Buttons[:]),
		Captions:       conv(l.Captions[:]),
	}
}
