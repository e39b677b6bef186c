package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/storefront-map/internal/app"
	"github.com/mohammed-shakir/storefront-map/internal/core/model"
	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
	"github.com/mohammed-shakir/storefront-map/internal/logger"
	"github.com/mohammed-shakir/storefront-map/internal/session"
	"github.com/mohammed-shakir/storefront-map/internal/ui"
)

// Sessions creates and looks up page sessions.
type Sessions interface {
	Create(ctx context.Context) (*app.Controller, error)
	Get(id string) (*app.Controller, error)
}

type api struct {
	log      *slog.Logger
	sessions Sessions
}

// Mount registers the session API under /api.
func Mount(r chi.Router, log *slog.Logger, s Sessions) {
	a := &api{log: log, sessions: s}
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", observe("/api/sessions", a.createSession))
		r.Get("/{id}", observe("/api/sessions/{id}", a.status))
		r.Get("/{id}/buttons", observe("/api/sessions/{id}/buttons", a.buttons))
		r.Post("/{id}/buttons/{button}/click", observe("/api/sessions/{id}/buttons/{button}/click", a.click))
		r.Get("/{id}/markers", observe("/api/sessions/{id}/markers", a.markers))
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func observe(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

type createResponse struct {
	ID     string     `json:"id"`
	View   any        `json:"view"`
	Status app.Status `json:"status"`
}

func (a *api) createSession(w http.ResponseWriter, r *http.Request) {
	c, err := a.sessions.Create(r.Context())
	if err != nil {
		a.log.ErrorContext(r.Context(), "create session failed", "err", err)
		http.Error(w, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}
	st, err := c.Status()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.log.InfoContext(logger.WithSession(r.Context(), c.ID()), "session created", "rendered", st.Result.Rendered)
	w.Header().Set("Location", "/api/sessions/"+c.ID())
	writeJSON(w, http.StatusCreated, createResponse{ID: c.ID(), View: c.View(), Status: st})
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	st, err := c.Status()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *api) buttons(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	b, err := c.Buttons()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *api) click(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	ctx := logger.WithSession(r.Context(), c.ID())
	st, err := c.Click(ctx, chi.URLParam(r, "button"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *api) markers(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}

	zoom, bb, err := ParseMarkersQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	etag := markersETag(c.ID(), c.LayerVersion(), zoom, bb)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	fc, err := c.Markers(zoom, bb)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(fc)
}

func (a *api) session(w http.ResponseWriter, r *http.Request) (*app.Controller, bool) {
	c, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	return c, true
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, ui.ErrUnknownButton):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, app.ErrNotReady):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		a.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func markersETag(id string, version uint64, zoom int, bb *model.BBox) string {
	bbs := ""
	if bb != nil {
		bbs = bb.String()
	}
	return fmt.Sprintf(`W/"%016x"`, xxhash.Sum64String(fmt.Sprintf("%s|%d|%d|%s", id, version, zoom, bbs)))
}

// ParseMarkersQuery reads zoom (required, 0..22) and an optional bbox.
func ParseMarkersQuery(r *http.Request) (int, *model.BBox, error) {
	rawZoom := strings.TrimSpace(r.URL.Query().Get("zoom"))
	if rawZoom == "" {
		return 0, nil, errors.New("missing required parameter: zoom")
	}
	zoom, err := strconv.Atoi(rawZoom)
	if err != nil || zoom < 0 || zoom > 22 {
		return 0, nil, fmt.Errorf("invalid zoom %q (must be an integer 0..22)", rawZoom)
	}

	rawBBox := strings.TrimSpace(r.URL.Query().Get("bbox"))
	if rawBBox == "" {
		return zoom, nil, nil
	}
	bb, err := parseBBOX(rawBBox)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid bbox: %w", err)
	}
	return zoom, &bb, nil
}

// parseBBOX accepts west,south,east,north with an optional trailing
// EPSG:4326. Longitudes outside [-180,180] are wrapped.
func parseBBOX(bboxParam string) (model.BBox, error) {
	parts := strings.Split(bboxParam, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return model.BBox{}, errors.New("expected 4 or 5 comma-separated values: x1,y1,x2,y2[,EPSG:4326]")
	}
	xMin, err := parseFloat(parts[0])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x1: %w", err)
	}
	yMin, err := parseFloat(parts[1])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y1: %w", err)
	}
	xMax, err := parseFloat(parts[2])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x2: %w", err)
	}
	yMax, err := parseFloat(parts[3])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y2: %w", err)
	}

	srid := "EPSG:4326"
	if len(parts) == 5 {
		srid = strings.ToUpper(strings.TrimSpace(parts[4]))
		if srid != "EPSG:4326" {
			return model.BBox{}, fmt.Errorf("only EPSG:4326 is supported (got %q)", srid)
		}
	}

	for _, f := range [4]float64{xMin, yMin, xMax, yMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return model.BBox{}, errors.New("coordinates must be finite")
		}
	}
	if !(yMin >= -90 && yMin <= 90 && yMax >= -90 && yMax <= 90) {
		return model.BBox{}, errors.New("latitude must be in [-90,90]")
	}
	if xMax <= xMin || yMax <= yMin {
		return model.BBox{}, errors.New("coordinates must satisfy x2>x1 and y2>y1")
	}
	xMin, xMax = wrapLongitudes(xMin, xMax)
	return model.BBox{X1: xMin, Y1: yMin, X2: xMax, Y2: yMax, SRID: srid}, nil
}

// wrapLongitudes folds an unwrapped west/east pair, as a web map reports
// when zoomed out or panned across the antimeridian, into [-180,180]. A span
// covering every longitude or crossing the antimeridian widens to the full
// range.
func wrapLongitudes(west, east float64) (float64, float64) {
	if east-west >= 360 {
		return -180, 180
	}
	shift := math.Floor((west+180)/360) * 360
	west, east = west-shift, east-shift
	if east > 180 {
		return -180, 180
	}
	return west, east
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}
