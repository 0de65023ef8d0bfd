// Package httpapi exposes a loaded snapshot's four query kinds over
// HTTP, following the chi router + rs/cors + chi/middleware stack the
// transit backend this module is adapted from wires up for its own API.
//
// Unlike that backend, query execution here is serialized behind a
// single mutex: the Non-goal of concurrent query execution still holds,
// this package only adds network reachability to the same one-at-a-time
// query model process_requests uses against stdin.
package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/cors"

	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/render"
	"github.com/antigravity/transitcat/internal/routing"
)

// Server answers queries against one loaded snapshot. Every handler
// takes mu before touching cat/router/renderer, so no two queries ever
// run at once regardless of how many requests arrive concurrently.
type Server struct {
	mu   sync.Mutex
	cat  *catalogue.Catalogue
	rtr  *routing.Router
	rndr *render.Renderer
}

// New constructs a Server over an already-built state.
func New(cat *catalogue.Catalogue, rtr *routing.Router, renderSettings render.Settings) *Server {
	return &Server{cat: cat, rtr: rtr, rndr: render.New(renderSettings)}
}

// Router builds the chi.Router to serve this Server's endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Get("/buses/{number}", s.handleBus)
	r.Get("/stops/{name}", s.handleStop)
	r.Get("/map", s.handleMap)
	r.Get("/route", s.handleRoute)
	return r
}

type busResponse struct {
	Curvature       float64  `json:"curvature"`
	RouteLength     int      `json:"route_length"`
	StopCount       int      `json:"stop_count"`
	UniqueStopCount int      `json:"unique_stop_count"`
}

type stopResponse struct {
	Buses []string `json:"buses"`
}

type mapResponse struct {
	Map string `json:"map"`
}

type routeResponse struct {
	TotalTime float64          `json:"total_time"`
	Items     []routeItemView  `json:"items"`
}

type routeItemView struct {
	Type      string  `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

type errorResponse struct {
	ErrorMessage string `json:"error_message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{ErrorMessage: "not found"})
}

func (s *Server) handleBus(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	s.mu.Lock()
	info, err := s.cat.BusInfo(number)
	s.mu.Unlock()

	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, busResponse{
		Curvature: info.Curvature, RouteLength: info.RoadLength,
		StopCount: info.StopCount, UniqueStopCount: info.UniqueStopCount,
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	info := s.cat.StopInfo(name)
	s.mu.Unlock()

	if !info.Exists {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, stopResponse{Buses: info.Buses})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	svg := s.rndr.Render(s.cat)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, mapResponse{Map: svg})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	s.mu.Lock()
	journey, ok := s.rtr.Route(from, to)
	s.mu.Unlock()

	if !ok {
		writeNotFound(w)
		return
	}

	items := make([]routeItemView, len(journey.Items))
	for i, it := range journey.Items {
		view := routeItemView{Time: it.Time}
		switch it.Type {
		case routing.ItemWait:
			view.Type = "Wait"
			view.StopName = it.StopName
		case routing.ItemBus:
			view.Type = "Bus"
			view.Bus = it.BusNumber
			view.SpanCount = it.SpanCount
		}
		items[i] = view
	}
	writeJSON(w, http.StatusOK, routeResponse{TotalTime: journey.TotalTime, Items: items})
}
