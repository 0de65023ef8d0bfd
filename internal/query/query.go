// Package query answers the four stat_requests kinds (Bus, Stop, Map,
// Route) against an already-built catalogue/router/renderer, producing
// exactly the response shapes spec.md §6 describes. It is the answering
// logic behind process_requests (stdin/stdout); serve_http answers the
// same four kinds through its own handlers in package httpapi.
package query

import (
	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/render"
	"github.com/antigravity/transitcat/internal/routing"
)

// Request is one entry of stat_requests.
type Request struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Response is one output object, keyed by which fields are non-zero:
// ErrorMessage set means "not found"; otherwise exactly one of the
// per-kind field groups is populated, matching which Request.Type this
// answers.
type Response struct {
	RequestID int      `json:"request_id"`
	ErrorMessage string `json:"error_message,omitempty"`

	Curvature       float64 `json:"curvature,omitempty"`
	RouteLength     int     `json:"route_length,omitempty"`
	StopCount       int     `json:"stop_count,omitempty"`
	UniqueStopCount int     `json:"unique_stop_count,omitempty"`

	Buses []string `json:"buses"`

	Map string `json:"map,omitempty"`

	TotalTime float64     `json:"total_time"`
	Items     []ItemView `json:"items"`
}

// ItemView is one Wait/Bus leg of a Route response.
type ItemView struct {
	Type      string  `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

// Answerer bundles the three collaborators a query needs to read.
type Answerer struct {
	Cat      *catalogue.Catalogue
	Router   *routing.Router
	Renderer *render.Renderer
}

func notFound(id int) Response {
	return Response{RequestID: id, ErrorMessage: "not found"}
}

// Answer evaluates every request in order and returns one response per
// request, in the same order.
func (a Answerer) Answer(requests []Request) []Response {
	out := make([]Response, len(requests))
	for i, req := range requests {
		out[i] = a.answerOne(req)
	}
	return out
}

func (a Answerer) answerOne(req Request) Response {
	switch req.Type {
	case "Bus":
		return a.answerBus(req)
	case "Stop":
		return a.answerStop(req)
	case "Map":
		return a.answerMap(req)
	case "Route":
		return a.answerRoute(req)
	default:
		return notFound(req.ID)
	}
}

func (a Answerer) answerBus(req Request) Response {
	info, err := a.Cat.BusInfo(req.Name)
	if err != nil {
		return notFound(req.ID)
	}
	return Response{
		RequestID: req.ID, Curvature: info.Curvature, RouteLength: info.RoadLength,
		StopCount: info.StopCount, UniqueStopCount: info.UniqueStopCount,
	}
}

func (a Answerer) answerStop(req Request) Response {
	info := a.Cat.StopInfo(req.Name)
	if !info.Exists {
		return notFound(req.ID)
	}
	buses := info.Buses
	if buses == nil {
		buses = []string{}
	}
	return Response{RequestID: req.ID, Buses: buses}
}

func (a Answerer) answerMap(req Request) Response {
	return Response{RequestID: req.ID, Map: a.Renderer.Render(a.Cat)}
}

func (a Answerer) answerRoute(req Request) Response {
	journey, ok := a.Router.Route(req.From, req.To)
	if !ok {
		return notFound(req.ID)
	}
	items := make([]ItemView, len(journey.Items))
	for i, it := range journey.Items {
		view := ItemView{Time: it.Time}
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
	return Response{RequestID: req.ID, TotalTime: journey.TotalTime, Items: items}
}
