// Package routing compiles a sealed catalogue into a weighted graph over
// stops and answers shortest-time journey queries, decomposing each
// answer into the Wait/Bus items a rider actually experiences.
//
// It keeps the typed-id naming convention of the transit backend this
// package is adapted from, but the compilation itself is
// the composite wait-plus-ride scheme described by the catalogue's
// journey router: one edge per reachable stop pair within a route
// segment, each edge weight already including one bus_wait_time. That
// lets the shortest-path engine pick transfer points implicitly — a
// multi-leg journey is simply a path of length > 1, and each additional
// leg pays its own wait because the wait is baked into the edge weight,
// not added per transfer by the router.
package routing

import "github.com/antigravity/transitcat/internal/catalogue"

// StopID and BusID alias the catalogue's id types so callers never need
// to import both packages just to name an id.
type StopID = catalogue.StopID

// BusID is the catalogue's bus id type, reused here for edge metadata.
type BusID = catalogue.BusID

// ItemType distinguishes the two kinds of Journey item.
type ItemType string

const (
	// ItemWait is the constant wait paid when boarding a bus at a stop.
	ItemWait ItemType = "Wait"
	// ItemBus is a ride on one bus across one or more stop-spans.
	ItemBus ItemType = "Bus"
)

// Item is one leg of a Journey: either a Wait at a stop, or a Bus ride.
type Item struct {
	Type      ItemType
	StopName  string  // set for ItemWait
	BusNumber string  // set for ItemBus
	SpanCount int     // set for ItemBus: number of stop-spans ridden
	Time      float64 // minutes
}

// Journey is the answer to a Route query.
type Journey struct {
	TotalTime float64
	Items     []Item
}
