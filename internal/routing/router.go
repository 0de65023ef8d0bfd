package routing

import (
	"sort"

	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/graph"
	"github.com/antigravity/transitcat/internal/shortestpath"
)

// edgeInfo is the per-edge metadata the graph itself doesn't carry: which
// bus produced the edge, and how many stop-spans it covers. Kept in a
// side slice keyed by graph.EdgeID, matching the catalogue's edge-id
// indexing convention and the graph package's "weight is all the graph
// knows about an edge" design.
type edgeInfo struct {
	bus       BusID
	spanCount int
}

// Router compiles a sealed catalogue into a weighted graph of stops and
// answers Route queries against it.
type Router struct {
	cat *catalogue.Catalogue

	waitTimeMin float64
	velocity    float64 // meters per minute

	vertexOf map[StopID]graph.VertexID
	stopName []string // vertex id -> name, sorted order

	g     *graph.Graph
	edges []edgeInfo
	table *shortestpath.Table
}

// New constructs a Router bound to an already-sealed catalogue. Build
// must be called before Route.
func New(cat *catalogue.Catalogue) *Router {
	return &Router{cat: cat}
}

// Build compiles the graph and its all-pairs shortest-path table.
//
//  1. Convert velocity from km/h to meters/minute.
//  2. Assign each stop a vertex id equal to its index in the
//     lexicographically sorted stop list.
//  3. For each bus, walk its stop sequence in one pass if it is a loop,
//     or two passes (forward, then reversed) if it is not.
//  4. Within each pass, for every i < j add one directed edge from the
//     i'th to the j'th stop of the pass, weighted by bus_wait_time plus
//     ride time for the accumulated road distance between them.
//  5. Run the all-pairs shortest-path engine over the resulting graph.
func (r *Router) Build(velocityKmH float64, waitTimeMin int) {
	r.waitTimeMin = float64(waitTimeMin)
	r.velocity = velocityKmH * 1000.0 / 60.0

	sorted := r.cat.AllStops()
	r.vertexOf = make(map[StopID]graph.VertexID, len(sorted))
	r.stopName = make([]string, len(sorted))
	for i, s := range sorted {
		r.vertexOf[s.ID] = graph.VertexID(i)
		r.stopName[i] = s.Name
	}

	r.g = graph.NewGraph(len(sorted))
	r.edges = nil

	for _, bus := range r.cat.AllBuses() {
		r.compileBus(bus)
	}

	r.table = shortestpath.AllPairs(r.g)
}

// compileBus adds the edges for one bus's traversal: one forward pass if
// it is a loop, a forward and a reversed pass otherwise.
func (r *Router) compileBus(bus catalogue.Bus) {
	r.compilePass(bus.ID, bus.Stops)
	if !bus.IsLoop {
		reversed := make([]StopID, len(bus.Stops))
		for i, id := range bus.Stops {
			reversed[len(bus.Stops)-1-i] = id
		}
		r.compilePass(bus.ID, reversed)
	}
}

// compilePass adds one directed edge for every (i, j), i < j, within a
// single traversal direction of seq, accumulating ride distance as j
// grows so each edge's weight only costs one additional lookup.
func (r *Router) compilePass(bus BusID, seq []StopID) {
	n := len(seq)
	for i := 0; i < n-1; i++ {
		var sum int
		for j := i + 1; j < n; j++ {
			from := r.cat.StopByID(seq[j-1]).Name
			to := r.cat.StopByID(seq[j]).Name
			d, err := r.cat.Distance(from, to)
			if err != nil {
				// Build-time input is validated before Build is ever called;
				// an undefined distance here means that validation was
				// skipped, which is a programmer error, not a query-time one.
				panic("routing: " + err.Error())
			}
			sum += d

			weight := r.waitTimeMin + float64(sum)/r.velocity
			edgeID := r.g.AddEdge(r.vertexOf[seq[i]], r.vertexOf[seq[j]], weight)
			r.setEdgeInfo(edgeID, edgeInfo{bus: bus, spanCount: j - i})
		}
	}
}

func (r *Router) setEdgeInfo(id graph.EdgeID, info edgeInfo) {
	for int(id) >= len(r.edges) {
		r.edges = append(r.edges, edgeInfo{})
	}
	r.edges[id] = info
}

// Route answers a from→to journey query. ok is false if either stop name
// is unknown, or if to is unreachable from from.
func (r *Router) Route(from, to string) (Journey, bool) {
	fromID, ok := r.stopVertex(from)
	if !ok {
		return Journey{}, false
	}
	toID, ok := r.stopVertex(to)
	if !ok {
		return Journey{}, false
	}

	route, ok := r.table.Route(fromID, toID)
	if !ok {
		return Journey{}, false
	}

	items := make([]Item, 0, 2*len(route.Edges))
	for _, eid := range route.Edges {
		e := r.g.Edge(eid)
		info := r.edges[eid]
		bus := r.cat.BusByID(info.bus)
		items = append(items,
			Item{Type: ItemWait, StopName: r.stopName[e.From], Time: r.waitTimeMin},
			Item{Type: ItemBus, BusNumber: bus.Number, SpanCount: info.spanCount, Time: e.Weight - r.waitTimeMin},
		)
	}

	return Journey{TotalTime: route.Weight, Items: items}, true
}

// stopVertex resolves a stop name to its graph vertex id via a binary
// search of the sorted-name slice built in Build. A name->vertex map
// would also work; searching stopName keeps Build's single source of
// truth authoritative.
func (r *Router) stopVertex(name string) (graph.VertexID, bool) {
	idx := sort.SearchStrings(r.stopName, name)
	if idx < len(r.stopName) && r.stopName[idx] == name {
		return graph.VertexID(idx), true
	}
	return 0, false
}

// StopNames returns the vertex-id-ordered (i.e. lexicographic) list of
// stop names the router was built with. Used by the snapshot codec to
// avoid re-deriving the sort.
func (r *Router) StopNames() []string { return r.stopName }

// WaitTimeMinutes returns the configured bus_wait_time.
func (r *Router) WaitTimeMinutes() float64 { return r.waitTimeMin }

// VelocityMetersPerMinute returns the configured bus velocity.
func (r *Router) VelocityMetersPerMinute() float64 { return r.velocity }
