package graph

import "github.com/zulandar/swapyard/internal/models"

// BuildEdges discards every edge and recomputes them from scratch.
//
// For each participant p and each neighbour q returned by the locator, an
// edge p -> q is added when some item p gives satisfies some want of q and,
// in reverse, some item q gives satisfies some want of p. The edge carries
// the first forward (item, want) pair found; the reverse witness is only
// checked for existence.
//
// Cost is O(P * K * G * W) for P participants, K neighbours on average and
// G/W give/want list sizes. This is the expensive call of the package.
func (g *Graph) BuildEdges() {
	g.edges = make(map[int][]models.Edge, len(g.participants))
	for _, id := range g.ids() {
		p := g.participants[id]
		for _, near := range g.locator.Query(p.Lat, p.Lon, g.opts.RadiusMiles) {
			if near.ID == p.ID {
				continue
			}
			q, ok := g.participants[near.ID]
			if !ok {
				continue
			}
			item, want, ok := g.firstFeasible(p, q)
			if !ok {
				continue
			}
			if _, _, ok := g.firstFeasible(q, p); !ok {
				continue
			}
			g.edges[p.ID] = append(g.edges[p.ID], models.Edge{From: p.ID, To: q.ID, Item: item, Want: want})
		}
	}
	g.invalidate()
}

// firstFeasible returns the first (item of giver, want of receiver) pair in
// list order where the item satisfies the want.
func (g *Graph) firstFeasible(giver, receiver *models.Participant) (models.Item, models.Want, bool) {
	for _, item := range giver.Give {
		for _, want := range receiver.Wants {
			if want.Matches(item, g.opts.Tolerance) {
				return item, want, true
			}
		}
	}
	return models.Item{}, models.Want{}, false
}

// FeasiblePairs counts the (item, want) pairs with which giver can currently
// satisfy receiver.
func (g *Graph) FeasiblePairs(giverID, receiverID int) (int, error) {
	giver, err := g.Participant(giverID)
	if err != nil {
		return 0, err
	}
	receiver, err := g.Participant(receiverID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range giver.Give {
		for _, want := range receiver.Wants {
			if want.Matches(item, g.opts.Tolerance) {
				n++
			}
		}
	}
	return n, nil
}

// edge returns the edge from -> to, if any.
func (g *Graph) edge(from, to int) (models.Edge, bool) {
	for _, e := range g.edges[from] {
		if e.To == to {
			return e, true
		}
	}
	return models.Edge{}, false
}

func (g *Graph) hasEdge(from, to int) bool {
	_, ok := g.edge(from, to)
	return ok
}

// Edges returns the outgoing edges of id in construction order.
func (g *Graph) Edges(id int) []models.Edge {
	return append([]models.Edge(nil), g.edges[id]...)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, es := range g.edges {
		n += len(es)
	}
	return n
}

// FindDirectTrades reports every pair of participants with edges in both
// directions, once per pair, lower id first.
func (g *Graph) FindDirectTrades() []models.DirectTrade {
	var trades []models.DirectTrade
	for _, id := range g.ids() {
		for _, e := range g.edges[id] {
			if e.To <= id {
				continue
			}
			back, ok := g.edge(e.To, id)
			if !ok {
				continue
			}
			trades = append(trades, models.DirectTrade{
				UserA: id,
				UserB: e.To,
				ItemA: e.Item.ID,
				ItemB: back.Item.ID,
			})
		}
	}
	return trades
}

