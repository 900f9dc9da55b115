// Package graph builds the directed trade-feasibility graph between
// participants and searches it for direct swaps and multi-party barter cycles.
//
// Graph has no internal lock. Register, Remove, BuildEdges, FindCycles and
// ExecuteCycle all read and mutate shared participant, edge and cache state,
// so the owner must serialize every call (see matching.Service). Calling them
// concurrently corrupts the edge map and the cycle cache; this is a
// programming error and is not detected.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zulandar/swapyard/internal/models"
)

// DefaultRadiusMiles is the neighbourhood searched around each participant.
const DefaultRadiusMiles = 15.0

var (
	// ErrParticipantNotFound is returned when an operation names a
	// participant id that is not registered.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrDuplicateParticipant is returned when registering an id twice.
	ErrDuplicateParticipant = errors.New("participant already registered")
	// ErrInvalidCycle is returned for cycles shorter than two participants.
	ErrInvalidCycle = errors.New("cycle needs at least two participants")
)

// Locator answers proximity queries. geo.Index implements it.
type Locator interface {
	AddParticipant(p *models.Participant)
	RemoveParticipant(id int) bool
	Query(lat, lon, radiusMiles float64) []*models.Participant
}

// ItemIndex is the secondary item index kept in step with give-lists.
// itemmatch.Matcher implements it.
type ItemIndex interface {
	AddItem(item models.Item, ownerID int)
	RemoveItem(itemID, ownerID int) bool
	RemoveOwner(ownerID int) int
}

// Options tunes edge construction.
type Options struct {
	RadiusMiles float64
	Tolerance   float64
}

func (o *Options) applyDefaults() {
	if o.RadiusMiles <= 0 {
		o.RadiusMiles = DefaultRadiusMiles
	}
	if o.Tolerance <= 0 {
		o.Tolerance = models.DefaultTolerance
	}
}

type cacheEntry struct {
	version uint64
	cycles  []models.Cycle
}

// Graph owns the registered participants and the edges between them.
type Graph struct {
	opts         Options
	locator      Locator
	items        ItemIndex // optional
	participants map[int]*models.Participant
	edges        map[int][]models.Edge
	// version increases on every registration, removal and rebuild; cached
	// cycles computed against an older version are stale.
	version uint64
	cycles  map[int]cacheEntry // keyed by max cycle length
}

// New returns an empty graph. items may be nil.
func New(locator Locator, items ItemIndex, opts Options) *Graph {
	opts.applyDefaults()
	return &Graph{
		opts:         opts,
		locator:      locator,
		items:        items,
		participants: make(map[int]*models.Participant),
		edges:        make(map[int][]models.Edge),
		cycles:       make(map[int]cacheEntry),
	}
}

// Options returns the effective options.
func (g *Graph) Options() Options { return g.opts }

// Version returns the current graph version.
func (g *Graph) Version() uint64 { return g.version }

// Register adds p to the graph, the locator and the item index. It rejects
// invalid coordinates, repeated item ids and already registered ids.
func (g *Graph) Register(p *models.Participant) error {
	if p == nil {
		return fmt.Errorf("graph: register: nil participant")
	}
	if err := p.Check(); err != nil {
		return fmt.Errorf("graph: register: %w", err)
	}
	if _, ok := g.participants[p.ID]; ok {
		return fmt.Errorf("graph: register %d: %w", p.ID, ErrDuplicateParticipant)
	}

	g.participants[p.ID] = p
	g.locator.AddParticipant(p)
	if g.items != nil {
		for _, item := range p.Give {
			g.items.AddItem(item, p.ID)
		}
	}
	g.invalidate()
	return nil
}

// Remove unregisters the participant with id and drops every edge touching
// it, so trades and cycles read before the next rebuild never name it.
func (g *Graph) Remove(id int) error {
	if _, ok := g.participants[id]; !ok {
		return fmt.Errorf("graph: remove %d: %w", id, ErrParticipantNotFound)
	}
	delete(g.participants, id)
	delete(g.edges, id)
	for from, es := range g.edges {
		kept := es[:0]
		for _, e := range es {
			if e.To != id {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(g.edges, from)
		} else {
			g.edges[from] = kept
		}
	}
	g.locator.RemoveParticipant(id)
	if g.items != nil {
		g.items.RemoveOwner(id)
	}
	g.invalidate()
	return nil
}

// Participant returns the registered participant with id.
func (g *Graph) Participant(id int) (*models.Participant, error) {
	p, ok := g.participants[id]
	if !ok {
		return nil, fmt.Errorf("graph: participant %d: %w", id, ErrParticipantNotFound)
	}
	return p, nil
}

// Participants returns every registered participant ordered by id.
func (g *Graph) Participants() []*models.Participant {
	out := make([]*models.Participant, 0, len(g.participants))
	for _, id := range g.ids() {
		out = append(out, g.participants[id])
	}
	return out
}

// Len returns the number of registered participants.
func (g *Graph) Len() int { return len(g.participants) }

// invalidate bumps the version so every cached cycle list goes stale.
func (g *Graph) invalidate() {
	g.version++
}

// ids returns the registered participant ids in ascending order.
func (g *Graph) ids() []int {
	ids := make([]int, 0, len(g.participants))
	for id := range g.participants {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
