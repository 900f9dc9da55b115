// Package geo answers proximity queries over participant locations.
package geo

import (
	"math"
	"sort"
	"sync"

	"github.com/tidwall/rtree"
	"github.com/zulandar/swapyard/internal/models"
)

// MilesPerDegree approximates the length of one degree of latitude.
const MilesPerDegree = 69.0

// Index holds participant locations and a spatial tree over them. The tree
// is rebuilt lazily on the first query after a mutation.
type Index struct {
	mu           sync.Mutex
	participants []*models.Participant
	tree         *rtree.RTreeG[*models.Participant] // nil when stale
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// AddParticipant appends p and invalidates the tree.
func (x *Index) AddParticipant(p *models.Participant) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.participants = append(x.participants, p)
	x.tree = nil
}

// RemoveParticipant drops the participant with id, reporting whether it was
// present.
func (x *Index) RemoveParticipant(id int) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, p := range x.participants {
		if p.ID == id {
			x.participants = append(x.participants[:i], x.participants[i+1:]...)
			x.tree = nil
			return true
		}
	}
	return false
}

// Len returns the number of indexed participants.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.participants)
}

// Query returns the participants within radiusMiles of (lat, lon), ordered
// by id. The radius is converted to a single coordinate-space radius, the
// larger of the latitude and latitude-corrected longitude radii, so the
// result may include a few participants just outside the true distance.
func (x *Index) Query(lat, lon, radiusMiles float64) []*models.Participant {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.tree == nil {
		x.rebuild()
	}
	if x.tree == nil {
		return nil
	}

	r := DegreeRadius(lat, radiusMiles)
	var found []*models.Participant
	x.tree.Search([2]float64{lat - r, lon - r}, [2]float64{lat + r, lon + r},
		func(_, _ [2]float64, p *models.Participant) bool {
			if math.Hypot(p.Lat-lat, p.Lon-lon) <= r {
				found = append(found, p)
			}
			return true
		})
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found
}

// rebuild reconstructs the tree from the participant list. Callers hold mu.
func (x *Index) rebuild() {
	if len(x.participants) == 0 {
		return
	}
	tree := &rtree.RTreeG[*models.Participant]{}
	for _, p := range x.participants {
		pt := [2]float64{p.Lat, p.Lon}
		tree.Insert(pt, pt, p)
	}
	x.tree = tree
}

// DegreeRadius converts miles at latitude lat into an isotropic radius in
// degrees. Longitude degrees shrink with cos(lat); near the poles the
// longitude radius is unbounded and the latitude radius is used.
func DegreeRadius(lat, miles float64) float64 {
	latR := miles / MilesPerDegree
	cos := math.Cos(lat * math.Pi / 180)
	if cos <= 1e-12 {
		return latR
	}
	lonR := miles / (cos * MilesPerDegree)
	return math.Max(latR, lonR)
}
