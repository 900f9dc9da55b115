// Package itemmatch indexes offered items by category and by value bucket.
package itemmatch

import (
	"math"
	"sync"

	"github.com/tidwall/btree"
	"github.com/zulandar/swapyard/internal/models"
)

// BucketWidth is the width of a value bucket.
const BucketWidth = 10

// Entry is an indexed item together with the participant offering it.
type Entry struct {
	Item    models.Item `json:"item"`
	OwnerID int         `json:"owner_id"`
}

// Matcher is a concurrency-safe secondary index over offered items.
type Matcher struct {
	mu         sync.Mutex
	byCategory map[string][]Entry
	byBucket   *btree.Map[int, []Entry]
}

// New returns an empty matcher.
func New() *Matcher {
	return &Matcher{
		byCategory: make(map[string][]Entry),
		byBucket:   btree.NewMap[int, []Entry](32),
	}
}

// Bucket returns the value bucket of v: floor(v/10)*10, or 0 when unset.
func Bucket(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Floor(v/BucketWidth)) * BucketWidth
}

// AddItem indexes item as offered by ownerID.
func (m *Matcher) AddItem(item models.Item, ownerID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := Entry{Item: item, OwnerID: ownerID}
	m.byCategory[item.Category] = append(m.byCategory[item.Category], e)
	b := Bucket(item.Value)
	entries, _ := m.byBucket.Get(b)
	m.byBucket.Set(b, append(entries, e))
}

// RemoveItem drops ownerID's item with itemID, reporting whether it was
// indexed.
func (m *Matcher) RemoveItem(itemID, ownerID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeWhere(func(e Entry) bool {
		return e.OwnerID == ownerID && e.Item.ID == itemID
	}) > 0
}

// RemoveOwner drops every item offered by ownerID and returns how many were
// removed.
func (m *Matcher) RemoveOwner(ownerID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeWhere(func(e Entry) bool { return e.OwnerID == ownerID })
}

// removeWhere deletes matching entries from both indexes. Callers hold mu.
func (m *Matcher) removeWhere(match func(Entry) bool) int {
	removed := 0
	for cat, entries := range m.byCategory {
		kept := filter(entries, match)
		removed += len(entries) - len(kept)
		if len(kept) == 0 {
			delete(m.byCategory, cat)
		} else {
			m.byCategory[cat] = kept
		}
	}

	// The tree is not modified while scanning it.
	changed := make(map[int][]Entry)
	m.byBucket.Scan(func(b int, entries []Entry) bool {
		if kept := filter(entries, match); len(kept) != len(entries) {
			changed[b] = kept
		}
		return true
	})
	for b, kept := range changed {
		if len(kept) == 0 {
			m.byBucket.Delete(b)
		} else {
			m.byBucket.Set(b, kept)
		}
	}
	return removed
}

func filter(entries []Entry, drop func(Entry) bool) []Entry {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !drop(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

// FindMatching returns the entries satisfying want. A category want matches
// every item of the category; a valued want matches items of the category
// whose value lies in [target*(1-tolerance), target*(1+tolerance)], found by
// walking the value buckets covering the band. A valued want without a
// positive target is treated as a category want.
func (m *Matcher) FindMatching(want models.Want, tolerance float64) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if want.Kind == models.CategoryWant || want.Value <= 0 {
		return append([]Entry(nil), m.byCategory[want.Category]...)
	}
	lo := want.Value * (1 - tolerance)
	hi := want.Value * (1 + tolerance)
	return m.valueRange(lo, hi, func(e Entry) bool {
		return e.Item.Category == want.Category
	})
}

// InValueRange returns every entry valued within [lo, hi], walking value
// buckets in ascending order.
func (m *Matcher) InValueRange(lo, hi float64) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valueRange(lo, hi, nil)
}

// valueRange collects entries valued within [lo, hi] that pass keep, which
// may be nil. Callers hold mu.
func (m *Matcher) valueRange(lo, hi float64, keep func(Entry) bool) []Entry {
	var out []Entry
	m.byBucket.Ascend(Bucket(lo), func(b int, entries []Entry) bool {
		if float64(b) > hi {
			return false
		}
		for _, e := range entries {
			if e.Item.Value < lo || e.Item.Value > hi {
				continue
			}
			if keep == nil || keep(e) {
				out = append(out, e)
			}
		}
		return true
	})
	return out
}

// Len returns the number of indexed items.
func (m *Matcher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, entries := range m.byCategory {
		n += len(entries)
	}
	return n
}
