package graph

import (
	"strconv"
	"strings"

	"github.com/zulandar/swapyard/internal/models"
)

// frame is one pending step of the cycle walk. path and visited belong to
// the frame's branch and are never modified once shared.
type frame struct {
	node    int
	path    []int
	visited map[int]bool
}

// FindCycles returns every barter loop of 2 to maxLength participants,
// each normalized to start at its smallest id, with rotations removed.
// Results are cached per maxLength until the graph version changes.
//
// Every participant is tried as a start. Each branch carries its own copy of
// the visited set, so sibling branches never prune each other and every
// simple walk up to maxLength is explored.
func (g *Graph) FindCycles(maxLength int) []models.Cycle {
	if entry, ok := g.cycles[maxLength]; ok && entry.version == g.version {
		return cloneCycles(entry.cycles)
	}

	var raw []models.Cycle
	if maxLength >= 2 {
		for _, start := range g.ids() {
			raw = append(raw, g.walk(start, maxLength)...)
		}
	}

	seen := make(map[string]bool, len(raw))
	var unique []models.Cycle
	for _, c := range raw {
		norm := Normalize(c)
		key := cycleKey(norm)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, norm)
	}

	g.cycles[maxLength] = cacheEntry{version: g.version, cycles: unique}
	return cloneCycles(unique)
}

// walk explores every walk from start with an explicit stack. Neighbours are
// pushed in reverse so they are expanded in edge order.
func (g *Graph) walk(start, maxLength int) []models.Cycle {
	var found []models.Cycle
	stack := []frame{{node: start, visited: map[int]bool{}}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// A loop closes only once at least one other participant is on
		// the path; a lone start node is not a trade.
		if f.node == start && len(f.path) > 1 {
			if g.supported(f.path) {
				found = append(found, models.Cycle(f.path))
			}
			continue
		}
		if len(f.path) >= maxLength || f.visited[f.node] {
			continue
		}

		visited := make(map[int]bool, len(f.visited)+1)
		for id := range f.visited {
			visited[id] = true
		}
		visited[f.node] = true
		path := make([]int, len(f.path), len(f.path)+1)
		copy(path, f.path)
		path = append(path, f.node)

		out := g.edges[f.node]
		for i := len(out) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: out[i].To, path: path, visited: visited})
		}
	}
	return found
}

// supported reports whether every consecutive pair of path, wrapping, is
// joined by an edge.
func (g *Graph) supported(path []int) bool {
	for i, from := range path {
		if !g.hasEdge(from, path[(i+1)%len(path)]) {
			return false
		}
	}
	return true
}

// Normalize rotates c to start at its smallest id. The input is not changed.
func Normalize(c models.Cycle) models.Cycle {
	if len(c) == 0 {
		return models.Cycle{}
	}
	lo := 0
	for i, id := range c {
		if id < c[lo] {
			lo = i
		}
	}
	out := make(models.Cycle, 0, len(c))
	out = append(out, c[lo:]...)
	return append(out, c[:lo]...)
}

func cycleKey(c models.Cycle) string {
	parts := make([]string, len(c))
	for i, id := range c {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func cloneCycles(cs []models.Cycle) []models.Cycle {
	out := make([]models.Cycle, len(cs))
	for i, c := range cs {
		out[i] = append(models.Cycle(nil), c...)
	}
	return out
}
