package graph

import (
	"fmt"
	"math"

	"github.com/zulandar/swapyard/internal/models"
)

// OptimizeCycle shortens a cycle greedily: whenever participant i has an
// edge straight to participant i+2, participant i+1 is dropped and the same
// position is tested again. It stops at three participants; two-party loops
// are direct trades. The input is not changed.
func (g *Graph) OptimizeCycle(cycle models.Cycle) models.Cycle {
	out := append(models.Cycle(nil), cycle...)
	i := 0
	for i < len(out) && len(out) > 3 {
		n := len(out)
		if g.hasEdge(out[i], out[(i+2)%n]) {
			skip := (i + 1) % n
			out = append(out[:skip], out[skip+1:]...)
			continue
		}
		i++
	}
	return out
}

// ExecuteCycle settles cycle: each participant gives the next one (the last
// gives the first) the item that best fits one of the receiver's wants. The
// item leaves the giver's give-list and the item index, and the want leaves
// the receiver's want-list. Hops with no feasible pair left are skipped.
//
// All ids are checked before anything is mutated.
func (g *Graph) ExecuteCycle(cycle models.Cycle) ([]models.CycleTrade, error) {
	if len(cycle) < 2 {
		return nil, fmt.Errorf("graph: execute %v: %w", cycle, ErrInvalidCycle)
	}
	members := make([]*models.Participant, len(cycle))
	for i, id := range cycle {
		p, err := g.Participant(id)
		if err != nil {
			return nil, fmt.Errorf("graph: execute %v: %w", cycle, err)
		}
		members[i] = p
	}

	var trades []models.CycleTrade
	for i, giver := range members {
		receiver := members[(i+1)%len(members)]
		item, want, ok := g.bestPair(giver, receiver)
		if !ok {
			continue
		}
		trades = append(trades, models.CycleTrade{GiverID: giver.ID, ReceiverID: receiver.ID, ItemID: item.ID})
		giver.RemoveGive(item.ID)
		receiver.RemoveWant(want)
		if g.items != nil {
			g.items.RemoveItem(item.ID, giver.ID)
		}
	}
	return trades, nil
}

// bestPair picks the feasible (item, want) pair with the smallest distance
// between the item's value and the want's target. Ties keep the first pair
// in list order.
func (g *Graph) bestPair(giver, receiver *models.Participant) (models.Item, models.Want, bool) {
	var (
		bestItem models.Item
		bestWant models.Want
		bestDiff = math.Inf(1)
		found    bool
	)
	for _, item := range giver.Give {
		for _, want := range receiver.Wants {
			if !want.Matches(item, g.opts.Tolerance) {
				continue
			}
			diff := math.Abs(item.Value - want.Target(item))
			if !found || diff < bestDiff {
				bestItem, bestWant, bestDiff, found = item, want, diff, true
			}
		}
	}
	return bestItem, bestWant, found
}
