// Package matching is the entry point to the barter engine. Service owns the
// trade graph together with its indexes and serializes every call on one
// mutex, since the graph itself is not safe for concurrent use.
package matching

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/zulandar/swapyard/internal/geo"
	"github.com/zulandar/swapyard/internal/graph"
	"github.com/zulandar/swapyard/internal/itemmatch"
	"github.com/zulandar/swapyard/internal/metrics"
	"github.com/zulandar/swapyard/internal/models"
	"go.uber.org/zap"
)

// DefaultMaxCycleLength bounds cycle searches when no length is given.
const DefaultMaxCycleLength = 5

// Options configures a Service.
type Options struct {
	RadiusMiles    float64
	Tolerance      float64
	MaxCycleLength int
	// AutoValue assigns EvaluateValue to every unvalued give item at
	// registration.
	AutoValue bool
	Logger    *zap.Logger
}

// Service is the synchronized facade over the trade graph.
type Service struct {
	mu    sync.Mutex
	graph *graph.Graph
	items *itemmatch.Matcher
	opts  Options
	log   *zap.Logger
}

// RebuildStats summarizes one edge rebuild.
type RebuildStats struct {
	Participants int           `json:"participants"`
	Edges        int           `json:"edges"`
	Duration     time.Duration `json:"duration_ns"`
}

// Report is the read-only view of the current matches.
type Report struct {
	DirectTrades []models.DirectTrade `json:"direct_trades"`
	Cycles       []models.Cycle       `json:"cycles"`
}

// ExecuteResult holds everything one ExecuteAll settled.
type ExecuteResult struct {
	DirectTrades []models.DirectTrade `json:"direct_trades"`
	CycleTrades  []models.CycleTrade  `json:"cycle_trades"`
	Cycles       []models.Cycle       `json:"cycles"`
}

// New creates an empty service.
func New(opts Options) *Service {
	if opts.MaxCycleLength <= 0 {
		opts.MaxCycleLength = DefaultMaxCycleLength
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	items := itemmatch.New()
	g := graph.New(geo.NewIndex(), items, graph.Options{
		RadiusMiles: opts.RadiusMiles,
		Tolerance:   opts.Tolerance,
	})
	opts.RadiusMiles = g.Options().RadiusMiles
	opts.Tolerance = g.Options().Tolerance
	return &Service{
		graph: g,
		items: items,
		opts:  opts,
		log:   opts.Logger,
	}
}

// Options returns the effective options after defaults.
func (s *Service) Options() Options { return s.opts }

// RegisterParticipant adds a copy of p. Later changes to p are not seen by
// the service.
func (s *Service) RegisterParticipant(p *models.Participant) error {
	if p == nil {
		return fmt.Errorf("matching: register: nil participant")
	}
	c := p.Clone()
	if s.opts.AutoValue {
		for i := range c.Give {
			EvaluateValue(&c.Give[i])
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.Register(c); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	metrics.Participants.Set(float64(s.graph.Len()))
	s.log.Debug("participant registered",
		zap.Int("participant", c.ID),
		zap.Int("gives", len(c.Give)),
		zap.Int("wants", len(c.Wants)))
	return nil
}

// RemoveParticipant unregisters the participant with id.
func (s *Service) RemoveParticipant(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.Remove(id); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	metrics.Participants.Set(float64(s.graph.Len()))
	s.log.Debug("participant removed", zap.Int("participant", id))
	return nil
}

// Participant returns a copy of the registered participant with id.
func (s *Service) Participant(id int) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.graph.Participant(id)
	if err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}
	return p.Clone(), nil
}

// Participants returns copies of every participant ordered by id.
func (s *Service) Participants() []*models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.graph.Participants()
	out := make([]*models.Participant, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

// Rebuild recomputes every edge and invalidates cached cycles.
func (s *Service) Rebuild() RebuildStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuild()
}

func (s *Service) rebuild() RebuildStats {
	start := time.Now()
	s.graph.BuildEdges()
	stats := RebuildStats{
		Participants: s.graph.Len(),
		Edges:        s.graph.EdgeCount(),
		Duration:     time.Since(start),
	}
	metrics.Edges.Set(float64(stats.Edges))
	metrics.RebuildDuration.Observe(stats.Duration.Seconds())
	s.log.Debug("edges rebuilt",
		zap.Int("participants", stats.Participants),
		zap.Int("edges", stats.Edges),
		zap.Duration("took", stats.Duration))
	return stats
}

// GetDirectTrades returns the reciprocal pairs of the last rebuild.
func (s *Service) GetDirectTrades() []models.DirectTrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.FindDirectTrades()
}

// GetCycles returns the normalized cycles of up to maxLength participants.
// A non-positive maxLength uses the configured maximum.
func (s *Service) GetCycles(maxLength int) []models.Cycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles(maxLength)
}

func (s *Service) cycles(maxLength int) []models.Cycle {
	if maxLength <= 0 {
		maxLength = s.opts.MaxCycleLength
	}
	cycles := s.graph.FindCycles(maxLength)
	metrics.CyclesFound.WithLabelValues(strconv.Itoa(maxLength)).Set(float64(len(cycles)))
	return cycles
}

// Matches rebuilds the graph and reports direct trades and cycles without
// executing anything.
func (s *Service) Matches(maxLength int) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuild()
	return Report{
		DirectTrades: s.graph.FindDirectTrades(),
		Cycles:       s.cycles(maxLength),
	}
}

// ExecuteAll rebuilds the graph, then optimizes and executes every cycle
// found. Direct trades are reported as found before execution.
func (s *Service) ExecuteAll() (*ExecuteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rebuild()
	res := &ExecuteResult{DirectTrades: s.graph.FindDirectTrades()}
	for _, c := range s.cycles(0) {
		opt := s.graph.OptimizeCycle(c)
		trades, err := s.graph.ExecuteCycle(opt)
		if err != nil {
			return nil, fmt.Errorf("matching: execute all: %w", err)
		}
		res.Cycles = append(res.Cycles, opt)
		res.CycleTrades = append(res.CycleTrades, trades...)
	}
	metrics.TradesExecuted.Add(float64(len(res.CycleTrades)))
	s.log.Info("cycles executed",
		zap.Int("cycles", len(res.Cycles)),
		zap.Int("trades", len(res.CycleTrades)),
		zap.Int("direct", len(res.DirectTrades)))
	return res, nil
}

// EvaluateValue assigns a heuristic value to item when it has none.
func (s *Service) EvaluateValue(item *models.Item) float64 {
	return EvaluateValue(item)
}

// FindMatching lists indexed items satisfying want under the configured
// tolerance.
func (s *Service) FindMatching(want models.Want) []itemmatch.Entry {
	return s.items.FindMatching(want, s.opts.Tolerance)
}

// InValueRange lists indexed items whose value bucket lies in [lo, hi].
func (s *Service) InValueRange(lo, hi float64) []itemmatch.Entry {
	return s.items.InValueRange(lo, hi)
}
