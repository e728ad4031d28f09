// Package noisegraph turns a coupling topology plus a calibration snapshot
// into a directed graph whose node and edge weights are composite noise
// costs. The graph is built once per (topology, snapshot, hyperparameters)
// triple and read-only afterwards.
package noisegraph

import (
	"fmt"
	"math"
	"sort"

	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// NonNativeDirectionPenalty is paid by an orientation whose gate is not
// natively calibrated and must be synthesized from the reverse direction.
const NonNativeDirectionPenalty = 0.5

// proximityTerm is the constant distance cost of a directly coupled pair;
// ProximityWeight therefore prices the number of edges a patch includes.
const proximityTerm = 1.0

// Graph implements core.NoiseGraph. Immutable after Build.
type Graph struct {
	n         int
	nodeCosts []float64
	edgeCosts map[core.Coupling]float64
	neighbors [][]int
	edges     []core.Coupling
}

func (g *Graph) NumQubits() int { return g.n }

func (g *Graph) NodeCost(q int) float64 { return g.nodeCosts[q] }

func (g *Graph) EdgeCost(a, b int) (float64, bool) {
	c, ok := g.edgeCosts[core.Coupling{Control: a, Target: b}]
	return c, ok
}

// Neighbors returns the qubits adjacent to q in either direction, ascending.
// The returned slice is shared and must not be mutated.
func (g *Graph) Neighbors(q int) []int { return g.neighbors[q] }

func (g *Graph) Edges() []core.Coupling { return g.edges }

// DefaultBuilder implements core.GraphBuilder.
type DefaultBuilder struct{}

func NewDefaultBuilder() *DefaultBuilder {
	return &DefaultBuilder{}
}

// Build computes composite costs for every qubit and every directed
// orientation of every coupling. Both orientations of each coupling are
// present in the result; a non-natively-calibrated orientation reuses the
// reverse gate error and pays NonNativeDirectionPenalty. Structural mapping
// only: the graph is connected iff the topology is connected.
func (b *DefaultBuilder) Build(t core.Topology, s *core.CalibrationSnapshot, h core.HyperParameters) (core.NoiseGraph, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil calibration snapshot", core.ErrMalformedCalibration)
	}

	g := &Graph{
		n:         t.NumQubits,
		nodeCosts: make([]float64, t.NumQubits),
		edgeCosts: make(map[core.Coupling]float64, 2*len(t.Couplings)),
		neighbors: make([][]int, t.NumQubits),
	}

	var err error
	for q := 0; q < t.NumQubits; q++ {
		qc, ok := s.Qubits[q]
		if !ok {
			err = multierr.Append(err,
				fmt.Errorf("%w: no calibration record for qubit %d", core.ErrMalformedCalibration, q))
			continue
		}
		cost := nodeCost(qc, h)
		if badCost(cost) {
			err = multierr.Append(err,
				fmt.Errorf("%w: qubit %d node cost is %v", core.ErrMalformedCalibration, q, cost))
			continue
		}
		g.nodeCosts[q] = cost
	}

	// native orientations first so a coupling listed in both directions
	// never gets a derived reverse on top of its native record
	type pending struct {
		pair core.Coupling
		cost float64
	}
	var derived []pending
	for _, c := range t.Couplings {
		ec, ok := s.Edges[c]
		if !ok {
			err = multierr.Append(err,
				fmt.Errorf("%w: no calibration record for coupling %d-%d",
					core.ErrMalformedCalibration, c.Control, c.Target))
			continue
		}
		fwd := edgeCost(ec.CxError, forwardDirectionPenalty(ec), h)
		if badCost(fwd) {
			err = multierr.Append(err,
				fmt.Errorf("%w: coupling %d-%d cost is %v",
					core.ErrMalformedCalibration, c.Control, c.Target, fwd))
			continue
		}
		g.edgeCosts[c] = fwd

		rev := edgeCost(ec.CxErrorReverse, reverseDirectionPenalty(ec), h)
		if badCost(rev) {
			err = multierr.Append(err,
				fmt.Errorf("%w: coupling %d-%d reverse cost is %v",
					core.ErrMalformedCalibration, c.Control, c.Target, rev))
			continue
		}
		derived = append(derived, pending{
			pair: core.Coupling{Control: c.Target, Target: c.Control},
			cost: rev,
		})
	}
	if err != nil {
		return nil, err
	}
	for _, p := range derived {
		if _, ok := g.edgeCosts[p.pair]; !ok {
			g.edgeCosts[p.pair] = p.cost
		}
	}

	adj := make([]map[int]struct{}, t.NumQubits)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	for pair := range g.edgeCosts {
		g.edges = append(g.edges, pair)
		adj[pair.Control][pair.Target] = struct{}{}
		adj[pair.Target][pair.Control] = struct{}{}
	}
	sort.Slice(g.edges, func(i, j int) bool {
		if g.edges[i].Control != g.edges[j].Control {
			return g.edges[i].Control < g.edges[j].Control
		}
		return g.edges[i].Target < g.edges[j].Target
	})
	for q := 0; q < t.NumQubits; q++ {
		nbrs := make([]int, 0, len(adj[q]))
		for nb := range adj[q] {
			nbrs = append(nbrs, nb)
		}
		sort.Ints(nbrs)
		g.neighbors[q] = nbrs
	}

	zap.L().Debug(fmt.Sprintf("built noise graph/qubits:%d/directedEdges:%d",
		g.n, len(g.edgeCosts)))
	return g, nil
}

// nodeCost combines single-qubit gate, readout and decoherence costs.
func nodeCost(qc core.QubitCalibration, h core.HyperParameters) float64 {
	return h.SingleQubitWeight*qc.SingleQubitError +
		h.ReadoutWeight*qc.ReadoutError +
		h.DecoherenceWeight*decoherenceCost(qc.T1, qc.T2)
}

// decoherenceCost is monotonically decreasing in the effective coherence
// time min(T1,T2) and stays in (0,1].
func decoherenceCost(t1, t2 float64) float64 {
	eff := math.Min(t1, t2)
	return core.ReferenceCoherenceTime / (core.ReferenceCoherenceTime + eff)
}

func edgeCost(cxError, directionPenalty float64, h core.HyperParameters) float64 {
	return h.TwoQubitWeight*cxError +
		h.DirectionWeight*directionPenalty +
		h.ProximityWeight*proximityTerm
}

// forwardDirectionPenalty is the fidelity asymmetry of the native
// orientation: zero when both directions perform equally.
func forwardDirectionPenalty(ec core.EdgeCalibration) float64 {
	if !ec.Bidirectional {
		return 0
	}
	return math.Abs(ec.CxError - ec.CxErrorReverse)
}

func reverseDirectionPenalty(ec core.EdgeCalibration) float64 {
	if !ec.Bidirectional {
		return NonNativeDirectionPenalty
	}
	return math.Abs(ec.CxError - ec.CxErrorReverse)
}

func badCost(c float64) bool {
	return math.IsNaN(c) || math.IsInf(c, 0) || c < 0
}
