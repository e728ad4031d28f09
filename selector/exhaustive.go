package selector

import (
	"fmt"

	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

// MaxExhaustiveQubits bounds the device size the exhaustive selector
// accepts; connected-subset enumeration grows too fast beyond this.
const MaxExhaustiveQubits = 24

// Exhaustive enumerates every connected k-subset and returns the exact
// minimum. Selectable through the DI container for small devices; the unit
// tests use it as the oracle for the greedy selector.
type Exhaustive struct{}

func NewExhaustive() *Exhaustive {
	return &Exhaustive{}
}

func (e *Exhaustive) Select(graph core.NoiseGraph, k int, h core.HyperParameters) (*core.SelectionResult, error) {
	if graph == nil {
		return nil, fmt.Errorf("%w: nil graph", core.ErrInvalidTopology)
	}
	n := graph.NumQubits()
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: k=%d is outside [1,%d]", core.ErrInvalidPatchSize, k, n)
	}
	if n > MaxExhaustiveQubits {
		return nil, fmt.Errorf("%w: %d qubits exceed the exhaustive selector limit of %d",
			core.ErrInvalidPatchSize, n, MaxExhaustiveQubits)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	var (
		best     []int
		bestCost float64
		found    bool
	)
	members := make(map[int]bool, k)

	// enumerate each connected subset once: anchor on its lowest qubit and
	// only ever extend with higher-numbered frontier qubits
	var grow func(anchor int)
	grow = func(anchor int) {
		if len(members) == k {
			cost := TotalCost(graph, members)
			if !found || cost < bestCost {
				best, bestCost, found = sortedMembers(members), cost, true
			}
			return
		}
		frontier := make(map[int]bool)
		for m := range members {
			for _, nb := range graph.Neighbors(m) {
				if nb > anchor && !members[nb] {
					frontier[nb] = true
				}
			}
		}
		for _, q := range sortedMembers(frontier) {
			members[q] = true
			grow(anchor)
			delete(members, q)
		}
	}
	for q := 0; q <= n-1; q++ {
		members[q] = true
		grow(q)
		delete(members, q)
	}

	if !found {
		return nil, fmt.Errorf("%w: no connected %d-qubit subset exists", core.ErrNoFeasiblePatch, k)
	}
	zap.L().Debug(fmt.Sprintf("exhaustive selection found patch %v/cost:%f", best, bestCost))
	return &core.SelectionResult{
		Best:  core.Patch{Qubits: best, Cost: bestCost, Restart: 0, Seed: h.Seed},
		Hyper: h,
		Restarts: []core.RestartOutcome{
			{Restart: 0, Seed: h.Seed, Cost: bestCost},
		},
	}, nil
}
