// Package selector finds the lowest-cost connected k-qubit patch on a noise
// graph. The default implementation is a seeded multi-start greedy
// construction with single-qubit swap refinement; an exhaustive selector is
// available for small devices and as a reference.
package selector

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

// DefaultSeedSampleSize is how many candidate seed qubits each restart draws
// before picking the cheapest one. For k=1 the sample is the full qubit set
// so the global minimum is always found.
const DefaultSeedSampleSize = 8

// Greedy implements core.PatchSelector.
type Greedy struct{}

func NewGreedy() *Greedy {
	return &Greedy{}
}

// Select runs h.Restarts independent restarts. Restart r owns its own RNG
// seeded with h.Seed+r, so results are reproducible and restarts never share
// state. A restart that cannot grow to size k fails locally; only total
// exhaustion surfaces as core.ErrNoFeasiblePatch.
func (g *Greedy) Select(graph core.NoiseGraph, k int, h core.HyperParameters) (*core.SelectionResult, error) {
	if graph == nil {
		return nil, fmt.Errorf("%w: nil graph", core.ErrInvalidTopology)
	}
	n := graph.NumQubits()
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: k=%d is outside [1,%d]", core.ErrInvalidPatchSize, k, n)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	// only qubits whose component can hold a k-patch may seed a restart;
	// otherwise a cheap qubit in an undersized component would strand every
	// restart even though a feasible patch exists elsewhere
	eligible := eligibleSeeds(graph, k)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: no connected component has %d qubits", core.ErrNoFeasiblePatch, k)
	}

	result := &core.SelectionResult{Hyper: h}
	var best *core.Patch
	for r := 0; r < h.Restarts; r++ {
		seed := h.Seed + int64(r)
		patch, err := runRestart(graph, k, h, r, seed, eligible)
		if err != nil {
			zap.L().Debug(fmt.Sprintf("restart %d failed/seed:%d/reason:%s", r, seed, err))
			result.Restarts = append(result.Restarts, core.RestartOutcome{
				Restart: r, Seed: seed, Failed: true, Message: err.Error(),
			})
			continue
		}
		result.Restarts = append(result.Restarts, core.RestartOutcome{
			Restart: r, Seed: seed, Cost: patch.Cost,
		})
		// strict improvement keeps the earliest restart on cost ties
		if best == nil || patch.Cost < best.Cost {
			best = patch
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: all %d restarts failed", core.ErrNoFeasiblePatch, h.Restarts)
	}
	result.Best = *best
	zap.L().Debug(fmt.Sprintf("selected patch %v/cost:%f/restart:%d",
		result.Best.Qubits, result.Best.Cost, result.Best.Restart))
	return result, nil
}

func runRestart(g core.NoiseGraph, k int, h core.HyperParameters, restart int, seed int64, eligible []int) (*core.Patch, error) {
	rng := rand.New(rand.NewSource(seed))
	start := seedQubit(g, k, rng, eligible)

	members := map[int]bool{start: true}
	for len(members) < k {
		next, ok := bestCandidate(g, members)
		if !ok {
			return nil, fmt.Errorf("%w: stuck at size %d growing from qubit %d",
				core.ErrNoConnectedPatch, len(members), start)
		}
		members[next] = true
	}

	refine(g, members, h.RefinementCap)

	qubits := sortedMembers(members)
	return &core.Patch{
		Qubits:  qubits,
		Cost:    TotalCost(g, members),
		Restart: restart,
		Seed:    seed,
	}, nil
}

// seedQubit picks the lowest-node-cost qubit among a random sample of the
// eligible seeds, ties broken by lowest index. For k=1 the sample is the
// full eligible set so the global minimum is always found.
func seedQubit(g core.NoiseGraph, k int, rng *rand.Rand, eligible []int) int {
	sample := eligible
	if k != 1 && len(eligible) > DefaultSeedSampleSize {
		sample = make([]int, 0, DefaultSeedSampleSize)
		for _, i := range rng.Perm(len(eligible))[:DefaultSeedSampleSize] {
			sample = append(sample, eligible[i])
		}
	}
	best := -1
	bestCost := 0.0
	for _, q := range sample {
		c := g.NodeCost(q)
		if best == -1 || c < bestCost || (c == bestCost && q < best) {
			best, bestCost = q, c
		}
	}
	return best
}

// eligibleSeeds lists, ascending, every qubit whose connected component
// holds at least k qubits. Growth from any of them always reaches size k.
func eligibleSeeds(g core.NoiseGraph, k int) []int {
	n := g.NumQubits()
	visited := make([]bool, n)
	var eligible []int
	for q := 0; q < n; q++ {
		if visited[q] {
			continue
		}
		comp := []int{q}
		visited[q] = true
		for i := 0; i < len(comp); i++ {
			for _, nb := range g.Neighbors(comp[i]) {
				if !visited[nb] {
					visited[nb] = true
					comp = append(comp, nb)
				}
			}
		}
		if len(comp) >= k {
			eligible = append(eligible, comp...)
		}
	}
	sort.Ints(eligible)
	return eligible
}

// bestCandidate picks the frontier qubit with the lowest marginal cost:
// its node cost plus every directed edge cost connecting it to the patch.
// Ties broken by lowest index.
func bestCandidate(g core.NoiseGraph, members map[int]bool) (int, bool) {
	frontier := make(map[int]bool)
	for m := range members {
		for _, nb := range g.Neighbors(m) {
			if !members[nb] {
				frontier[nb] = true
			}
		}
	}
	if len(frontier) == 0 {
		return 0, false
	}
	candidates := make([]int, 0, len(frontier))
	for q := range frontier {
		candidates = append(candidates, q)
	}
	sort.Ints(candidates)

	best := -1
	bestCost := 0.0
	for _, q := range candidates {
		c := marginalCost(g, q, members)
		if best == -1 || c < bestCost {
			best, bestCost = q, c
		}
	}
	return best, true
}

// Iteration is in sorted member order so float accumulation is identical
// across calls; selection must be bit-for-bit reproducible.
func marginalCost(g core.NoiseGraph, q int, members map[int]bool) float64 {
	cost := g.NodeCost(q)
	for _, m := range sortedMembers(members) {
		if c, ok := g.EdgeCost(q, m); ok {
			cost += c
		}
		if c, ok := g.EdgeCost(m, q); ok {
			cost += c
		}
	}
	return cost
}

// refine attempts single-qubit swaps: replace a member with an external
// neighbor when the patch stays connected and the total cost strictly
// drops. Best-improvement per iteration, deterministic scan order, capped.
func refine(g core.NoiseGraph, members map[int]bool, maxIters int) {
	current := TotalCost(g, members)
	for iter := 0; iter < maxIters; iter++ {
		outs := sortedMembers(members)

		external := make(map[int]bool)
		for m := range members {
			for _, nb := range g.Neighbors(m) {
				if !members[nb] {
					external[nb] = true
				}
			}
		}
		ins := make([]int, 0, len(external))
		for q := range external {
			ins = append(ins, q)
		}
		sort.Ints(ins)

		bestOut, bestIn := -1, -1
		bestCost := current
		for _, out := range outs {
			delete(members, out)
			for _, in := range ins {
				if in == out {
					continue
				}
				members[in] = true
				if connected(g, members) {
					if c := TotalCost(g, members); c < bestCost {
						bestOut, bestIn, bestCost = out, in, c
					}
				}
				delete(members, in)
			}
			members[out] = true
		}
		if bestOut == -1 {
			return // local optimum
		}
		delete(members, bestOut)
		members[bestIn] = true
		current = bestCost
	}
}

// TotalCost is the fixed aggregation rule: sum of member node costs plus
// every directed edge cost between members (both orientations when present).
// Accumulates in sorted order so repeated runs agree bit for bit.
func TotalCost(g core.NoiseGraph, members map[int]bool) float64 {
	cost := 0.0
	for _, m := range sortedMembers(members) {
		cost += g.NodeCost(m)
		for _, nb := range g.Neighbors(m) {
			if members[nb] {
				if c, ok := g.EdgeCost(m, nb); ok {
					cost += c
				}
			}
		}
	}
	return cost
}

func connected(g core.NoiseGraph, members map[int]bool) bool {
	if len(members) == 0 {
		return false
	}
	var start int
	for m := range members {
		start = m
		break
	}
	seen := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range g.Neighbors(q) {
			if members[nb] && !seen[nb] {
				seen[nb] = true
				stack = append(stack, nb)
			}
		}
	}
	return len(seen) == len(members)
}

func sortedMembers(members map[int]bool) []int {
	out := make([]int, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}
