package core

// ReferenceCoherenceTime (seconds) anchors the decoherence cost
// f(T1,T2) = Tref/(Tref+min(T1,T2)) so that f stays in (0,1] and a qubit
// with 100µs coherence costs 0.5.
const ReferenceCoherenceTime = 100e-6

// NoiseGraph is the read-only noise-weighted view of a coupling topology
// consumed by patch selectors. Implementations are immutable after
// construction so concurrent selection runs need no coordination.
type NoiseGraph interface {
	NumQubits() int
	// NodeCost is the composite single-qubit/readout/decoherence cost of q.
	NodeCost(q int) float64
	// EdgeCost returns the directed cost a->b and whether that orientation exists.
	EdgeCost(a, b int) (float64, bool)
	// Neighbors lists qubits adjacent to q in either direction, ascending.
	Neighbors(q int) []int
	// Edges lists every directed edge of the graph.
	Edges() []Coupling
}
