//go:build unit
// +build unit

package calib

import (
	"testing"

	"github.com/qpatch-dev/smartlayout/core"
	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func lineTopology(n int) core.Topology {
	t := core.Topology{NumQubits: n}
	for i := 0; i < n-1; i++ {
		t.Couplings = append(t.Couplings, core.Coupling{Control: i, Target: i + 1})
	}
	return t
}

func completeRaw(topo core.Topology) *core.RawCalibration {
	raw := core.NewRawCalibration()
	for q := 0; q < topo.NumQubits; q++ {
		raw.Qubits[q] = core.RawQubit{
			SingleQubitError: f64(0.001),
			ReadoutError:     f64(0.02),
			T1:               f64(60e-6),
			T2:               f64(40e-6),
		}
	}
	for _, c := range topo.Couplings {
		raw.Edges[c] = core.RawEdge{CxError: f64(0.01), CxErrorReverse: f64(0.01)}
	}
	return raw
}

func TestNormalizeCompleteIsUnchanged(t *testing.T) {
	topo := lineTopology(3)
	n := NewDefaultNormalizer()
	s, err := n.Normalize(topo, completeRaw(topo))
	assert.Nil(t, err)

	for q := 0; q < 3; q++ {
		assert.Equal(t, core.QubitCalibration{
			SingleQubitError: 0.001, ReadoutError: 0.02, T1: 60e-6, T2: 40e-6,
		}, s.Qubits[q])
	}
	for _, c := range topo.Couplings {
		assert.Equal(t, core.EdgeCalibration{CxError: 0.01, CxErrorReverse: 0.01, Bidirectional: true}, s.Edges[c])
	}

	// idempotence: a second pass over the completed values changes nothing
	s2, err := n.Normalize(topo, completeRaw(topo))
	assert.Nil(t, err)
	assert.Equal(t, s, s2)
}

func TestStatsRepeatedCallsAreBitIdentical(t *testing.T) {
	// single-qubit errors whose float sum depends on addition order
	s := core.NewCalibrationSnapshot()
	for q, e := range []float64{0.1, 0.2, 0.3} {
		s.Qubits[q] = core.QubitCalibration{SingleQubitError: e, ReadoutError: 0.02, T1: 60e-6, T2: 40e-6}
	}
	s.Edges[core.Coupling{Control: 0, Target: 1}] = core.EdgeCalibration{CxError: 0.011, CxErrorReverse: 0.013, Bidirectional: true}
	s.Edges[core.Coupling{Control: 1, Target: 2}] = core.EdgeCalibration{CxError: 0.017, CxErrorReverse: 0.019, Bidirectional: true}

	first := Stats(s)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Stats(s))
	}

	n := NewDefaultNormalizer()
	derived := n.DeriveHyperParameters(s)
	for i := 0; i < 50; i++ {
		assert.Equal(t, derived, n.DeriveHyperParameters(s))
	}
}

func TestNormalizeMeanFill(t *testing.T) {
	topo := lineTopology(3)
	raw := completeRaw(topo)
	raw.Qubits[1] = core.RawQubit{
		// single-qubit error and T2 missing
		ReadoutError: f64(0.04),
		T1:           f64(80e-6),
	}
	n := NewDefaultNormalizer()
	s, err := n.Normalize(topo, raw)
	assert.Nil(t, err)

	// mean of the two present single-qubit errors
	assert.InDelta(t, 0.001, s.Qubits[1].SingleQubitError, 1e-12)
	assert.InDelta(t, 40e-6, s.Qubits[1].T2, 1e-12)
	assert.Equal(t, 0.04, s.Qubits[1].ReadoutError)
}

func TestNormalizeMissingReverseIsNotBidirectional(t *testing.T) {
	topo := lineTopology(2)
	raw := core.NewRawCalibration()
	raw.Qubits[0] = core.RawQubit{SingleQubitError: f64(0.001), ReadoutError: f64(0.02), T1: f64(60e-6), T2: f64(40e-6)}
	raw.Qubits[1] = core.RawQubit{SingleQubitError: f64(0.002), ReadoutError: f64(0.03), T1: f64(50e-6), T2: f64(30e-6)}
	raw.Edges[core.Coupling{Control: 0, Target: 1}] = core.RawEdge{CxError: f64(0.015)}

	n := NewDefaultNormalizer()
	s, err := n.Normalize(topo, raw)
	assert.Nil(t, err)

	e := s.Edges[core.Coupling{Control: 0, Target: 1}]
	assert.False(t, e.Bidirectional)
	assert.Equal(t, 0.015, e.CxError)
	assert.Equal(t, 0.015, e.CxErrorReverse)
}

func TestNormalizeAllMissingKindFails(t *testing.T) {
	topo := lineTopology(3)
	raw := completeRaw(topo)
	for q := 0; q < 3; q++ {
		rq := raw.Qubits[q]
		rq.ReadoutError = nil
		raw.Qubits[q] = rq
	}
	n := NewDefaultNormalizer()
	_, err := n.Normalize(topo, raw)
	assert.ErrorIs(t, err, core.ErrInsufficientCalibrationData)
}

func TestNormalizeRejectsMalformedValues(t *testing.T) {
	topo := lineTopology(2)
	n := NewDefaultNormalizer()

	raw := completeRaw(topo)
	raw.Qubits[0] = core.RawQubit{SingleQubitError: f64(1.5), ReadoutError: f64(0.02), T1: f64(60e-6), T2: f64(40e-6)}
	_, err := n.Normalize(topo, raw)
	assert.ErrorIs(t, err, core.ErrMalformedCalibration)

	raw = completeRaw(topo)
	raw.Qubits[1] = core.RawQubit{SingleQubitError: f64(0.001), ReadoutError: f64(0.02), T1: f64(-1), T2: f64(40e-6)}
	_, err = n.Normalize(topo, raw)
	assert.ErrorIs(t, err, core.ErrMalformedCalibration)
}

func TestDeriveHyperParametersIsDeterministic(t *testing.T) {
	topo := lineTopology(4)
	n := NewDefaultNormalizer()
	s, err := n.Normalize(topo, completeRaw(topo))
	assert.Nil(t, err)

	h1 := n.DeriveHyperParameters(s)
	h2 := n.DeriveHyperParameters(s)
	assert.Equal(t, h1, h2)
	assert.Nil(t, h1.Validate())

	// uniform two-qubit errors have zero spread, so the restart budget is maximal
	assert.Equal(t, core.DefaultRestarts, h1.Restarts)
	// mean cx 0.01 over mean 1q 0.001
	assert.InDelta(t, 10.0, h1.SingleQubitWeight, 1e-9)
	assert.InDelta(t, 5.0, h1.ReadoutWeight, 1e-9)
}

func TestDeriveHyperParametersDecoherenceScalesInverselyWithT1(t *testing.T) {
	topo := lineTopology(2)
	n := NewDefaultNormalizer()

	short := completeRaw(topo)
	long := completeRaw(topo)
	for q := 0; q < 2; q++ {
		rq := long.Qubits[q]
		rq.T1 = f64(120e-6)
		long.Qubits[q] = rq
	}
	sShort, err := n.Normalize(topo, short)
	assert.Nil(t, err)
	sLong, err := n.Normalize(topo, long)
	assert.Nil(t, err)

	hShort := n.DeriveHyperParameters(sShort)
	hLong := n.DeriveHyperParameters(sLong)
	assert.Greater(t, hShort.DecoherenceWeight, hLong.DecoherenceWeight)
}
