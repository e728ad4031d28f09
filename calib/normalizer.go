// Package calib normalizes raw backend calibration readings into complete,
// comparable records and derives default search hyperparameters from their
// summary statistics.
package calib

import (
	"fmt"
	"math"
	"sort"

	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// floorError keeps derived weight ratios finite on near-perfect devices.
	floorError = 1e-6

	minRestarts = 8
)

// DefaultNormalizer implements core.Normalizer. Pure functions, no state.
type DefaultNormalizer struct{}

func NewDefaultNormalizer() *DefaultNormalizer {
	return &DefaultNormalizer{}
}

// Normalize completes the raw calibration over the topology: every missing
// reading of a kind is replaced by the topology-wide mean of the present
// readings of that kind. If every reading of a kind is missing the call
// fails with core.ErrInsufficientCalibrationData. Raw values are validated
// eagerly; any negative or non-finite reading fails with
// core.ErrMalformedCalibration. Already-complete input passes through
// unchanged.
func (n *DefaultNormalizer) Normalize(topo core.Topology, raw *core.RawCalibration) (*core.CalibrationSnapshot, error) {
	if raw == nil {
		raw = core.NewRawCalibration()
	}
	if err := validateRaw(raw); err != nil {
		return nil, err
	}

	var singles, readouts, t1s, t2s []float64
	for q := 0; q < topo.NumQubits; q++ {
		rq := raw.Qubits[q]
		appendPresent(&singles, rq.SingleQubitError)
		appendPresent(&readouts, rq.ReadoutError)
		appendPresent(&t1s, rq.T1)
		appendPresent(&t2s, rq.T2)
	}
	var cxs []float64
	for _, c := range topo.Couplings {
		re := raw.Edges[c]
		appendPresent(&cxs, re.CxError)
		appendPresent(&cxs, re.CxErrorReverse)
	}

	means := map[string]float64{}
	for _, kind := range []struct {
		name string
		vals []float64
	}{
		{"single_qubit_error", singles},
		{"readout_error", readouts},
		{"t1", t1s},
		{"t2", t2s},
		{"cx_error", cxs},
	} {
		if len(kind.vals) == 0 {
			return nil, fmt.Errorf("%w: no %s reading for any qubit or coupling",
				core.ErrInsufficientCalibrationData, kind.name)
		}
		means[kind.name] = mean(kind.vals)
	}

	snapshot := core.NewCalibrationSnapshot()
	filled := 0
	for q := 0; q < topo.NumQubits; q++ {
		rq := raw.Qubits[q]
		snapshot.Qubits[q] = core.QubitCalibration{
			SingleQubitError: fill(rq.SingleQubitError, means["single_qubit_error"], &filled),
			ReadoutError:     fill(rq.ReadoutError, means["readout_error"], &filled),
			T1:               fill(rq.T1, means["t1"], &filled),
			T2:               fill(rq.T2, means["t2"], &filled),
		}
	}
	for _, c := range topo.Couplings {
		re := raw.Edges[c]
		fwd := fill(re.CxError, means["cx_error"], &filled)
		ec := core.EdgeCalibration{CxError: fwd}
		if re.CxErrorReverse != nil {
			ec.CxErrorReverse = *re.CxErrorReverse
			ec.Bidirectional = true
		} else {
			// the reverse orientation is not natively calibrated; it reuses
			// the forward error and pays the direction penalty at graph build
			ec.CxErrorReverse = fwd
			ec.Bidirectional = false
		}
		snapshot.Edges[c] = ec
	}
	if filled > 0 {
		zap.L().Debug(fmt.Sprintf("normalized calibration with %d mean-filled readings", filled))
	}
	return snapshot, nil
}

// SnapshotStats are the summary statistics hyperparameter derivation runs on.
type SnapshotStats struct {
	MeanCxError          float64
	MaxCxError           float64
	MeanSingleQubitError float64
	MeanReadoutError     float64
	MeanT1               float64
}

// Stats accumulates in sorted qubit/coupling order, never raw map order, so
// repeated calls on the same snapshot agree bit for bit.
func Stats(s *core.CalibrationSnapshot) SnapshotStats {
	var singles, readouts, t1s, cxs []float64
	for _, i := range sortedQubitKeys(s.Qubits) {
		q := s.Qubits[i]
		singles = append(singles, q.SingleQubitError)
		readouts = append(readouts, q.ReadoutError)
		t1s = append(t1s, q.T1)
	}
	maxCx := 0.0
	for _, c := range sortedCouplingKeys(s.Edges) {
		e := s.Edges[c]
		cxs = append(cxs, e.CxError, e.CxErrorReverse)
		maxCx = math.Max(maxCx, math.Max(e.CxError, e.CxErrorReverse))
	}
	return SnapshotStats{
		MeanCxError:          mean(cxs),
		MaxCxError:           maxCx,
		MeanSingleQubitError: mean(singles),
		MeanReadoutError:     mean(readouts),
		MeanT1:               mean(t1s),
	}
}

// DeriveHyperParameters computes the weight mix and search budget from
// snapshot statistics. Deterministic in the snapshot:
//   - single-qubit weight: mean two-qubit error over mean single-qubit error
//   - readout weight: half the single-qubit weight
//   - decoherence weight: scales with 1/meanT1 around the reference time
//   - restart count: scales inversely with the two-qubit error spread
func (n *DefaultNormalizer) DeriveHyperParameters(s *core.CalibrationSnapshot) core.HyperParameters {
	stats := Stats(s)
	h := core.DefaultHyperParameters()

	h.TwoQubitWeight = 1.0
	h.SingleQubitWeight = stats.MeanCxError / math.Max(stats.MeanSingleQubitError, floorError)
	h.ReadoutWeight = h.SingleQubitWeight / 2
	h.DecoherenceWeight = core.DefaultHyperParameters().DecoherenceWeight *
		(core.ReferenceCoherenceTime / math.Max(stats.MeanT1, 1e-9))
	h.ProximityWeight = stats.MeanCxError

	spread := stats.MaxCxError - stats.MeanCxError
	ratio := stats.MeanCxError / math.Max(stats.MeanCxError+spread, floorError)
	restarts := int(math.Round(float64(core.DefaultRestarts) * ratio))
	if restarts < minRestarts {
		restarts = minRestarts
	}
	if restarts > core.DefaultRestarts {
		restarts = core.DefaultRestarts
	}
	h.Restarts = restarts

	zap.L().Debug(fmt.Sprintf(
		"derived hyperparameters/singleQubitWeight:%f/readoutWeight:%f/decoherenceWeight:%f/proximityWeight:%f/restarts:%d",
		h.SingleQubitWeight, h.ReadoutWeight, h.DecoherenceWeight, h.ProximityWeight, h.Restarts))
	return h
}

func validateRaw(raw *core.RawCalibration) error {
	var err error
	for _, q := range sortedQubitKeys(raw.Qubits) {
		rq := raw.Qubits[q]
		err = multierr.Append(err, checkRate(fmt.Sprintf("qubit %d single_qubit_error", q), rq.SingleQubitError))
		err = multierr.Append(err, checkRate(fmt.Sprintf("qubit %d readout_error", q), rq.ReadoutError))
		err = multierr.Append(err, checkTime(fmt.Sprintf("qubit %d t1", q), rq.T1))
		err = multierr.Append(err, checkTime(fmt.Sprintf("qubit %d t2", q), rq.T2))
	}
	for _, c := range sortedCouplingKeys(raw.Edges) {
		re := raw.Edges[c]
		err = multierr.Append(err, checkRate(fmt.Sprintf("coupling %d-%d cx_error", c.Control, c.Target), re.CxError))
		err = multierr.Append(err, checkRate(fmt.Sprintf("coupling %d-%d cx_error_reverse", c.Control, c.Target), re.CxErrorReverse))
	}
	return err
}

func sortedQubitKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedCouplingKeys[V any](m map[core.Coupling]V) []core.Coupling {
	keys := make([]core.Coupling, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Control != keys[j].Control {
			return keys[i].Control < keys[j].Control
		}
		return keys[i].Target < keys[j].Target
	})
	return keys
}

func checkRate(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 || *v > 1 {
		return fmt.Errorf("%w: %s=%v is not an error rate in [0,1]", core.ErrMalformedCalibration, name, *v)
	}
	return nil
}

func checkTime(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return fmt.Errorf("%w: %s=%v is not a positive time", core.ErrMalformedCalibration, name, *v)
	}
	return nil
}

func appendPresent(dst *[]float64, v *float64) {
	if v != nil {
		*dst = append(*dst, *v)
	}
}

func fill(v *float64, mean float64, filled *int) float64 {
	if v != nil {
		return *v
	}
	*filled++
	return mean
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
