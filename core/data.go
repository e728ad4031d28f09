package core

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Coupling is one physically allowed two-qubit interaction. Control and
// Target carry the native gate orientation reported by the backend.
type Coupling struct {
	Control int `json:"control"`
	Target  int `json:"target"`
}

// Topology is the fixed coupling graph of a device: qubits 0..NumQubits-1
// plus the allowed couplings. Immutable once loaded from the backend descriptor.
type Topology struct {
	NumQubits int        `json:"n_qubits"`
	Couplings []Coupling `json:"couplings"`
}

func (t Topology) String() string {
	st, err := jsonIter.Marshal(t)
	if err != nil {
		zap.L().Error("Failed to marshal core.Topology")
		return ""
	}
	return string(st)
}

// RawQubit holds one qubit's calibration readings as reported by the
// backend. A nil field means the reading is missing from the snapshot.
type RawQubit struct {
	SingleQubitError *float64 `json:"single_qubit_error"`
	ReadoutError     *float64 `json:"readout_error"`
	T1               *float64 `json:"t1"`
	T2               *float64 `json:"t2"`
}

// RawEdge holds one coupling's calibration readings. CxError is the error of
// the native orientation, CxErrorReverse of the opposite one; nil means the
// orientation was not measured.
type RawEdge struct {
	CxError        *float64 `json:"cx_error"`
	CxErrorReverse *float64 `json:"cx_error_reverse"`
}

// RawCalibration is the backend's calibration readout before normalization,
// keyed by qubit index and by native coupling.
type RawCalibration struct {
	Qubits map[int]RawQubit   `json:"qubits"`
	Edges  map[Coupling]RawEdge `json:"-"`
}

func NewRawCalibration() *RawCalibration {
	return &RawCalibration{
		Qubits: make(map[int]RawQubit),
		Edges:  make(map[Coupling]RawEdge),
	}
}

// QubitCalibration is a complete per-qubit record after normalization.
type QubitCalibration struct {
	SingleQubitError float64 `json:"single_qubit_error"`
	ReadoutError     float64 `json:"readout_error"`
	T1               float64 `json:"t1"`
	T2               float64 `json:"t2"`
}

// EdgeCalibration is a complete per-coupling record after normalization.
// Bidirectional reports whether both orientations were natively measured.
type EdgeCalibration struct {
	CxError        float64 `json:"cx_error"`
	CxErrorReverse float64 `json:"cx_error_reverse"`
	Bidirectional  bool    `json:"bidirectional"`
}

// CalibrationSnapshot carries one complete record for every qubit and every
// coupling of a topology. Produced once per selection run and never mutated.
type CalibrationSnapshot struct {
	Qubits map[int]QubitCalibration
	Edges  map[Coupling]EdgeCalibration
}

func NewCalibrationSnapshot() *CalibrationSnapshot {
	return &CalibrationSnapshot{
		Qubits: make(map[int]QubitCalibration),
		Edges:  make(map[Coupling]EdgeCalibration),
	}
}

func (s *CalibrationSnapshot) Clone() *CalibrationSnapshot {
	return deepcopy.Copy(s).(*CalibrationSnapshot)
}

// Patch is a connected k-qubit subset with its aggregate cost and the
// restart provenance that produced it.
type Patch struct {
	Qubits  []int   `json:"qubits"` // ascending
	Cost    float64 `json:"cost"`
	Restart int     `json:"restart"`
	Seed    int64   `json:"seed"`
}

func (p Patch) String() string {
	st, err := jsonIter.Marshal(p)
	if err != nil {
		zap.L().Error("Failed to marshal core.Patch")
		return ""
	}
	return string(st)
}

// Contains reports whether q is a member of the patch. Qubits is sorted.
func (p Patch) Contains(q int) bool {
	i := sort.SearchInts(p.Qubits, q)
	return i < len(p.Qubits) && p.Qubits[i] == q
}

// RestartOutcome records one restart's best cost for diagnostics. Failed
// restarts carry the failure reason instead of a cost.
type RestartOutcome struct {
	Restart int     `json:"restart"`
	Seed    int64   `json:"seed"`
	Cost    float64 `json:"cost"`
	Failed  bool    `json:"failed"`
	Message string  `json:"message,omitempty"`
}

// SelectionResult is the best patch across all restarts plus the
// hyperparameters actually used and the per-restart cost log.
type SelectionResult struct {
	Best     Patch            `json:"best"`
	Hyper    HyperParameters  `json:"hyperparameters"`
	Restarts []RestartOutcome `json:"restarts"`
}

func (r *SelectionResult) Clone() *SelectionResult {
	return deepcopy.Copy(r).(*SelectionResult)
}

func (r *SelectionResult) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.SelectionResult")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

// VirtualPhysicalMapping maps virtual qubit index to physical qubit index,
// in the shape consumed by a transpiler layout stage.
type VirtualPhysicalMapping map[uint32]uint32

func (v VirtualPhysicalMapping) String() string {
	st, err := jsonIter.Marshal(v)
	if err != nil {
		zap.L().Error("Failed to marshal core.VirtualPhysicalMapping")
		return ""
	}
	return string(st)
}

// Validate checks structural soundness of the topology: non-empty and every
// coupling endpoint in range. Self-loops are never a valid coupling.
func (t Topology) Validate() error {
	if t.NumQubits <= 0 {
		return fmt.Errorf("%w: topology has no qubits", ErrInvalidTopology)
	}
	for _, c := range t.Couplings {
		if c.Control < 0 || c.Control >= t.NumQubits ||
			c.Target < 0 || c.Target >= t.NumQubits {
			return fmt.Errorf("%w: coupling %d-%d references a qubit outside 0..%d",
				ErrInvalidTopology, c.Control, c.Target, t.NumQubits-1)
		}
		if c.Control == c.Target {
			return fmt.Errorf("%w: coupling %d-%d is a self-loop",
				ErrInvalidTopology, c.Control, c.Target)
		}
	}
	return nil
}
