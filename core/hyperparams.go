package core

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-faster/jx"
	"go.uber.org/multierr"
)

// DefaultSeed is used when the caller omits the seed. Selection is
// deterministic for the default as for any explicit seed.
const DefaultSeed int64 = 1

const (
	DefaultRestarts      = 20
	DefaultRefinementCap = 50
)

// HyperParameters is the full configuration surface of a selection run:
// the weight mix of the composite costs plus the search controls.
type HyperParameters struct {
	TwoQubitWeight    float64 `json:"two_qubit_weight" toml:"two_qubit_weight"`
	SingleQubitWeight float64 `json:"single_qubit_weight" toml:"single_qubit_weight"`
	ReadoutWeight     float64 `json:"readout_weight" toml:"readout_weight"`
	DecoherenceWeight float64 `json:"decoherence_weight" toml:"decoherence_weight"`
	DirectionWeight   float64 `json:"direction_weight" toml:"direction_weight"`
	ProximityWeight   float64 `json:"proximity_weight" toml:"proximity_weight"`

	Restarts      int   `json:"restarts" toml:"restarts"`
	RefinementCap int   `json:"refinement_cap" toml:"refinement_cap"`
	Seed          int64 `json:"seed" toml:"seed"`
}

// recognizedHyperparameterNames is the exact external option surface. Any
// other name is rejected with ErrUnknownHyperparameter.
var recognizedHyperparameterNames = map[string]struct{}{
	"two_qubit_weight":    {},
	"single_qubit_weight": {},
	"readout_weight":      {},
	"decoherence_weight":  {},
	"direction_weight":    {},
	"proximity_weight":    {},
	"restarts":            {},
	"refinement_cap":      {},
	"seed":                {},
}

var defaultHyperParametersJson map[string]jx.Raw

func init() {
	dhp := DefaultHyperParameters()
	b, err := json.Marshal(dhp)
	if err != nil {
		panic(err)
	}
	dhpj := make(map[string]jx.Raw)
	dhpj["hyperparameters"] = jx.Raw(b)
	defaultHyperParametersJson = dhpj
}

func DefaultHyperParametersJson() map[string]jx.Raw {
	return defaultHyperParametersJson
}

// DefaultHyperParameters is the weight mix used when neither the caller nor
// the snapshot-derived values are available. Weights mirror the historical
// defaults of the selection heuristic.
func DefaultHyperParameters() HyperParameters {
	return HyperParameters{
		TwoQubitWeight:    1.0,
		SingleQubitWeight: 1.0,
		ReadoutWeight:     0.5,
		DecoherenceWeight: 0.01,
		DirectionWeight:   0.5,
		ProximityWeight:   0.001,
		Restarts:          DefaultRestarts,
		RefinementCap:     DefaultRefinementCap,
		Seed:              DefaultSeed,
	}
}

// Validate checks the invariants: all weights non-negative finite numbers
// and positive search budgets.
func (h HyperParameters) Validate() error {
	var err error
	weights := map[string]float64{
		"two_qubit_weight":    h.TwoQubitWeight,
		"single_qubit_weight": h.SingleQubitWeight,
		"readout_weight":      h.ReadoutWeight,
		"decoherence_weight":  h.DecoherenceWeight,
		"direction_weight":    h.DirectionWeight,
		"proximity_weight":    h.ProximityWeight,
	}
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			err = multierr.Append(err,
				fmt.Errorf("%w: %s=%v must be a non-negative finite number",
					ErrMalformedCalibration, name, w))
		}
	}
	if h.Restarts < 1 {
		err = multierr.Append(err,
			fmt.Errorf("%w: restarts=%d must be at least 1", ErrMalformedCalibration, h.Restarts))
	}
	if h.RefinementCap < 0 {
		err = multierr.Append(err,
			fmt.Errorf("%w: refinement_cap=%d must not be negative", ErrMalformedCalibration, h.RefinementCap))
	}
	return err
}

// ParseHyperParameterMap overlays caller-supplied options onto base. Option
// names outside the recognized set fail with ErrUnknownHyperparameter.
// TOML decoding hands numeric values over as int64 or float64.
func ParseHyperParameterMap(base HyperParameters, opts map[string]interface{}) (HyperParameters, error) {
	h := base
	for name, val := range opts {
		if _, ok := recognizedHyperparameterNames[name]; !ok {
			return base, fmt.Errorf("%w: %s", ErrUnknownHyperparameter, name)
		}
		f, ok := toFloat(val)
		if !ok {
			return base, fmt.Errorf("%w: %s=%v is not a number", ErrUnknownHyperparameter, name, val)
		}
		switch name {
		case "two_qubit_weight":
			h.TwoQubitWeight = f
		case "single_qubit_weight":
			h.SingleQubitWeight = f
		case "readout_weight":
			h.ReadoutWeight = f
		case "decoherence_weight":
			h.DecoherenceWeight = f
		case "direction_weight":
			h.DirectionWeight = f
		case "proximity_weight":
			h.ProximityWeight = f
		case "restarts":
			h.Restarts = int(f)
		case "refinement_cap":
			h.RefinementCap = int(f)
		case "seed":
			h.Seed = int64(f)
		}
	}
	if err := h.Validate(); err != nil {
		return base, err
	}
	return h, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
