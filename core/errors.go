package core

import "errors"

// Sentinel errors for the selection pipeline. Components wrap these with
// fmt.Errorf("%w: ...") so callers can match with errors.Is.
var (
	// ErrInsufficientCalibrationData indicates a calibration field is missing
	// for every qubit or every edge of a given kind, so no mean fill is possible.
	ErrInsufficientCalibrationData = errors.New("core: insufficient calibration data")

	// ErrInvalidTopology indicates an empty topology or a coupling that
	// references a qubit outside the topology.
	ErrInvalidTopology = errors.New("core: invalid topology")

	// ErrMalformedCalibration indicates a negative or non-finite raw value,
	// or a computed cost that is negative or non-finite.
	ErrMalformedCalibration = errors.New("core: malformed calibration")

	// ErrInvalidPatchSize indicates k outside [1, node count].
	ErrInvalidPatchSize = errors.New("core: invalid patch size")

	// ErrNoConnectedPatch indicates a single restart could not grow to size k
	// from its seed qubit. Recovered internally by the next restart.
	ErrNoConnectedPatch = errors.New("core: no connected patch from seed")

	// ErrNoFeasiblePatch indicates every restart failed; the topology has no
	// connected component of size >= k.
	ErrNoFeasiblePatch = errors.New("core: no feasible patch")

	// ErrUnknownHyperparameter indicates an option name outside the
	// recognized hyperparameter set.
	ErrUnknownHyperparameter = errors.New("core: unknown hyperparameter")
)
