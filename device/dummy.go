package device

import (
	"github.com/qpatch-dev/smartlayout/core"
)

// dummyDeviceInfoJson mirrors the descriptor shape served by real gateways.
// A 4-qubit square with uniform-ish calibration, for tests and dry runs.
const dummyDeviceInfoJson = `
{
  "device_id": "dummy_device",
  "n_qubits": 4,
  "calibrated_at": "2025-01-01T00:00:00Z",
  "qubits": [
    {"id": 0, "position": {"x": 0, "y": 0}, "fidelity": 0.999, "meas_error": {"readout_assignment_error": 0.02}, "qubit_lifetime": {"t1": 0.00006, "t2": 0.00004}},
    {"id": 1, "position": {"x": 1, "y": 0}, "fidelity": 0.999, "meas_error": {"readout_assignment_error": 0.02}, "qubit_lifetime": {"t1": 0.00006, "t2": 0.00004}},
    {"id": 2, "position": {"x": 0, "y": 1}, "fidelity": 0.999, "meas_error": {"readout_assignment_error": 0.02}, "qubit_lifetime": {"t1": 0.00006, "t2": 0.00004}},
    {"id": 3, "position": {"x": 1, "y": 1}, "fidelity": 0.999, "meas_error": {"readout_assignment_error": 0.02}, "qubit_lifetime": {"t1": 0.00006, "t2": 0.00004}}
  ],
  "couplings": [
    {"control": 0, "target": 1, "cx_error": 0.01, "cx_error_reverse": 0.01},
    {"control": 1, "target": 3, "cx_error": 0.01, "cx_error_reverse": 0.01},
    {"control": 3, "target": 2, "cx_error": 0.01, "cx_error_reverse": 0.01},
    {"control": 2, "target": 0, "cx_error": 0.01, "cx_error_reverse": 0.01}
  ]
}`

// DummyDevice serves an embedded descriptor. Implements core.DeviceLoader.
type DummyDevice struct{}

func (d *DummyDevice) Setup(_ *core.Conf) error {
	return nil
}

func (d *DummyDevice) Load() (*core.DeviceDescriptor, error) {
	spec, err := ParseDeviceInfoSpec(dummyDeviceInfoJson)
	if err != nil {
		return nil, err
	}
	return ToDescriptor(spec)
}
