//go:build unit
// +build unit

package device

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/qpatch-dev/smartlayout/common"
	"github.com/qpatch-dev/smartlayout/core"
	"github.com/stretchr/testify/assert"
)

func TestToDescriptorFromAsset(t *testing.T) {
	blob, err := common.GetAsset("linear5_device.json")
	assert.Nil(t, err)

	spec, err := ParseDeviceInfoSpec(blob)
	assert.Nil(t, err)
	assert.Equal(t, "linear5", spec.DeviceID)

	desc, err := ToDescriptor(spec)
	assert.Nil(t, err)
	assert.Equal(t, 5, desc.Topology.NumQubits)
	assert.Equal(t, 4, len(desc.Topology.Couplings))
	assert.Equal(t, "2025-11-04T10:00:00Z", desc.CalibratedAt)

	q0 := desc.Raw.Qubits[0]
	assert.InDelta(t, 0.001, *q0.SingleQubitError, 1e-12)
	assert.Equal(t, 0.02, *q0.ReadoutError)
	assert.Equal(t, 0.00006, *q0.T1)

	// coupling 2->3 has no reverse reading in the asset
	e := desc.Raw.Edges[core.Coupling{Control: 2, Target: 3}]
	assert.Equal(t, 0.012, *e.CxError)
	assert.Nil(t, e.CxErrorReverse)
}

func TestToDescriptorReadoutFallback(t *testing.T) {
	blob := heredoc.Doc(`
		{
		  "device_id": "fallback",
		  "n_qubits": 2,
		  "qubits": [
		    {"id": 0, "fidelity": 0.999, "meas_error": {"prob_meas1_prep0": 0.02, "prob_meas0_prep1": 0.04}, "qubit_lifetime": {"t1": 0.00006, "t2": 0.00004}},
		    {"id": 1, "fidelity": 0.999, "meas_error": {}, "qubit_lifetime": {"t1": 0.00006, "t2": 0.00004}}
		  ],
		  "couplings": [
		    {"control": 0, "target": 1, "cx_error": 0.01}
		  ]
		}`)
	spec, err := ParseDeviceInfoSpec(blob)
	assert.Nil(t, err)
	desc, err := ToDescriptor(spec)
	assert.Nil(t, err)

	assert.InDelta(t, 0.03, *desc.Raw.Qubits[0].ReadoutError, 1e-12)
	assert.Nil(t, desc.Raw.Qubits[1].ReadoutError)
}

func TestToDescriptorInvalidTopology(t *testing.T) {
	blob := heredoc.Doc(`
		{
		  "device_id": "broken",
		  "n_qubits": 2,
		  "qubits": [],
		  "couplings": [
		    {"control": 0, "target": 5, "cx_error": 0.01}
		  ]
		}`)
	spec, err := ParseDeviceInfoSpec(blob)
	assert.Nil(t, err)
	_, err = ToDescriptor(spec)
	assert.ErrorIs(t, err, core.ErrInvalidTopology)
}

func TestDummyDevice(t *testing.T) {
	d := &DummyDevice{}
	assert.Nil(t, d.Setup(&core.Conf{}))
	desc, err := d.Load()
	assert.Nil(t, err)
	assert.Equal(t, "dummy_device", desc.Name)
	assert.Equal(t, 4, desc.Topology.NumQubits)
	assert.Nil(t, desc.Topology.Validate())
}

func TestLoadDeviceSettingMissingFileFallsBack(t *testing.T) {
	ds, err := LoadDeviceSetting("./no_such_setting.toml")
	assert.Nil(t, err)
	assert.Equal(t, NewDeviceSetting(), ds)
}

func TestFileDeviceSetupRejectsPartialSetting(t *testing.T) {
	core.ResetSetting()
	core.RegisterSetting("device", map[string]interface{}{"device_name": "anemone"})
	d := &FileDevice{}
	err := d.Setup(&core.Conf{})
	assert.NotNil(t, err)

	core.ResetSetting()
	core.RegisterSetting("device", map[string]interface{}{
		"device_name":     "anemone",
		"descriptor_path": "./anemone.json",
	})
	assert.Nil(t, d.Setup(&core.Conf{}))
}
