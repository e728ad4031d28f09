package device

import (
	"fmt"

	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	"github.com/qpatch-dev/smartlayout/common"
	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type DeviceSetting struct {
	DeviceName     string `toml:"device_name"`
	DescriptorPath string `toml:"descriptor_path"`
}

func NewDeviceSetting() *DeviceSetting {
	return &DeviceSetting{
		DeviceName:     "unknown_device",
		DescriptorPath: "./device_info.json",
	}
}

func LoadDeviceSetting(path string) (*DeviceSetting, error) {
	blob, assetErr := common.ReadFile(path)
	ds := NewDeviceSetting()
	if assetErr != nil {
		zap.L().Info(fmt.Sprintf("Failed to read file:%s Reason:%s", path, assetErr))
		return ds, nil
	}
	if _, err := toml.Decode(blob, ds); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode blob:%s", blob))
		return &DeviceSetting{}, err
	}
	return ds, nil
}

// DeviceInfoSpec is the JSON shape of a backend descriptor: per-qubit
// calibration plus the coupling list with per-direction gate errors.
// Pointer fields are nil when the backend did not report the reading.
type DeviceInfoSpec struct {
	DeviceID     string         `json:"device_id"`
	NQubits      int            `json:"n_qubits"`
	CalibratedAt string         `json:"calibrated_at"`
	Qubits       []Qubit        `json:"qubits"`
	Couplings    []CouplingSpec `json:"couplings"`
}

type Qubit struct {
	ID        int       `json:"id"`
	Position  Position  `json:"position"`
	Fidelity  *float64  `json:"fidelity"`
	MeasError MeasError `json:"meas_error"`
	QubitLife QubitLife `json:"qubit_lifetime"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type MeasError struct {
	ProbMeas1Prep0         *float64 `json:"prob_meas1_prep0"`
	ProbMeas0Prep1         *float64 `json:"prob_meas0_prep1"`
	ReadoutAssignmentError *float64 `json:"readout_assignment_error"`
}

type QubitLife struct {
	T1 *float64 `json:"t1"`
	T2 *float64 `json:"t2"`
}

type CouplingSpec struct {
	Control        int      `json:"control"`
	Target         int      `json:"target"`
	CxError        *float64 `json:"cx_error"`
	CxErrorReverse *float64 `json:"cx_error_reverse"`
}

func ParseDeviceInfoSpec(blob string) (*DeviceInfoSpec, error) {
	var spec DeviceInfoSpec
	if err := jsonIter.Unmarshal([]byte(blob), &spec); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal device info spec/reason:%s", err))
		return nil, err
	}
	return &spec, nil
}

// ToDescriptor maps the JSON spec onto the selection pipeline's boundary
// record. Single-qubit gate error is 1 - fidelity; readout error falls back
// to the mean of the prep/meas flip probabilities when the assignment error
// is not reported.
func ToDescriptor(spec *DeviceInfoSpec) (*core.DeviceDescriptor, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil device info spec", core.ErrInvalidTopology)
	}
	topo := core.Topology{NumQubits: spec.NQubits}
	raw := core.NewRawCalibration()

	for _, q := range spec.Qubits {
		rq := core.RawQubit{
			T1: q.QubitLife.T1,
			T2: q.QubitLife.T2,
		}
		if q.Fidelity != nil {
			e := 1.0 - *q.Fidelity
			rq.SingleQubitError = &e
		}
		if q.MeasError.ReadoutAssignmentError != nil {
			rq.ReadoutError = q.MeasError.ReadoutAssignmentError
		} else if q.MeasError.ProbMeas1Prep0 != nil && q.MeasError.ProbMeas0Prep1 != nil {
			e := (*q.MeasError.ProbMeas1Prep0 + *q.MeasError.ProbMeas0Prep1) / 2
			rq.ReadoutError = &e
		}
		raw.Qubits[q.ID] = rq
	}

	for _, c := range spec.Couplings {
		pair := core.Coupling{Control: c.Control, Target: c.Target}
		topo.Couplings = append(topo.Couplings, pair)
		raw.Edges[pair] = core.RawEdge{
			CxError:        c.CxError,
			CxErrorReverse: c.CxErrorReverse,
		}
	}

	desc := &core.DeviceDescriptor{
		Name:         spec.DeviceID,
		CalibratedAt: spec.CalibratedAt,
		Topology:     topo,
		Raw:          raw,
	}
	return desc, desc.Topology.Validate()
}

// FileDevice loads the descriptor from a JSON file named by the device
// setting. Implements core.DeviceLoader.
type FileDevice struct {
	setting *DeviceSetting
}

func (d *FileDevice) Setup(conf *core.Conf) error {
	s, ok := core.GetComponentSetting("device")
	if ok {
		// partial setting is not allowed
		mapped, isMap := s.(map[string]interface{})
		if isMap {
			name, nameOK := mapped["device_name"].(string)
			path, pathOK := mapped["descriptor_path"].(string)
			if !nameOK || !pathOK {
				return fmt.Errorf("device setting needs device_name and descriptor_path strings, got %v", s)
			}
			d.setting = &DeviceSetting{
				DeviceName:     name,
				DescriptorPath: path,
			}
			return nil
		}
		zap.L().Error(fmt.Sprintf("device setting has an unexpected shape:%v", s))
	}
	ds, err := LoadDeviceSetting(conf.DeviceSettingPath)
	if err != nil {
		return err
	}
	d.setting = ds
	return nil
}

func (d *FileDevice) Load() (*core.DeviceDescriptor, error) {
	blob, err := common.ReadFile(d.setting.DescriptorPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read device descriptor:%s/reason:%s",
			d.setting.DescriptorPath, err))
		return nil, err
	}
	spec, err := ParseDeviceInfoSpec(blob)
	if err != nil {
		return nil, err
	}
	desc, err := ToDescriptor(spec)
	if err != nil {
		return nil, err
	}
	if d.setting.DeviceName != "" && d.setting.DeviceName != "unknown_device" {
		desc.Name = d.setting.DeviceName
	}
	zap.L().Debug(fmt.Sprintf("loaded device descriptor/name:%s/qubits:%d/couplings:%d/calibratedAt:%s",
		desc.Name, desc.Topology.NumQubits, len(desc.Topology.Couplings), desc.CalibratedAt))
	return desc, nil
}
