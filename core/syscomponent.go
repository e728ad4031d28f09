package core

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var systemComponents *SystemComponents

// DeviceDescriptor is the boundary record supplied by a backend: the fixed
// coupling topology plus the raw calibration readings of one snapshot.
type DeviceDescriptor struct {
	Name         string
	CalibratedAt string
	Topology     Topology
	Raw          *RawCalibration
}

type DeviceLoader interface {
	Setup(*Conf) error
	Load() (*DeviceDescriptor, error)
}

type Normalizer interface {
	Normalize(Topology, *RawCalibration) (*CalibrationSnapshot, error)
	DeriveHyperParameters(*CalibrationSnapshot) HyperParameters
}

type GraphBuilder interface {
	Build(Topology, *CalibrationSnapshot, HyperParameters) (NoiseGraph, error)
}

type PatchSelector interface {
	Select(NoiseGraph, int, HyperParameters) (*SelectionResult, error)
}

type LayoutAdapter interface {
	ToLayout(*DeviceDescriptor, *SelectionResult, int) (LayoutMapping, *SelectionMetadata, error)
}

type SystemComponents struct {
	*dig.Container
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{con}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	zap.L().Debug("Setting up device loader")
	err := s.Invoke(
		func(d DeviceLoader) error {
			return d.Setup(conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

// RunSelection drives the whole pipeline: load descriptor, normalize,
// derive/overlay hyperparameters, build graph, select, adapt layout.
// Hyperparameter overrides come from the [com.hyperparams] setting table;
// seed comes from conf when non-zero.
func (s *SystemComponents) RunSelection(conf *Conf, k, virtualQubits int) (LayoutMapping, *SelectionMetadata, error) {
	var (
		mapping LayoutMapping
		meta    *SelectionMetadata
	)
	err := s.Invoke(func(dl DeviceLoader, n Normalizer, gb GraphBuilder, ps PatchSelector, la LayoutAdapter) error {
		desc, err := dl.Load()
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to load device descriptor/reason:%s", err))
			return err
		}
		if err := desc.Topology.Validate(); err != nil {
			return err
		}
		snapshot, err := n.Normalize(desc.Topology, desc.Raw)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to normalize calibration of %s/reason:%s", desc.Name, err))
			return err
		}
		hyper := n.DeriveHyperParameters(snapshot)
		hyper, err = overlayHyperSetting(hyper)
		if err != nil {
			return err
		}
		if conf.Seed != 0 {
			hyper.Seed = conf.Seed
		}
		graph, err := gb.Build(desc.Topology, snapshot, hyper)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to build noise graph of %s/reason:%s", desc.Name, err))
			return err
		}
		result, err := ps.Select(graph, k, hyper)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to select a %d-qubit patch on %s/reason:%s", k, desc.Name, err))
			return err
		}
		if virtualQubits == 0 {
			virtualQubits = k
		}
		mapping, meta, err = la.ToLayout(desc, result, virtualQubits)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return mapping, meta, nil
}

func overlayHyperSetting(base HyperParameters) (HyperParameters, error) {
	s, ok := GetComponentSetting("hyperparams")
	if !ok {
		return base, nil
	}
	mapped, ok := s.(map[string]interface{})
	if !ok {
		zap.L().Error(fmt.Sprintf("hyperparams setting has an unexpected shape:%v", s))
		return base, nil
	}
	h, err := ParseHyperParameterMap(base, mapped)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to apply hyperparams setting/reason:%s", err))
		return base, err
	}
	return h, nil
}
