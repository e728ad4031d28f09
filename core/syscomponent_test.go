//go:build unit
// +build unit

package core_test

import (
	"testing"

	"github.com/qpatch-dev/smartlayout/calib"
	"github.com/qpatch-dev/smartlayout/core"
	"github.com/qpatch-dev/smartlayout/device"
	"github.com/qpatch-dev/smartlayout/layout"
	"github.com/qpatch-dev/smartlayout/noisegraph"
	"github.com/qpatch-dev/smartlayout/selector"
	"github.com/stretchr/testify/assert"
	"go.uber.org/dig"
)

func dummyContainer(t *testing.T) *core.SystemComponents {
	t.Helper()
	c := dig.New()
	assert.Nil(t, c.Provide(func() core.DeviceLoader { return &device.DummyDevice{} }))
	assert.Nil(t, c.Provide(func() core.Normalizer { return calib.NewDefaultNormalizer() }))
	assert.Nil(t, c.Provide(func() core.GraphBuilder { return noisegraph.NewDefaultBuilder() }))
	assert.Nil(t, c.Provide(func() core.PatchSelector { return selector.NewGreedy() }))
	assert.Nil(t, c.Provide(func() core.LayoutAdapter { return layout.NewAdapter() }))
	return core.NewSystemComponents(c)
}

func TestRunSelectionEndToEndOnDummyDevice(t *testing.T) {
	core.ResetSetting()
	s := dummyContainer(t)
	conf := &core.Conf{Seed: 1}
	assert.Nil(t, s.Setup(conf))

	mapping, meta, err := s.RunSelection(conf, 2, 0)
	assert.Nil(t, err)
	assert.Len(t, mapping, 2)
	assert.Len(t, meta.PhysicalQubits, 2)
	assert.NotEmpty(t, meta.RunID)
	assert.NotEmpty(t, meta.DeviceName)
	assert.Greater(t, meta.TotalCost, 0.0)

	// same conf, fresh run: identical layout
	mapping2, meta2, err := s.RunSelection(conf, 2, 0)
	assert.Nil(t, err)
	assert.Equal(t, mapping, mapping2)
	assert.Equal(t, meta.TotalCost, meta2.TotalCost)
}

func TestRunSelectionAppliesHyperparamsSetting(t *testing.T) {
	core.ResetSetting()
	core.RegisterSetting("hyperparams", map[string]interface{}{"seed": 9, "restarts": 5})
	s := dummyContainer(t)
	conf := &core.Conf{}
	assert.Nil(t, s.Setup(conf))

	_, meta, err := s.RunSelection(conf, 2, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(9), meta.Hyper.Seed)
	assert.Equal(t, 5, meta.Hyper.Restarts)
	assert.Len(t, meta.RestartCosts, 5)
}

func TestRunSelectionRejectsUnknownHyperparameterName(t *testing.T) {
	core.ResetSetting()
	core.RegisterSetting("hyperparams", map[string]interface{}{"bogus_weight": 1.0})
	s := dummyContainer(t)
	conf := &core.Conf{}
	assert.Nil(t, s.Setup(conf))

	_, _, err := s.RunSelection(conf, 2, 0)
	assert.ErrorIs(t, err, core.ErrUnknownHyperparameter)
}

func TestRunSelectionConfSeedOverridesDerived(t *testing.T) {
	core.ResetSetting()
	s := dummyContainer(t)
	conf := &core.Conf{Seed: 42}
	assert.Nil(t, s.Setup(conf))

	_, meta, err := s.RunSelection(conf, 2, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(42), meta.Hyper.Seed)
}

func TestRunSelectionVirtualQubitsDefaultToPatchSize(t *testing.T) {
	core.ResetSetting()
	s := dummyContainer(t)
	conf := &core.Conf{Seed: 1}
	assert.Nil(t, s.Setup(conf))

	mapping, _, err := s.RunSelection(conf, 3, 0)
	assert.Nil(t, err)
	assert.Len(t, mapping, 3)

	mapping, _, err = s.RunSelection(conf, 3, 2)
	assert.Nil(t, err)
	assert.Len(t, mapping, 2)
}
