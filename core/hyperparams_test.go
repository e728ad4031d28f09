//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultHyperParametersValid(t *testing.T) {
	assert.Nil(t, DefaultHyperParameters().Validate())
}

func TestHyperParametersValidate(t *testing.T) {
	h := DefaultHyperParameters()
	h.ReadoutWeight = -0.1
	assert.ErrorIs(t, h.Validate(), ErrMalformedCalibration)

	h = DefaultHyperParameters()
	h.Restarts = 0
	assert.ErrorIs(t, h.Validate(), ErrMalformedCalibration)
}

func TestParseHyperParameterMap(t *testing.T) {
	base := DefaultHyperParameters()
	got, err := ParseHyperParameterMap(base, map[string]interface{}{
		"two_qubit_weight": 2.5,
		"restarts":         int64(7),
		"seed":             int64(99),
	})
	assert.Nil(t, err)
	assert.Equal(t, 2.5, got.TwoQubitWeight)
	assert.Equal(t, 7, got.Restarts)
	assert.Equal(t, int64(99), got.Seed)
	// untouched options keep the base values
	assert.Equal(t, base.ReadoutWeight, got.ReadoutWeight)
}

func TestParseHyperParameterMapUnknownName(t *testing.T) {
	base := DefaultHyperParameters()
	_, err := ParseHyperParameterMap(base, map[string]interface{}{
		"proximity_wait": 1.0,
	})
	assert.ErrorIs(t, err, ErrUnknownHyperparameter)
}

func TestParseHyperParameterMapRejectsNonNumber(t *testing.T) {
	base := DefaultHyperParameters()
	_, err := ParseHyperParameterMap(base, map[string]interface{}{
		"seed": "not-a-number",
	})
	assert.ErrorIs(t, err, ErrUnknownHyperparameter)
}

func TestDefaultHyperParametersJson(t *testing.T) {
	j := DefaultHyperParametersJson()
	raw, ok := j["hyperparameters"]
	assert.True(t, ok)
	assert.Contains(t, string(raw), `"two_qubit_weight":1`)
}
