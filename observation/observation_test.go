package observation

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestFieldsFollowFeatureOrder(t *testing.T) {
	fields := Default().Fields()
	require.Len(t, fields, len(FeatureOrder))
	for i, f := range fields {
		assert.Equal(t, FeatureOrder[i], f.Name)
	}
}

func TestControlsMatchDefault(t *testing.T) {
	values := url.Values{}
	for _, c := range Controls() {
		values.Set(c.Name, c.Default)
	}
	obs, err := FromValues(values)
	require.NoError(t, err)
	assert.Equal(t, Default(), obs)
}

func TestControlsCoverEveryFeature(t *testing.T) {
	kinds := map[ControlKind]int{}
	names := map[string]bool{}
	for _, c := range Controls() {
		kinds[c.Kind]++
		names[c.Name] = true
	}
	assert.Equal(t, 5, kinds[Slider])
	assert.Equal(t, 5, kinds[Toggle])
	assert.Equal(t, 3, kinds[Select])
	for _, name := range FeatureOrder {
		assert.True(t, names[name], name)
	}
}

func TestSliderBoundsAreEnforced(t *testing.T) {
	for _, c := range Controls() {
		if c.Kind != Slider {
			continue
		}
		t.Run(c.Name, func(t *testing.T) {
			for _, v := range []float64{c.Min, c.Max} {
				_, err := FromValues(url.Values{c.Name: {strconv.FormatFloat(v, 'f', -1, 64)}})
				assert.NoError(t, err, "bound %v", v)
			}
			for _, v := range []float64{c.Min - 1, c.Max + 1} {
				_, err := FromValues(url.Values{c.Name: {strconv.FormatFloat(v, 'f', -1, 64)}})
				assert.ErrorIs(t, err, ErrInvalidInput, "value %v", v)
			}
		})
	}
}

func TestFromValues(t *testing.T) {
	obs, err := FromValues(url.Values{
		AirTemperatureK:    {"301.5"},
		RotationalSpeedRPM: {"2800"},
		HDF:                {"1"},
		ProductID:          {"1005"},
		TypeL:              {"false"},
	})
	require.NoError(t, err)
	assert.Equal(t, 301.5, obs.AirTemperature)
	assert.Equal(t, 2800, obs.RotationalSpeed)
	assert.Equal(t, 1, obs.HDF)
	assert.Equal(t, 0, obs.TWF)
	assert.Equal(t, 1005, obs.ProductID)
	assert.False(t, obs.TypeL)
	assert.True(t, obs.TypeM)
}

func TestFromValuesRejectsForgedInput(t *testing.T) {
	cases := map[string]url.Values{
		"flag out of range":  {TWF: {"2"}},
		"unknown product":    {ProductID: {"9999"}},
		"not a number":       {TorqueNm: {"lots"}},
		"fractional rpm":     {RotationalSpeedRPM: {"1500.5"}},
		"not a bool":         {TypeM: {"maybe"}},
		"nan temperature":    {AirTemperatureK: {"NaN"}},
		"negative tool wear": {ToolWearMin: {"-1"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromValues(values)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
