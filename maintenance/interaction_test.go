package maintenance

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predmaint/ml"
	"predmaint/observation"
)

type constantModel struct {
	label ml.Label
	names []string
	calls int
}

func (m *constantModel) FeatureNames() []string {
	if m.names != nil {
		return m.names
	}
	return observation.FeatureOrder
}

func (m *constantModel) Predict(record ml.Record) (ml.Label, error) {
	m.calls++
	return m.label, nil
}

type stubProvider struct {
	model ml.Model
	err   error
}

func (p stubProvider) Current() (ml.Model, error) { return p.model, p.err }
func (p stubProvider) Path() string { return "/srv/models/xgb_model.json" }

func scenarioObservation() observation.Observation {
	return observation.Observation{
		AirTemperature:     300.0,
		ProcessTemperature: 310.0,
		RotationalSpeed:    1500,
		Torque:             40.0,
		ToolWear:           100,
		ProductID:          7003,
		TypeL:              false,
		TypeM:              false,
	}
}

func TestNoFailureScenario(t *testing.T) {
	model := &constantModel{label: ml.NoFailure}
	result, err := HandleInteraction(scenarioObservation(), stubProvider{model: model}, true)
	require.NoError(t, err)

	require.NotNil(t, result.Prediction)
	assert.Equal(t, "No Machine Failure", result.Prediction.Headline)
	assert.Equal(t, Reassurance, result.Prediction.Message)
	assert.Empty(t, result.Prediction.Reasons)
	assert.False(t, result.Prediction.Failure)
	assert.True(t, result.PredictEnabled)
	assert.Empty(t, result.ConfigError)
}

func TestHeatDissipationScenario(t *testing.T) {
	obs := scenarioObservation()
	obs.HDF = 1
	result, err := HandleInteraction(obs, stubProvider{model: &constantModel{label: ml.Failure}}, true)
	require.NoError(t, err)

	require.NotNil(t, result.Prediction)
	assert.Equal(t, "Machine Failure", result.Prediction.Headline)
	assert.Equal(t, ReasonsIntro, result.Prediction.Message)
	assert.Equal(t, []string{"Heat Dissipation Failure"}, result.Prediction.Reasons)
}

func TestFailureWithoutFlagsHasNote(t *testing.T) {
	result, err := HandleInteraction(scenarioObservation(), stubProvider{model: &constantModel{label: ml.Failure}}, true)
	require.NoError(t, err)

	assert.Empty(t, result.Prediction.Reasons)
	assert.Equal(t, NoReasonsNote, result.Prediction.Message)
}

func TestPredictionOnlyOnRequest(t *testing.T) {
	model := &constantModel{label: ml.Failure}
	result, err := HandleInteraction(scenarioObservation(), stubProvider{model: model}, false)
	require.NoError(t, err)

	assert.Nil(t, result.Prediction)
	assert.True(t, result.PredictEnabled)
	assert.Len(t, result.Rows, 13)
	assert.Zero(t, model.calls)
}

func TestMissingModelIsAConfigurationError(t *testing.T) {
	provider := stubProvider{err: errors.Wrap(ml.ErrModelUnavailable, "no such file")}
	result, err := HandleInteraction(scenarioObservation(), provider, true)
	require.NoError(t, err)

	assert.Equal(t, "Model not found. Please upload 'xgb_model.json' to the repository.", result.ConfigError)
	assert.False(t, result.PredictEnabled)
	assert.Nil(t, result.Prediction)
	assert.Len(t, result.Rows, 13)
}

func TestSchemaMismatchAbortsRender(t *testing.T) {
	model := &constantModel{names: []string{"Air_temperature_K", "Humidity"}}
	_, err := HandleInteraction(scenarioObservation(), stubProvider{model: model}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ml.ErrSchemaMismatch)
	assert.Zero(t, model.calls)
}

func TestRowsFormatting(t *testing.T) {
	obs := scenarioObservation()
	obs.RotationalSpeed = 2500
	rows := Rows(obs)

	byName := map[string]string{}
	for _, r := range rows {
		byName[r.Name] = r.Value
	}
	assert.Equal(t, "300.0 K", byName[observation.AirTemperatureK])
	assert.Equal(t, "2,500 rpm", byName[observation.RotationalSpeedRPM])
	assert.Equal(t, "40.0 Nm", byName[observation.TorqueNm])
	assert.Equal(t, "7003", byName[observation.ProductID])
	assert.Equal(t, "False", byName[observation.TypeL])
}

func TestRowsKeepFullPrecision(t *testing.T) {
	obs := scenarioObservation()
	obs.AirTemperature = 300.15
	obs.Torque = 65.25

	byName := map[string]string{}
	for _, r := range Rows(obs) {
		byName[r.Name] = r.Value
	}
	assert.Equal(t, "300.15 K", byName[observation.AirTemperatureK])
	assert.Equal(t, "65.25 Nm", byName[observation.TorqueNm])
	assert.Equal(t, "310.0 K", byName[observation.ProcessTemperatureK])
}
