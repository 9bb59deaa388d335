// Package maintenance turns one observation into what the page shows: the observation itself,
// and on request the model's verdict with its explanation.
package maintenance

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"predmaint/ml"
	"predmaint/observation"
)

const (
	ReasonsIntro   = "Possible reasons for failure:"
	NoReasonsNote  = "No specific failure indicators were set."
	Reassurance    = "The machine is operating within normal parameters. All critical factors are within safe limits."
	configErrorFmt = "Model not found. Please upload '%s' to the repository."
)

// Provider is the source of the current model; Path names the artifact it loads from.
type Provider interface {
	Current() (ml.Model, error)
	Path() string
}

type Row struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Prediction struct {
	Label    ml.Label `json:"label"`
	Headline string   `json:"headline"`
	Failure  bool     `json:"failure"`
	Reasons  []string `json:"reasons"`
	Message  string   `json:"message"`
}

// Result is everything one interaction renders.
type Result struct {
	Observation    observation.Observation `json:"observation"`
	Rows           []Row                   `json:"rows"`
	PredictEnabled bool                    `json:"predict_enabled"`
	ConfigError    string                  `json:"config_error,omitempty"`
	Prediction     *Prediction             `json:"prediction,omitempty"`
}

// HandleInteraction runs one pass of the pipeline. A missing model is reported in the result,
// not as an error; a schema mismatch between observation and model aborts with an error.
func HandleInteraction(obs observation.Observation, provider Provider, predict bool) (Result, error) {
	result := Result{
		Observation: obs,
		Rows:        Rows(obs),
	}

	model, err := provider.Current()
	if err != nil {
		result.ConfigError = fmt.Sprintf(configErrorFmt, filepath.Base(provider.Path()))
		return result, nil
	}
	result.PredictEnabled = true

	record, err := observation.Align(obs, model.FeatureNames())
	if err != nil {
		return result, err
	}
	if !predict {
		return result, nil
	}

	label, err := model.Predict(record)
	if err != nil {
		return result, errors.Wrap(err, "predict")
	}
	result.Prediction = present(obs, label)
	return result, nil
}

func present(obs observation.Observation, label ml.Label) *Prediction {
	p := &Prediction{Label: label, Headline: label.String(), Reasons: []string{}}
	if label != ml.Failure {
		p.Message = Reassurance
		return p
	}
	p.Failure = true
	p.Reasons = Explain(obs)
	if len(p.Reasons) == 0 {
		p.Message = NoReasonsNote
	} else {
		p.Message = ReasonsIntro
	}
	return p
}

var printer = message.NewPrinter(language.English)

// decimal renders v exactly as the model receives it, keeping at least one fractional digit.
func decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Rows formats the raw observation for display.
func Rows(obs observation.Observation) []Row {
	yesNo := func(b bool) string {
		if b {
			return "True"
		}
		return "False"
	}
	return []Row{
		{observation.AirTemperatureK, "Air Temperature", decimal(obs.AirTemperature) + " K"},
		{observation.ProcessTemperatureK, "Process Temperature", decimal(obs.ProcessTemperature) + " K"},
		{observation.RotationalSpeedRPM, "Rotational Speed", printer.Sprintf("%d rpm", obs.RotationalSpeed)},
		{observation.TorqueNm, "Torque", decimal(obs.Torque) + " Nm"},
		{observation.ToolWearMin, "Tool Wear", printer.Sprintf("%d min", obs.ToolWear)},
		{observation.TWF, "TWF", printer.Sprintf("%d", obs.TWF)},
		{observation.HDF, "HDF", printer.Sprintf("%d", obs.HDF)},
		{observation.PWF, "PWF", printer.Sprintf("%d", obs.PWF)},
		{observation.OSF, "OSF", printer.Sprintf("%d", obs.OSF)},
		{observation.RNF, "RNF", printer.Sprintf("%d", obs.RNF)},
		{observation.ProductID, "Product ID", fmt.Sprintf("%d", obs.ProductID)},
		{observation.TypeL, "Type_L", yesNo(obs.TypeL)},
		{observation.TypeM, "Type_M", yesNo(obs.TypeM)},
	}
}
