package observation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FromValues builds an Observation from submitted form values. Absent fields keep their control
// default; anything outside a control's bounds is rejected.
func FromValues(values url.Values) (Observation, error) {
	obs := Default()
	var err error
	parse := func(name string, apply func(string) error) {
		raw := strings.TrimSpace(values.Get(name))
		if err != nil || raw == "" {
			return
		}
		if perr := apply(raw); perr != nil {
			err = errors.Wrapf(ErrInvalidInput, "%s: %v", name, perr)
		}
	}

	parse(AirTemperatureK, floatInto(&obs.AirTemperature))
	parse(ProcessTemperatureK, floatInto(&obs.ProcessTemperature))
	parse(RotationalSpeedRPM, intInto(&obs.RotationalSpeed))
	parse(TorqueNm, floatInto(&obs.Torque))
	parse(ToolWearMin, intInto(&obs.ToolWear))
	parse(TWF, intInto(&obs.TWF))
	parse(HDF, intInto(&obs.HDF))
	parse(PWF, intInto(&obs.PWF))
	parse(OSF, intInto(&obs.OSF))
	parse(RNF, intInto(&obs.RNF))
	parse(ProductID, intInto(&obs.ProductID))
	parse(TypeL, boolInto(&obs.TypeL))
	parse(TypeM, boolInto(&obs.TypeM))
	if err != nil {
		return Observation{}, err
	}

	if err := Validate(obs); err != nil {
		return Observation{}, err
	}
	return obs, nil
}

func floatInto(dst *float64) func(string) error {
	return func(raw string) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func intInto(dst *int) func(string) error {
	return func(raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func boolInto(dst *bool) func(string) error {
	return func(raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
