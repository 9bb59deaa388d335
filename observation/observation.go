// Package observation collects one machine reading from the form and aligns it to a model's
// feature order.
package observation

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var ErrInvalidInput = errors.New("invalid observation")

// Feature names as the model was trained on them.
const (
	AirTemperatureK     = "Air_temperature_K"
	ProcessTemperatureK = "Process_temperature_K"
	RotationalSpeedRPM  = "Rotational_speed_rpm"
	TorqueNm            = "Torque_Nm"
	ToolWearMin         = "Tool_wear_min"
	TWF                 = "TWF"
	HDF                 = "HDF"
	PWF                 = "PWF"
	OSF                 = "OSF"
	RNF                 = "RNF"
	ProductID           = "Product_ID"
	TypeL               = "Type_L"
	TypeM               = "Type_M"
)

// FeatureOrder is the canonical column order of an observation.
var FeatureOrder = []string{
	AirTemperatureK, ProcessTemperatureK, RotationalSpeedRPM, TorqueNm, ToolWearMin,
	TWF, HDF, PWF, OSF, RNF,
	ProductID, TypeL, TypeM,
}

// ProductIDs are the machines the form offers, in selector order.
var ProductIDs = []int{7003, 1003, 1004, 1005, 1006}

type Observation struct {
	AirTemperature     float64 `json:"Air_temperature_K" validate:"gte=295,lte=305"`
	ProcessTemperature float64 `json:"Process_temperature_K" validate:"gte=305,lte=315"`
	RotationalSpeed    int     `json:"Rotational_speed_rpm" validate:"gte=1200,lte=3000"`
	Torque             float64 `json:"Torque_Nm" validate:"gte=10,lte=100"`
	ToolWear           int     `json:"Tool_wear_min" validate:"gte=0,lte=300"`

	TWF int `json:"TWF" validate:"oneof=0 1"`
	HDF int `json:"HDF" validate:"oneof=0 1"`
	PWF int `json:"PWF" validate:"oneof=0 1"`
	OSF int `json:"OSF" validate:"oneof=0 1"`
	RNF int `json:"RNF" validate:"oneof=0 1"`

	ProductID int  `json:"Product_ID" validate:"oneof=7003 1003 1004 1005 1006"`
	TypeL     bool `json:"Type_L"`
	TypeM     bool `json:"Type_M"`
}

type Field struct {
	Name  string
	Value float64
}

var validate = validator.New()

func Validate(obs Observation) error {
	if err := validate.Struct(obs); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return errors.Wrapf(ErrInvalidInput, "%s=%v fails %s=%s", first.Field(), first.Value(), first.Tag(), first.Param())
		}
		return errors.Wrap(ErrInvalidInput, err.Error())
	}
	return nil
}

// Fields lists the observation in FeatureOrder; booleans become 1 or 0.
func (o Observation) Fields() []Field {
	return []Field{
		{AirTemperatureK, o.AirTemperature},
		{ProcessTemperatureK, o.ProcessTemperature},
		{RotationalSpeedRPM, float64(o.RotationalSpeed)},
		{TorqueNm, o.Torque},
		{ToolWearMin, float64(o.ToolWear)},
		{TWF, float64(o.TWF)},
		{HDF, float64(o.HDF)},
		{PWF, float64(o.PWF)},
		{OSF, float64(o.OSF)},
		{RNF, float64(o.RNF)},
		{ProductID, float64(o.ProductID)},
		{TypeL, boolValue(o.TypeL)},
		{TypeM, boolValue(o.TypeM)},
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
