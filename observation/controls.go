package observation

type ControlKind string

const (
	Slider ControlKind = "slider"
	Toggle ControlKind = "toggle"
	Select ControlKind = "select"
)

type Option struct {
	Value string
	Label string
}

// Control describes one form input. Min, Max, Step apply to sliders; Options to selectors.
type Control struct {
	Name    string
	Label   string
	Help    string
	Kind    ControlKind
	Min     float64
	Max     float64
	Step    float64
	Default string
	Options []Option
}

var boolOptions = []Option{{Value: "true", Label: "True"}, {Value: "false", Label: "False"}}

var controls = []Control{
	{Name: AirTemperatureK, Label: "Air Temperature [K]", Kind: Slider, Min: 295, Max: 305, Step: 0.1, Default: "300.0"},
	{Name: ProcessTemperatureK, Label: "Process Temperature [K]", Kind: Slider, Min: 305, Max: 315, Step: 0.1, Default: "310.0"},
	{Name: RotationalSpeedRPM, Label: "Rotational Speed [rpm]", Kind: Slider, Min: 1200, Max: 3000, Step: 1, Default: "1500"},
	{Name: TorqueNm, Label: "Torque [Nm]", Kind: Slider, Min: 10, Max: 100, Step: 0.1, Default: "40.0"},
	{Name: ToolWearMin, Label: "Tool Wear [min]", Kind: Slider, Min: 0, Max: 300, Step: 1, Default: "100"},
	{Name: TWF, Label: "TWF", Help: "Tool Wear Failure (1 = Failure, 0 = No Failure)", Kind: Toggle, Default: "0"},
	{Name: HDF, Label: "HDF", Help: "Heat Dissipation Failure (1 = Failure, 0 = No Failure)", Kind: Toggle, Default: "0"},
	{Name: PWF, Label: "PWF", Help: "Power Failure (1 = Failure, 0 = No Failure)", Kind: Toggle, Default: "0"},
	{Name: OSF, Label: "OSF", Help: "Overstrain Failure (1 = Failure, 0 = No Failure)", Kind: Toggle, Default: "0"},
	{Name: RNF, Label: "RNF", Help: "Random Failure (1 = Failure, 0 = No Failure)", Kind: Toggle, Default: "0"},
	{
		Name:    ProductID,
		Label:   "Product ID",
		Help:    "A unique ID for each machine being monitored (like a serial number).",
		Kind:    Select,
		Default: "7003",
		Options: []Option{{"7003", "7003"}, {"1003", "1003"}, {"1004", "1004"}, {"1005", "1005"}, {"1006", "1006"}},
	},
	{Name: TypeL, Label: "Type_L", Help: "Binary indicator for one category of machine (1 = Machine belongs to Type L).", Kind: Select, Default: "true", Options: boolOptions},
	{Name: TypeM, Label: "Type_M", Help: "Binary indicator for another category of machine (1 = Machine belongs to Type M).", Kind: Select, Default: "true", Options: boolOptions},
}

// Controls returns the form controls in display order.
func Controls() []Control {
	out := make([]Control, len(controls))
	copy(out, controls)
	return out
}

// Default is the observation an untouched form submits.
func Default() Observation {
	return Observation{
		AirTemperature:     300.0,
		ProcessTemperature: 310.0,
		RotationalSpeed:    1500,
		Torque:             40.0,
		ToolWear:           100,
		ProductID:          7003,
		TypeL:              true,
		TypeM:              true,
	}
}
