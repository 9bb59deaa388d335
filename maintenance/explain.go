package maintenance

import "predmaint/observation"

type failureMode struct {
	flag   func(observation.Observation) int
	reason string
}

// checked in this order; Explain output follows it
var failureModes = []failureMode{
	{func(o observation.Observation) int { return o.TWF }, "Tool Wear Failure"},
	{func(o observation.Observation) int { return o.HDF }, "Heat Dissipation Failure"},
	{func(o observation.Observation) int { return o.PWF }, "Power Failure"},
	{func(o observation.Observation) int { return o.OSF }, "Overstrain Failure"},
	{func(o observation.Observation) int { return o.RNF }, "Random Failure"},
}

// Explain lists a reason for every failure-mode flag set to 1.
func Explain(obs observation.Observation) []string {
	reasons := []string{}
	for _, mode := range failureModes {
		if mode.flag(obs) == 1 {
			reasons = append(reasons, mode.reason)
		}
	}
	return reasons
}
