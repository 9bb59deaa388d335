package observation

import (
	"github.com/pkg/errors"

	"predmaint/ml"
)

// Align permutes the observation into order. Every name in order must be an observation feature,
// used once, and every observation feature must be named.
func Align(obs Observation, order []string) (ml.Record, error) {
	fields := obs.Fields()
	byName := make(map[string]float64, len(fields))
	for _, f := range fields {
		byName[f.Name] = f.Value
	}

	record := ml.Record{
		Names:  make([]string, 0, len(order)),
		Values: make([]float64, 0, len(order)),
	}
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		value, ok := byName[name]
		if !ok {
			return ml.Record{}, errors.Wrapf(ml.ErrSchemaMismatch, "model expects feature %q which the observation does not have", name)
		}
		if seen[name] {
			return ml.Record{}, errors.Wrapf(ml.ErrSchemaMismatch, "model lists feature %q more than once", name)
		}
		seen[name] = true
		record.Names = append(record.Names, name)
		record.Values = append(record.Values, value)
	}
	for _, f := range fields {
		if !seen[f.Name] {
			return ml.Record{}, errors.Wrapf(ml.ErrSchemaMismatch, "model does not expect observation feature %q", f.Name)
		}
	}
	return record, nil
}
