package ml

import "github.com/pkg/errors"

var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrSchemaMismatch   = errors.New("feature schema mismatch")
)

type Label int

const (
	NoFailure Label = 0
	Failure   Label = 1
)

func (l Label) String() string {
	if l == Failure {
		return "Machine Failure"
	}
	return "No Machine Failure"
}

// Record is a single aligned row: Values[i] is the value of feature Names[i].
type Record struct {
	Names  []string
	Values []float64
}

// Model is a trained binary classifier over named features.
type Model interface {
	Predict(record Record) (Label, error)
	FeatureNames() []string
}

func checkRecord(names []string, record Record) error {
	if len(record.Names) != len(record.Values) {
		return errors.Wrapf(ErrSchemaMismatch, "record has %d names but %d values", len(record.Names), len(record.Values))
	}
	if len(record.Names) != len(names) {
		return errors.Wrapf(ErrSchemaMismatch, "model expects %d features, record has %d", len(names), len(record.Names))
	}
	for i, name := range names {
		if record.Names[i] != name {
			return errors.Wrapf(ErrSchemaMismatch, "feature %d is %q, model expects %q", i, record.Names[i], name)
		}
	}
	return nil
}
