package ml

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// CachedModel memoizes labels by feature values. Models are deterministic, so a hit is always
// the label the wrapped model would return.
type CachedModel struct {
	model Model
	names []string
	cache *lru.Cache[string, Label]
}

func NewCachedModel(model Model, size int) (*CachedModel, error) {
	cache, err := lru.New[string, Label](size)
	if err != nil {
		return nil, errors.Wrap(err, "create prediction cache")
	}
	return &CachedModel{model: model, names: model.FeatureNames(), cache: cache}, nil
}

func (c *CachedModel) FeatureNames() []string {
	return c.model.FeatureNames()
}

func (c *CachedModel) Predict(record Record) (Label, error) {
	if err := checkRecord(c.names, record); err != nil {
		return NoFailure, err
	}
	key := recordKey(record.Values)
	if label, ok := c.cache.Get(key); ok {
		return label, nil
	}
	label, err := c.model.Predict(record)
	if err != nil {
		return NoFailure, err
	}
	c.cache.Add(key, label)
	return label, nil
}

// Unwrap returns the underlying model.
func (c *CachedModel) Unwrap() Model {
	return c.model
}

func (c *CachedModel) Len() int {
	return c.cache.Len()
}

func recordKey(values []float64) string {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return sb.String()
}
