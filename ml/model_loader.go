package ml

import (
	"os"

	"github.com/pkg/errors"
)

const (
	TypeXGBoost      = "xgboost"
	TypeDecisionTree = "decision_tree"
)

func LoadModel(modelType, path string) (Model, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "stat %s: %v", path, err)
	}
	switch modelType {
	case TypeXGBoost, "":
		model, err := LoadBooster(path)
		if err != nil {
			return nil, errors.Wrapf(ErrModelUnavailable, "load xgboost model %s: %v", path, err)
		}
		return model, nil
	case TypeDecisionTree:
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, errors.Wrapf(ErrModelUnavailable, "load decision tree %s: %v", path, err)
		}
		return model, nil
	default:
		return nil, errors.Wrapf(ErrModelUnavailable, "unsupported model type %q", modelType)
	}
}
