package ml

import (
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Registry publishes the model serving predictions. A published model is never mutated; Reload
// swaps in a freshly loaded one.
type Registry struct {
	modelType string
	path      string
	cacheSize int
	logger    *zap.Logger
	state     atomic.Pointer[registryState]
}

type registryState struct {
	model    Model
	err      error
	loadedAt time.Time
}

type Status struct {
	Loaded    bool      `json:"loaded"`
	ModelType string    `json:"model_type"`
	Path      string    `json:"path"`
	Features  []string  `json:"features,omitempty"`
	Error     string    `json:"error,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
}

// NewRegistry loads the artifact once. A failed load is kept as the registry state rather than
// returned, so the caller keeps running and reports it.
func NewRegistry(modelType, path string, cacheSize int, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	r := &Registry{
		modelType: modelType,
		path:      filepath.Clean(path),
		cacheSize: cacheSize,
		logger:    logger,
	}
	if err := r.Reload(); err != nil {
		logger.Warn("model not loaded", zap.String("path", r.path), zap.Error(err))
	}
	return r
}

func (r *Registry) Reload() error {
	model, err := LoadModel(r.modelType, r.path)
	if err == nil && r.cacheSize > 0 {
		model, err = NewCachedModel(model, r.cacheSize)
	}
	if err != nil {
		r.state.Store(&registryState{err: err})
		return err
	}
	r.state.Store(&registryState{model: model, loadedAt: time.Now()})
	r.logger.Info("model loaded",
		zap.String("path", r.path),
		zap.String("type", r.modelType),
		zap.Strings("features", model.FeatureNames()))
	return nil
}

func (r *Registry) Current() (Model, error) {
	state := r.state.Load()
	if state == nil {
		return nil, ErrModelUnavailable
	}
	if state.err != nil {
		return nil, state.err
	}
	return state.model, nil
}

func (r *Registry) Path() string {
	return r.path
}

func (r *Registry) Status() Status {
	status := Status{ModelType: r.modelType, Path: r.path}
	state := r.state.Load()
	if state == nil {
		status.Error = ErrModelUnavailable.Error()
		return status
	}
	if state.err != nil {
		status.Error = state.err.Error()
		return status
	}
	status.Loaded = true
	status.Features = state.model.FeatureNames()
	status.LoadedAt = state.loadedAt
	return status
}
