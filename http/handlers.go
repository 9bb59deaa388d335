package http

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"predmaint/maintenance"
	"predmaint/ml"
	"predmaint/observation"
)

type handlers struct {
	models   ModelSource
	logger   *zap.Logger
	page     *template.Template
	upgrader websocket.Upgrader
}

func RegisterHandlers(mux *http.ServeMux, models ModelSource, logger *zap.Logger) {
	h := &handlers{
		models: models,
		logger: logger,
		page:   pageTemplate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
	mux.Handle("GET /static/", staticHandler())
	mux.HandleFunc("GET /ws/preview", h.handlePreview)

	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("POST /api/predict", h.handlePredictAPI)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.models.Status())
}

// handleIndex renders the form with the observation but never predicts.
func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	obs, err := observation.FromValues(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.render(w, r, obs, false)
}

// handlePredictForm is the explicit Predict action.
func (h *handlers) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	obs, err := observation.FromValues(r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.render(w, r, obs, true)
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request, obs observation.Observation, predict bool) {
	result, err := maintenance.HandleInteraction(obs, h.models, predict)
	if err != nil {
		h.logger.Error("interaction aborted",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result.Prediction != nil {
		h.logger.Info("prediction",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Int("product_id", obs.ProductID),
			zap.Stringer("label", result.Prediction.Label),
			zap.Strings("reasons", result.Prediction.Reasons))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, newPageData(result)); err != nil {
		h.logger.Error("render page", zap.Error(err))
	}
}

// handlePredictAPI accepts a JSON observation; fields left out take their control defaults.
func (h *handlers) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	obs := observation.Default()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&obs); err != nil {
		respondError(w, http.StatusBadRequest, errors.Wrap(observation.ErrInvalidInput, err.Error()))
		return
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		respondError(w, http.StatusBadRequest, errors.Wrap(observation.ErrInvalidInput, "trailing data after observation"))
		return
	}
	if err := observation.Validate(obs); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := maintenance.HandleInteraction(obs, h.models, true)
	switch {
	case errors.Is(err, ml.ErrSchemaMismatch):
		h.logger.Error("schema mismatch", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if result.ConfigError != "" {
		respondJSON(w, http.StatusServiceUnavailable, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type previewReply struct {
	Rows  []maintenance.Row `json:"rows,omitempty"`
	Error string            `json:"error,omitempty"`
}

// handlePreview streams the observation table back on every control change.
func (h *handlers) handlePreview(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var fields map[string]string
		if err := conn.ReadJSON(&fields); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("preview connection closed", zap.Error(err))
			}
			return
		}

		values := url.Values{}
		for name, value := range fields {
			values.Set(name, value)
		}
		var reply previewReply
		if obs, err := observation.FromValues(values); err != nil {
			reply.Error = err.Error()
		} else {
			reply.Rows = maintenance.Rows(obs)
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
