package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"churnguard/churn"
	"churnguard/ml"
)

// Predictor is the inference pipeline the handlers dispatch to.
type Predictor interface {
	Predict(ctx context.Context, raw churn.RawInput) (churn.Prediction, error)
	Spec() ml.FeatureSpec
	ModelType() string
}

type Handlers struct {
	predictor Predictor
	logger    *zap.Logger
	printer   *message.Printer
}

func NewHandlers(predictor Predictor, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		predictor: predictor,
		logger:    logger,
		printer:   message.NewPrinter(language.English),
	}
}

func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/features", h.handleFeatures)
	mux.HandleFunc("POST /api/predict", h.handlePredictJSON)
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type featuresResponse struct {
	ModelType string   `json:"model_type"`
	Columns   []string `json:"columns"`
}

func (h *Handlers) handleFeatures(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, featuresResponse{
		ModelType: h.predictor.ModelType(),
		Columns:   h.predictor.Spec(),
	})
}

type predictResponse struct {
	Label      churn.Label `json:"label"`
	Churn      bool        `json:"churn"`
	Confidence float64     `json:"confidence"`
	Columns    []string    `json:"columns"`
	Values     []float64   `json:"values"`
}

func (h *Handlers) handlePredictJSON(w http.ResponseWriter, r *http.Request) {
	var raw churn.RawInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := raw.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	prediction, err := h.predictor.Predict(r.Context(), raw)
	if err != nil {
		h.logPredictError(r, err)
		respondError(w, predictErrorStatus(err), "prediction failed")
		return
	}

	respondJSON(w, http.StatusOK, predictResponse{
		Label:      prediction.Label,
		Churn:      prediction.Churn,
		Confidence: prediction.Confidence,
		Columns:    prediction.Features.Columns,
		Values:     prediction.Features.Values,
	})
}

func (h *Handlers) logPredictError(r *http.Request, err error) {
	h.logger.Error("prediction failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Bool("shape_mismatch", errors.Is(err, ml.ErrShapeMismatch)),
		zap.Error(err))
}

func predictErrorStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
