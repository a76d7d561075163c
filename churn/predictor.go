package churn

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"churnguard/ml"
)

type Label string

const (
	LabelWillChurn Label = "will churn"
	LabelWillStay  Label = "will stay"
)

// LabelFor maps a raw classifier output onto a label. Only 1 means churn.
func LabelFor(raw int) Label {
	if raw == 1 {
		return LabelWillChurn
	}
	return LabelWillStay
}

type Prediction struct {
	Label      Label            `json:"label"`
	Churn      bool             `json:"churn"`
	Confidence float64          `json:"confidence"`
	Features   ml.FeatureVector `json:"features"`
}

// Predictor runs build then classify against one shared, read-only artifact handle.
type Predictor struct {
	artifacts *ml.Artifacts
	spec      ml.FeatureSpec
	cache     *lru.Cache[RawInput, Prediction]
	logger    *zap.Logger
}

// NewPredictor memoises up to cacheSize predictions; 0 disables memoising.
func NewPredictor(artifacts *ml.Artifacts, cacheSize int, logger *zap.Logger) (*Predictor, error) {
	if artifacts == nil {
		return nil, fmt.Errorf("%w: artifacts not loaded", ml.ErrConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Predictor{
		artifacts: artifacts,
		spec:      artifacts.Spec(),
		logger:    logger,
	}
	if cacheSize > 0 {
		cache, err := lru.New[RawInput, Prediction](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

// Spec returns the feature columns the classifier was trained on.
func (p *Predictor) Spec() ml.FeatureSpec {
	return append(ml.FeatureSpec(nil), p.spec...)
}

func (p *Predictor) ModelType() string {
	return p.artifacts.Classifier().Type()
}

// Predict builds the feature vector for raw and dispatches it to the classifier.
// Classifier errors are returned as is; there is no retry.
func (p *Predictor) Predict(ctx context.Context, raw RawInput) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if p.cache != nil {
		if cached, ok := p.cache.Get(raw); ok {
			cached.Features = cached.Features.Clone()
			return cached, nil
		}
	}

	vector := BuildFeatureVector(raw, p.spec)
	out, confidence, err := p.artifacts.Classifier().Predict(vector.Row())
	if err != nil {
		p.logger.Error("classifier rejected feature vector",
			zap.Int("columns", vector.Len()),
			zap.Error(err))
		return Prediction{}, fmt.Errorf("classify: %w", err)
	}

	label := LabelFor(out)
	prediction := Prediction{
		Label:      label,
		Churn:      label == LabelWillChurn,
		Confidence: confidence,
		Features:   vector,
	}
	p.logger.Debug("prediction",
		zap.String("label", string(label)),
		zap.Int("raw_output", out),
		zap.Float64("confidence", confidence))

	if p.cache != nil {
		memo := prediction
		memo.Features = vector.Clone()
		p.cache.Add(raw, memo)
	}
	return prediction, nil
}
