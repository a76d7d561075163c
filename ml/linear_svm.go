package ml

import (
	"encoding/json"
	"errors"
	"math"
)

const ModelTypeLinearSVM = "linear_svm"

// LinearSVM scores a row as w·x + b and predicts class 1 when the score is positive.
type LinearSVM struct {
	coefficients []float64
	intercept    float64
}

type linearSVMArtifact struct {
	Type         string    `json:"type"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func NewLinearSVM(coefficients []float64, intercept float64) (*LinearSVM, error) {
	if len(coefficients) == 0 {
		return nil, errors.New("linear svm has no coefficients")
	}
	coefs := make([]float64, len(coefficients))
	copy(coefs, coefficients)
	return &LinearSVM{coefficients: coefs, intercept: intercept}, nil
}

func (m *LinearSVM) Type() string {
	return ModelTypeLinearSVM
}

func (m *LinearSVM) NumFeatures() int {
	return len(m.coefficients)
}

// DecisionFunction returns the signed distance of features from the hyperplane.
func (m *LinearSVM) DecisionFunction(features []float64) (float64, error) {
	if len(features) != len(m.coefficients) {
		return 0, &ShapeMismatchError{Expected: len(m.coefficients), Got: len(features)}
	}
	score := m.intercept
	for i, w := range m.coefficients {
		score += w * features[i]
	}
	return score, nil
}

func (m *LinearSVM) Predict(features []float64) (int, float64, error) {
	score, err := m.DecisionFunction(features)
	if err != nil {
		return 0, 0, err
	}
	confidence := 1 / (1 + math.Exp(-math.Abs(score)))
	if score > 0 {
		return 1, confidence, nil
	}
	return 0, confidence, nil
}

func (m *LinearSVM) MarshalJSON() ([]byte, error) {
	return json.Marshal(linearSVMArtifact{
		Type:         ModelTypeLinearSVM,
		Coefficients: m.coefficients,
		Intercept:    m.intercept,
	})
}

func (m *LinearSVM) UnmarshalJSON(payload []byte) error {
	var artifact linearSVMArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	model, err := NewLinearSVM(artifact.Coefficients, artifact.Intercept)
	if err != nil {
		return err
	}
	*m = *model
	return nil
}
