package churn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnguard/ml"
)

type fakeClassifier struct {
	label      int
	confidence float64
	err        error
	calls      int
	lastRow    []float64
}

func (f *fakeClassifier) Predict(features []float64) (int, float64, error) {
	f.calls++
	f.lastRow = features
	return f.label, f.confidence, f.err
}

func (f *fakeClassifier) NumFeatures() int { return len(trainingSpec) }

func (f *fakeClassifier) Type() string { return "fake" }

func TestLabelFor(t *testing.T) {
	assert.Equal(t, LabelWillChurn, LabelFor(1))
	assert.Equal(t, LabelWillStay, LabelFor(0))
	assert.Equal(t, LabelWillStay, LabelFor(2))
	assert.Equal(t, LabelWillStay, LabelFor(-1))
}

func TestPredictorScenarioA(t *testing.T) {
	classifier := &fakeClassifier{label: 1, confidence: 0.7}
	predictor, err := NewPredictor(ml.NewArtifacts(classifier, trainingSpec), 0, nil)
	require.NoError(t, err)

	prediction, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.Equal(t, LabelWillChurn, prediction.Label)
	assert.True(t, prediction.Churn)
	assert.Equal(t, 0.7, prediction.Confidence)
	assert.Equal(t, []float64{30, 12, 70.0, 3, 0, 0, 0, 0}, classifier.lastRow)
	assert.Equal(t, []string(trainingSpec), prediction.Features.Columns)
}

func TestPredictorStay(t *testing.T) {
	classifier := &fakeClassifier{label: 0}
	predictor, err := NewPredictor(ml.NewArtifacts(classifier, trainingSpec), 0, nil)
	require.NoError(t, err)

	prediction, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.Equal(t, LabelWillStay, prediction.Label)
	assert.False(t, prediction.Churn)
}

func TestPredictorPropagatesShapeMismatch(t *testing.T) {
	classifier := &fakeClassifier{err: &ml.ShapeMismatchError{Expected: 9, Got: 8}}
	predictor, err := NewPredictor(ml.NewArtifacts(classifier, trainingSpec), 16, nil)
	require.NoError(t, err)

	_, err = predictor.Predict(context.Background(), scenarioA())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ml.ErrShapeMismatch))

	// failures are not memoised
	_, err = predictor.Predict(context.Background(), scenarioA())
	require.Error(t, err)
	assert.Equal(t, 2, classifier.calls)
}

func TestPredictorMemoisesByInput(t *testing.T) {
	classifier := &fakeClassifier{label: 1, confidence: 0.9}
	predictor, err := NewPredictor(ml.NewArtifacts(classifier, trainingSpec), 4, nil)
	require.NoError(t, err)

	first, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	second, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, classifier.calls)

	other := scenarioA()
	other.ContractType = ContractTwoYear
	_, err = predictor.Predict(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, classifier.calls)
	assert.Equal(t, []float64{30, 12, 70.0, 3, 0, 0, 1, 0}, classifier.lastRow)
}

func TestPredictorCacheHitsAreIsolated(t *testing.T) {
	classifier := &fakeClassifier{label: 1}
	predictor, err := NewPredictor(ml.NewArtifacts(classifier, trainingSpec), 4, nil)
	require.NoError(t, err)

	first, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	first.Features.Values[0] = -1
	first.Features.Columns[0] = "mutated"

	second, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, []float64{30, 12, 70.0, 3, 0, 0, 0, 0}, second.Features.Values)
	assert.Equal(t, []string(trainingSpec), second.Features.Columns)

	second.Features.Values[1] = -1
	third, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.Equal(t, 12.0, third.Features.Values[1])
}

func TestPredictorWithLinearSVM(t *testing.T) {
	// churn when tenure is short relative to monthly charge and no long contract
	model, err := ml.NewLinearSVM([]float64{0, -0.2, 0.05, 0, 0, 0, -3, -1.5}, 0)
	require.NoError(t, err)
	predictor, err := NewPredictor(ml.NewArtifacts(model, trainingSpec), 0, nil)
	require.NoError(t, err)

	prediction, err := predictor.Predict(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.Equal(t, LabelWillChurn, prediction.Label)

	raw := scenarioA()
	raw.ContractType = ContractTwoYear
	prediction, err = predictor.Predict(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, LabelWillStay, prediction.Label)
}

func TestPredictorCanceledContext(t *testing.T) {
	classifier := &fakeClassifier{label: 1}
	predictor, err := NewPredictor(ml.NewArtifacts(classifier, trainingSpec), 0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = predictor.Predict(ctx, scenarioA())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, classifier.calls)
}

func TestNewPredictorRequiresArtifacts(t *testing.T) {
	_, err := NewPredictor(nil, 0, nil)
	assert.ErrorIs(t, err, ml.ErrConfiguration)
}
