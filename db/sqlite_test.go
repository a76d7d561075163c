package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnguard/ml"
)

const testClassifier = `{"type":"linear_svm","coefficients":[0.5,-0.25],"intercept":0.1}`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadArtifact(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveArtifact(ctx, Artifact{
		Name:           "churn",
		ModelType:      ml.ModelTypeLinearSVM,
		ClassifierJSON: []byte(testClassifier),
		FeatureColumns: ml.FeatureSpec{"Age", "Contract_Two Year"},
	}))

	a, err := store.LoadArtifact(ctx, "churn")
	require.NoError(t, err)
	assert.Equal(t, ml.ModelTypeLinearSVM, a.ModelType)
	assert.JSONEq(t, testClassifier, string(a.ClassifierJSON))
	assert.Equal(t, ml.FeatureSpec{"Age", "Contract_Two Year"}, a.FeatureColumns)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestSaveArtifactReplacesByName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveArtifact(ctx, Artifact{Name: "churn", ModelType: "a", ClassifierJSON: []byte(`{}`), FeatureColumns: ml.FeatureSpec{"x"}, CreatedAt: older}))
	require.NoError(t, store.SaveArtifact(ctx, Artifact{Name: "churn", ModelType: "b", ClassifierJSON: []byte(`{}`), FeatureColumns: ml.FeatureSpec{"y"}}))
	require.NoError(t, store.SaveArtifact(ctx, Artifact{Name: "legacy", ModelType: "c", ClassifierJSON: []byte(`{}`), FeatureColumns: ml.FeatureSpec{"z"}, CreatedAt: older}))

	artifacts, err := store.ListArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "churn", artifacts[0].Name)
	assert.Equal(t, "b", artifacts[0].ModelType)
	assert.Equal(t, "legacy", artifacts[1].Name)
}

func TestLoadArtifactNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.LoadArtifact(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrArtifactNotFound))

	assert.Error(t, store.SaveArtifact(context.Background(), Artifact{}))
}

func TestRegistrySourceLoadsArtifacts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveArtifact(ctx, Artifact{
		Name:           "churn",
		ModelType:      ml.ModelTypeLinearSVM,
		ClassifierJSON: []byte(testClassifier),
		FeatureColumns: ml.FeatureSpec{"Age", "Tenure_in_Months"},
	}))

	artifacts, err := ml.LoadArtifacts(ctx, NewRegistrySource(store, "churn"), ml.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, ml.FeatureSpec{"Age", "Tenure_in_Months"}, artifacts.Spec())
	assert.Equal(t, "sqlite(churn)", artifacts.Source())

	_, err = ml.LoadArtifacts(ctx, NewRegistrySource(store, "missing"), ml.LoadOptions{})
	assert.True(t, errors.Is(err, ml.ErrConfiguration))
}

func TestRegistrySourceReadsOneVersion(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveArtifact(ctx, Artifact{
		Name:           "churn",
		ModelType:      ml.ModelTypeLinearSVM,
		ClassifierJSON: []byte(testClassifier),
		FeatureColumns: ml.FeatureSpec{"Age", "Tenure_in_Months"},
	}))

	src := NewRegistrySource(store, "churn")
	classifier, err := src.ClassifierPayload(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, testClassifier, string(classifier))

	// a concurrent import replaces the row between the two reads
	require.NoError(t, store.SaveArtifact(ctx, Artifact{
		Name:           "churn",
		ModelType:      ml.ModelTypeLinearSVM,
		ClassifierJSON: []byte(`{"type":"linear_svm","coefficients":[1,2,3],"intercept":0}`),
		FeatureColumns: ml.FeatureSpec{"Age", "Tenure_in_Months", "Monthly_Charge"},
	}))

	columns, format, err := src.FeatureSpecPayload(ctx)
	require.NoError(t, err)
	assert.Equal(t, ml.SpecFormatJSON, format)
	assert.JSONEq(t, `["Age","Tenure_in_Months"]`, string(columns))
}
