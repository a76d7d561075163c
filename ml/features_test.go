package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexZeroFillsAndDrops(t *testing.T) {
	spec := FeatureSpec{"b", "missing", "a"}
	vector := Reindex(map[string]float64{"a": 1, "b": 2, "extra": 3}, spec)

	assert.Equal(t, []string{"b", "missing", "a"}, vector.Columns)
	assert.Equal(t, []float64{2, 0, 1}, vector.Values)
	assert.Equal(t, 3, vector.Len())

	_, ok := vector.Value("extra")
	assert.False(t, ok)
	v, ok := vector.Value("missing")
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestReindexDoesNotAliasSpec(t *testing.T) {
	spec := FeatureSpec{"a", "b"}
	vector := Reindex(map[string]float64{"a": 1}, spec)
	spec[0] = "z"
	assert.Equal(t, "a", vector.Columns[0])

	row := vector.Row()
	row[0] = 42
	assert.Equal(t, 1.0, vector.Values[0])
}

func TestFeatureSpecValidate(t *testing.T) {
	require.NoError(t, FeatureSpec{"a", "b"}.Validate())
	assert.Error(t, FeatureSpec{}.Validate())
	assert.Error(t, FeatureSpec{"a", " "}.Validate())
	assert.Error(t, FeatureSpec{"a", "b", "a"}.Validate())
}

func TestVerifyFeatureSpec(t *testing.T) {
	spec := FeatureSpec{"a", "c", "bad", "extra"}
	report := VerifyFeatureSpec(spec, []string{"a", "b", "c"}, []string{"bad"})

	assert.Equal(t, []string{"b"}, report.Missing)
	assert.Equal(t, []string{"bad"}, report.Forbidden)
	assert.Equal(t, []string{"extra"}, report.Unknown)
	assert.False(t, report.OK())

	report = VerifyFeatureSpec(FeatureSpec{"a", "extra"}, []string{"a"}, nil)
	assert.True(t, report.OK())
}

func TestFeatureVectorClone(t *testing.T) {
	v := Reindex(map[string]float64{"a": 1, "b": 2}, FeatureSpec{"a", "b"})
	clone := v.Clone()
	clone.Values[0] = 9
	clone.Columns[1] = "z"

	assert.Equal(t, []float64{1, 2}, v.Values)
	assert.Equal(t, []string{"a", "b"}, v.Columns)
}
