package ml

import (
	"errors"
	"fmt"
	"strings"
)

// FeatureSpec is the ordered list of column names a classifier was trained on.
type FeatureSpec []string

func (s FeatureSpec) Index(name string) int {
	for i, column := range s {
		if column == name {
			return i
		}
	}
	return -1
}

func (s FeatureSpec) Contains(name string) bool {
	return s.Index(name) >= 0
}

// Validate rejects empty specs, blank names and duplicate columns.
func (s FeatureSpec) Validate() error {
	if len(s) == 0 {
		return errors.New("feature spec is empty")
	}
	seen := make(map[string]struct{}, len(s))
	for i, name := range s {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("feature spec column %d is blank", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("feature spec column %q is duplicated", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// FeatureVector is a single row whose Columns equal the spec it was built against.
type FeatureVector struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
}

// Reindex projects values onto spec: columns absent from values are 0,
// values not named by spec are dropped.
func Reindex(values map[string]float64, spec FeatureSpec) FeatureVector {
	vector := FeatureVector{
		Columns: make([]string, len(spec)),
		Values:  make([]float64, len(spec)),
	}
	copy(vector.Columns, spec)
	for i, name := range spec {
		vector.Values[i] = values[name]
	}
	return vector
}

func (v FeatureVector) Len() int {
	return len(v.Values)
}

// Value returns the value of column name and whether the column exists.
func (v FeatureVector) Value(name string) (float64, bool) {
	for i, column := range v.Columns {
		if column == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Row returns a copy of the values, safe to hand to a classifier.
func (v FeatureVector) Row() []float64 {
	row := make([]float64, len(v.Values))
	copy(row, v.Values)
	return row
}

// Clone returns a vector that shares no backing arrays with v.
func (v FeatureVector) Clone() FeatureVector {
	return FeatureVector{
		Columns: append([]string(nil), v.Columns...),
		Values:  v.Row(),
	}
}

// SpecReport is the result of checking a FeatureSpec against the columns a builder can produce.
type SpecReport struct {
	Missing   []string
	Forbidden []string
	Unknown   []string
}

func (r SpecReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Forbidden) == 0
}

// VerifyFeatureSpec lists required columns missing from spec, forbidden
// columns present in it, and spec columns outside required that will always be zero-filled.
func VerifyFeatureSpec(spec FeatureSpec, required, forbidden []string) SpecReport {
	var report SpecReport
	for _, name := range required {
		if !spec.Contains(name) {
			report.Missing = append(report.Missing, name)
		}
	}
	known := make(map[string]struct{}, len(required))
	for _, name := range required {
		known[name] = struct{}{}
	}
	for _, name := range spec {
		if contains(forbidden, name) {
			report.Forbidden = append(report.Forbidden, name)
			continue
		}
		if _, ok := known[name]; !ok {
			report.Unknown = append(report.Unknown, name)
		}
	}
	return report
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
