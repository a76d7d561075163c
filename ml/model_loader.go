package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

type SpecFormat string

const (
	SpecFormatJSON SpecFormat = "json"
	SpecFormatYAML SpecFormat = "yaml"
)

// SpecFormatFromPath picks the feature spec decoder from a file extension; unknown extensions decode as JSON.
func SpecFormatFromPath(path string) SpecFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SpecFormatYAML
	default:
		return SpecFormatJSON
	}
}

// ArtifactSource yields the raw classifier and feature spec payloads.
type ArtifactSource interface {
	ClassifierPayload(ctx context.Context) ([]byte, error)
	FeatureSpecPayload(ctx context.Context) ([]byte, SpecFormat, error)
	Describe() string
}

// FileSource reads artifacts from the local filesystem.
type FileSource struct {
	ClassifierPath     string
	FeatureColumnsPath string
}

func (s FileSource) ClassifierPayload(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.ClassifierPath)
}

func (s FileSource) FeatureSpecPayload(ctx context.Context) ([]byte, SpecFormat, error) {
	payload, err := os.ReadFile(s.FeatureColumnsPath)
	if err != nil {
		return nil, "", err
	}
	return payload, SpecFormatFromPath(s.FeatureColumnsPath), nil
}

func (s FileSource) Describe() string {
	return fmt.Sprintf("file(%s, %s)", s.ClassifierPath, s.FeatureColumnsPath)
}

// LoadClassifier validates payload against the artifact schema and decodes it by its "type" field.
func LoadClassifier(payload []byte) (Classifier, error) {
	if err := validateClassifierPayload(payload); err != nil {
		return nil, err
	}
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, err
	}
	switch header.Type {
	case ModelTypeLinearSVM:
		model := &LinearSVM{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, err
		}
		return model, nil
	case ModelTypeDecisionTree:
		model := &DecisionTree{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", header.Type)
	}
}

func LoadFeatureSpec(payload []byte, format SpecFormat) (FeatureSpec, error) {
	var columns []string
	switch format {
	case SpecFormatYAML:
		if err := yaml.Unmarshal(payload, &columns); err != nil {
			return nil, fmt.Errorf("decode feature columns: %w", err)
		}
	default:
		if err := json.Unmarshal(payload, &columns); err != nil {
			return nil, fmt.Errorf("decode feature columns: %w", err)
		}
	}
	spec := FeatureSpec(columns)
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Artifacts is the read-only classifier and feature spec pair shared by every request.
type Artifacts struct {
	classifier Classifier
	spec       FeatureSpec
	source     string
}

func NewArtifacts(classifier Classifier, spec FeatureSpec) *Artifacts {
	return &Artifacts{classifier: classifier, spec: append(FeatureSpec(nil), spec...), source: "memory"}
}

func (a *Artifacts) Classifier() Classifier {
	return a.classifier
}

// Spec returns a copy so callers cannot reorder the shared columns.
func (a *Artifacts) Spec() FeatureSpec {
	return append(FeatureSpec(nil), a.spec...)
}

func (a *Artifacts) Source() string {
	return a.source
}

type LoadOptions struct {
	// RequiredColumns are the columns the feature builder produces.
	RequiredColumns []string
	// ForbiddenColumns signal an encoding the builder does not use.
	ForbiddenColumns []string
	Strict           bool
	Logger           *zap.Logger
}

// LoadArtifacts loads both artifacts from src and checks them against each other and opts.
// Every failure wraps ErrConfiguration.
func LoadArtifacts(ctx context.Context, src ArtifactSource, opts LoadOptions) (*Artifacts, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		classifier Classifier
		spec       FeatureSpec
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := src.ClassifierPayload(gctx)
		if err != nil {
			return configErrorf("read classifier: %v", err)
		}
		classifier, err = LoadClassifier(payload)
		if err != nil {
			return configErrorf("load classifier: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		payload, format, err := src.FeatureSpecPayload(gctx)
		if err != nil {
			return configErrorf("read feature columns: %v", err)
		}
		spec, err = LoadFeatureSpec(payload, format)
		if err != nil {
			return configErrorf("load feature columns: %v", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !widthMatches(classifier, len(spec)) {
		return nil, configErrorf("classifier %s expects %d features but feature spec has %d columns",
			classifier.Type(), classifier.NumFeatures(), len(spec))
	}

	report := VerifyFeatureSpec(spec, opts.RequiredColumns, opts.ForbiddenColumns)
	for _, name := range report.Missing {
		logger.Warn("builder column absent from feature spec, its value will be dropped", zap.String("column", name))
	}
	for _, name := range report.Forbidden {
		logger.Warn("feature column indicates a different categorical encoding", zap.String("column", name))
	}
	for _, name := range report.Unknown {
		logger.Info("feature column will always be zero-filled", zap.String("column", name))
	}
	if opts.Strict && !report.OK() {
		return nil, configErrorf("feature spec contract violated: missing=%v forbidden=%v", report.Missing, report.Forbidden)
	}

	logger.Info("model artifacts loaded",
		zap.String("source", src.Describe()),
		zap.String("model_type", classifier.Type()),
		zap.Int("features", len(spec)))

	return &Artifacts{classifier: classifier, spec: spec, source: src.Describe()}, nil
}

// widthMatches reports whether rows of the given width fit the classifier.
// A tree only needs every split index in range; a linear model needs one weight per column.
func widthMatches(classifier Classifier, width int) bool {
	switch classifier.(type) {
	case *DecisionTree:
		return classifier.NumFeatures() <= width
	default:
		return classifier.NumFeatures() == width
	}
}
