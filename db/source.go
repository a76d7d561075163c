package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"churnguard/ml"
)

// RegistrySource serves a named registry artifact to ml.LoadArtifacts.
// The row is read once, so both payloads come from the same version
// even if the name is replaced while loading.
type RegistrySource struct {
	store *Store
	name  string

	once     sync.Once
	artifact Artifact
	err      error
}

func NewRegistrySource(store *Store, name string) *RegistrySource {
	return &RegistrySource{store: store, name: name}
}

func (s *RegistrySource) load(ctx context.Context) (Artifact, error) {
	s.once.Do(func() {
		s.artifact, s.err = s.store.LoadArtifact(ctx, s.name)
	})
	return s.artifact, s.err
}

func (s *RegistrySource) ClassifierPayload(ctx context.Context) ([]byte, error) {
	a, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return a.ClassifierJSON, nil
}

func (s *RegistrySource) FeatureSpecPayload(ctx context.Context) ([]byte, ml.SpecFormat, error) {
	a, err := s.load(ctx)
	if err != nil {
		return nil, "", err
	}
	payload, err := json.Marshal([]string(a.FeatureColumns))
	if err != nil {
		return nil, "", err
	}
	return payload, ml.SpecFormatJSON, nil
}

func (s *RegistrySource) Describe() string {
	return fmt.Sprintf("sqlite(%s)", s.name)
}
