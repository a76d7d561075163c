package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"churnguard/ml"
)

var ErrArtifactNotFound = errors.New("model artifact not found")

// Artifact is one registered classifier with the feature columns it was trained on.
type Artifact struct {
	Name           string
	ModelType      string
	ClassifierJSON []byte
	FeatureColumns ml.FeatureSpec
	CreatedAt      time.Time
}

// Store is the sqlite model registry.
type Store struct {
	database *sql.DB
}

// Open opens (creating if needed) the registry at path.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS model_artifacts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        model_type TEXT NOT NULL,
        classifier_json TEXT NOT NULL,
        feature_columns_json TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `

	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{database: database}, nil
}

func (s *Store) Close() error {
	return s.database.Close()
}

// SaveArtifact inserts or replaces the artifact stored under a.Name.
func (s *Store) SaveArtifact(ctx context.Context, a Artifact) error {
	if a.Name == "" {
		return errors.New("artifact name is required")
	}
	columns, err := json.Marshal([]string(a.FeatureColumns))
	if err != nil {
		return err
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
        INSERT OR REPLACE INTO model_artifacts (name, model_type, classifier_json, feature_columns_json, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.ModelType, string(a.ClassifierJSON), string(columns), createdAt)
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) LoadArtifact(ctx context.Context, name string) (Artifact, error) {
	row := s.database.QueryRowContext(ctx, `
        SELECT name, model_type, classifier_json, feature_columns_json, created_at
        FROM model_artifacts WHERE name = ?`, name)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	return a, err
}

// ListArtifacts returns every registered artifact, newest first.
func (s *Store) ListArtifacts(ctx context.Context) ([]Artifact, error) {
	rows, err := s.database.QueryContext(ctx, `
        SELECT name, model_type, classifier_json, feature_columns_json, created_at
        FROM model_artifacts ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row scanner) (Artifact, error) {
	var (
		a          Artifact
		classifier string
		columns    string
	)
	if err := row.Scan(&a.Name, &a.ModelType, &classifier, &columns, &a.CreatedAt); err != nil {
		return Artifact{}, err
	}
	a.ClassifierJSON = []byte(classifier)
	if err := json.Unmarshal([]byte(columns), &a.FeatureColumns); err != nil {
		return Artifact{}, fmt.Errorf("decode feature columns of %s: %w", a.Name, err)
	}
	return a, nil
}
