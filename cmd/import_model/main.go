package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"churnguard/churn"
	"churnguard/db"
	"churnguard/ml"
)

func main() {
	dbPath := flag.String("db", "./data/models.db", "model registry path")
	name := flag.String("name", "churn", "artifact name")
	classifierPath := flag.String("classifier", "./models/svm_model.json", "classifier artifact path")
	columnsPath := flag.String("columns", "./models/feature_columns.json", "feature columns path (.json or .yaml)")
	strict := flag.Bool("strict", true, "reject feature columns that break the builder contract")
	flag.Parse()

	ctx := context.Background()
	src := ml.FileSource{ClassifierPath: *classifierPath, FeatureColumnsPath: *columnsPath}
	artifacts, err := ml.LoadArtifacts(ctx, src, ml.LoadOptions{
		RequiredColumns:  churn.FeatureNames(),
		ForbiddenColumns: churn.BaselineColumns(),
		Strict:           *strict,
	})
	if err != nil {
		log.Fatalf("failed to validate artifacts: %v", err)
	}

	payload, err := os.ReadFile(*classifierPath)
	if err != nil {
		log.Fatalf("failed to read classifier: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalf("failed to create registry dir: %v", err)
	}
	store, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open registry: %v", err)
	}
	defer store.Close()

	if err := store.SaveArtifact(ctx, db.Artifact{
		Name:           *name,
		ModelType:      artifacts.Classifier().Type(),
		ClassifierJSON: payload,
		FeatureColumns: artifacts.Spec(),
	}); err != nil {
		log.Fatalf("failed to save artifact: %v", err)
	}

	fmt.Printf("artifact %q (%s, %d features) saved to %s\n",
		*name, artifacts.Classifier().Type(), len(artifacts.Spec()), *dbPath)
}
