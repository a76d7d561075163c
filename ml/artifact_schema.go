package ml

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const classifierSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"enum": ["linear_svm", "decision_tree"]}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "linear_svm"}}},
      "then": {
        "required": ["coefficients", "intercept"],
        "properties": {
          "coefficients": {"type": "array", "minItems": 1, "items": {"type": "number"}},
          "intercept": {"type": "number"}
        }
      }
    },
    {
      "if": {"properties": {"type": {"const": "decision_tree"}}},
      "then": {
        "required": ["nodes"],
        "properties": {
          "nodes": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["is_leaf"],
              "properties": {
                "feature_idx": {"type": "integer"},
                "threshold": {"type": "number"},
                "left_child": {"type": "integer"},
                "right_child": {"type": "integer"},
                "class_label": {"type": "integer"},
                "confidence": {"type": "number", "minimum": 0, "maximum": 1},
                "is_leaf": {"type": "boolean"}
              }
            }
          }
        }
      }
    }
  ]
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledClassifierSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("classifier.json", strings.NewReader(classifierSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("classifier.json")
	})
	return schemaCompiled, schemaErr
}

func validateClassifierPayload(payload []byte) error {
	schema, err := compiledClassifierSchema()
	if err != nil {
		return fmt.Errorf("compile classifier schema: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("decode classifier: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("classifier artifact invalid: %w", err)
	}
	return nil
}
