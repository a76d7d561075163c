package ml

import (
	"encoding/json"
	"errors"
	"fmt"
)

const ModelTypeDecisionTree = "decision_tree"

// DecisionTree is an inference-only tree stored as a flat node array with node 0 as root.
type DecisionTree struct {
	nodes []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	Confidence float64 `json:"confidence,omitempty"`
	IsLeaf     bool    `json:"is_leaf"`
}

type decisionTreeArtifact struct {
	Type  string     `json:"type"`
	Nodes []TreeNode `json:"nodes"`
}

func NewDecisionTree(nodes []TreeNode) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, errors.New("decision tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 {
			return nil, fmt.Errorf("node %d: negative feature index", i)
		}
		if node.LeftChild <= i || node.LeftChild >= len(nodes) || node.RightChild <= i || node.RightChild >= len(nodes) {
			return nil, fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return &DecisionTree{nodes: nodes}, nil
}

func (dt *DecisionTree) Type() string {
	return ModelTypeDecisionTree
}

// NumFeatures is the smallest row width every split can index into.
func (dt *DecisionTree) NumFeatures() int {
	width := 0
	for _, node := range dt.nodes {
		if !node.IsLeaf && node.FeatureIdx+1 > width {
			width = node.FeatureIdx + 1
		}
	}
	return width
}

func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	if len(dt.nodes) == 0 {
		return 0, 0, errors.New("model not loaded")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, leafConfidence(node), nil
		}
		if node.FeatureIdx >= len(features) {
			return 0, 0, &ShapeMismatchError{Expected: dt.NumFeatures(), Got: len(features)}
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (dt *DecisionTree) MarshalJSON() ([]byte, error) {
	return json.Marshal(decisionTreeArtifact{Type: ModelTypeDecisionTree, Nodes: dt.nodes})
}

func (dt *DecisionTree) UnmarshalJSON(payload []byte) error {
	var artifact decisionTreeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	tree, err := NewDecisionTree(artifact.Nodes)
	if err != nil {
		return err
	}
	*dt = *tree
	return nil
}

func leafConfidence(node TreeNode) float64 {
	if node.Confidence > 0 {
		return node.Confidence
	}
	return 0.6
}
