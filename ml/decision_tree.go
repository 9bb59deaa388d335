package ml

import (
	"encoding/json"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
)

type DecisionTree struct {
	featureNames []string
	nodes        []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	Confidence float64 `json:"confidence"`
	IsLeaf     bool    `json:"is_leaf"`
}

type treeArtifact struct {
	FeatureNames []string   `json:"feature_names"`
	Nodes        []TreeNode `json:"nodes"`
}

func NewDecisionTree(featureNames []string) *DecisionTree {
	return &DecisionTree{featureNames: append([]string(nil), featureNames...)}
}

func (dt *DecisionTree) FeatureNames() []string {
	return append([]string(nil), dt.featureNames...)
}

func (dt *DecisionTree) Train(features [][]float64, labels []int, maxDepth int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	for _, row := range features {
		if len(row) != len(dt.featureNames) {
			return errors.Errorf("row has %d values, tree has %d feature names", len(row), len(dt.featureNames))
		}
	}
	if maxDepth <= 0 {
		maxDepth = 3
	}

	dt.nodes = dt.buildNode(features, labels, 0, maxDepth)
	return nil
}

func (dt *DecisionTree) Predict(record Record) (Label, error) {
	if err := checkRecord(dt.featureNames, record); err != nil {
		return NoFailure, err
	}
	label, _, err := dt.PredictVector(record.Values)
	if err != nil {
		return NoFailure, err
	}
	if label != int(NoFailure) {
		return Failure, nil
	}
	return NoFailure, nil
}

// PredictVector walks the tree for a raw feature vector in FeatureNames order.
func (dt *DecisionTree) PredictVector(features []float64) (int, float64, error) {
	if len(dt.nodes) == 0 {
		return 0, 0, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, node.Confidence, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, 0, errors.New("invalid tree state")
		}
	}
}

func (dt *DecisionTree) Save(path string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(treeArtifact{FeatureNames: dt.featureNames, Nodes: dt.nodes})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact treeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return errors.Wrap(err, "decode decision tree")
	}
	if len(artifact.Nodes) == 0 {
		return errors.New("decision tree has no nodes")
	}
	if len(artifact.FeatureNames) == 0 {
		return errors.New("decision tree declares no feature names")
	}
	if err := validateNodes(artifact.Nodes, len(artifact.FeatureNames)); err != nil {
		return err
	}
	dt.featureNames = artifact.FeatureNames
	dt.nodes = artifact.Nodes
	return nil
}

// validateNodes requires every split to point forward to existing nodes, so a walk always ends on a leaf.
func validateNodes(nodes []TreeNode, featureCount int) error {
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return errors.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return errors.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

func (dt *DecisionTree) buildNode(features [][]float64, labels []int, depth int, maxDepth int) []TreeNode {
	label, confidence := majorityLabel(labels)
	leaf := []TreeNode{{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: label,
		Confidence: confidence,
		IsLeaf:     true,
	}}
	if depth >= maxDepth || isPure(labels) {
		return leaf
	}

	bestFeature, threshold, ok := findBestSplit(features, labels)
	if !ok {
		return leaf
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature, threshold)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		return leaf
	}

	leftNodes := dt.buildNode(leftFeatures, leftLabels, depth+1, maxDepth)
	rightNodes := dt.buildNode(rightFeatures, rightLabels, depth+1, maxDepth)

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		ClassLabel: label,
		Confidence: confidence,
	}

	// children are stored after the root, so their internal offsets shift by the root's position
	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, shiftNodes(leftNodes, 1)...)
	nodes = append(nodes, shiftNodes(rightNodes, 1+len(leftNodes))...)
	return nodes
}

func shiftNodes(nodes []TreeNode, offset int) []TreeNode {
	shifted := make([]TreeNode, len(nodes))
	for i, node := range nodes {
		if !node.IsLeaf {
			node.LeftChild += offset
			node.RightChild += offset
		}
		shifted[i] = node
	}
	return shifted
}

func findBestSplit(features [][]float64, labels []int) (int, float64, bool) {
	featureCount := len(features[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		threshold := median(values)
		leftLabels, rightLabels := splitLabels(features, labels, featureIdx, threshold)
		if len(leftLabels) == 0 || len(rightLabels) == 0 {
			continue
		}
		impurity := weightedGini(leftLabels, rightLabels)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func splitData(features [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	leftFeatures := make([][]float64, 0)
	leftLabels := make([]int, 0)
	rightFeatures := make([][]float64, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func splitLabels(features [][]float64, labels []int, featureIdx int, threshold float64) ([]int, []int) {
	leftLabels := make([]int, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftLabels, rightLabels
}

func weightedGini(leftLabels, rightLabels []int) float64 {
	leftWeight := float64(len(leftLabels))
	rightWeight := float64(len(rightLabels))
	total := leftWeight + rightWeight
	return (leftWeight/total)*gini(leftLabels) + (rightWeight/total)*gini(rightLabels)
}

func gini(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}
	impurity := 1.0
	for _, count := range counts {
		prob := float64(count) / float64(len(labels))
		impurity -= prob * prob
	}
	return impurity
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// majorityLabel returns the most frequent label and its share of labels.
func majorityLabel(labels []int) (int, float64) {
	if len(labels) == 0 {
		return 0, 0
	}
	counts := make(map[int]int)
	bestLabel := 0
	bestCount := -1
	for _, label := range labels {
		counts[label]++
		if counts[label] > bestCount {
			bestCount = counts[label]
			bestLabel = label
		}
	}
	return bestLabel, float64(bestCount) / float64(len(labels))
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}
