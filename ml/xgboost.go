package ml

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Booster evaluates a gradient-boosted tree ensemble saved by XGBoost in its JSON model format.
type Booster struct {
	featureNames []string
	baseMargin   float64
	trees        []boostedTree
}

type boostedTree struct {
	left        []int
	right       []int
	splitIndex  []int
	splitCond   []float32
	defaultLeft []bool
}

type xgbModel struct {
	Learner struct {
		Attributes        map[string]string `json:"attributes"`
		FeatureNames      []string          `json:"feature_names"`
		LearnerModelParam struct {
			BaseScore string `json:"base_score"`
			NumClass  string `json:"num_class"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Param struct {
					NumParallelTree string `json:"num_parallel_tree"`
				} `json:"gbtree_model_param"`
				Trees []xgbTree `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
	} `json:"learner"`
}

type xgbTree struct {
	LeftChildren    []int      `json:"left_children"`
	RightChildren   []int      `json:"right_children"`
	SplitIndices    []int      `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`
	SplitType       []int      `json:"split_type"`
}

// flexBool accepts both 0/1 and true/false, which differ between XGBoost releases.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		return errors.Errorf("invalid boolean %s", data)
	}
	return nil
}

var supportedObjectives = map[string]bool{
	"binary:logistic": true,
	"binary:logitraw": true,
	"reg:logistic":    true,
}

func LoadBooster(path string) (*Booster, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBooster(payload)
}

func ParseBooster(payload []byte) (*Booster, error) {
	var raw xgbModel
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, "decode xgboost json")
	}
	learner := raw.Learner

	if !supportedObjectives[learner.Objective.Name] {
		return nil, errors.Errorf("unsupported objective %q", learner.Objective.Name)
	}
	if name := learner.GradientBooster.Name; name != "gbtree" {
		return nil, errors.Errorf("unsupported booster %q", name)
	}
	if n := learner.LearnerModelParam.NumClass; n != "" && n != "0" && n != "1" {
		return nil, errors.Errorf("multi-class model with %s classes is not a binary classifier", n)
	}
	if len(learner.FeatureNames) == 0 {
		return nil, errors.New("model declares no feature names")
	}

	baseScore, err := parseBaseScore(learner.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}
	if baseScore <= 0 || baseScore >= 1 {
		return nil, errors.Errorf("base_score %v outside (0, 1)", baseScore)
	}

	trees := learner.GradientBooster.Model.Trees
	if limit := treeLimit(learner.Attributes, learner.GradientBooster.Model.Param.NumParallelTree); limit > 0 && limit < len(trees) {
		trees = trees[:limit]
	}

	b := &Booster{
		featureNames: learner.FeatureNames,
		baseMargin:   math.Log(baseScore / (1 - baseScore)),
		trees:        make([]boostedTree, 0, len(trees)),
	}
	for i, tree := range trees {
		converted, err := convertTree(tree, len(learner.FeatureNames))
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		b.trees = append(b.trees, converted)
	}
	return b, nil
}

// parseBaseScore handles both "5E-1" and the bracketed vector form "[5E-1]".
func parseBaseScore(value string) (float64, error) {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	if value == "" {
		return 0.5, nil
	}
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse base_score %q", value)
	}
	return score, nil
}

// treeLimit mirrors the sklearn wrapper: predictions stop at best_iteration when early stopping was used.
func treeLimit(attributes map[string]string, numParallelTree string) int {
	best, ok := attributes["best_iteration"]
	if !ok {
		return 0
	}
	iteration, err := strconv.Atoi(best)
	if err != nil || iteration < 0 {
		return 0
	}
	parallel := 1
	if n, err := strconv.Atoi(numParallelTree); err == nil && n > 0 {
		parallel = n
	}
	return (iteration + 1) * parallel
}

func convertTree(tree xgbTree, featureCount int) (boostedTree, error) {
	n := len(tree.LeftChildren)
	if n == 0 {
		return boostedTree{}, errors.New("empty tree")
	}
	if len(tree.RightChildren) != n || len(tree.SplitIndices) != n || len(tree.SplitConditions) != n {
		return boostedTree{}, errors.New("inconsistent node arrays")
	}
	out := boostedTree{
		left:        tree.LeftChildren,
		right:       tree.RightChildren,
		splitIndex:  tree.SplitIndices,
		splitCond:   make([]float32, n),
		defaultLeft: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		out.splitCond[i] = float32(tree.SplitConditions[i])
		if i < len(tree.DefaultLeft) {
			out.defaultLeft[i] = bool(tree.DefaultLeft[i])
		}
		if i < len(tree.SplitType) && tree.SplitType[i] != 0 {
			return boostedTree{}, errors.Errorf("node %d uses a categorical split", i)
		}
		if out.left[i] == -1 {
			continue
		}
		if out.left[i] <= i || out.left[i] >= n || out.right[i] <= i || out.right[i] >= n {
			return boostedTree{}, errors.Errorf("node %d has invalid children", i)
		}
		if out.splitIndex[i] < 0 || out.splitIndex[i] >= featureCount {
			return boostedTree{}, errors.Errorf("node %d splits on unknown feature %d", i, out.splitIndex[i])
		}
	}
	return out, nil
}

func (b *Booster) FeatureNames() []string {
	return append([]string(nil), b.featureNames...)
}

func (b *Booster) Predict(record Record) (Label, error) {
	if err := checkRecord(b.featureNames, record); err != nil {
		return NoFailure, err
	}
	if b.Margin(record.Values) > 0 {
		return Failure, nil
	}
	return NoFailure, nil
}

// Margin is the raw log-odds score; Probability applies the logistic transform.
func (b *Booster) Margin(values []float64) float64 {
	margin := b.baseMargin
	for _, tree := range b.trees {
		margin += float64(tree.leafValue(values))
	}
	return margin
}

func (b *Booster) Probability(values []float64) float64 {
	return 1 / (1 + math.Exp(-b.Margin(values)))
}

func (t boostedTree) leafValue(values []float64) float32 {
	idx := 0
	for t.left[idx] != -1 {
		v := values[t.splitIndex[idx]]
		switch {
		case math.IsNaN(v):
			if t.defaultLeft[idx] {
				idx = t.left[idx]
			} else {
				idx = t.right[idx]
			}
		case float32(v) < t.splitCond[idx]:
			idx = t.left[idx]
		default:
			idx = t.right[idx]
		}
	}
	return t.splitCond[idx]
}
