package ml

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const LabelColumn = "Machine_failure"

// ReadTrainingSet reads a CSV with a header row. The returned rows hold featureNames in order;
// labels come from labelColumn and must be 0 or 1. Boolean cells ("True"/"False") map to 1/0.
func ReadTrainingSet(r io.Reader, featureNames []string, labelColumn string) ([][]float64, []int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "read header")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	columns := make([]int, len(featureNames))
	for i, name := range featureNames {
		col, ok := index[name]
		if !ok {
			return nil, nil, errors.Wrapf(ErrSchemaMismatch, "training data has no column %q", name)
		}
		columns[i] = col
	}
	labelCol, ok := index[labelColumn]
	if !ok {
		return nil, nil, errors.Errorf("training data has no label column %q", labelColumn)
	}

	var features [][]float64
	var labels []int
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d", line)
		}
		row := make([]float64, len(columns))
		for i, col := range columns {
			v, err := parseCell(record[col])
			if err != nil {
				return nil, nil, errors.Wrapf(err, "line %d column %s", line, featureNames[i])
			}
			row[i] = v
		}
		label, err := parseCell(record[labelCol])
		if err != nil || (label != 0 && label != 1) {
			return nil, nil, errors.Errorf("line %d: label %q is not 0 or 1", line, record[labelCol])
		}
		features = append(features, row)
		labels = append(labels, int(label))
	}
	if len(features) == 0 {
		return nil, nil, errors.New("training data has no rows")
	}
	return features, labels, nil
}

func parseCell(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(raw); err == nil && !isNumeric(raw) {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func isNumeric(raw string) bool {
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

// SplitDataset keeps the first (1-testRatio) share of rows for training.
func SplitDataset(features [][]float64, labels []int, testRatio float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	split := int(float64(len(features)) * (1 - testRatio))
	for i := range features {
		if i < split {
			trainX = append(trainX, features[i])
			trainY = append(trainY, labels[i])
		} else {
			testX = append(testX, features[i])
			testY = append(testY, labels[i])
		}
	}
	return trainX, trainY, testX, testY
}

// Evaluate scores the tree on a hold-out set, treating Failure as the positive class.
func Evaluate(model *DecisionTree, testX [][]float64, testY []int) (accuracy, precision, recall float64) {
	if len(testX) == 0 {
		return 0, 0, 0
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i, feature := range testX {
		label, _, err := model.PredictVector(feature)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
		if label == int(Failure) {
			predictedPositive++
		}
		if testY[i] == int(Failure) {
			actualPositive++
			if label == int(Failure) {
				truePositive++
			}
		}
	}

	accuracy = float64(correct) / float64(len(testX))
	if predictedPositive > 0 {
		precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		recall = float64(truePositive) / float64(actualPositive)
	}
	return accuracy, precision, recall
}
