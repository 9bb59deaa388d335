package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"predmaint/ml"
	"predmaint/observation"
)

func main() {
	dataPath := flag.String("data", "", "training CSV with the model feature columns and Machine_failure")
	modelPath := flag.String("model_path", "./models/dt_model.json", "model output path")
	maxDepth := flag.Int("max_depth", 8, "max tree depth")
	testRatio := flag.Float64("test_ratio", 0.2, "test ratio")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("data is required")
	}

	file, err := os.Open(*dataPath)
	if err != nil {
		log.Fatalf("failed to open training data: %v", err)
	}
	features, labels, err := ml.ReadTrainingSet(file, observation.FeatureOrder, ml.LabelColumn)
	file.Close()
	if err != nil {
		log.Fatalf("failed to read training data: %v", err)
	}

	trainX, trainY, testX, testY := ml.SplitDataset(features, labels, *testRatio)

	model := ml.NewDecisionTree(observation.FeatureOrder)
	if err := model.Train(trainX, trainY, *maxDepth); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	accuracy, precision, recall := ml.Evaluate(model, testX, testY)
	log.Printf("rows=%d accuracy=%.3f precision=%.3f recall=%.3f", len(features), accuracy, precision, recall)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := model.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}
