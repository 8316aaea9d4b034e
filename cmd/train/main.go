package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Benardi/br-deputy-elections/internal/data"
	"github.com/Benardi/br-deputy-elections/internal/evaluation"
	"github.com/Benardi/br-deputy-elections/internal/experiment"
	"github.com/Benardi/br-deputy-elections/internal/models"
	"github.com/Benardi/br-deputy-elections/internal/persistence"
	"github.com/Benardi/br-deputy-elections/internal/preprocessing"
)

var log = logrus.New()

func main() {
	dataFile := flag.String("data", "", "Path to training data CSV file")
	targets := flag.String("targets", "", "Comma-separated target column names (default: last column)")
	targetEncoding := flag.String("target-encoding", "numeric", "Target encoding (numeric|label|onehot)")
	algorithm := flag.String("algorithm", "ridge", "Algorithm to use (ridge|lasso|knn|network)")
	configFile := flag.String("config", "config/experiment.yaml", "Path to configuration file")
	outputDir := flag.String("output", "models", "Output directory for trained models")
	preprocess := flag.String("preprocess", "normalized", "Preprocessing method (raw|normalized|standardized)")
	filterNZV := flag.Bool("filter-nzv", false, "Drop near-zero-variance predictors")
	oversample := flag.Bool("oversample", false, "Balance classes by oversampling (label targets only)")
	runExp := flag.Bool("experiment", false, "Run full experiment with config")
	tune := flag.Bool("tune", false, "Grid-search the network hyperparameters with config")
	lambda := flag.Float64("lambda", 1.0, "Regularisation strength for ridge/lasso")
	k := flag.Int("k", 5, "K value for KNN")
	hidden := flag.String("hidden", "16,8", "Comma-separated hidden layer sizes for the network")
	epochs := flag.Int("epochs", 50, "Training epochs for the network")
	batchSize := flag.Int("batch-size", 32, "Mini-batch size for the network")
	testSize := flag.Float64("test-size", 0.2, "Test set size (0.0-1.0)")
	crossValidation := flag.Bool("cv", true, "Enable cross-validation")
	cvFolds := flag.Int("cv-folds", 5, "Number of cross-validation folds")
	seed := flag.Int64("seed", 42, "Random seed for splits, folds and weight init")
	parallel := flag.Bool("parallel", false, "Evaluate grid rows in parallel during tuning")

	flag.Parse()

	if *dataFile == "" {
		fmt.Println("Usage:")
		fmt.Println("  Single model:  go run cmd/train/main.go -data data/candidates.csv -targets votes -algorithm ridge")
		fmt.Println("  Grid search:   go run cmd/train/main.go -tune -config config/experiment.yaml -data data/candidates.csv -targets elected -target-encoding onehot")
		fmt.Println("  Experiment:    go run cmd/train/main.go -experiment -config config/experiment.yaml -data data/candidates.csv -targets votes")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ds, encoder, err := loadDataset(*dataFile, *targets, *targetEncoding, *preprocess, *filterNZV, *oversample, *seed)
	if err != nil {
		log.Fatalf("Failed to prepare dataset: %v", err)
	}
	log.Infof("Prepared %d rows with %d predictors and %d target column(s)",
		ds.NumRows(), ds.NumPredictors(), ds.NumTargets())

	switch {
	case *runExp:
		runExperiment(*configFile, ds, *outputDir)
	case *tune:
		runTuning(*configFile, ds, *outputDir, *parallel)
	case *algorithm == "network":
		runNetworkTraining(ds, encoder, *hidden, *epochs, *batchSize, *outputDir, *dataFile, *seed)
	default:
		runRegressorTraining(ds, *algorithm, *lambda, *k, *testSize, *crossValidation, *cvFolds, *seed, *outputDir, *dataFile)
	}
}

func loadDataset(dataFile, targets, targetEncoding, preprocess string, filterNZV, oversample bool, seed int64) (*data.Dataset, *preprocessing.LabelEncoder, error) {
	log.Infof("Loading %s", dataFile)
	raw, err := data.NewCSVReader(dataFile).Load()
	if err != nil {
		return nil, nil, err
	}

	targetCols := strings.Split(targets, ",")
	if targets == "" {
		targetCols = []string{raw.Headers[len(raw.Headers)-1]}
	}

	tableEnc := preprocessing.NewTableEncoder(targetCols, targetEncoding)
	ds, err := tableEnc.FitTransform(raw)
	if err != nil {
		return nil, nil, err
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateDataset(ds); err != nil {
		return nil, nil, err
	}

	if filterNZV {
		vf := preprocessing.NewVarianceFilter()
		ds, err = vf.FitTransform(ds)
		if err != nil {
			return nil, nil, err
		}
		if len(vf.Dropped) > 0 {
			log.Infof("Dropped %d near-zero-variance predictors: %s", len(vf.Dropped), strings.Join(vf.Dropped, ", "))
		}
	}

	if preprocess != "raw" && preprocess != "" {
		scaler := preprocessing.NewScaler(preprocess)
		ds, err = scaler.FitTransform(ds)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Applied %s preprocessing", preprocess)
	}

	if oversample {
		sampler := preprocessing.NewOversampler(seed)
		ds, err = sampler.Balance(ds)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Oversampled to %d rows", ds.NumRows())
	}

	return ds, tableEnc.Labels(), nil
}

func runExperiment(configFile string, ds *data.Dataset, outputDir string) {
	log.Info("Running full regression experiment")

	runner, err := experiment.NewRunner(configFile)
	if err != nil {
		log.Fatalf("Failed to load experiment config: %v", err)
	}

	results, err := runner.RunRegressionExperiments(context.Background(), ds)
	if err != nil {
		log.Fatalf("Experiment failed: %v", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	expDir := filepath.Join(outputDir, fmt.Sprintf("experiment_%s", timestamp))
	os.MkdirAll(expDir, 0755)

	resultsFile := filepath.Join(expDir, "experiment_results.csv")
	if err := runner.ExportResults(results, resultsFile); err != nil {
		log.Errorf("Failed to export results: %v", err)
	} else {
		log.Infof("Experiment results saved to %s", resultsFile)
	}

	fmt.Printf("\nExperiment Summary:\n")
	fmt.Printf("Total experiments: %d\n", len(results))

	if len(results) > 0 {
		best := results[0]
		for _, result := range results[1:] {
			if result.RMSE < best.RMSE {
				best = result
			}
		}
		fmt.Printf("Best RMSE: %.4f (%s with %s preprocessing)\n",
			best.RMSE, best.Algorithm, best.Preprocessing)
	}
}

func runTuning(configFile string, ds *data.Dataset, outputDir string, parallel bool) {
	log.Info("Running network hyperparameter search")

	runner, err := experiment.NewRunner(configFile)
	if err != nil {
		log.Fatalf("Failed to load experiment config: %v", err)
	}

	start := time.Now()
	result, err := runner.RunNetworkSearch(context.Background(), ds, parallel)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	log.Infof("Evaluated %d grid rows in %v", len(result.Grid), time.Since(start).Round(time.Millisecond))

	fmt.Printf("\nBest configuration (row %d):\n", result.BestIndex)
	fmt.Printf("  %s\n", result.BestRow)
	fmt.Printf("  Mean accuracy: %.4f\n", result.BestRow.MeanAccuracy)
	fmt.Printf("  Mean loss: %.4f\n", result.BestRow.MeanLoss)

	os.MkdirAll(outputDir, 0755)
	gridFile := filepath.Join(outputDir, fmt.Sprintf("grid_%s.csv", time.Now().Format("20060102_150405")))
	if err := experiment.ExportGrid(result.Grid, result.BestIndex, gridFile); err != nil {
		log.Errorf("Failed to export grid: %v", err)
	} else {
		log.Infof("Annotated grid saved to %s", gridFile)
	}

	if network, ok := result.BestModel.(*models.Network); ok {
		bundle := persistence.NewNetworkBundle(network)
		bundle.Metadata.Accuracy = result.BestRow.MeanAccuracy
		modelPath := filepath.Join(outputDir, fmt.Sprintf("network_%s.model", time.Now().Format("20060102_150405")))
		if err := bundle.Save(modelPath); err != nil {
			log.Errorf("Failed to save model: %v", err)
		} else {
			log.Infof("Best model saved to %s", modelPath)
		}
	}
}

func runNetworkTraining(ds *data.Dataset, encoder *preprocessing.LabelEncoder, hidden string, epochs, batchSize int, outputDir, dataFile string, seed int64) {
	sizes := []int{ds.NumPredictors()}
	for _, part := range strings.Split(hidden, ",") {
		size, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			log.Fatalf("Invalid hidden layer size %q", part)
		}
		sizes = append(sizes, size)
	}
	sizes = append(sizes, ds.NumTargets())

	outputAct := models.Softmax
	loss := models.CategoricalCrossEntropy
	if ds.NumTargets() == 1 {
		outputAct = models.Sigmoid
		loss = models.BinaryCrossEntropy
	}

	network, err := models.NewNetwork(sizes, models.ReLU, outputAct, seed)
	if err != nil {
		log.Fatalf("Failed to build network: %v", err)
	}
	if err := network.Compile(loss, models.NewAdam(), models.Accuracy); err != nil {
		log.Fatalf("Failed to compile network: %v", err)
	}

	x, y := ds.SplitXY()

	log.Infof("Training network %v for %d epochs", sizes, epochs)
	start := time.Now()
	history, err := network.Fit(x, y, epochs, batchSize, 0.2)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	trainingTime := time.Since(start)

	last := history.Last()
	fmt.Printf("\nTraining Results:\n")
	fmt.Printf("Training time: %v\n", trainingTime)
	fmt.Printf("Final loss: %.4f\n", last.Loss)
	fmt.Printf("Final accuracy: %.4f\n", last.Metric)
	fmt.Printf("Validation loss: %.4f\n", last.ValLoss)
	fmt.Printf("Validation accuracy: %.4f\n", last.ValMetric)

	os.MkdirAll(outputDir, 0755)
	bundle := persistence.NewNetworkBundle(network)
	bundle.Encoder = encoder
	bundle.Metadata.Dataset = dataFile
	bundle.Metadata.Accuracy = last.Metric
	bundle.Metadata.TrainingTime = trainingTime
	bundle.Metadata.Features = ds.FeatureNames()

	modelPath := filepath.Join(outputDir, fmt.Sprintf("network_%s.model", time.Now().Format("20060102_150405")))
	if err := bundle.Save(modelPath); err != nil {
		log.Errorf("Failed to save model: %v", err)
	} else {
		log.Infof("Model saved to %s", modelPath)
	}
}

func runRegressorTraining(ds *data.Dataset, algorithm string, lambda float64, k int, testSize float64, crossValidation bool, cvFolds int, seed int64, outputDir, dataFile string) {
	config := models.RegressorConfig{
		Algorithm: algorithm,
		Lambda:    lambda,
		K:         k,
		Distance:  "euclidean",
	}

	model, err := models.CreateRegressor(config)
	if err != nil {
		log.Fatalf("Failed to create model: %v", err)
	}

	splitter := evaluation.NewTrainTestSplitter(testSize, seed, true)
	train, test, err := splitter.Split(ds)
	if err != nil {
		log.Fatalf("Failed to split data: %v", err)
	}

	trainX, _ := train.SplitXY()
	trainY, err := train.TargetVector()
	if err != nil {
		log.Fatalf("Regression needs a single target column: %v", err)
	}
	testX, _ := test.SplitXY()
	testY, _ := test.TargetVector()

	log.Infof("Training %s model", model.GetName())
	start := time.Now()
	if err := model.Fit(trainX, trainY); err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	trainingTime := time.Since(start)

	metrics, err := evaluation.CalculateRegressionMetrics(testY, model.Predict(testX))
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Printf("\nTraining Results:\n")
	fmt.Printf("Training time: %v\n", trainingTime)
	fmt.Printf("Test RMSE: %.4f\n", metrics.RMSE)
	fmt.Printf("Test MAE: %.4f\n", metrics.MAE)
	fmt.Printf("Test R2: %.4f\n", metrics.R2)

	if reporter, ok := model.(models.ImportanceReporter); ok {
		printTopFeatures(ds.FeatureNames(), reporter.FeatureImportances(), 10)
	}

	if crossValidation {
		log.Infof("Running %d-fold cross-validation", cvFolds)
		cv := evaluation.NewCrossValidator(cvFolds, seed)
		_, mean, std, err := cv.RunRegressor(context.Background(), ds, config)
		if err != nil {
			log.Errorf("Cross-validation failed: %v", err)
		} else {
			fmt.Printf("CV RMSE: %.4f +/- %.4f\n", mean, std)
		}
	}

	os.MkdirAll(outputDir, 0755)
	bundle := persistence.NewRegressorBundle(model)
	bundle.Metadata.Dataset = dataFile
	bundle.Metadata.RMSE = metrics.RMSE
	bundle.Metadata.TrainingTime = trainingTime
	bundle.Metadata.Features = ds.FeatureNames()

	modelPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.model", algorithm, time.Now().Format("20060102_150405")))
	if err := bundle.Save(modelPath); err != nil {
		log.Errorf("Failed to save model: %v", err)
	} else {
		log.Infof("Model saved to %s", modelPath)
	}
}

func printTopFeatures(names []string, importances []float64, top int) {
	if len(names) != len(importances) {
		return
	}

	type ranked struct {
		name  string
		score float64
	}
	all := make([]ranked, len(names))
	for i := range names {
		all[i] = ranked{names[i], importances[i]}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	if top > len(all) {
		top = len(all)
	}
	fmt.Printf("\nTop %d features by |coefficient|:\n", top)
	for _, r := range all[:top] {
		fmt.Printf("  %-30s %.4f\n", r.name, r.score)
	}
}
