package experiment

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Benardi/br-deputy-elections/internal/data"
	"github.com/Benardi/br-deputy-elections/internal/evaluation"
	"github.com/Benardi/br-deputy-elections/internal/models"
	"github.com/Benardi/br-deputy-elections/internal/preprocessing"
	"github.com/Benardi/br-deputy-elections/internal/tuning"
)

type ExperimentConfig struct {
	Experiment struct {
		Preprocessing   []string `yaml:"preprocessing"`
		TestSize        float64  `yaml:"test_size"`
		Seed            int64    `yaml:"seed"`
		CrossValidation struct {
			Folds int `yaml:"folds"`
		} `yaml:"cross_validation"`
		Regressors struct {
			Ridge struct {
				Lambda []float64 `yaml:"lambda"`
			} `yaml:"ridge"`
			Lasso struct {
				Lambda []float64 `yaml:"lambda"`
			} `yaml:"lasso"`
			KNN struct {
				K        []int    `yaml:"k"`
				Distance []string `yaml:"distance"`
			} `yaml:"knn"`
		} `yaml:"regressors"`
		Network struct {
			Hidden []int `yaml:"hidden"`
			Grid   struct {
				Optimizers       []string  `yaml:"optimizers"`
				Losses           []string  `yaml:"losses"`
				BatchSizes       []int     `yaml:"batch_sizes"`
				Epochs           []int     `yaml:"epochs"`
				ValidationSplits []float64 `yaml:"validation_splits"`
			} `yaml:"grid"`
		} `yaml:"network"`
	} `yaml:"experiment"`
}

type ExperimentRunner struct {
	Config *ExperimentConfig
}

func NewRunner(configFile string) (*ExperimentRunner, error) {
	config := &ExperimentConfig{}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Experiment.TestSize <= 0 {
		config.Experiment.TestSize = 0.2
	}
	if config.Experiment.Seed == 0 {
		config.Experiment.Seed = 42
	}

	return &ExperimentRunner{Config: config}, nil
}

type ExperimentResult struct {
	Algorithm      string
	Parameters     string
	Preprocessing  string
	RMSE           float64
	MAE            float64
	R2             float64
	CVMean         float64
	CVStd          float64
	TrainingTimeMs int64
}

// RunRegressionExperiments sweeps every configured regressor over every
// preprocessing variant, scoring a held-out split and cross-validating.
func (r *ExperimentRunner) RunRegressionExperiments(ctx context.Context, ds *data.Dataset) ([]ExperimentResult, error) {
	exp := r.Config.Experiment

	prepMethods := exp.Preprocessing
	if len(prepMethods) == 0 {
		prepMethods = []string{"raw"}
	}

	var results []ExperimentResult
	for _, prep := range prepMethods {
		prepped, err := r.preprocess(ds, prep)
		if err != nil {
			return nil, fmt.Errorf("preprocessing %q failed: %w", prep, err)
		}

		var configs []models.RegressorConfig
		for _, lambda := range exp.Regressors.Ridge.Lambda {
			configs = append(configs, models.RegressorConfig{Algorithm: "ridge", Lambda: lambda})
		}
		for _, lambda := range exp.Regressors.Lasso.Lambda {
			configs = append(configs, models.RegressorConfig{Algorithm: "lasso", Lambda: lambda})
		}
		distances := exp.Regressors.KNN.Distance
		if len(distances) == 0 && len(exp.Regressors.KNN.K) > 0 {
			distances = []string{"euclidean"}
		}
		for _, k := range exp.Regressors.KNN.K {
			for _, dist := range distances {
				configs = append(configs, models.RegressorConfig{Algorithm: "knn", K: k, Distance: dist})
			}
		}

		for _, config := range configs {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			result, err := r.evaluateRegressor(ctx, prepped, config, prep)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}

	return results, nil
}

func (r *ExperimentRunner) preprocess(ds *data.Dataset, method string) (*data.Dataset, error) {
	if method == "raw" || method == "" {
		return ds, nil
	}
	scaler := preprocessing.NewScaler(method)
	return scaler.FitTransform(ds)
}

func (r *ExperimentRunner) evaluateRegressor(ctx context.Context, ds *data.Dataset, config models.RegressorConfig, prep string) (ExperimentResult, error) {
	exp := r.Config.Experiment

	model, err := models.CreateRegressor(config)
	if err != nil {
		return ExperimentResult{}, err
	}

	result := ExperimentResult{
		Algorithm:     model.GetName(),
		Parameters:    fmt.Sprintf("%v", model.GetParams()),
		Preprocessing: prep,
	}

	splitter := evaluation.NewTrainTestSplitter(exp.TestSize, exp.Seed, true)
	train, test, err := splitter.Split(ds)
	if err != nil {
		return ExperimentResult{}, err
	}

	trainX, _ := train.SplitXY()
	trainY, err := train.TargetVector()
	if err != nil {
		return ExperimentResult{}, err
	}
	testX, _ := test.SplitXY()
	testY, err := test.TargetVector()
	if err != nil {
		return ExperimentResult{}, err
	}

	start := time.Now()
	if err := model.Fit(trainX, trainY); err != nil {
		return ExperimentResult{}, fmt.Errorf("%s training failed: %w", model.GetName(), err)
	}
	result.TrainingTimeMs = time.Since(start).Milliseconds()

	metrics, err := evaluation.CalculateRegressionMetrics(testY, model.Predict(testX))
	if err != nil {
		return ExperimentResult{}, err
	}
	result.RMSE = metrics.RMSE
	result.MAE = metrics.MAE
	result.R2 = metrics.R2

	if exp.CrossValidation.Folds > 1 {
		cv := evaluation.NewCrossValidator(exp.CrossValidation.Folds, exp.Seed)
		_, mean, std, err := cv.RunRegressor(ctx, ds, config)
		if err != nil {
			return ExperimentResult{}, err
		}
		result.CVMean = mean
		result.CVStd = std
	}

	return result, nil
}

// NetworkGrid translates the YAML grid section into expanded search rows.
func (r *ExperimentRunner) NetworkGrid() ([]tuning.GridRow, error) {
	gridCfg := r.Config.Experiment.Network.Grid

	losses := make([]models.LossKind, 0, len(gridCfg.Losses))
	for _, name := range gridCfg.Losses {
		loss, err := models.ParseLoss(name)
		if err != nil {
			return nil, err
		}
		losses = append(losses, loss)
	}

	grid := tuning.ExpandGrid(tuning.Candidates{
		Optimizers:       gridCfg.Optimizers,
		Losses:           losses,
		BatchSizes:       gridCfg.BatchSizes,
		Epochs:           gridCfg.Epochs,
		ValidationSplits: gridCfg.ValidationSplits,
	})
	if len(grid) == 0 {
		return nil, fmt.Errorf("network grid section expands to no rows")
	}

	return grid, nil
}

// RunNetworkSearch tunes the configured feed-forward network over the YAML
// grid with the shared fold count and seed.
func (r *ExperimentRunner) RunNetworkSearch(ctx context.Context, ds *data.Dataset, parallel bool) (*tuning.SearchResult, error) {
	exp := r.Config.Experiment

	grid, err := r.NetworkGrid()
	if err != nil {
		return nil, err
	}

	sizes := append([]int{ds.NumPredictors()}, exp.Network.Hidden...)
	sizes = append(sizes, ds.NumTargets())

	outputAct := models.Softmax
	if ds.NumTargets() == 1 {
		outputAct = models.Sigmoid
	}

	template, err := models.NewNetwork(sizes, models.ReLU, outputAct, exp.Seed)
	if err != nil {
		return nil, err
	}

	folds := exp.CrossValidation.Folds
	if folds < 2 {
		folds = 5
	}

	searcher := tuning.NewSearcher(folds, exp.Seed)
	searcher.Parallel = parallel
	return searcher.Search(ctx, ds, func() models.Learner { return template.Clone() }, grid)
}

func (r *ExperimentRunner) ExportResults(results []ExperimentResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"Algorithm", "Parameters", "Preprocessing",
		"RMSE", "MAE", "R2", "CVMean", "CVStd", "TrainingTimeMs",
	})

	for _, result := range results {
		writer.Write([]string{
			result.Algorithm,
			result.Parameters,
			result.Preprocessing,
			fmt.Sprintf("%.4f", result.RMSE),
			fmt.Sprintf("%.4f", result.MAE),
			fmt.Sprintf("%.4f", result.R2),
			fmt.Sprintf("%.4f", result.CVMean),
			fmt.Sprintf("%.4f", result.CVStd),
			fmt.Sprintf("%d", result.TrainingTimeMs),
		})
	}

	return writer.Error()
}

// ExportGrid writes an annotated search grid to CSV for reporting.
func ExportGrid(grid []tuning.GridRow, bestIndex int, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"Optimizer", "Loss", "BatchSize", "Epochs", "ValidationSplit",
		"MeanAccuracy", "MeanLoss", "Best",
	})

	for i, row := range grid {
		best := ""
		if i == bestIndex {
			best = "*"
		}
		writer.Write([]string{
			row.Optimizer,
			row.Loss.String(),
			fmt.Sprintf("%d", row.BatchSize),
			fmt.Sprintf("%d", row.Epochs),
			fmt.Sprintf("%.2f", row.ValidationSplit),
			fmt.Sprintf("%.4f", row.MeanAccuracy),
			fmt.Sprintf("%.4f", row.MeanLoss),
			best,
		})
	}

	return writer.Error()
}
