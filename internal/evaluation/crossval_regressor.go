package evaluation

import (
	"context"
	"fmt"
	"math"

	"github.com/Benardi/br-deputy-elections/internal/data"
	"github.com/Benardi/br-deputy-elections/internal/models"
)

// RunRegressor cross-validates a regressor configuration, scoring RMSE per
// fold. A fresh model is built from the config for every fold, so folds are
// fully isolated. Returns per-fold RMSE plus mean and standard deviation.
func (cv *CrossValidator) RunRegressor(ctx context.Context, ds *data.Dataset, config models.RegressorConfig) ([]float64, float64, float64, error) {
	if ds == nil || ds.NumRows() == 0 {
		return nil, 0, 0, fmt.Errorf("%w: empty dataset", ErrConfiguration)
	}

	n := ds.NumRows()
	if cv.Folds < 2 {
		return nil, 0, 0, fmt.Errorf("%w: fold count must be at least 2, got %d", ErrConfiguration, cv.Folds)
	}
	if cv.Folds > n {
		return nil, 0, 0, fmt.Errorf("%w: fold count %d exceeds row count %d", ErrConfiguration, cv.Folds, n)
	}

	assignment := cv.AssignFolds(n)

	var scores []float64
	for fold := 0; fold < cv.Folds; fold++ {
		select {
		case <-ctx.Done():
			return nil, 0, 0, ctx.Err()
		default:
		}

		var trainIdx, validIdx []int
		for i, f := range assignment {
			if f == fold {
				validIdx = append(validIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		if len(validIdx) == 0 || len(trainIdx) == 0 {
			continue
		}

		model, err := models.CreateRegressor(config)
		if err != nil {
			return nil, 0, 0, err
		}

		trainX, _ := ds.Subset(trainIdx).SplitXY()
		trainY, err := ds.Subset(trainIdx).TargetVector()
		if err != nil {
			return nil, 0, 0, err
		}
		validX, _ := ds.Subset(validIdx).SplitXY()
		validY, err := ds.Subset(validIdx).TargetVector()
		if err != nil {
			return nil, 0, 0, err
		}

		if err := model.Fit(trainX, trainY); err != nil {
			return nil, 0, 0, fmt.Errorf("fold %d training failed: %w", fold, err)
		}

		metrics, err := CalculateRegressionMetrics(validY, model.Predict(validX))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("fold %d evaluation failed: %w", fold, err)
		}

		scores = append(scores, metrics.RMSE)
	}

	mean, std := calculateStats(scores)
	return scores, mean, std, nil
}

func calculateStats(scores []float64) (mean, std float64) {
	if len(scores) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean = sum / float64(len(scores))

	if len(scores) > 1 {
		variance := 0.0
		for _, s := range scores {
			diff := s - mean
			variance += diff * diff
		}
		variance /= float64(len(scores) - 1)
		std = math.Sqrt(variance)
	}

	return mean, std
}
