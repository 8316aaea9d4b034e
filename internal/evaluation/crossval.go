package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Benardi/br-deputy-elections/internal/data"
	"github.com/Benardi/br-deputy-elections/internal/models"
)

// ErrConfiguration marks structurally invalid cross-validation or search
// setups, such as a fold count exceeding the row count.
var ErrConfiguration = errors.New("invalid configuration")

// TrainSpec bundles the compile- and fit-time parameters of one training run.
type TrainSpec struct {
	Loss            models.LossKind
	Optimizer       models.Optimizer
	Metric          models.MetricKind
	Epochs          int
	BatchSize       int
	ValidationSplit float64
}

type FoldScore struct {
	Fold   int
	Loss   float64
	Metric float64
}

// CVResult collects the per-fold scores of one model/parameter combination,
// plus the history of the last fold's fit and the (multiply retrained) model.
type CVResult struct {
	Folds   []FoldScore
	History *models.History
	Model   models.Learner
}

func (r *CVResult) MeanLoss() float64 {
	if len(r.Folds) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range r.Folds {
		sum += f.Loss
	}
	return sum / float64(len(r.Folds))
}

func (r *CVResult) MeanMetric() float64 {
	if len(r.Folds) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range r.Folds {
		sum += f.Metric
	}
	return sum / float64(len(r.Folds))
}

// CrossValidator trains and scores a model across k folds. Every row is
// independently assigned a uniform-random fold id drawn from a seeded RNG,
// so fold membership (and with it the whole run) is reproducible per seed.
// Folds are therefore only approximately equal-sized and not stratified.
type CrossValidator struct {
	Folds int
	Seed  int64
}

func NewCrossValidator(folds int, seed int64) *CrossValidator {
	return &CrossValidator{
		Folds: folds,
		Seed:  seed,
	}
}

// AssignFolds maps every row index to a fold id in [0, k).
func (cv *CrossValidator) AssignFolds(n int) []int {
	rng := rand.New(rand.NewSource(cv.Seed))
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = rng.Intn(cv.Folds)
	}
	return assignment
}

// Run compiles the model once, then for each fold trains on the complement
// and evaluates on the held-out rows. The model instance is shared across
// folds: its final weights are whatever the last fold's training left behind.
// Returns one FoldScore per fold id that actually received rows.
func (cv *CrossValidator) Run(ctx context.Context, ds *data.Dataset, model models.Learner, spec TrainSpec) (*CVResult, error) {
	if ds == nil || ds.NumRows() == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrConfiguration)
	}

	n := ds.NumRows()
	if cv.Folds < 2 {
		return nil, fmt.Errorf("%w: fold count must be at least 2, got %d", ErrConfiguration, cv.Folds)
	}
	if cv.Folds > n {
		return nil, fmt.Errorf("%w: fold count %d exceeds row count %d", ErrConfiguration, cv.Folds, n)
	}

	if err := model.Compile(spec.Loss, spec.Optimizer, spec.Metric); err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	assignment := cv.AssignFolds(n)

	result := &CVResult{Model: model}

	for fold := 0; fold < cv.Folds; fold++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
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

		// Random assignment can leave a fold empty when n is close to k.
		if len(validIdx) == 0 {
			continue
		}

		trainX, trainY := ds.Subset(trainIdx).SplitXY()
		validX, validY := ds.Subset(validIdx).SplitXY()

		history, err := model.Fit(trainX, trainY, spec.Epochs, spec.BatchSize, spec.ValidationSplit)
		if err != nil {
			return nil, fmt.Errorf("fold %d training failed: %w", fold, err)
		}
		result.History = history

		score, err := model.Evaluate(validX, validY, spec.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("fold %d evaluation failed: %w", fold, err)
		}

		result.Folds = append(result.Folds, FoldScore{
			Fold:   fold,
			Loss:   score.Loss,
			Metric: score.Metric,
		})
	}

	return result, nil
}
