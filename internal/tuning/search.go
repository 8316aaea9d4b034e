package tuning

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Benardi/br-deputy-elections/internal/data"
	"github.com/Benardi/br-deputy-elections/internal/evaluation"
	"github.com/Benardi/br-deputy-elections/internal/models"
)

// ErrUnknownOptimizer is returned when a grid row names an optimizer tag
// outside the recognised set.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// Optimizer tags resolve through a fixed lookup table; each carries its own
// hard-coded hyperparameters (sgd lr 0.01, rmsprop lr 0.001 decay 0.9,
// adam lr 0.001 beta1 0.9 beta2 0.999).
var optimizerFactories = map[string]func() models.Optimizer{
	"sgd":     func() models.Optimizer { return models.NewSGD() },
	"rmsprop": func() models.Optimizer { return models.NewRMSProp() },
	"adam":    func() models.Optimizer { return models.NewAdam() },
}

// ResolveOptimizer maps a tag to a fresh optimizer instance, failing closed
// on unrecognised tags.
func ResolveOptimizer(tag string) (models.Optimizer, error) {
	factory, ok := optimizerFactories[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOptimizer, tag)
	}
	return factory(), nil
}

// OptimizerTags lists the recognised optimizer identifiers.
func OptimizerTags() []string {
	return []string{"adam", "rmsprop", "sgd"}
}

// SearchResult is the terminal artifact of a grid search: the winning
// configuration with its trained model and history, plus the whole grid
// annotated with per-row mean accuracy and loss.
type SearchResult struct {
	BestIndex   int
	BestRow     GridRow
	BestModel   models.Learner
	BestHistory *models.History
	Grid        []GridRow
}

// Searcher evaluates every grid row with k-fold cross-validation and keeps
// the single best row by mean accuracy. Each row trains its own fresh model
// instance, so rows never share mutable state and may run in parallel.
type Searcher struct {
	Folds      int
	Seed       int64
	Metric     models.MetricKind
	Parallel   bool
	MaxWorkers int
}

func NewSearcher(folds int, seed int64) *Searcher {
	return &Searcher{
		Folds:      folds,
		Seed:       seed,
		Metric:     models.Accuracy,
		Parallel:   false,
		MaxWorkers: 4,
	}
}

type rowOutcome struct {
	meanLoss   float64
	meanMetric float64
	model      models.Learner
	history    *models.History
	err        error
}

// Search runs the grid. A failure in any row aborts the whole search; there
// is no partial-result recovery. Ties on mean accuracy keep the
// earliest-indexed row regardless of execution order.
func (s *Searcher) Search(ctx context.Context, ds *data.Dataset, build func() models.Learner, grid []GridRow) (*SearchResult, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty grid", evaluation.ErrConfiguration)
	}
	if build == nil {
		return nil, fmt.Errorf("%w: nil model builder", evaluation.ErrConfiguration)
	}

	outcomes := make([]rowOutcome, len(grid))

	if s.Parallel {
		s.runParallel(ctx, ds, build, grid, outcomes)
	} else {
		s.runSerial(ctx, ds, build, grid, outcomes)
	}

	for i := range outcomes {
		if outcomes[i].err != nil {
			return nil, fmt.Errorf("grid row %d (%s): %w", i, grid[i], outcomes[i].err)
		}
	}

	result := &SearchResult{BestIndex: -1, Grid: grid}
	for i := range grid {
		grid[i].MeanLoss = outcomes[i].meanLoss
		grid[i].MeanAccuracy = outcomes[i].meanMetric
		grid[i].Evaluated = true

		if result.BestIndex < 0 || grid[i].MeanAccuracy > result.BestRow.MeanAccuracy {
			result.BestIndex = i
			result.BestRow = grid[i]
			result.BestModel = outcomes[i].model
			result.BestHistory = outcomes[i].history
		}
	}

	return result, nil
}

func (s *Searcher) runSerial(ctx context.Context, ds *data.Dataset, build func() models.Learner, grid []GridRow, outcomes []rowOutcome) {
	for i := range grid {
		select {
		case <-ctx.Done():
			outcomes[i].err = ctx.Err()
			return
		default:
		}
		outcomes[i] = s.evaluateRow(ctx, ds, build, grid[i])
		if outcomes[i].err != nil {
			return
		}
	}
}

func (s *Searcher) runParallel(ctx context.Context, ds *data.Dataset, build func() models.Learner, grid []GridRow, outcomes []rowOutcome) {
	workers := s.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(grid) {
		workers = len(grid)
	}

	jobs := make(chan int, len(grid))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					outcomes[i].err = ctx.Err()
					continue
				default:
				}
				outcomes[i] = s.evaluateRow(ctx, ds, build, grid[i])
			}
		}()
	}

	for i := range grid {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
}

func (s *Searcher) evaluateRow(ctx context.Context, ds *data.Dataset, build func() models.Learner, row GridRow) rowOutcome {
	opt, err := ResolveOptimizer(row.Optimizer)
	if err != nil {
		return rowOutcome{err: err}
	}

	model := build()
	cv := evaluation.NewCrossValidator(s.Folds, s.Seed)

	res, err := cv.Run(ctx, ds, model, evaluation.TrainSpec{
		Loss:            row.Loss,
		Optimizer:       opt,
		Metric:          s.Metric,
		Epochs:          row.Epochs,
		BatchSize:       row.BatchSize,
		ValidationSplit: row.ValidationSplit,
	})
	if err != nil {
		return rowOutcome{err: err}
	}

	return rowOutcome{
		meanLoss:   res.MeanLoss(),
		meanMetric: res.MeanMetric(),
		model:      res.Model,
		history:    res.History,
	}
}
