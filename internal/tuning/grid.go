package tuning

import (
	"fmt"

	"github.com/Benardi/br-deputy-elections/internal/models"
)

// GridRow is one hyperparameter combination. MeanLoss and MeanAccuracy are
// filled in by the search once the row has been cross-validated.
type GridRow struct {
	Optimizer       string
	Loss            models.LossKind
	BatchSize       int
	Epochs          int
	ValidationSplit float64

	MeanLoss     float64
	MeanAccuracy float64
	Evaluated    bool
}

func (r GridRow) String() string {
	return fmt.Sprintf("optimizer=%s loss=%s batch=%d epochs=%d val_split=%.2f",
		r.Optimizer, r.Loss, r.BatchSize, r.Epochs, r.ValidationSplit)
}

// Candidates lists the values to combine into a search grid.
type Candidates struct {
	Optimizers       []string
	Losses           []models.LossKind
	BatchSizes       []int
	Epochs           []int
	ValidationSplits []float64
}

// ExpandGrid builds the full cross product of the candidate values, in a
// fixed nesting order so row indices are stable across runs.
func ExpandGrid(c Candidates) []GridRow {
	var grid []GridRow

	for _, opt := range c.Optimizers {
		for _, loss := range c.Losses {
			for _, batch := range c.BatchSizes {
				for _, epochs := range c.Epochs {
					for _, split := range c.ValidationSplits {
						grid = append(grid, GridRow{
							Optimizer:       opt,
							Loss:            loss,
							BatchSize:       batch,
							Epochs:          epochs,
							ValidationSplit: split,
						})
					}
				}
			}
		}
	}

	return grid
}
