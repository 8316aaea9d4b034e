package tuning

import (
	"strings"
	"testing"

	"github.com/Benardi/br-deputy-elections/internal/models"
)

func TestExpandGridCrossProduct(t *testing.T) {
	grid := ExpandGrid(Candidates{
		Optimizers:       []string{"adam", "rmsprop", "sgd"},
		Losses:           []models.LossKind{models.CategoricalCrossEntropy},
		BatchSizes:       []int{32},
		Epochs:           []int{50},
		ValidationSplits: []float64{0.2, 0.3, 0.4},
	})

	if len(grid) != 9 {
		t.Fatalf("expected 9 rows (3 optimizers x 3 splits), got %d", len(grid))
	}

	// Optimizer is the outermost loop, validation split the innermost.
	want := []struct {
		opt   string
		split float64
	}{
		{"adam", 0.2}, {"adam", 0.3}, {"adam", 0.4},
		{"rmsprop", 0.2}, {"rmsprop", 0.3}, {"rmsprop", 0.4},
		{"sgd", 0.2}, {"sgd", 0.3}, {"sgd", 0.4},
	}
	for i, w := range want {
		if grid[i].Optimizer != w.opt || grid[i].ValidationSplit != w.split {
			t.Errorf("row %d = (%s, %.1f), want (%s, %.1f)",
				i, grid[i].Optimizer, grid[i].ValidationSplit, w.opt, w.split)
		}
		if grid[i].Loss != models.CategoricalCrossEntropy || grid[i].BatchSize != 32 || grid[i].Epochs != 50 {
			t.Errorf("row %d carries wrong fixed values: %+v", i, grid[i])
		}
		if grid[i].Evaluated {
			t.Errorf("row %d marked evaluated before any search", i)
		}
	}
}

func TestExpandGridEmptyAxis(t *testing.T) {
	grid := ExpandGrid(Candidates{
		Optimizers: []string{"adam"},
		Losses:     []models.LossKind{models.MSE},
		// no batch sizes
		Epochs:           []int{10},
		ValidationSplits: []float64{0.2},
	})
	if len(grid) != 0 {
		t.Errorf("an empty axis must produce an empty grid, got %d rows", len(grid))
	}
}

func TestExpandGridAllAxes(t *testing.T) {
	grid := ExpandGrid(Candidates{
		Optimizers:       []string{"adam", "sgd"},
		Losses:           []models.LossKind{models.MSE, models.BinaryCrossEntropy},
		BatchSizes:       []int{16, 32},
		Epochs:           []int{10, 20},
		ValidationSplits: []float64{0.2, 0.3},
	})
	if len(grid) != 32 {
		t.Errorf("expected 2^5 = 32 rows, got %d", len(grid))
	}
}

func TestGridRowString(t *testing.T) {
	row := GridRow{
		Optimizer:       "adam",
		Loss:            models.CategoricalCrossEntropy,
		BatchSize:       32,
		Epochs:          50,
		ValidationSplit: 0.25,
	}

	s := row.String()
	for _, part := range []string{"optimizer=adam", "batch=32", "epochs=50", "val_split=0.25"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}
