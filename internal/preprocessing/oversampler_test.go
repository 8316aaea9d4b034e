package preprocessing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Benardi/br-deputy-elections/internal/data"
)

func imbalancedDataset(t *testing.T, majority, minority int) *data.Dataset {
	t.Helper()

	var rows [][]decimal.Decimal
	for i := 0; i < majority; i++ {
		rows = append(rows, []decimal.Decimal{
			decimal.NewFromInt(int64(i)),
			decimal.NewFromInt(0),
		})
	}
	for i := 0; i < minority; i++ {
		rows = append(rows, []decimal.Decimal{
			decimal.NewFromInt(int64(100 + i)),
			decimal.NewFromInt(1),
		})
	}

	ds, err := data.NewDataset([]string{"x", "label"}, rows, 1, 2)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func countLabels(t *testing.T, ds *data.Dataset) map[int]int {
	t.Helper()
	labels, err := ds.TargetLabels()
	if err != nil {
		t.Fatalf("TargetLabels: %v", err)
	}
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

func TestOversamplerBalancesClasses(t *testing.T) {
	ds := imbalancedDataset(t, 20, 5)

	out, err := NewOversampler(42).Balance(ds)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}

	counts := countLabels(t, out)
	if counts[0] != 20 || counts[1] != 20 {
		t.Errorf("class counts after balancing = %v, want 20 each", counts)
	}
	if out.NumRows() != 40 {
		t.Errorf("row count = %d, want 40", out.NumRows())
	}
}

func TestOversamplerDeterministicPerSeed(t *testing.T) {
	ds := imbalancedDataset(t, 10, 3)

	first, err := NewOversampler(7).Balance(ds)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	second, err := NewOversampler(7).Balance(ds)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}

	if first.NumRows() != second.NumRows() {
		t.Fatalf("row counts differ: %d vs %d", first.NumRows(), second.NumRows())
	}
	for i := range first.Rows {
		for j := range first.Rows[i] {
			if !first.Rows[i][j].Equal(second.Rows[i][j]) {
				t.Fatalf("row %d col %d differs across identical seeds", i, j)
			}
		}
	}
}

func TestOversamplerDuplicatesComeFromMinority(t *testing.T) {
	ds := imbalancedDataset(t, 10, 2)

	out, err := NewOversampler(1).Balance(ds)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}

	// Synthetic rows are appended after the originals and must carry the
	// minority label with predictor values copied from minority rows.
	for i := 12; i < out.NumRows(); i++ {
		if out.Rows[i][1].String() != "1" {
			t.Errorf("synthetic row %d has label %s, want 1", i, out.Rows[i][1])
		}
		x, _ := out.Rows[i][0].Float64()
		if x != 100 && x != 101 {
			t.Errorf("synthetic row %d predictor %g not drawn from minority rows", i, x)
		}
	}
}

func TestOversamplerInterpolatedRowsStayInRange(t *testing.T) {
	ds := imbalancedDataset(t, 10, 3)

	sampler := NewOversampler(42)
	sampler.Interpolate = true
	out, err := sampler.Balance(ds)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}

	// Minority predictors span [100,102]; blends must stay inside that hull
	// and keep the minority label.
	for i := 13; i < out.NumRows(); i++ {
		x, _ := out.Rows[i][0].Float64()
		if x < 100 || x > 102 {
			t.Errorf("interpolated row %d predictor %g outside minority hull", i, x)
		}
		if out.Rows[i][1].String() != "1" {
			t.Errorf("interpolated row %d lost its label", i)
		}
	}
}

func TestOversamplerSingleClass(t *testing.T) {
	rows := [][]decimal.Decimal{
		{decimal.NewFromInt(1), decimal.NewFromInt(0)},
		{decimal.NewFromInt(2), decimal.NewFromInt(0)},
	}
	ds, err := data.NewDataset([]string{"x", "label"}, rows, 1, 2)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	if _, err := NewOversampler(42).Balance(ds); err == nil {
		t.Error("expected error for single-class dataset")
	}
}
