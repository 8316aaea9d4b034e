package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// ValidateDataset checks the structural invariants of a Dataset: non-empty,
// rectangular rows, and a target range inside bounds and disjoint from the
// predictor columns.
func (dv *DataValidator) ValidateDataset(ds *Dataset) error {
	if ds == nil || len(ds.Rows) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	nCols := len(ds.Headers)
	if nCols == 0 {
		return fmt.Errorf("dataset has no columns")
	}

	if ds.TargetStart < 0 || ds.TargetEnd > nCols || ds.TargetStart >= ds.TargetEnd {
		return fmt.Errorf("invalid target column range [%d,%d) for %d columns", ds.TargetStart, ds.TargetEnd, nCols)
	}

	if ds.NumPredictors() == 0 {
		return fmt.Errorf("target range covers every column, no predictors left")
	}

	for i, row := range ds.Rows {
		if len(row) != nCols {
			return fmt.Errorf("inconsistent column count at row %d: expected %d, got %d", i, nCols, len(row))
		}
	}

	return nil
}

// ValidateLabels ensures a classification target carries at least two classes.
func (dv *DataValidator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have at least 2 classes, found %d", len(classCount))
	}

	return nil
}

// GetDatasetStats summarises a dataset: row/column counts plus per-predictor
// min, max and mean.
func (dv *DataValidator) GetDatasetStats(ds *Dataset) map[string]any {
	if ds == nil || len(ds.Rows) == 0 {
		return map[string]any{}
	}

	stats := make(map[string]any)
	stats["rows"] = ds.NumRows()
	stats["predictors"] = ds.NumPredictors()
	stats["targets"] = ds.NumTargets()

	featureStats := make(map[string]map[string]decimal.Decimal)
	for j, name := range ds.Headers {
		if j >= ds.TargetStart && j < ds.TargetEnd {
			continue
		}
		values := make([]decimal.Decimal, ds.NumRows())
		for i, row := range ds.Rows {
			values[i] = row[j]
		}
		featureStats[name] = map[string]decimal.Decimal{
			"min":  findMin(values),
			"max":  findMax(values),
			"mean": calculateMean(values),
		}
	}
	stats["feature_stats"] = featureStats

	return stats
}

func findMin(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	min := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}

func findMax(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	max := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

func calculateMean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}
