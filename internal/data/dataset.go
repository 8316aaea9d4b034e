package data

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

// Dataset is a fully numeric table. Target columns occupy the contiguous
// range [TargetStart, TargetEnd); everything else is a predictor.
type Dataset struct {
	Headers     []string
	Rows        [][]decimal.Decimal
	TargetStart int
	TargetEnd   int
}

func NewDataset(headers []string, rows [][]decimal.Decimal, targetStart, targetEnd int) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	if targetStart < 0 || targetEnd > len(headers) || targetStart >= targetEnd {
		return nil, fmt.Errorf("invalid target column range [%d,%d) for %d columns", targetStart, targetEnd, len(headers))
	}
	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), len(headers))
		}
	}

	return &Dataset{
		Headers:     headers,
		Rows:        rows,
		TargetStart: targetStart,
		TargetEnd:   targetEnd,
	}, nil
}

func (ds *Dataset) NumRows() int {
	return len(ds.Rows)
}

func (ds *Dataset) NumCols() int {
	return len(ds.Headers)
}

func (ds *Dataset) NumPredictors() int {
	return len(ds.Headers) - (ds.TargetEnd - ds.TargetStart)
}

func (ds *Dataset) NumTargets() int {
	return ds.TargetEnd - ds.TargetStart
}

func (ds *Dataset) FeatureNames() []string {
	names := make([]string, 0, ds.NumPredictors())
	for j, h := range ds.Headers {
		if j < ds.TargetStart || j >= ds.TargetEnd {
			names = append(names, h)
		}
	}
	return names
}

func (ds *Dataset) TargetNames() []string {
	return ds.Headers[ds.TargetStart:ds.TargetEnd]
}

// Subset returns a new Dataset holding copies of the rows at the given indices.
func (ds *Dataset) Subset(indices []int) *Dataset {
	rows := make([][]decimal.Decimal, len(indices))
	for i, idx := range indices {
		rows[i] = make([]decimal.Decimal, len(ds.Rows[idx]))
		copy(rows[i], ds.Rows[idx])
	}

	return &Dataset{
		Headers:     ds.Headers,
		Rows:        rows,
		TargetStart: ds.TargetStart,
		TargetEnd:   ds.TargetEnd,
	}
}

// SplitXY converts the table into a predictor matrix and a target matrix.
func (ds *Dataset) SplitXY() (*mat.Dense, *mat.Dense) {
	n := ds.NumRows()
	p := ds.NumPredictors()
	t := ds.NumTargets()

	x := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, t, nil)

	for i, row := range ds.Rows {
		xj := 0
		for j, val := range row {
			f, _ := val.Float64()
			if j >= ds.TargetStart && j < ds.TargetEnd {
				y.Set(i, j-ds.TargetStart, f)
			} else {
				x.Set(i, xj, f)
				xj++
			}
		}
	}

	return x, y
}

// TargetVector flattens a single-column target range into a plain slice.
func (ds *Dataset) TargetVector() ([]float64, error) {
	if ds.NumTargets() != 1 {
		return nil, fmt.Errorf("expected a single target column, have %d", ds.NumTargets())
	}

	y := make([]float64, ds.NumRows())
	for i, row := range ds.Rows {
		y[i], _ = row[ds.TargetStart].Float64()
	}
	return y, nil
}

// TargetLabels rounds a single-column target to integer class labels.
func (ds *Dataset) TargetLabels() ([]int, error) {
	y, err := ds.TargetVector()
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(y))
	for i, v := range y {
		labels[i] = int(v + 0.5)
	}
	return labels, nil
}
