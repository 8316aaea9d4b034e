package preprocessing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Benardi/br-deputy-elections/internal/data"
)

// VarianceFilter drops near-zero-variance predictor columns using the
// frequency-ratio / percent-unique rule: a column is removed when the ratio
// of its most common value to its second most common value exceeds
// FreqCutoff and the share of distinct values falls below UniqueCutoff.
// Constant columns are always removed.
type VarianceFilter struct {
	FreqCutoff   float64
	UniqueCutoff float64

	Dropped  []string
	keepCols []int
	fitted   bool
}

func NewVarianceFilter() *VarianceFilter {
	return &VarianceFilter{
		FreqCutoff:   19.0,
		UniqueCutoff: 10.0,
	}
}

func (vf *VarianceFilter) Fit(ds *data.Dataset) error {
	if ds == nil || ds.NumRows() == 0 {
		return fmt.Errorf("empty dataset")
	}

	vf.Dropped = nil
	vf.keepCols = nil

	n := float64(ds.NumRows())
	for j := 0; j < ds.NumCols(); j++ {
		if j >= ds.TargetStart && j < ds.TargetEnd {
			vf.keepCols = append(vf.keepCols, j)
			continue
		}

		counts := make(map[string]int)
		for _, row := range ds.Rows {
			counts[row[j].String()]++
		}

		if len(counts) == 1 {
			vf.Dropped = append(vf.Dropped, ds.Headers[j])
			continue
		}

		first, second := topTwoCounts(counts)
		freqRatio := float64(first) / float64(second)
		percentUnique := float64(len(counts)) / n * 100

		if freqRatio > vf.FreqCutoff && percentUnique < vf.UniqueCutoff {
			vf.Dropped = append(vf.Dropped, ds.Headers[j])
			continue
		}

		vf.keepCols = append(vf.keepCols, j)
	}

	vf.fitted = true
	return nil
}

func (vf *VarianceFilter) Transform(ds *data.Dataset) (*data.Dataset, error) {
	if !vf.fitted {
		return nil, fmt.Errorf("variance filter must be fitted before transform")
	}

	headers := make([]string, len(vf.keepCols))
	targetStart, targetEnd := -1, -1
	for outJ, j := range vf.keepCols {
		headers[outJ] = ds.Headers[j]
		if j == ds.TargetStart {
			targetStart = outJ
		}
		if j == ds.TargetEnd-1 {
			targetEnd = outJ + 1
		}
	}
	if targetStart < 0 || targetEnd < 0 {
		return nil, fmt.Errorf("target columns missing from filtered dataset")
	}

	rows := make([][]decimal.Decimal, ds.NumRows())
	for i, row := range ds.Rows {
		rows[i] = make([]decimal.Decimal, len(vf.keepCols))
		for outJ, j := range vf.keepCols {
			rows[i][outJ] = row[j]
		}
	}

	return data.NewDataset(headers, rows, targetStart, targetEnd)
}

func (vf *VarianceFilter) FitTransform(ds *data.Dataset) (*data.Dataset, error) {
	if err := vf.Fit(ds); err != nil {
		return nil, err
	}
	return vf.Transform(ds)
}

func topTwoCounts(counts map[string]int) (int, int) {
	values := make([]int, 0, len(counts))
	for _, c := range counts {
		values = append(values, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	if len(values) == 1 {
		return values[0], 1
	}
	if values[1] == 0 {
		return values[0], 1
	}
	return values[0], values[1]
}
