package preprocessing

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Benardi/br-deputy-elections/internal/data"
)

// Oversampler balances a classification dataset by growing every minority
// class up to the majority class count. Synthetic rows are either duplicates
// of existing minority rows or, with Interpolate set, blends between a row
// and a randomly chosen same-class row. The RNG is always explicitly seeded.
type Oversampler struct {
	Seed        int64
	Interpolate bool
}

func NewOversampler(seed int64) *Oversampler {
	return &Oversampler{Seed: seed}
}

func (os *Oversampler) Balance(ds *data.Dataset) (*data.Dataset, error) {
	labels, err := ds.TargetLabels()
	if err != nil {
		return nil, fmt.Errorf("oversampling needs a single label target: %w", err)
	}

	classRows := make(map[int][]int)
	for i, label := range labels {
		classRows[label] = append(classRows[label], i)
	}
	if len(classRows) < 2 {
		return nil, fmt.Errorf("dataset must have at least 2 classes, found %d", len(classRows))
	}

	majority := 0
	for _, idxs := range classRows {
		if len(idxs) > majority {
			majority = len(idxs)
		}
	}

	rng := rand.New(rand.NewSource(os.Seed))

	rows := make([][]decimal.Decimal, 0, majority*len(classRows))
	for _, row := range ds.Rows {
		cp := make([]decimal.Decimal, len(row))
		copy(cp, row)
		rows = append(rows, cp)
	}

	// Deterministic class order keeps synthetic rows reproducible per seed.
	order := make([]int, 0, len(classRows))
	for label := range classRows {
		order = append(order, label)
	}
	sort.Ints(order)

	for _, label := range order {
		idxs := classRows[label]
		for need := majority - len(idxs); need > 0; need-- {
			base := ds.Rows[idxs[rng.Intn(len(idxs))]]
			if os.Interpolate && len(idxs) > 1 {
				other := ds.Rows[idxs[rng.Intn(len(idxs))]]
				rows = append(rows, blendRows(base, other, rng.Float64(), ds.TargetStart, ds.TargetEnd))
			} else {
				cp := make([]decimal.Decimal, len(base))
				copy(cp, base)
				rows = append(rows, cp)
			}
		}
	}

	return data.NewDataset(ds.Headers, rows, ds.TargetStart, ds.TargetEnd)
}

// blendRows interpolates predictor values between two same-class rows and
// keeps the target columns from the base row.
func blendRows(base, other []decimal.Decimal, u float64, targetStart, targetEnd int) []decimal.Decimal {
	frac := decimal.NewFromFloat(u)
	row := make([]decimal.Decimal, len(base))
	for j := range base {
		if j >= targetStart && j < targetEnd {
			row[j] = base[j]
			continue
		}
		row[j] = base[j].Add(other[j].Sub(base[j]).Mul(frac))
	}
	return row
}

