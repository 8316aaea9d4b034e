package preprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Benardi/br-deputy-elections/internal/data"
)

// Scaler rescales the predictor columns of a Dataset. Target columns are
// passed through untouched.
type Scaler struct {
	ScaleType   string
	IsFitted    bool
	FeatureMin  []decimal.Decimal
	FeatureMax  []decimal.Decimal
	FeatureMean []decimal.Decimal
	FeatureStd  []decimal.Decimal
}

func NewScaler(scaleType string) *Scaler {
	return &Scaler{
		ScaleType: scaleType,
		IsFitted:  false,
	}
}

func (s *Scaler) Fit(ds *data.Dataset) error {
	if ds == nil || ds.NumRows() == 0 {
		return fmt.Errorf("empty dataset")
	}

	nCols := ds.NumCols()
	s.FeatureMin = make([]decimal.Decimal, nCols)
	s.FeatureMax = make([]decimal.Decimal, nCols)
	s.FeatureMean = make([]decimal.Decimal, nCols)
	s.FeatureStd = make([]decimal.Decimal, nCols)

	switch s.ScaleType {
	case "minmax", "normalized":
		s.fitMinMax(ds)
	case "standard", "standardized":
		s.fitStandard(ds)
	case "raw", "none":
	default:
		return fmt.Errorf("unknown scale type: %s", s.ScaleType)
	}

	s.IsFitted = true
	return nil
}

func (s *Scaler) Transform(ds *data.Dataset) (*data.Dataset, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	rows := make([][]decimal.Decimal, ds.NumRows())
	for i, row := range ds.Rows {
		rows[i] = make([]decimal.Decimal, len(row))
		for j, val := range row {
			if j >= ds.TargetStart && j < ds.TargetEnd {
				rows[i][j] = val
				continue
			}
			switch s.ScaleType {
			case "minmax", "normalized":
				rows[i][j] = s.transformMinMax(val, j)
			case "standard", "standardized":
				rows[i][j] = s.transformStandard(val, j)
			default:
				rows[i][j] = val
			}
		}
	}

	return data.NewDataset(ds.Headers, rows, ds.TargetStart, ds.TargetEnd)
}

func (s *Scaler) FitTransform(ds *data.Dataset) (*data.Dataset, error) {
	if err := s.Fit(ds); err != nil {
		return nil, err
	}
	return s.Transform(ds)
}

func (s *Scaler) fitMinMax(ds *data.Dataset) {
	for j := 0; j < ds.NumCols(); j++ {
		if j >= ds.TargetStart && j < ds.TargetEnd {
			continue
		}
		s.FeatureMin[j] = ds.Rows[0][j]
		s.FeatureMax[j] = ds.Rows[0][j]

		for i := 1; i < ds.NumRows(); i++ {
			if ds.Rows[i][j].LessThan(s.FeatureMin[j]) {
				s.FeatureMin[j] = ds.Rows[i][j]
			}
			if ds.Rows[i][j].GreaterThan(s.FeatureMax[j]) {
				s.FeatureMax[j] = ds.Rows[i][j]
			}
		}
	}
}

func (s *Scaler) fitStandard(ds *data.Dataset) {
	nSamples := decimal.NewFromInt(int64(ds.NumRows()))

	for j := 0; j < ds.NumCols(); j++ {
		if j >= ds.TargetStart && j < ds.TargetEnd {
			continue
		}

		sum := decimal.Zero
		for i := 0; i < ds.NumRows(); i++ {
			sum = sum.Add(ds.Rows[i][j])
		}
		s.FeatureMean[j] = sum.Div(nSamples)

		variance := decimal.Zero
		for i := 0; i < ds.NumRows(); i++ {
			diff := ds.Rows[i][j].Sub(s.FeatureMean[j])
			variance = variance.Add(diff.Mul(diff))
		}
		variance = variance.Div(nSamples)

		varFloat, _ := variance.Float64()
		s.FeatureStd[j] = decimal.NewFromFloat(math.Sqrt(varFloat))

		if s.FeatureStd[j].IsZero() {
			s.FeatureStd[j] = decimal.NewFromInt(1)
		}
	}
}

func (s *Scaler) transformMinMax(value decimal.Decimal, col int) decimal.Decimal {
	span := s.FeatureMax[col].Sub(s.FeatureMin[col])
	if span.IsZero() {
		return decimal.Zero
	}
	return value.Sub(s.FeatureMin[col]).Div(span)
}

func (s *Scaler) transformStandard(value decimal.Decimal, col int) decimal.Decimal {
	return value.Sub(s.FeatureMean[col]).Div(s.FeatureStd[col])
}
