package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Lasso is an L1-penalised linear regressor fitted by cyclic coordinate
// descent with soft thresholding.
type Lasso struct {
	BaseModel
	Lambda       float64
	MaxIter      int
	Tol          float64
	Coefficients []float64
	Intercept    float64
}

func NewLasso(lambda float64) *Lasso {
	if lambda < 0 {
		lambda = 0
	}

	return &Lasso{
		Lambda:  lambda,
		MaxIter: 1000,
		Tol:     1e-6,
		BaseModel: BaseModel{
			Name: "Lasso",
			Params: map[string]any{
				"lambda": lambda,
			},
		},
	}
}

func (l *Lasso) Fit(x *mat.Dense, y []float64) error {
	n, p := x.Dims()
	if n == 0 || p == 0 {
		return fmt.Errorf("empty design matrix")
	}
	if n != len(y) {
		return fmt.Errorf("x and y must have the same length: %d vs %d", n, len(y))
	}

	cols := make([][]float64, p)
	colSq := make([]float64, p)
	for j := 0; j < p; j++ {
		cols[j] = mat.Col(nil, j, x)
		for _, v := range cols[j] {
			colSq[j] += v * v
		}
	}

	w := make([]float64, p)
	intercept := meanOf(y)

	// Residual r = y - intercept - Xw, maintained incrementally.
	r := make([]float64, n)
	for i := range r {
		r[i] = y[i] - intercept
	}

	threshold := l.Lambda * float64(n)

	for iter := 0; iter < l.MaxIter; iter++ {
		maxDelta := 0.0

		for j := 0; j < p; j++ {
			if colSq[j] == 0 {
				continue
			}

			rho := w[j] * colSq[j]
			for i := 0; i < n; i++ {
				rho += cols[j][i] * r[i]
			}

			next := softThreshold(rho, threshold) / colSq[j]
			delta := next - w[j]
			if delta != 0 {
				for i := 0; i < n; i++ {
					r[i] -= cols[j][i] * delta
				}
				w[j] = next
			}
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}

		shift := meanOf(r)
		if shift != 0 {
			intercept += shift
			for i := range r {
				r[i] -= shift
			}
		}

		if maxDelta < l.Tol {
			break
		}
	}

	l.Coefficients = w
	l.Intercept = intercept
	return nil
}

func (l *Lasso) Predict(x *mat.Dense) []float64 {
	n, p := x.Dims()
	preds := make([]float64, n)
	if p != len(l.Coefficients) {
		return preds
	}

	for i := 0; i < n; i++ {
		sum := l.Intercept
		for j := 0; j < p; j++ {
			sum += x.At(i, j) * l.Coefficients[j]
		}
		preds[i] = sum
	}

	return preds
}

// FeatureImportances ranks predictors by absolute coefficient magnitude;
// coefficients shrunk to zero mark discarded features.
func (l *Lasso) FeatureImportances() []float64 {
	imp := make([]float64, len(l.Coefficients))
	for j, c := range l.Coefficients {
		imp[j] = math.Abs(c)
	}
	return imp
}

func (l *Lasso) Reset() {
	l.Coefficients = nil
	l.Intercept = 0
}

func softThreshold(v, threshold float64) float64 {
	switch {
	case v > threshold:
		return v - threshold
	case v < -threshold:
		return v + threshold
	default:
		return 0
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
