package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Ridge is an L2-penalised linear regressor solved in closed form:
// (X'X + lambda*I) w = X'y, with the intercept left unpenalised.
type Ridge struct {
	BaseModel
	Lambda       float64
	Coefficients []float64
	Intercept    float64
}

func NewRidge(lambda float64) *Ridge {
	if lambda < 0 {
		lambda = 0
	}

	return &Ridge{
		Lambda: lambda,
		BaseModel: BaseModel{
			Name: "Ridge",
			Params: map[string]any{
				"lambda": lambda,
			},
		},
	}
}

func (r *Ridge) Fit(x *mat.Dense, y []float64) error {
	n, p := x.Dims()
	if n == 0 || p == 0 {
		return fmt.Errorf("empty design matrix")
	}
	if n != len(y) {
		return fmt.Errorf("x and y must have the same length: %d vs %d", n, len(y))
	}

	// Augment with an intercept column.
	xa := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		xa.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			xa.Set(i, j+1, x.At(i, j))
		}
	}

	var gram mat.Dense
	gram.Mul(xa.T(), xa)
	for j := 1; j <= p; j++ {
		gram.Set(j, j, gram.At(j, j)+r.Lambda)
	}

	yv := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(xa.T(), yv)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &xty); err != nil {
		return fmt.Errorf("ridge system is singular: %w", err)
	}

	r.Intercept = w.AtVec(0)
	r.Coefficients = make([]float64, p)
	for j := 0; j < p; j++ {
		r.Coefficients[j] = w.AtVec(j + 1)
	}

	return nil
}

func (r *Ridge) Predict(x *mat.Dense) []float64 {
	n, p := x.Dims()
	preds := make([]float64, n)
	if p != len(r.Coefficients) {
		return preds
	}

	for i := 0; i < n; i++ {
		sum := r.Intercept
		for j := 0; j < p; j++ {
			sum += x.At(i, j) * r.Coefficients[j]
		}
		preds[i] = sum
	}

	return preds
}

// FeatureImportances ranks predictors by absolute coefficient magnitude.
func (r *Ridge) FeatureImportances() []float64 {
	imp := make([]float64, len(r.Coefficients))
	for j, c := range r.Coefficients {
		imp[j] = math.Abs(c)
	}
	return imp
}

func (r *Ridge) Reset() {
	r.Coefficients = nil
	r.Intercept = 0
}
