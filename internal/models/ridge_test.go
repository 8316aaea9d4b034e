package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func linearData(n int) (*mat.Dense, []float64) {
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := float64(i)
		b := float64(i % 5)
		x.Set(i, 0, a)
		x.Set(i, 1, b)
		y[i] = 3.0*a - 2.0*b + 7.0
	}
	return x, y
}

func TestRidgeRecoversLinearFunction(t *testing.T) {
	x, y := linearData(50)

	model := NewRidge(1e-6)
	if err := model.Fit(x, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if len(model.Coefficients) != 2 {
		t.Fatalf("expected 2 coefficients, got %d", len(model.Coefficients))
	}
	if math.Abs(model.Coefficients[0]-3.0) > 1e-3 {
		t.Errorf("coefficient 0 = %g, want ~3", model.Coefficients[0])
	}
	if math.Abs(model.Coefficients[1]+2.0) > 1e-3 {
		t.Errorf("coefficient 1 = %g, want ~-2", model.Coefficients[1])
	}
	if math.Abs(model.Intercept-7.0) > 1e-2 {
		t.Errorf("intercept = %g, want ~7", model.Intercept)
	}

	preds := model.Predict(x)
	for i, p := range preds {
		if math.Abs(p-y[i]) > 1e-2 {
			t.Fatalf("prediction %d = %g, want %g", i, p, y[i])
		}
	}
}

func TestRidgeShrinksWithLambda(t *testing.T) {
	x, y := linearData(50)

	loose := NewRidge(1e-6)
	tight := NewRidge(1e6)
	if err := loose.Fit(x, y); err != nil {
		t.Fatalf("Fit loose: %v", err)
	}
	if err := tight.Fit(x, y); err != nil {
		t.Fatalf("Fit tight: %v", err)
	}

	looseNorm := math.Abs(loose.Coefficients[0]) + math.Abs(loose.Coefficients[1])
	tightNorm := math.Abs(tight.Coefficients[0]) + math.Abs(tight.Coefficients[1])
	if tightNorm >= looseNorm {
		t.Errorf("large lambda should shrink coefficients: %g vs %g", tightNorm, looseNorm)
	}
}

func TestRidgeFitValidation(t *testing.T) {
	model := NewRidge(1.0)

	x := mat.NewDense(3, 2, nil)
	if err := model.Fit(x, []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched x and y lengths")
	}
}

func TestRidgePredictBeforeFit(t *testing.T) {
	model := NewRidge(1.0)
	preds := model.Predict(mat.NewDense(2, 3, nil))
	for i, p := range preds {
		if p != 0 {
			t.Errorf("unfitted model prediction %d = %g, want 0", i, p)
		}
	}
}

func TestRidgeFeatureImportances(t *testing.T) {
	x, y := linearData(50)
	model := NewRidge(1e-6)
	if err := model.Fit(x, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	imp := model.FeatureImportances()
	if len(imp) != 2 {
		t.Fatalf("expected 2 importances, got %d", len(imp))
	}
	for i, v := range imp {
		if v < 0 {
			t.Errorf("importance %d = %g, must be non-negative", i, v)
		}
	}
	if imp[0] <= imp[1] {
		t.Errorf("feature 0 (|3|) should outrank feature 1 (|-2|): %g vs %g", imp[0], imp[1])
	}
}
