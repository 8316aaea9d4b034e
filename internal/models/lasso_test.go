package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLassoRecoversLinearFunction(t *testing.T) {
	x, y := linearData(50)

	model := NewLasso(1e-4)
	if err := model.Fit(x, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if math.Abs(model.Coefficients[0]-3.0) > 0.1 {
		t.Errorf("coefficient 0 = %g, want ~3", model.Coefficients[0])
	}
	if math.Abs(model.Coefficients[1]+2.0) > 0.1 {
		t.Errorf("coefficient 1 = %g, want ~-2", model.Coefficients[1])
	}

	preds := model.Predict(x)
	metricsOK := true
	for i := range preds {
		if math.Abs(preds[i]-y[i]) > 1.0 {
			metricsOK = false
			break
		}
	}
	if !metricsOK {
		t.Error("predictions deviate from the linear target")
	}
}

func TestLassoZeroesIrrelevantFeature(t *testing.T) {
	n := 60
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		signal := float64(i%10) - 5.0
		noise := math.Sin(float64(i) * 13.7) // bounded, uncorrelated-ish
		x.Set(i, 0, signal)
		x.Set(i, 1, noise)
		y[i] = 4.0 * signal
	}

	model := NewLasso(5.0)
	if err := model.Fit(x, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if math.Abs(model.Coefficients[0]) < 1.0 {
		t.Errorf("signal coefficient %g collapsed under the penalty", model.Coefficients[0])
	}
	if math.Abs(model.Coefficients[1]) > math.Abs(model.Coefficients[0])/4 {
		t.Errorf("noise coefficient %g should be strongly shrunk relative to signal %g",
			model.Coefficients[1], model.Coefficients[0])
	}
}

func TestSoftThreshold(t *testing.T) {
	tests := []struct {
		v, threshold, want float64
	}{
		{5.0, 2.0, 3.0},
		{-5.0, 2.0, -3.0},
		{1.5, 2.0, 0.0},
		{-1.5, 2.0, 0.0},
		{2.0, 2.0, 0.0},
	}

	for _, tt := range tests {
		if got := softThreshold(tt.v, tt.threshold); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("softThreshold(%g, %g) = %g, want %g", tt.v, tt.threshold, got, tt.want)
		}
	}
}

func TestLassoFitValidation(t *testing.T) {
	model := NewLasso(1.0)
	if err := model.Fit(mat.NewDense(3, 2, nil), []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched x and y lengths")
	}
}

func TestMeanOf(t *testing.T) {
	if got := meanOf([]float64{1, 2, 3, 4}); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("meanOf = %g, want 2.5", got)
	}
	if got := meanOf(nil); got != 0 {
		t.Errorf("meanOf(nil) = %g, want 0", got)
	}
}
