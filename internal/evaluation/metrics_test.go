package evaluation

import (
	"math"
	"reflect"
	"testing"
)

func TestCalculateRegressionMetrics(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{1, 2, 3, 4}

	m, err := CalculateRegressionMetrics(yTrue, yPred)
	if err != nil {
		t.Fatalf("CalculateRegressionMetrics: %v", err)
	}
	if m.RMSE != 0 || m.MAE != 0 {
		t.Errorf("perfect predictions should have zero error, got RMSE=%g MAE=%g", m.RMSE, m.MAE)
	}
	if math.Abs(m.R2-1.0) > 1e-12 {
		t.Errorf("R2 = %g, want 1", m.R2)
	}
	if m.NumSamples != 4 {
		t.Errorf("NumSamples = %d, want 4", m.NumSamples)
	}
}

func TestCalculateRegressionMetricsKnownValues(t *testing.T) {
	yTrue := []float64{0, 0, 0, 0}
	yPred := []float64{1, -1, 2, -2}

	m, err := CalculateRegressionMetrics(yTrue, yPred)
	if err != nil {
		t.Fatalf("CalculateRegressionMetrics: %v", err)
	}

	// MSE = (1+1+4+4)/4 = 2.5, MAE = (1+1+2+2)/4 = 1.5.
	if math.Abs(m.RMSE-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("RMSE = %g, want sqrt(2.5)", m.RMSE)
	}
	if math.Abs(m.MAE-1.5) > 1e-12 {
		t.Errorf("MAE = %g, want 1.5", m.MAE)
	}
	// Constant y_true has zero total sum of squares; R2 falls back to 0.
	if m.R2 != 0 {
		t.Errorf("R2 = %g, want 0 for constant target", m.R2)
	}
}

func TestCalculateRegressionMetricsErrors(t *testing.T) {
	if _, err := CalculateRegressionMetrics([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := CalculateRegressionMetrics(nil, nil); err == nil {
		t.Error("expected error for empty inputs")
	}
}

func TestCalculateClassificationMetrics(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 1}
	yPred := []int{0, 1, 1, 1, 0}
	classes := []int{0, 1}

	m, err := CalculateClassificationMetrics(yTrue, yPred, classes)
	if err != nil {
		t.Fatalf("CalculateClassificationMetrics: %v", err)
	}

	if math.Abs(m.Accuracy-0.6) > 1e-12 {
		t.Errorf("Accuracy = %g, want 0.6", m.Accuracy)
	}

	wantMatrix := [][]int{{1, 1}, {1, 2}}
	if !reflect.DeepEqual(m.ConfusionMatrix, wantMatrix) {
		t.Errorf("ConfusionMatrix = %v, want %v", m.ConfusionMatrix, wantMatrix)
	}

	// Class 1: precision 2/3, recall 2/3.
	c1 := m.PerClassMetrics[1]
	if math.Abs(c1.Precision-2.0/3.0) > 1e-12 || math.Abs(c1.Recall-2.0/3.0) > 1e-12 {
		t.Errorf("class 1 precision/recall = %g/%g, want 2/3 each", c1.Precision, c1.Recall)
	}
	if c1.Support != 3 {
		t.Errorf("class 1 support = %d, want 3", c1.Support)
	}

	if m.NumSamples != 5 || m.NumClasses != 2 {
		t.Errorf("counts = %d samples %d classes, want 5 and 2", m.NumSamples, m.NumClasses)
	}
}

func TestCalculateClassificationMetricsErrors(t *testing.T) {
	if _, err := CalculateClassificationMetrics([]int{0}, []int{0, 1}, []int{0, 1}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := CalculateClassificationMetrics(nil, nil, []int{0}); err == nil {
		t.Error("expected error for empty inputs")
	}
	if _, err := CalculateClassificationMetrics([]int{0}, []int{0}, nil); err == nil {
		t.Error("expected error for missing classes")
	}
}

func TestSafeDivide(t *testing.T) {
	if got := safeDivide(4, 2); got != 2 {
		t.Errorf("safeDivide(4,2) = %g", got)
	}
	if got := safeDivide(1, 0); got != 0 {
		t.Errorf("safeDivide(1,0) = %g, want 0", got)
	}
}

func TestExtractClasses(t *testing.T) {
	got := ExtractClasses([]int{2, 0, 2, 1, 0})
	if !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("ExtractClasses = %v, want [0 1 2]", got)
	}
}
