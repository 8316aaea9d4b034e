package models

import (
	"math"
	"testing"
)

func TestParseLossRoundTrip(t *testing.T) {
	for _, kind := range []LossKind{MSE, BinaryCrossEntropy, CategoricalCrossEntropy} {
		parsed, err := ParseLoss(kind.String())
		if err != nil || parsed != kind {
			t.Errorf("ParseLoss(%q) = %v, %v", kind.String(), parsed, err)
		}
	}
	if _, err := ParseLoss("hinge"); err == nil {
		t.Error("expected error for unknown loss")
	}
}

func TestParseMetric(t *testing.T) {
	for _, name := range []string{"accuracy", "acc"} {
		if got, err := ParseMetric(name); err != nil || got != Accuracy {
			t.Errorf("ParseMetric(%q) = %v, %v", name, got, err)
		}
	}
	if got, err := ParseMetric("mae"); err != nil || got != MAE {
		t.Errorf("ParseMetric(mae) = %v, %v", got, err)
	}
	if _, err := ParseMetric("f1"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestLossValueMSE(t *testing.T) {
	got := lossValue(MSE, []float64{1, 2}, []float64{0, 4})
	// ((1-0)^2 + (2-4)^2) / 2 = 2.5
	if math.Abs(got-2.5) > 1e-12 {
		t.Errorf("MSE = %g, want 2.5", got)
	}
}

func TestLossValueBinaryCrossEntropy(t *testing.T) {
	// Perfect confident prediction has near-zero loss.
	low := lossValue(BinaryCrossEntropy, []float64{0.999}, []float64{1})
	if low > 0.01 {
		t.Errorf("confident correct BCE = %g, want near 0", low)
	}

	// Confidently wrong prediction has large loss.
	high := lossValue(BinaryCrossEntropy, []float64{0.999}, []float64{0})
	if high < 1 {
		t.Errorf("confident wrong BCE = %g, want large", high)
	}

	// Extreme predictions are clipped rather than producing Inf.
	clipped := lossValue(BinaryCrossEntropy, []float64{0}, []float64{1})
	if math.IsInf(clipped, 0) || math.IsNaN(clipped) {
		t.Errorf("BCE at p=0 must be clipped, got %g", clipped)
	}
}

func TestLossValueCategoricalCrossEntropy(t *testing.T) {
	got := lossValue(CategoricalCrossEntropy, []float64{0.7, 0.2, 0.1}, []float64{1, 0, 0})
	want := -math.Log(0.7)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("CCE = %g, want %g", got, want)
	}
}

func TestMetricValueAccuracySingleColumn(t *testing.T) {
	preds := [][]float64{{0.9}, {0.2}, {0.6}, {0.4}}
	targets := [][]float64{{1}, {0}, {0}, {1}}

	got := metricValue(Accuracy, preds, targets)
	// 0.9->1 (ok), 0.2->0 (ok), 0.6->1 (wrong), 0.4->0 (wrong).
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("accuracy = %g, want 0.5", got)
	}
}

func TestMetricValueAccuracyArgmax(t *testing.T) {
	preds := [][]float64{
		{0.7, 0.2, 0.1},
		{0.1, 0.3, 0.6},
	}
	targets := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
	}

	got := metricValue(Accuracy, preds, targets)
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("argmax accuracy = %g, want 0.5", got)
	}
}

func TestMetricValueMAE(t *testing.T) {
	preds := [][]float64{{1, 2}, {3, 4}}
	targets := [][]float64{{0, 2}, {5, 3}}

	got := metricValue(MAE, preds, targets)
	// (1 + 0 + 2 + 1) / 4 = 1.
	if math.Abs(got-1.0) > 1e-12 {
		t.Errorf("MAE = %g, want 1", got)
	}
}

func TestMetricValueEmptyBatch(t *testing.T) {
	if got := metricValue(Accuracy, nil, nil); got != 0 {
		t.Errorf("empty batch accuracy = %g, want 0", got)
	}
}

func TestArgmax(t *testing.T) {
	if got := argmax([]float64{0.1, 0.8, 0.1}); got != 1 {
		t.Errorf("argmax = %d, want 1", got)
	}
	// Ties resolve to the earliest index.
	if got := argmax([]float64{0.5, 0.5}); got != 0 {
		t.Errorf("tied argmax = %d, want 0", got)
	}
}
