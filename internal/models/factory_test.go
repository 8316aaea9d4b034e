package models

import (
	"strings"
	"testing"
)

func TestCreateRegressor(t *testing.T) {
	tests := []struct {
		algorithm string
		wantType  string
	}{
		{"ridge", "Ridge"},
		{"lasso", "Lasso"},
		{"knn", "KNNRegressor"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			model, err := CreateRegressor(RegressorConfig{Algorithm: tt.algorithm})
			if err != nil {
				t.Fatalf("CreateRegressor(%q): %v", tt.algorithm, err)
			}
			if model.GetName() != tt.wantType {
				t.Errorf("GetName() = %q, want %q", model.GetName(), tt.wantType)
			}
		})
	}
}

func TestCreateRegressorUnknownAlgorithm(t *testing.T) {
	_, err := CreateRegressor(RegressorConfig{Algorithm: "forest"})
	if err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
	if !strings.Contains(err.Error(), "unknown algorithm") {
		t.Errorf("error should mention the unknown algorithm, got: %v", err)
	}
}

func TestCreateRegressorAppliesConfig(t *testing.T) {
	model, err := CreateRegressor(RegressorConfig{Algorithm: "knn", K: 3, Distance: "manhattan"})
	if err != nil {
		t.Fatalf("CreateRegressor: %v", err)
	}
	knn, ok := model.(*KNNRegressor)
	if !ok {
		t.Fatalf("expected *KNNRegressor, got %T", model)
	}
	if knn.K != 3 || knn.Distance != "manhattan" {
		t.Errorf("config not applied: k=%d distance=%s", knn.K, knn.Distance)
	}
}

func TestDefaultRegressorConfig(t *testing.T) {
	config := DefaultRegressorConfig("ridge")
	if config.Algorithm != "ridge" {
		t.Errorf("Algorithm = %q, want ridge", config.Algorithm)
	}
	if config.Lambda <= 0 {
		t.Errorf("default lambda %g should be positive", config.Lambda)
	}

	knn := DefaultRegressorConfig("knn")
	if knn.K <= 0 {
		t.Errorf("default k %d should be positive", knn.K)
	}
}
