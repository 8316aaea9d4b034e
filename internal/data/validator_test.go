package data

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateDataset(t *testing.T) {
	dv := NewDataValidator()

	if err := dv.ValidateDataset(sampleDataset(t)); err != nil {
		t.Errorf("valid dataset rejected: %v", err)
	}

	if err := dv.ValidateDataset(nil); err == nil {
		t.Error("nil dataset should fail validation")
	}

	// Target range covering every column leaves no predictors.
	ds := sampleDataset(t)
	ds.TargetStart = 0
	if err := dv.ValidateDataset(ds); err == nil {
		t.Error("all-target dataset should fail validation")
	}

	ragged := sampleDataset(t)
	ragged.Rows[1] = ragged.Rows[1][:2]
	if err := dv.ValidateDataset(ragged); err == nil {
		t.Error("ragged dataset should fail validation")
	}
}

func TestValidateLabels(t *testing.T) {
	dv := NewDataValidator()

	if err := dv.ValidateLabels([]int{0, 1, 0, 1}); err != nil {
		t.Errorf("two-class labels rejected: %v", err)
	}
	if err := dv.ValidateLabels([]int{1, 1, 1}); err == nil {
		t.Error("single-class labels should fail validation")
	}
	if err := dv.ValidateLabels(nil); err == nil {
		t.Error("empty labels should fail validation")
	}
}

func TestGetDatasetStats(t *testing.T) {
	dv := NewDataValidator()
	stats := dv.GetDatasetStats(sampleDataset(t))

	if stats["rows"] != 3 || stats["predictors"] != 2 || stats["targets"] != 1 {
		t.Errorf("stats = %v", stats)
	}

	featureStats, ok := stats["feature_stats"].(map[string]map[string]decimal.Decimal)
	if !ok {
		t.Fatal("feature_stats missing or mistyped")
	}
	a := featureStats["a"]
	if a["min"].String() != "1" || a["max"].String() != "5" || a["mean"].String() != "3" {
		t.Errorf("column a stats = min %s max %s mean %s", a["min"], a["max"], a["mean"])
	}

	if len(dv.GetDatasetStats(nil)) != 0 {
		t.Error("nil dataset should produce empty stats")
	}
}
