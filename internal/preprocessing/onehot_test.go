package preprocessing

import (
	"reflect"
	"testing"

	"github.com/Benardi/br-deputy-elections/internal/data"
)

func sampleTable() *data.RawTable {
	return &data.RawTable{
		Headers: []string{"votes", "party", "elected"},
		Records: [][]string{
			{"1200", "PT", "sim"},
			{"300", "PSDB", "nao"},
			{"4500", "PT", "sim"},
			{"80", "MDB", "nao"},
		},
	}
}

func TestTableEncoderOneHotPredictors(t *testing.T) {
	te := NewTableEncoder([]string{"elected"}, TargetLabel)
	ds, err := te.FitTransform(sampleTable())
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	wantHeaders := []string{"votes", "party=MDB", "party=PSDB", "party=PT", "elected"}
	if !reflect.DeepEqual(ds.Headers, wantHeaders) {
		t.Fatalf("headers = %v, want %v", ds.Headers, wantHeaders)
	}
	if ds.TargetStart != 4 || ds.TargetEnd != 5 {
		t.Errorf("target range [%d,%d), want [4,5)", ds.TargetStart, ds.TargetEnd)
	}

	// Row 0: votes=1200, party=PT -> indicator (0,0,1), elected=sim -> code 1.
	row := ds.Rows[0]
	got := make([]string, len(row))
	for j, v := range row {
		got[j] = v.String()
	}
	want := []string{"1200", "0", "0", "1", "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("row 0 = %v, want %v", got, want)
	}
}

func TestTableEncoderOneHotTarget(t *testing.T) {
	te := NewTableEncoder([]string{"elected"}, TargetOneHot)
	ds, err := te.FitTransform(sampleTable())
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	if ds.NumTargets() != 2 {
		t.Fatalf("expected 2 one-hot target columns, got %d", ds.NumTargets())
	}
	// Classes sort as nao=0, sim=1; row 0 is "sim".
	if ds.Rows[0][ds.TargetStart].String() != "0" || ds.Rows[0][ds.TargetStart+1].String() != "1" {
		t.Errorf("row 0 targets = %s,%s, want 0,1",
			ds.Rows[0][ds.TargetStart], ds.Rows[0][ds.TargetStart+1])
	}
}

func TestTableEncoderNumericTargetRejectsText(t *testing.T) {
	te := NewTableEncoder([]string{"elected"}, TargetNumeric)
	if _, err := te.FitTransform(sampleTable()); err == nil {
		t.Error("expected error for non-numeric target under numeric encoding")
	}
}

func TestTableEncoderMissingTargetColumn(t *testing.T) {
	te := NewTableEncoder([]string{"absent"}, TargetLabel)
	if err := te.Fit(sampleTable()); err == nil {
		t.Error("expected error for missing target column")
	}
}

func TestTableEncoderRequiresFit(t *testing.T) {
	te := NewTableEncoder([]string{"elected"}, TargetLabel)
	if _, err := te.Transform(sampleTable()); err == nil {
		t.Error("Transform before Fit should fail")
	}
}

func TestTableEncoderUnknownEncoding(t *testing.T) {
	te := NewTableEncoder([]string{"elected"}, "ordinal")
	if err := te.Fit(sampleTable()); err == nil {
		t.Error("expected error for unknown target encoding")
	}
}

func TestTableEncoderExposesLabelEncoder(t *testing.T) {
	te := NewTableEncoder([]string{"elected"}, TargetLabel)
	if _, err := te.FitTransform(sampleTable()); err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	labels := te.Labels()
	if labels == nil || !labels.IsFitted {
		t.Fatal("label encoder should be available after fitting label targets")
	}
	if got := labels.Classes(); !reflect.DeepEqual(got, []string{"nao", "sim"}) {
		t.Errorf("classes = %v, want [nao sim]", got)
	}
}
