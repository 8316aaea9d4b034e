package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestCSVReaderLoad(t *testing.T) {
	path := writeCSV(t, "votes,party,elected\n1200,PT,sim\n300,PSDB,nao\n")

	raw, err := NewCSVReader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if raw.NumRows() != 2 || raw.NumCols() != 3 {
		t.Errorf("dims = %dx%d, want 2x3", raw.NumRows(), raw.NumCols())
	}
	if raw.Headers[1] != "party" {
		t.Errorf("header 1 = %q, want party", raw.Headers[1])
	}
	if raw.Records[0][0] != "1200" {
		t.Errorf("record[0][0] = %q", raw.Records[0][0])
	}
}

func TestCSVReaderDropsRecordsWithEmptyCells(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n3,\n ,4\n5,6\n")

	raw, err := NewCSVReader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw.NumRows() != 2 {
		t.Errorf("kept %d records, want 2 (rows with empty cells dropped)", raw.NumRows())
	}
}

func TestCSVReaderErrors(t *testing.T) {
	if _, err := NewCSVReader("does-not-exist.csv").Load(); err == nil {
		t.Error("expected error for missing file")
	}

	headerOnly := writeCSV(t, "a,b\n")
	if _, err := NewCSVReader(headerOnly).Load(); err == nil {
		t.Error("expected error for header-only file")
	}

	allEmpty := writeCSV(t, "a,b\n1,\n,2\n")
	if _, err := NewCSVReader(allEmpty).Load(); err == nil {
		t.Error("expected error when every record has empty cells")
	}
}

func TestRawTableColumnHelpers(t *testing.T) {
	path := writeCSV(t, "votes,party\n100,PT\n200,MDB\n")
	raw, err := NewCSVReader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := raw.ColumnIndex("party"); got != 1 {
		t.Errorf("ColumnIndex(party) = %d, want 1", got)
	}
	if got := raw.ColumnIndex("absent"); got != -1 {
		t.Errorf("ColumnIndex(absent) = %d, want -1", got)
	}

	col := raw.Column(1)
	if len(col) != 2 || col[0] != "PT" || col[1] != "MDB" {
		t.Errorf("Column(1) = %v", col)
	}

	if !raw.IsNumeric(0) {
		t.Error("votes column should be numeric")
	}
	if raw.IsNumeric(1) {
		t.Error("party column should not be numeric")
	}
}

func TestLoadNumeric(t *testing.T) {
	path := writeCSV(t, "a,b,y\n1,2,10\n3,4,20\n")

	ds, err := NewCSVReader(path).LoadNumeric(1)
	if err != nil {
		t.Fatalf("LoadNumeric: %v", err)
	}

	if ds.NumPredictors() != 2 || ds.NumTargets() != 1 {
		t.Errorf("predictors=%d targets=%d, want 2 and 1", ds.NumPredictors(), ds.NumTargets())
	}
	if ds.TargetStart != 2 {
		t.Errorf("TargetStart = %d, want 2", ds.TargetStart)
	}

	if _, err := NewCSVReader(path).LoadNumeric(0); err == nil {
		t.Error("expected error for zero target columns")
	}
	if _, err := NewCSVReader(path).LoadNumeric(3); err == nil {
		t.Error("expected error when every column would be a target")
	}
}
