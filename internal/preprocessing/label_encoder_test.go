package preprocessing

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLabelEncoderSortedCodes(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"PT", "PSDB", "MDB", "PT", "PSDB"})

	// Codes follow sorted label order: MDB=0, PSDB=1, PT=2.
	want := map[string]int{"MDB": 0, "PSDB": 1, "PT": 2}
	if !reflect.DeepEqual(le.ClassToInt, want) {
		t.Errorf("ClassToInt = %v, want %v", le.ClassToInt, want)
	}

	codes, err := le.Transform([]string{"PT", "MDB"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !reflect.DeepEqual(codes, []int{2, 0}) {
		t.Errorf("Transform = %v, want [2 0]", codes)
	}
}

func TestLabelEncoderUnknownLabel(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"eleito", "nao_eleito"})

	if _, err := le.Transform([]string{"suplente"}); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestLabelEncoderRequiresFit(t *testing.T) {
	le := NewLabelEncoder()
	if _, err := le.Transform([]string{"a"}); err == nil {
		t.Error("Transform before Fit should fail")
	}
	if _, err := le.InverseTransform([]int{0}); err == nil {
		t.Error("InverseTransform before Fit should fail")
	}
}

func TestLabelEncoderInverseRoundTrip(t *testing.T) {
	le := NewLabelEncoder()
	labels := []string{"eleito", "nao_eleito", "eleito", "suplente"}

	codes, err := le.FitTransform(labels)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	back, err := le.InverseTransform(codes)
	if err != nil {
		t.Fatalf("InverseTransform: %v", err)
	}
	if !reflect.DeepEqual(back, labels) {
		t.Errorf("round trip = %v, want %v", back, labels)
	}

	if _, err := le.InverseTransform([]int{99}); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestLabelEncoderClasses(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"c", "a", "b"})

	if got := le.Classes(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Classes() = %v, want [a b c]", got)
	}
}

func TestLabelEncoderSaveLoad(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"eleito", "nao_eleito"})

	path := filepath.Join(t.TempDir(), "labels.gob")
	if err := le.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewLabelEncoder()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !loaded.IsFitted {
		t.Error("loaded encoder should be fitted")
	}
	if !reflect.DeepEqual(loaded.ClassToInt, le.ClassToInt) {
		t.Errorf("loaded ClassToInt = %v, want %v", loaded.ClassToInt, le.ClassToInt)
	}
}
