package ramcsv

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
)

func newFromString(t *testing.T, s string) *RAMCSV {
	t.Helper()

	src := bytes.NewReader([]byte(s))
	ram, err := New(src, int64(len(s)), csv.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}

	return ram
}

func TestIndexAndRead(t *testing.T) {
	ram := newFromString(t, "\"\",s1,s2\ng1,1,2\n\ng2,3,4\r\n\"g,3\",5,6")

	if ram.Len() != 4 || ram.Rows() != 3 {
		t.Fatalf("Expected 4 lines and 3 rows, got %d and %d", ram.Len(), ram.Rows())
	}

	if keys := ram.Keys(); !reflect.DeepEqual(keys, []string{"g1", "g2", "g,3"}) {
		t.Errorf("Unexpected keys %v", keys)
	}

	header, err := ram.Header()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(header, []string{"", "s1", "s2"}) {
		t.Errorf("Unexpected header %v", header)
	}

	for _, v := range []struct {
		Key      string
		Expected []string
	}{
		{"g2", []string{"g2", "3", "4"}},
		{"g,3", []string{"g,3", "5", "6"}},
		{"g1", []string{"g1", "1", "2"}},
	} {
		rec, err := ram.ReadKey(v.Key)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(rec, v.Expected) {
			t.Errorf("ReadKey(%q) = %v, expected %v", v.Key, rec, v.Expected)
		}
	}

	if _, err := ram.ReadKey("missing"); err == nil {
		t.Error("Expected an error for a missing key")
	}
	if _, err := ram.Read(10); err == nil {
		t.Error("Expected an error past the end of the file")
	}
}

func TestTabDelimited(t *testing.T) {
	tmpl := csv.NewReader(nil)
	tmpl.Comma = '\t'

	s := "id\tx\na\t1.5\nb\t2.5\n"
	ram, err := New(bytes.NewReader([]byte(s)), int64(len(s)), tmpl)
	if err != nil {
		t.Fatal(err)
	}

	rec, err := ram.ReadKey("b")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec, []string{"b", "2.5"}) {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestDuplicateKey(t *testing.T) {
	s := "k,v\na,1\na,2\n"
	if _, err := New(bytes.NewReader([]byte(s)), int64(len(s)), nil); err == nil {
		t.Fatal("Expected an error for a duplicated key")
	}
}

func TestEmpty(t *testing.T) {
	ram := newFromString(t, "")
	if ram.Len() != 0 {
		t.Errorf("Expected no lines, got %d", ram.Len())
	}
	if _, err := ram.Header(); err == nil {
		t.Error("Expected an error reading the header of an empty file")
	}
}
