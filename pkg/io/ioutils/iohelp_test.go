package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestGzipRoundTrip(t *testing.T) {
	for _, name := range []string{"plain.csv", "packed.csv.gz", "nested/dir/out.csv"} {
		p := filepath.Join(t.TempDir(), name)
		w, err := CreateMaybeCompressed(p)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, "a,b\n1,2\n"); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		r, err := OpenMaybeCompressed(p)
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "a,b\n1,2\n" {
			t.Fatalf("%s: got %q", name, b)
		}
	}
}

func TestSniffsGzipWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "x.gz")
	w, err := CreateMaybeCompressed(gz)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.WriteString(w, "hello")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	renamed := filepath.Join(dir, "x.dat")
	if err := os.Rename(gz, renamed); err != nil {
		t.Fatal(err)
	}
	r, err := OpenMaybeCompressed(renamed)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	b, _ := io.ReadAll(r)
	if string(b) != "hello" {
		t.Fatalf("got %q", b)
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"a.csv":          "csv",
		"a.CSV.gz":       "csv",
		"b.jsonl":        "jsonl",
		"c.parquet":      "parquet",
		"d.properties":   "",
		"ecommerce_data": "",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Errorf("Format(%q) = %q, want %q", in, got, want)
		}
	}
}
