package dataset

import (
	"errors"
	"testing"
	"time"
)

func TestCloneIsDeep(t *testing.T) {
	f := makeFrame(3)
	g := f.Clone()
	_ = g.SetCell(0, "s", "changed")
	g.Column(1).SetNull(1)
	if v, _ := f.Value(0, "s"); v != "x" {
		t.Fatalf("clone shares string data, got %v", v)
	}
	if f.Column(1).IsNull(1) {
		t.Fatal("clone shares null mask")
	}
}

func TestAppendRowFrom(t *testing.T) {
	f := makeFrame(3)
	f.Column(2).SetNull(1)
	g := f.Clone()
	if err := g.AppendRowFrom(f, 1); err != nil {
		t.Fatal(err)
	}
	if g.Rows() != 4 {
		t.Fatalf("expected 4 rows, got %d", g.Rows())
	}
	if g.RowKey(3) != f.RowKey(1) {
		t.Fatalf("copied row differs: %q vs %q", g.RowKey(3), f.RowKey(1))
	}
	if !g.Column(2).IsNull(3) {
		t.Fatal("null not preserved by append")
	}
}

func TestRowKeyDistinguishesNullFromEmpty(t *testing.T) {
	s := Schema{Columns: []ColumnSchema{{Name: "s", Type: KindString, Nullable: true}}}
	f := NewFrame(s)
	f.AppendNullRow()
	f.AppendNullRow()
	_ = f.SetCell(1, "s", "")
	if f.RowKey(0) == f.RowKey(1) {
		t.Fatal("null and empty string rows collide")
	}
}

func TestFormatCellAndRecord(t *testing.T) {
	s := Schema{Columns: []ColumnSchema{
		{Name: "b", Type: KindBool, Nullable: true},
		{Name: "t", Type: KindTime, Nullable: true},
		{Name: "f", Type: KindFloat, Nullable: true},
	}}
	f := NewFrame(s)
	f.AppendNullRow()
	_ = f.SetCell(0, "b", true)
	_ = f.SetCell(0, "t", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if v, ok := f.FormatCell(0, 0); !ok || v != "true" {
		t.Fatalf("bool format: %q %v", v, ok)
	}
	if v, _ := f.FormatCell(0, 1); v != "2024-01-02T03:04:05Z" {
		t.Fatalf("time format: %q", v)
	}
	if _, ok := f.FormatCell(0, 2); ok {
		t.Fatal("null float formatted as present")
	}
	rec := f.Record(0)
	if _, ok := rec["f"]; ok || len(rec) != 2 {
		t.Fatalf("record should omit nulls: %v", rec)
	}
}

func TestSetCellTypeErrors(t *testing.T) {
	f := makeFrame(1)
	if err := f.SetCell(0, "b", "nope"); err == nil {
		t.Fatal("expected type error")
	}
	if err := f.SetCell(0, "missing", 1); err == nil {
		t.Fatal("expected unknown column error")
	}
	if err := f.SetCell(0, "a", nil); err != nil || !f.Column(1).IsNull(0) {
		t.Fatalf("nil should null the cell, err=%v", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	cases := []struct {
		name string
		s    Schema
		ok   bool
	}{
		{"valid", makeFrame(0).Schema(), true},
		{"duplicate", Schema{Columns: []ColumnSchema{{Name: "a", Type: KindInt}, {Name: "a", Type: KindInt}}}, false},
		{"bad kind", Schema{Columns: []ColumnSchema{{Name: "a"}}}, false},
		{"nullable key", Schema{Columns: []ColumnSchema{{Name: "a", Type: KindString, Role: RoleKey, Nullable: true}}}, false},
		{"missing key", Schema{Columns: []ColumnSchema{{Name: "a", Type: KindString}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Validate(true)
			if tc.ok && err != nil {
				t.Fatal(err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestWithRoles(t *testing.T) {
	inferred := Schema{Columns: []ColumnSchema{{Name: "id", Type: KindString, Nullable: true}, {Name: "other", Type: KindInt, Nullable: true}}}
	ref := Schema{Columns: []ColumnSchema{{Name: "id", Type: KindString, Role: RoleKey}}}
	got := inferred.WithRoles(ref)
	if got.Columns[0].Role != RoleKey || got.Columns[1].Role != RoleNone {
		t.Fatalf("unexpected roles: %+v", got.Columns)
	}
	if inferred.Columns[0].Role != RoleNone {
		t.Fatal("WithRoles mutated its receiver")
	}
}
