package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the layout used when rendering time cells as text.
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// Frame is a columnar container for tabular data. Row positions are the
// row index and are always contiguous.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		c := newColumn(cs.Name, cs.Type)
		if c == nil {
			panic("invalid column kind")
		}
		f.cols[i] = c
		f.index[cs.Name] = i
	}
	return f
}

func newColumn(name string, k Kind) Column {
	switch k {
	case KindBool:
		return NewBoolColumn(name, 0)
	case KindInt:
		return NewIntColumn(name, 0)
	case KindFloat:
		return NewFloatColumn(name, 0)
	case KindString:
		return NewStringColumn(name, 0)
	case KindTime:
		return NewTimeColumn(name, 0)
	}
	return nil
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

func (f *Frame) Column(i int) Column { return f.cols[i] }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Clone returns a deep copy sharing nothing with f.
func (f *Frame) Clone() *Frame {
	out := &Frame{schema: f.schema, cols: make([]Column, len(f.cols)), index: f.index, nrows: f.nrows}
	for i, c := range f.cols {
		out.cols[i] = c.clone()
	}
	return out
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// AppendRowFrom appends a copy of row i of src. Both frames must share
// the same column layout.
func (f *Frame) AppendRowFrom(src *Frame, i int) error {
	if len(src.cols) != len(f.cols) {
		return fmt.Errorf("append row: column count mismatch %d != %d", len(src.cols), len(f.cols))
	}
	for c, col := range f.cols {
		if err := col.appendFrom(src.cols[c], i); err != nil {
			return err
		}
	}
	f.nrows++
	return nil
}

// Value returns the cell at (row, name); ok is false for nulls and unknown columns.
func (f *Frame) Value(row int, name string) (any, bool) {
	c, ok := f.ColumnByName(name)
	if !ok || c.IsNull(row) {
		return nil, false
	}
	return c.Value(row), true
}

// FormatCell renders a cell as text. Nulls render as "" with ok=false.
func (f *Frame) FormatCell(row, col int) (string, bool) {
	c := f.cols[col]
	if c.IsNull(row) {
		return "", false
	}
	switch v := c.Value(row).(type) {
	case bool:
		return strconv.FormatBool(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case string:
		return v, true
	case time.Time:
		return v.Format(TimeLayout), true
	}
	return fmt.Sprintf("%v", c.Value(row)), true
}

// RowKey renders a whole row into a comparable string; two rows have the
// same key iff every cell (including nullness) is equal.
func (f *Frame) RowKey(row int) string {
	var b strings.Builder
	for c := range f.cols {
		s, ok := f.FormatCell(row, c)
		if !ok {
			b.WriteString("\x00N")
		} else {
			b.WriteString(strconv.Quote(s))
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}

// Record returns row as a name -> value map with nulls omitted.
func (f *Frame) Record(row int) map[string]any {
	m := make(map[string]any, len(f.cols))
	for i, cs := range f.schema.Columns {
		c := f.cols[i]
		if c.IsNull(row) {
			continue
		}
		v := c.Value(row)
		if t, ok := v.(time.Time); ok {
			v = t.Format(TimeLayout)
		}
		m[cs.Name] = v
	}
	return m
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}
