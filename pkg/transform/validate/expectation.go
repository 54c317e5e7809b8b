// Package validate checks frames against declarative expectations and
// reports per-expectation results.
package validate

import (
	"fmt"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// Expectation type names as they appear in suite files.
const (
	TypeExists  = "expect_column_to_exist"
	TypeNotNull = "expect_column_values_to_not_be_null"
	TypeBetween = "expect_column_values_to_be_between"
	TypeRegex   = "expect_column_values_to_match_regex"
	TypeInSet   = "expect_column_values_to_be_in_set"
)

// MaxPartialUnexpected caps the sample of offending values kept per result.
const MaxPartialUnexpected = 20

// Result is the outcome of one expectation over one or more frames.
type Result struct {
	ExpectationType   string   `json:"expectation_type"`
	Column            string   `json:"column"`
	Success           bool     `json:"success"`
	MissingColumn     bool     `json:"missing_column,omitempty"`
	ElementCount      int      `json:"element_count"`
	UnexpectedCount   int      `json:"unexpected_count"`
	UnexpectedPercent float64  `json:"unexpected_percent"`
	PartialUnexpected []string `json:"partial_unexpected_list,omitempty"`
}

// Merge folds r2 (a later chunk) into r.
func (r Result) Merge(r2 Result) Result {
	out := r
	out.MissingColumn = r.MissingColumn || r2.MissingColumn
	out.ElementCount += r2.ElementCount
	out.UnexpectedCount += r2.UnexpectedCount
	for _, v := range r2.PartialUnexpected {
		if len(out.PartialUnexpected) >= MaxPartialUnexpected {
			break
		}
		out.PartialUnexpected = append(out.PartialUnexpected, v)
	}
	out.finish()
	return out
}

func (r *Result) finish() {
	r.UnexpectedPercent = 0
	if r.ElementCount > 0 {
		r.UnexpectedPercent = 100 * float64(r.UnexpectedCount) / float64(r.ElementCount)
	}
	r.Success = !r.MissingColumn && r.UnexpectedCount == 0
}

// Expectation is a single check. Every expectation is also a
// dataset.Transform that passes the frame through unchanged and fails when
// the check does.
type Expectation interface {
	ds.Transform
	Check(f *ds.Frame) Result
}

// scan runs bad over every row of column col. bad reports whether the cell
// is unexpected; nulls are passed through so callers decide.
func scan(typ, col string, f *ds.Frame, bad func(c ds.Column, i int) bool) Result {
	r := Result{ExpectationType: typ, Column: col, ElementCount: f.Rows()}
	c, ok := f.ColumnByName(col)
	if !ok {
		r.MissingColumn = true
		r.finish()
		return r
	}
	ci := columnIndex(f, col)
	for i := 0; i < c.Len(); i++ {
		if !bad(c, i) {
			continue
		}
		r.UnexpectedCount++
		if len(r.PartialUnexpected) < MaxPartialUnexpected {
			s, ok := f.FormatCell(i, ci)
			if !ok {
				s = "<null>"
			}
			r.PartialUnexpected = append(r.PartialUnexpected, s)
		}
	}
	r.finish()
	return r
}

func columnIndex(f *ds.Frame, name string) int {
	for i, cs := range f.Schema().Columns {
		if cs.Name == name {
			return i
		}
	}
	return -1
}

func asError(r Result) error {
	if r.Success {
		return nil
	}
	if r.MissingColumn {
		return fmt.Errorf("%s: column %s does not exist", r.ExpectationType, r.Column)
	}
	return fmt.Errorf("%s: column %s has %d unexpected values", r.ExpectationType, r.Column, r.UnexpectedCount)
}
