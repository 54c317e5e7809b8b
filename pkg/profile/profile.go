// Package profile accumulates per-column statistics over one or more
// chunks and renders them as text, JSON or HTML.
package profile

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// DefaultTitle heads generated reports.
const DefaultTitle = "Data Profiling Report"

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

func (n *NumStats) Mean() float64 {
	if n.Count == 0 {
		return 0
	}
	return n.Sum / float64(n.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind ds.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

// Nulls is the null count whatever the column kind.
func (cp ColumnProfile) Nulls() int {
	switch {
	case cp.Num != nil:
		return cp.Num.Nulls
	case cp.Bool != nil:
		return cp.Bool.Nulls
	case cp.Str != nil:
		return cp.Str.Nulls
	}
	return 0
}

// Distinct counts distinct non-null string and time values.
func (cp ColumnProfile) Distinct() int {
	if cp.Str == nil {
		return 0
	}
	return len(cp.Str.Freqs)
}

// Freq is one value and how often it occurred.
type Freq struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Top returns the k most frequent values, ties broken by value. k <= 0
// returns all of them.
func (cp ColumnProfile) Top(k int) []Freq {
	if cp.Str == nil {
		return nil
	}
	arr := make([]Freq, 0, len(cp.Str.Freqs))
	for v, n := range cp.Str.Freqs {
		arr = append(arr, Freq{v, n})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if k > 0 && k < len(arr) {
		arr = arr[:k]
	}
	return arr
}

// Collector is fed frames sharing one schema. Duplicate detection spans
// chunk boundaries.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
	rows  int
	dups  int
	seen  map[string]struct{}
}

func NewCollector(schema ds.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK, seen: make(map[string]struct{})}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case ds.KindFloat, ds.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case ds.KindBool:
			cp.Bool = &BoolStats{}
		case ds.KindString, ds.KindTime:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

func (c *Collector) Rows() int       { return c.rows }
func (c *Collector) Duplicates() int { return c.dups }

func (c *Collector) Columns() []ColumnProfile { return c.cols }

// ConsumeFrame adds f's rows. Columns not in the collector's schema are
// skipped.
func (c *Collector) ConsumeFrame(f *ds.Frame) {
	for r := 0; r < f.Rows(); r++ {
		k := f.RowKey(r)
		if _, dup := c.seen[k]; dup {
			c.dups++
		} else {
			c.seen[k] = struct{}{}
		}
	}
	c.rows += f.Rows()
	for ci, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		switch col := f.Column(ci).(type) {
		case *ds.FloatColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				cp.Num.add(v, ok)
			}
		case *ds.IntColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				cp.Num.add(float64(v), ok)
			}
		case *ds.BoolColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					cp.Bool.Nulls++
					continue
				}
				cp.Bool.Count++
				if v {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			}
		case *ds.StringColumn, *ds.TimeColumn:
			for i := 0; i < f.Rows(); i++ {
				v, ok := f.FormatCell(i, ci)
				if !ok {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				cp.Str.Freqs[v]++
			}
		}
	}
}

func (n *NumStats) add(v float64, ok bool) {
	if !ok {
		n.Nulls++
		return
	}
	n.Count++
	n.Min = math.Min(n.Min, v)
	n.Max = math.Max(n.Max, v)
	n.Sum += v
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	fmt.Fprintf(&b, "rows=%d duplicates=%d\n", c.rows, c.dups)
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			if cp.Num.Count == 0 {
				fmt.Fprintf(&b, "count=0 nulls=%d\n", cp.Num.Nulls)
				continue
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		case cp.Str != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d distinct=%d\n", cp.Str.Count, cp.Str.Nulls, cp.Distinct())
			if c.topK > 0 {
				for _, fr := range cp.Top(c.topK) {
					fmt.Fprintf(&b, "  * %q: %d\n", fr.Value, fr.Count)
				}
			}
		default:
			b.WriteString("\n")
		}
	}
	return b.String()
}

type JSONProfile struct {
	Rows       int          `json:"rows"`
	Duplicates int          `json:"duplicate_rows"`
	Columns    []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string      `json:"name"`
	Kind string      `json:"kind"`
	Num  *JSONNum    `json:"num,omitempty"`
	Bool *BoolStats  `json:"bool,omitempty"`
	Str  *JSONString `json:"str,omitempty"`
}

// JSONNum leaves min/max/mean out when no value was seen, since
// encoding/json rejects infinities.
type JSONNum struct {
	Count int      `json:"count"`
	Nulls int      `json:"nulls"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Mean  *float64 `json:"mean,omitempty"`
}

type JSONString struct {
	Count    int    `json:"count"`
	Nulls    int    `json:"nulls"`
	Distinct int    `json:"distinct"`
	Top      []Freq `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Rows: c.rows, Duplicates: c.dups, Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String()}
		switch {
		case cp.Num != nil:
			jc.Num = &JSONNum{Count: cp.Num.Count, Nulls: cp.Num.Nulls}
			if cp.Num.Count > 0 {
				lo, hi, mean := cp.Num.Min, cp.Num.Max, cp.Num.Mean()
				jc.Num.Min, jc.Num.Max, jc.Num.Mean = &lo, &hi, &mean
			}
		case cp.Bool != nil:
			jc.Bool = cp.Bool
		case cp.Str != nil:
			jc.Str = &JSONString{Count: cp.Str.Count, Nulls: cp.Str.Nulls, Distinct: cp.Distinct()}
			if c.topK > 0 {
				jc.Str.Top = cp.Top(c.topK)
			}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}

// ReportName derives the HTML report file name from the profiled input:
// data/weather_data.csv.gz becomes weather_data_profiling_report.html.
func ReportName(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_profiling_report.html"
}
