// Package quality scores a dataset on six data-quality dimensions and
// compares each score with a service-level objective.
package quality

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/scenario"
)

// Metric names, also used as Prometheus label values.
const (
	Completeness = "completeness"
	Duplicates   = "duplicates"
	Uniqueness   = "uniqueness"
	Timeliness   = "timeliness"
	Accuracy     = "accuracy"
	Validity     = "validity"
)

// Placeholder scores used when no scenario describes the data.
const (
	EstimatedAccuracy = 98
	EstimatedValidity = 90
)

type Metric struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Comparator string  `json:"comparator"`
	Threshold  float64 `json:"threshold"`
	Warning    bool    `json:"warning"`
	Estimated  bool    `json:"estimated,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Status renders the metric the way the dashboard labels it.
func (m Metric) Status() string {
	if m.Name == Timeliness {
		if m.Warning {
			return "Exceeded"
		}
		return "OK"
	}
	return fmt.Sprintf("%.2f%s", m.Value, m.Unit)
}

type Report struct {
	Source      string    `json:"source"`
	Scenario    string    `json:"scenario,omitempty"`
	Rows        int       `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
	Metrics     []Metric  `json:"metrics"`
}

// Metric returns the named metric.
func (r Report) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Warnings lists one message per metric that misses its objective.
func (r Report) Warnings() []string {
	var out []string
	for _, m := range r.Metrics {
		if !m.Warning {
			continue
		}
		switch {
		case m.Name == Timeliness:
			out = append(out, fmt.Sprintf("%s: newest record is %.0f days old (max %.0f)", m.Name, m.Value, m.Threshold))
		default:
			out = append(out, fmt.Sprintf("%s: %.2f%s %s objective %.2f%s", m.Name, m.Value, m.Unit, violated(m.Comparator), m.Threshold, m.Unit))
		}
	}
	return out
}

func violated(cmp string) string {
	if cmp == "<=" {
		return "above"
	}
	return "below"
}

// Options control how a frame is scored.
type Options struct {
	// Scenario supplies column roles, domains and the measure pattern.
	Scenario *scenario.Scenario
	Now      time.Time
	SLO      SLO
	Source   string
}

// Compute scores f.
func Compute(f *ds.Frame, opts Options) Report {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	slo := opts.SLO.WithDefaults()
	schema := f.Schema()
	r := Report{Source: opts.Source, Rows: f.Rows(), GeneratedAt: opts.Now}
	if opts.Scenario != nil {
		schema = schema.WithRoles(opts.Scenario.Schema())
		r.Scenario = opts.Scenario.Name
	}

	dup, uniq := duplication(f)
	r.Metrics = append(r.Metrics,
		percent(Completeness, completeness(f), slo.Completeness),
		percent(Duplicates, dup, slo.Duplicates),
		percent(Uniqueness, uniq, slo.Uniqueness),
		timeliness(f, schema, opts.Now, slo.Timeliness),
	)

	acc := percent(Accuracy, EstimatedAccuracy, slo.Accuracy)
	val := percent(Validity, EstimatedValidity, slo.Validity)
	acc.Estimated, val.Estimated = true, true
	if opts.Scenario != nil {
		acc = percent(Accuracy, accuracy(f, schema, opts.Scenario), slo.Accuracy)
		val = percent(Validity, validity(f, schema, opts.Scenario), slo.Validity)
	}
	r.Metrics = append(r.Metrics, acc, val)

	log.WithFields(log.Fields{"rows": r.Rows, "warnings": len(r.Warnings())}).Debug("computed quality report")
	return r
}

func percent(name string, v float64, t Threshold) Metric {
	m := Metric{Name: name, Value: v, Unit: "%"}
	switch {
	case t.Min != nil:
		m.Comparator, m.Threshold = ">=", *t.Min
		m.Warning = v < *t.Min
	case t.Max != nil:
		m.Comparator, m.Threshold = "<=", *t.Max
		m.Warning = v > *t.Max
	}
	return m
}

// completeness is 100 minus the mean per-column null percentage.
func completeness(f *ds.Frame) float64 {
	if f.Rows() == 0 || f.Cols() == 0 {
		return 100
	}
	var sum float64
	for c := 0; c < f.Cols(); c++ {
		col := f.Column(c)
		nulls := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				nulls++
			}
		}
		sum += 100 * float64(nulls) / float64(f.Rows())
	}
	return 100 - sum/float64(f.Cols())
}

// duplication returns the share of rows repeating an earlier row and the
// share of distinct rows.
func duplication(f *ds.Frame) (dup, uniq float64) {
	if f.Rows() == 0 {
		return 0, 100
	}
	seen := make(map[string]struct{}, f.Rows())
	repeats := 0
	for i := 0; i < f.Rows(); i++ {
		k := f.RowKey(i)
		if _, ok := seen[k]; ok {
			repeats++
			continue
		}
		seen[k] = struct{}{}
	}
	n := float64(f.Rows())
	return 100 * float64(repeats) / n, 100 * float64(len(seen)) / n
}

// createdColumn finds the date-created column by role, falling back to
// conventional names.
func createdColumn(f *ds.Frame, schema ds.Schema) (ds.ColumnSchema, bool) {
	if cs, ok := schema.ByRole(ds.RoleCreated); ok {
		return cs, true
	}
	for _, cs := range schema.Columns {
		if cs.Name == "timestamp" || cs.Name == "Date_Created" {
			return cs, true
		}
	}
	return ds.ColumnSchema{}, false
}

func parseDate(f *ds.Frame, cs ds.ColumnSchema, row int) (time.Time, bool) {
	v, ok := f.Value(row, cs.Name)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		layout := cs.Layout
		if layout == "" {
			layout = scenario.DateLayout
		}
		d, err := time.Parse(layout, t)
		return d, err == nil
	}
	return time.Time{}, false
}

func timeliness(f *ds.Frame, schema ds.Schema, now time.Time, t Threshold) Metric {
	maxDelay := 0.0
	if t.MaxDelay != nil {
		maxDelay = *t.MaxDelay
	}
	m := Metric{Name: Timeliness, Unit: " days", Comparator: "<=", Threshold: maxDelay}
	cs, ok := createdColumn(f, schema)
	if !ok {
		m.Note = "no date column"
		return m
	}
	var newest time.Time
	for i := 0; i < f.Rows(); i++ {
		if d, ok := parseDate(f, cs, i); ok && d.After(newest) {
			newest = d
		}
	}
	if newest.IsZero() {
		m.Note = "no parseable dates"
		return m
	}
	m.Value = math.Floor(now.Sub(newest).Hours() / 24)
	m.Warning = m.Value > maxDelay
	return m
}

// accuracy is the share of non-null measure cells matching the scenario's
// measure pattern.
func accuracy(f *ds.Frame, schema ds.Schema, sc *scenario.Scenario) float64 {
	cs, ok := schema.ByRole(ds.RoleMeasure)
	if !ok || sc.MeasurePattern == nil {
		return 100
	}
	total, good := 0, 0
	for i := 0; i < f.Rows(); i++ {
		v, ok := f.Value(i, cs.Name)
		if !ok {
			continue
		}
		total++
		if s, ok := v.(string); ok && sc.MeasurePattern.MatchString(s) {
			good++
		}
	}
	if total == 0 {
		return 100
	}
	return 100 * float64(good) / float64(total)
}

// validity is the share of rows whose category is in its domain and whose
// created date parses with the canonical layout. Null cells are not
// checked; rows with nothing to check are skipped.
func validity(f *ds.Frame, schema ds.Schema, sc *scenario.Scenario) float64 {
	cat, hasCat := schema.ByRole(ds.RoleCategory)
	created, hasCreated := schema.ByRole(ds.RoleCreated)
	domain := map[string]struct{}{}
	if hasCat {
		for _, v := range sc.Domains()[cat.Name] {
			domain[v] = struct{}{}
		}
	}
	checked, good := 0, 0
	for i := 0; i < f.Rows(); i++ {
		evaluated, ok := false, true
		if hasCat {
			if v, present := f.Value(i, cat.Name); present {
				evaluated = true
				s, _ := v.(string)
				if _, in := domain[s]; !in {
					ok = false
				}
			}
		}
		if hasCreated {
			if _, present := f.Value(i, created.Name); present {
				evaluated = true
				if _, parsed := parseDate(f, created, i); !parsed {
					ok = false
				}
			}
		}
		if !evaluated {
			continue
		}
		checked++
		if ok {
			good++
		}
	}
	if checked == 0 {
		return 100
	}
	return 100 * float64(good) / float64(checked)
}

// WriteText renders the report as aligned lines.
func (r Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s (%d rows)\n", dashboardTitle(r), r.Rows); err != nil {
		return err
	}
	for _, m := range r.Metrics {
		flag := ""
		if m.Warning {
			flag = "  WARNING"
		}
		if m.Estimated {
			flag += "  (estimated)"
		}
		if _, err := fmt.Fprintf(w, "  %-13s %-12s %s %.2f%s\n", titleCase(m.Name), m.Status(), m.Comparator, m.Threshold, flag); err != nil {
			return err
		}
	}
	return nil
}

func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
