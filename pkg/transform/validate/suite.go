package validate

import (
	"fmt"
	"regexp"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/scenario"
)

// ExpectationSpec is the file form of one expectation.
type ExpectationSpec struct {
	Type     string   `json:"expectation_type" yaml:"expectation_type" toml:"expectation_type"`
	Column   string   `json:"column" yaml:"column" toml:"column"`
	Min      *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty" toml:"min_value,omitempty"`
	Max      *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty" toml:"max_value,omitempty"`
	Regex    string   `json:"regex,omitempty" yaml:"regex,omitempty" toml:"regex,omitempty"`
	ValueSet []string `json:"value_set,omitempty" yaml:"value_set,omitempty" toml:"value_set,omitempty"`
}

// SuiteSpec is the file form of a suite.
type SuiteSpec struct {
	Name         string            `json:"name" yaml:"name" toml:"name"`
	Expectations []ExpectationSpec `json:"expectations" yaml:"expectations" toml:"expectations"`
}

// Build turns a spec into an expectation.
func (s ExpectationSpec) Build() (Expectation, error) {
	if s.Column == "" {
		return nil, fmt.Errorf("%s: column is required", s.Type)
	}
	switch s.Type {
	case TypeExists:
		return &Exists{Column: s.Column}, nil
	case TypeNotNull:
		return &NotNull{Column: s.Column}, nil
	case TypeBetween:
		if s.Min == nil && s.Max == nil {
			return nil, fmt.Errorf("%s: column %s needs min_value or max_value", s.Type, s.Column)
		}
		return &Range{Column: s.Column, Min: s.Min, Max: s.Max}, nil
	case TypeRegex:
		re, err := regexp.Compile(s.Regex)
		if err != nil {
			return nil, fmt.Errorf("%s: column %s: %w", s.Type, s.Column, err)
		}
		return &Regex{Column: s.Column, Pattern: re}, nil
	case TypeInSet:
		return NewInSet(s.Column, s.ValueSet), nil
	}
	return nil, fmt.Errorf("unknown expectation type %q", s.Type)
}

// Suite is an ordered list of expectations.
type Suite struct {
	Name         string
	Expectations []Expectation
}

func (s SuiteSpec) Build() (*Suite, error) {
	out := &Suite{Name: s.Name}
	for i, es := range s.Expectations {
		e, err := es.Build()
		if err != nil {
			return nil, fmt.Errorf("expectation %d: %w", i, err)
		}
		out.Expectations = append(out.Expectations, e)
	}
	return out, nil
}

// Check runs every expectation over f.
func (s *Suite) Check(f *ds.Frame) []Result {
	out := make([]Result, len(s.Expectations))
	for i, e := range s.Expectations {
		out[i] = e.Check(f)
	}
	return out
}

// Pipeline returns the expectations as a transform pipeline that stops at
// the first failure.
func (s *Suite) Pipeline() *ds.Pipeline {
	p := ds.NewPipeline()
	for _, e := range s.Expectations {
		p.Add(e)
	}
	return p
}

// Accumulator merges suite results across streamed chunks. It is a
// dataset.ChunkSink.
type Accumulator struct {
	suite   *Suite
	schema  ds.Schema
	results []Result
}

// NewAccumulator starts an accumulation over frames of the given schema.
func (s *Suite) NewAccumulator(schema ds.Schema) *Accumulator {
	return &Accumulator{suite: s, schema: schema}
}

func (a *Accumulator) Write(f *ds.Frame) error {
	rs := a.suite.Check(f)
	if a.results == nil {
		a.results = rs
		return nil
	}
	for i := range rs {
		a.results[i] = a.results[i].Merge(rs[i])
	}
	return nil
}

func (a *Accumulator) Close() error { return nil }

// Results returns merged results; with no chunks seen it checks an empty frame.
func (a *Accumulator) Results() []Result {
	if a.results == nil {
		return a.suite.Check(ds.NewFrame(a.schema))
	}
	return a.results
}

// Passed reports whether every result succeeded.
func Passed(rs []Result) bool {
	for _, r := range rs {
		if !r.Success {
			return false
		}
	}
	return true
}

// DefaultSuite expects every column in s to exist and key columns to be
// fully populated.
func DefaultSuite(s ds.Schema) SuiteSpec {
	out := SuiteSpec{Name: "default"}
	for _, cs := range s.Columns {
		out.Expectations = append(out.Expectations, ExpectationSpec{Type: TypeExists, Column: cs.Name})
	}
	for _, cs := range s.Columns {
		if cs.Role == ds.RoleKey {
			out.Expectations = append(out.Expectations, ExpectationSpec{Type: TypeNotNull, Column: cs.Name})
		}
	}
	return out
}

// ScenarioSuite extends DefaultSuite with domain, date and measure checks
// derived from the scenario definition.
func ScenarioSuite(sc scenario.Scenario) SuiteSpec {
	schema := sc.Schema()
	out := DefaultSuite(schema)
	out.Name = sc.Name
	for _, cs := range schema.Columns {
		if vals, ok := sc.Domains()[cs.Name]; ok {
			out.Expectations = append(out.Expectations, ExpectationSpec{Type: TypeInSet, Column: cs.Name, ValueSet: vals})
		}
		switch cs.Role {
		case ds.RoleCreated:
			out.Expectations = append(out.Expectations, ExpectationSpec{Type: TypeRegex, Column: cs.Name, Regex: `^\d{4}-\d{2}-\d{2}$`})
		case ds.RoleMeasure:
			if sc.MeasurePattern != nil {
				out.Expectations = append(out.Expectations, ExpectationSpec{Type: TypeRegex, Column: cs.Name, Regex: sc.MeasurePattern.String()})
			}
		}
	}
	return out
}
