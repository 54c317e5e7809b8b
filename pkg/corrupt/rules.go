package corrupt

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	log "github.com/sirupsen/logrus"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

var (
	ErrOutOfRange  = errors.New("percentage out of range")
	ErrUnknownRule = errors.New("unknown corruption rule")
	ErrMissingRole = errors.New("no column for rule")
	ErrColumnKind  = errors.New("unsupported column kind")
)

// InvalidValue is written into category cells by the invalidity rule.
const InvalidValue = "Invalid"

// InconsistentLayout is the day-first layout the consistency rule writes.
const InconsistentLayout = "02-01-2006"

// Source is the shared random state rules draw from.
type Source struct {
	Rand *rand.Rand
	Fake *gofakeit.Faker
	Now  time.Time
}

func NewSource(rng *rand.Rand, now time.Time) *Source {
	return &Source{Rand: rng, Fake: gofakeit.NewFaker(rng, false), Now: now}
}

// Mutation damages n sampled rows of f in place. f is already a private copy.
type Mutation func(src *Source, f *ds.Frame, n int) error

var mutations = map[string]Mutation{
	Freshness:    staleDates,
	Completeness: nullCells,
	Duplicates:   duplicateRows,
	Invalidity:   invalidCategories,
	Consistency:  inconsistentDates,
	Accuracy:     garbleMeasures,
}

// Lookup returns the mutation registered under name.
func Lookup(name string) (Mutation, error) {
	m, ok := mutations[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRule, name)
	}
	return m, nil
}

// Rule is one configured corruption step. It implements dataset.Transform
// and never modifies its input frame.
type Rule struct {
	name    string
	Percent int
	src     *Source
	mutate  Mutation
}

// NewRule binds a named mutation to an intensity and random source.
func NewRule(name string, pct int, src *Source) (*Rule, error) {
	m, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return &Rule{name: name, Percent: pct, src: src, mutate: m}, nil
}

func (r *Rule) Name() string { return r.name }

func (r *Rule) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := Target(f.Rows(), r.Percent)
	if err != nil {
		return nil, err
	}
	out := f.Clone()
	if n == 0 {
		return out, nil
	}
	if err := r.mutate(r.src, out, n); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"rule": r.name, "percent": r.Percent, "rows": n}).Debug("applied corruption rule")
	return out, nil
}

// Target is floor(rows*pct/100). Percentages below zero, or above 100 on a
// non-empty frame, are rejected.
func Target(rows, pct int) (int, error) {
	if pct < 0 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, pct)
	}
	n := rows * pct / 100
	if n > rows {
		return 0, fmt.Errorf("%w: %d%% of %d rows", ErrOutOfRange, pct, rows)
	}
	return n, nil
}

// sample picks k distinct row positions from [0, rows).
func sample(rng *rand.Rand, rows, k int) []int {
	return rng.Perm(rows)[:k]
}

func roleColumn(f *ds.Frame, role ds.Role) (ds.ColumnSchema, ds.Column, error) {
	cs, ok := f.Schema().ByRole(role)
	if !ok {
		return cs, nil, fmt.Errorf("%w: %s", ErrMissingRole, role)
	}
	c, _ := f.ColumnByName(cs.Name)
	return cs, c, nil
}

func stringColumn(f *ds.Frame, role ds.Role) (*ds.StringColumn, error) {
	cs, c, err := roleColumn(f, role)
	if err != nil {
		return nil, err
	}
	sc, ok := c.(*ds.StringColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %s column %s is %s", ErrColumnKind, role, cs.Name, c.Kind())
	}
	return sc, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// staleDates writes one date between three and one years old.
func staleDates(src *Source, f *ds.Frame, n int) error {
	cs, c, err := roleColumn(f, ds.RoleCreated)
	if err != nil {
		return err
	}
	stale := day(src.Fake.DateRange(src.Now.AddDate(-3, 0, 0), src.Now.AddDate(-1, 0, 0)))
	rows := sample(src.Rand, f.Rows(), n)
	switch col := c.(type) {
	case *ds.StringColumn:
		layout := cs.Layout
		if layout == "" {
			layout = "2006-01-02"
		}
		v := stale.Format(layout)
		for _, r := range rows {
			col.Set(r, v)
		}
	case *ds.TimeColumn:
		for _, r := range rows {
			col.Set(r, stale)
		}
	default:
		return fmt.Errorf("%w: created column %s is %s", ErrColumnKind, cs.Name, c.Kind())
	}
	return nil
}

// nullCells blanks an independent sample in every non-key column.
func nullCells(src *Source, f *ds.Frame, n int) error {
	for i, cs := range f.Schema().Columns {
		if cs.Role == ds.RoleKey {
			continue
		}
		c := f.Column(i)
		for _, r := range sample(src.Rand, f.Rows(), n) {
			c.SetNull(r)
		}
	}
	return nil
}

// duplicateRows appends copies of sampled rows in sample order.
func duplicateRows(src *Source, f *ds.Frame, n int) error {
	for _, r := range sample(src.Rand, f.Rows(), n) {
		if err := f.AppendRowFrom(f, r); err != nil {
			return err
		}
	}
	return nil
}

func invalidCategories(src *Source, f *ds.Frame, n int) error {
	col, err := stringColumn(f, ds.RoleCategory)
	if err != nil {
		return err
	}
	for _, r := range sample(src.Rand, f.Rows(), n) {
		col.Set(r, InvalidValue)
	}
	return nil
}

// inconsistentDates writes one recent date in InconsistentLayout.
func inconsistentDates(src *Source, f *ds.Frame, n int) error {
	col, err := stringColumn(f, ds.RoleCreated)
	if err != nil {
		return err
	}
	v := src.Fake.DateRange(src.Now.AddDate(-3, 0, 0), src.Now).Format(InconsistentLayout)
	for _, r := range sample(src.Rand, f.Rows(), n) {
		col.Set(r, v)
	}
	return nil
}

// garbleMeasures replaces measure cells with one run of filler text.
func garbleMeasures(src *Source, f *ds.Frame, n int) error {
	col, err := stringColumn(f, ds.RoleMeasure)
	if err != nil {
		return err
	}
	v := filler(src)
	for _, r := range sample(src.Rand, f.Rows(), n) {
		col.Set(r, v)
	}
	return nil
}

func filler(src *Source) string {
	words := make([]string, 6+src.Rand.IntN(10))
	for i := range words {
		words[i] = src.Fake.Word()
	}
	s := strings.Join(words, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
