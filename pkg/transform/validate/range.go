package validate

import (
	"context"

	"github.com/spf13/cast"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// Range expects numeric values within [Min, Max]; either bound may be nil.
// String cells are coerced and count as unexpected when they do not parse.
type Range struct {
	Column string
	Min    *float64
	Max    *float64
}

func (t *Range) Name() string { return TypeBetween }

func (t *Range) Check(f *ds.Frame) Result {
	return scan(TypeBetween, t.Column, f, func(c ds.Column, i int) bool {
		if c.IsNull(i) {
			return false
		}
		var v float64
		switch col := c.(type) {
		case *ds.FloatColumn:
			v, _ = col.Get(i)
		case *ds.IntColumn:
			n, _ := col.Get(i)
			v = float64(n)
		default:
			x, err := cast.ToFloat64E(c.Value(i))
			if err != nil {
				return true
			}
			v = x
		}
		return (t.Min != nil && v < *t.Min) || (t.Max != nil && v > *t.Max)
	})
}

func (t *Range) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return f, asError(t.Check(f))
}
