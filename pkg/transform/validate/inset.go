package validate

import (
	"context"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// InSet expects every non-null value, rendered as text, to be one of Values.
type InSet struct {
	Column string
	Values map[string]struct{}
}

func NewInSet(col string, vals []string) *InSet {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return &InSet{Column: col, Values: m}
}

func (t *InSet) Name() string { return TypeInSet }

func (t *InSet) Check(f *ds.Frame) Result {
	ci := columnIndex(f, t.Column)
	return scan(TypeInSet, t.Column, f, func(c ds.Column, i int) bool {
		v, ok := f.FormatCell(i, ci)
		if !ok {
			return false
		}
		_, in := t.Values[v]
		return !in
	})
}

func (t *InSet) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return f, asError(t.Check(f))
}
