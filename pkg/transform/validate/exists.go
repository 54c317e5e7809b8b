package validate

import (
	"context"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

type Exists struct {
	Column string
}

func (t *Exists) Name() string { return TypeExists }

func (t *Exists) Check(f *ds.Frame) Result {
	return scan(TypeExists, t.Column, f, func(ds.Column, int) bool { return false })
}

func (t *Exists) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return f, asError(t.Check(f))
}

type NotNull struct {
	Column string
}

func (t *NotNull) Name() string { return TypeNotNull }

func (t *NotNull) Check(f *ds.Frame) Result {
	return scan(TypeNotNull, t.Column, f, func(c ds.Column, i int) bool { return c.IsNull(i) })
}

func (t *NotNull) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return f, asError(t.Check(f))
}
