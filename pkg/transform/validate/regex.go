package validate

import (
	"context"
	"regexp"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// Regex expects every non-null value, rendered as text, to match Pattern.
type Regex struct {
	Column  string
	Pattern *regexp.Regexp
}

func (t *Regex) Name() string { return TypeRegex }

func (t *Regex) Check(f *ds.Frame) Result {
	ci := columnIndex(f, t.Column)
	return scan(TypeRegex, t.Column, f, func(c ds.Column, i int) bool {
		v, ok := f.FormatCell(i, ci)
		return ok && !t.Pattern.MatchString(v)
	})
}

func (t *Regex) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return f, asError(t.Check(f))
}
