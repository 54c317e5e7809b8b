package dataset

import (
	"fmt"
	"time"
)

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	AppendNull()
	// Value returns the raw cell; callers check IsNull first.
	Value(i int) any

	clone() Column
	appendFrom(src Column, i int) error
}

// TypedColumn stores one value slice plus a null mask.
type TypedColumn[T any] struct {
	name  string
	kind  Kind
	data  []T
	nulls []bool
}

type (
	BoolColumn   = TypedColumn[bool]
	IntColumn    = TypedColumn[int64]
	FloatColumn  = TypedColumn[float64]
	StringColumn = TypedColumn[string]
	TimeColumn   = TypedColumn[time.Time]
)

func newTyped[T any](name string, k Kind, n int) *TypedColumn[T] {
	return &TypedColumn[T]{name: name, kind: k, data: make([]T, n), nulls: make([]bool, n)}
}

func NewBoolColumn(name string, n int) *BoolColumn     { return newTyped[bool](name, KindBool, n) }
func NewIntColumn(name string, n int) *IntColumn       { return newTyped[int64](name, KindInt, n) }
func NewFloatColumn(name string, n int) *FloatColumn   { return newTyped[float64](name, KindFloat, n) }
func NewStringColumn(name string, n int) *StringColumn { return newTyped[string](name, KindString, n) }
func NewTimeColumn(name string, n int) *TimeColumn     { return newTyped[time.Time](name, KindTime, n) }

func (c *TypedColumn[T]) Name() string        { return c.name }
func (c *TypedColumn[T]) Kind() Kind          { return c.kind }
func (c *TypedColumn[T]) Len() int            { return len(c.data) }
func (c *TypedColumn[T]) IsNull(i int) bool   { return c.nulls[i] }
func (c *TypedColumn[T]) Get(i int) (T, bool) { return c.data[i], !c.nulls[i] }
func (c *TypedColumn[T]) Set(i int, v T)      { c.data[i] = v; c.nulls[i] = false }
func (c *TypedColumn[T]) Value(i int) any     { return c.data[i] }

func (c *TypedColumn[T]) SetNull(i int) {
	var zero T
	c.data[i] = zero
	c.nulls[i] = true
}

func (c *TypedColumn[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}

func (c *TypedColumn[T]) Append(v T) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

func (c *TypedColumn[T]) clone() Column {
	out := &TypedColumn[T]{name: c.name, kind: c.kind, data: make([]T, len(c.data)), nulls: make([]bool, len(c.nulls))}
	copy(out.data, c.data)
	copy(out.nulls, c.nulls)
	return out
}

func (c *TypedColumn[T]) appendFrom(src Column, i int) error {
	s, ok := src.(*TypedColumn[T])
	if !ok {
		return fmt.Errorf("append row: column %s kind mismatch", c.name)
	}
	c.data = append(c.data, s.data[i])
	c.nulls = append(c.nulls, s.nulls[i])
	return nil
}
