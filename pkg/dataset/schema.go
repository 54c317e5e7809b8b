package dataset

import (
	"errors"
	"fmt"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
	Role     Role
	// Layout is the canonical time layout for date-like string columns.
	Layout string
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Role tags the columns that corruption rules and quality checks target.
type Role int

const (
	RoleNone Role = iota
	RoleKey
	RoleCreated
	RoleCategory
	RoleMeasure
	RoleStatus
)

func (r Role) String() string {
	switch r {
	case RoleKey:
		return "key"
	case RoleCreated:
		return "created"
	case RoleCategory:
		return "category"
	case RoleMeasure:
		return "measure"
	case RoleStatus:
		return "status"
	default:
		return "none"
	}
}

var ErrInvalidSchema = errors.New("invalid schema")

// Validate checks that names are unique, kinds are known and that at most
// one non-nullable key column exists. requireKey additionally demands one.
func (s Schema) Validate(requireKey bool) error {
	seen := make(map[string]struct{}, len(s.Columns))
	keys := 0
	for _, cs := range s.Columns {
		if cs.Name == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalidSchema)
		}
		if _, dup := seen[cs.Name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, cs.Name)
		}
		seen[cs.Name] = struct{}{}
		if cs.Type <= KindInvalid || cs.Type > KindTime {
			return fmt.Errorf("%w: column %q has invalid kind", ErrInvalidSchema, cs.Name)
		}
		if cs.Role == RoleKey {
			keys++
			if cs.Nullable {
				return fmt.Errorf("%w: key column %q must not be nullable", ErrInvalidSchema, cs.Name)
			}
		}
	}
	if keys > 1 {
		return fmt.Errorf("%w: %d key columns", ErrInvalidSchema, keys)
	}
	if requireKey && keys == 0 {
		return fmt.Errorf("%w: no key column", ErrInvalidSchema)
	}
	return nil
}

// ByRole returns the first column carrying role r.
func (s Schema) ByRole(r Role) (ColumnSchema, bool) {
	for _, cs := range s.Columns {
		if cs.Role == r {
			return cs, true
		}
	}
	return ColumnSchema{}, false
}

func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// WithRoles copies s and assigns roles (and layouts) from ref by column name.
// Used to re-attach scenario roles to a schema inferred from a file.
func (s Schema) WithRoles(ref Schema) Schema {
	byName := make(map[string]ColumnSchema, len(ref.Columns))
	for _, cs := range ref.Columns {
		byName[cs.Name] = cs
	}
	out := Schema{Columns: make([]ColumnSchema, len(s.Columns))}
	for i, cs := range s.Columns {
		if r, ok := byName[cs.Name]; ok {
			cs.Role = r.Role
			cs.Layout = r.Layout
		}
		out.Columns[i] = cs
	}
	return out
}
