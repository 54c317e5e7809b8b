package scenario

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// gen carries the per-run random state every field draws from.
type gen struct {
	rng  *rand.Rand
	fake *gofakeit.Faker
	now  time.Time
}

type field struct {
	ds.ColumnSchema
	domain []string
	value  func(g *gen) (any, error)
}

// Generate fabricates n clean rows for the named scenario.
func Generate(ctx context.Context, name string, n int, rng *rand.Rand, now time.Time) (*ds.Frame, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, n, rng, now)
}

// Generate fabricates n clean rows. All randomness comes from rng, so a
// fixed seed and clock reproduce the same frame.
func (s Scenario) Generate(ctx context.Context, n int, rng *rand.Rand, now time.Time) (*ds.Frame, error) {
	if n < 0 {
		return nil, fmt.Errorf("record count must be non-negative, got %d", n)
	}
	g := &gen{rng: rng, fake: gofakeit.NewFaker(rng, false), now: now}
	f := ds.NewFrame(s.Schema())
	for i := 0; i < n; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		f.AppendNullRow()
		for _, fd := range s.fields {
			v, err := fd.value(g)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fd.Name, err)
			}
			if err := f.SetCell(i, fd.Name, v); err != nil {
				return nil, err
			}
		}
	}
	log.WithFields(log.Fields{"scenario": s.Name, "rows": n}).Debug("generated clean dataset")
	return f, nil
}

// randReader adapts rng to io.Reader so uuids stay reproducible.
type randReader struct{ r *rand.Rand }

func (rr randReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := rr.r.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

func keyField(name string) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: name, Type: ds.KindString, Role: ds.RoleKey},
		value: func(g *gen) (any, error) {
			id, err := uuid.NewRandomFromReader(randReader{g.rng})
			if err != nil {
				return nil, err
			}
			return id.String(), nil
		},
	}
}

func personField(name string) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: name, Type: ds.KindString, Nullable: true},
		value:        func(g *gen) (any, error) { return g.fake.Name(), nil },
	}
}

func cityField(name string) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: name, Type: ds.KindString, Nullable: true},
		value:        func(g *gen) (any, error) { return g.fake.City(), nil },
	}
}

func choiceField(name string, values ...string) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: name, Type: ds.KindString, Nullable: true},
		domain:       values,
		value:        func(g *gen) (any, error) { return values[g.rng.IntN(len(values))], nil },
	}
}

func statusField(values ...string) field {
	f := choiceField("Status", values...)
	f.Role = ds.RoleStatus
	return f
}

func priorityField() field {
	f := choiceField("Priority", Priorities...)
	f.Role = ds.RoleCategory
	return f
}

// floatField rounds to two decimals.
func floatField(name string, lo, hi float64) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: name, Type: ds.KindFloat, Nullable: true},
		value: func(g *gen) (any, error) {
			return math.Round(g.fake.Float64Range(lo, hi)*100) / 100, nil
		},
	}
}

func intField(name string, lo, hi int) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: name, Type: ds.KindInt, Nullable: true},
		value:        func(g *gen) (any, error) { return int64(g.fake.IntRange(lo, hi)), nil },
	}
}

func createdField(years int) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: "Date_Created", Type: ds.KindString, Nullable: true, Role: ds.RoleCreated, Layout: DateLayout},
		value: func(g *gen) (any, error) {
			return g.fake.DateRange(g.now.AddDate(-years, 0, 0), g.now).Format(DateLayout), nil
		},
	}
}

func resolutionField(hi int, unit string) field {
	return field{
		ColumnSchema: ds.ColumnSchema{Name: "Resolution_Time", Type: ds.KindString, Nullable: true, Role: ds.RoleMeasure},
		value: func(g *gen) (any, error) {
			return fmt.Sprintf("%d %s", g.fake.IntRange(1, hi), unit), nil
		},
	}
}
