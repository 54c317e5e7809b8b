package sqlio

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/baddata/pkg/corrupt"
	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/scenario"
)

func TestWriteAllSQLite(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(2, 2))
	clean, err := scenario.Generate(ctx, "weather", 1200, rng, time.Now())
	require.NoError(t, err)
	dirty, err := corrupt.NewEngine(rng).Apply(ctx, clean, corrupt.DefaultConfig())
	require.NoError(t, err)

	db, err := Open("sqlite://" + filepath.Join(t.TempDir(), "baddata.db"))
	require.NoError(t, err)
	require.Equal(t, "sqlite", db.Dialector.Name())

	require.NoError(t, WriteAll(ctx, db, "weather", dirty))

	var n int64
	require.NoError(t, db.Table("weather").Count(&n).Error)
	assert.Equal(t, int64(dirty.Rows()), n)

	var nulls int64
	require.NoError(t, db.Table("weather").Where(`"Location" IS NULL`).Count(&nulls).Error)
	loc, _ := dirty.ColumnByName("Location")
	want := 0
	for i := 0; i < loc.Len(); i++ {
		if loc.IsNull(i) {
			want++
		}
	}
	assert.GreaterOrEqual(t, want, 120)
	assert.Equal(t, int64(want), nulls)

	var invalid int64
	require.NoError(t, db.Table("weather").Where(`"Priority" = ?`, corrupt.InvalidValue).Count(&invalid).Error)
	assert.GreaterOrEqual(t, invalid, int64(1))

	// a second load appends to the existing table
	require.NoError(t, WriteAll(ctx, db, "weather", dirty))
	require.NoError(t, db.Table("weather").Count(&n).Error)
	assert.Equal(t, int64(2*dirty.Rows()), n)
}

func TestSinkCreatesTableOnFirstChunk(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "sink.db"))
	require.NoError(t, err)
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "id", Type: ds.KindString, Role: ds.RoleKey},
		{Name: "v", Type: ds.KindFloat, Nullable: true},
	}})
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(i, "id", string(rune('a'+i))))
	}
	require.NoError(t, f.SetCell(1, "v", 2.5))

	s := NewSink(ctx, db, "chunks")
	require.NoError(t, s.Write(f))
	require.NoError(t, s.Write(f))
	require.NoError(t, s.Close())
	assert.Equal(t, 6, s.Rows)

	var sum float64
	require.NoError(t, db.Table("chunks").Select("SUM(v)").Row().Scan(&sum))
	assert.Equal(t, 5.0, sum)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
	db, err := Open(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.Error(t, CreateTable(context.Background(), db, "", ds.Schema{}))
}
