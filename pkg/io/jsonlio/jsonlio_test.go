package jsonlio

import (
	"context"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	iox "github.com/wdm0006/baddata/pkg/io/ioutils"
	"github.com/wdm0006/baddata/pkg/scenario"
)

func TestRoundTripKeepsColumnOrder(t *testing.T) {
	src, err := scenario.Generate(context.Background(), "medical", 120, rand.New(rand.NewPCG(9, 9)), time.Now())
	require.NoError(t, err)
	src.Column(2).SetNull(0)
	p := filepath.Join(t.TempDir(), "medical_data.jsonl.gz")
	require.NoError(t, WriteAll(p, src))

	r, c, err := Open(p, ReaderOptions{})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, src.Schema().Names(), schema.Names())
	assert.Equal(t, ds.KindInt, schema.Columns[2].Type)

	got, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, src.Rows(), got.Rows())
	for i := 0; i < src.Rows(); i++ {
		assert.Equal(t, src.RowKey(i), got.RowKey(i), "row %d", i)
	}
}

func TestInferSchemaPlacesLateKeysByNeighbour(t *testing.T) {
	in := `{"a":1,"c":3}
{"b":2,"c":3}
{"a":1,"b":2,"c":3,"d":4}
{"e":5}
{"a":1,"b":2,"x":0,"c":3}
`
	p := filepath.Join(t.TempDir(), "late.jsonl")
	require.NoError(t, writeFile(p, in))
	r, c, err := Open(p, ReaderOptions{})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "x", "c", "d", "e"}, schema.Names())
}

func TestEncodeRowOmitsNulls(t *testing.T) {
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "z", Type: ds.KindString},
		{Name: "a", Type: ds.KindFloat, Nullable: true},
		{Name: "n", Type: ds.KindInt, Nullable: true},
	}})
	f.AppendNullRow()
	require.NoError(t, f.SetCell(0, "z", "q\"x"))
	require.NoError(t, f.SetCell(0, "n", 3))
	b, err := EncodeRow(f, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"q\"x","n":3}`, string(b))
}

func TestStreamReader(t *testing.T) {
	in := strings.Repeat(`{"id":"a","v":1.5,"ok":true}`+"\n", 25)
	p := filepath.Join(t.TempDir(), "s.jsonl")
	require.NoError(t, writeFile(p, in))
	sr, c, err := NewStreamReader(p, ReaderOptions{SampleRows: 5}, 10)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Equal(t, []string{"id", "v", "ok"}, sr.Schema().Names())
	assert.Equal(t, ds.KindBool, sr.Schema().Columns[2].Type)
	var sizes []int
	for {
		f, err := sr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, f.Rows())
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
}

func TestRejectsNonObjects(t *testing.T) {
	r := NewReaderFrom(strings.NewReader("[1,2]\n"), ReaderOptions{})
	_, err := r.InferSchema()
	assert.Error(t, err)
}

func writeFile(p, body string) error {
	w, err := iox.CreateMaybeCompressed(p)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	return w.Close()
}
