package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	parquet "github.com/segmentio/parquet-go"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// Reader reads a Parquet file into Frames. Column order and kinds come
// from the file schema.
type Reader struct {
	file      *os.File
	reader    *parquet.GenericReader[map[string]any]
	schema    ds.Schema
	chunkSize int
	buf       []map[string]any
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := parquet.NewGenericReader[map[string]any](f)
	return &Reader{file: f, reader: r, schema: schemaOf(r.Schema()), chunkSize: 1024}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() ds.Schema { return r.schema }

// WithRoles re-attaches roles from ref to frames read from now on.
func (r *Reader) WithRoles(ref ds.Schema) { r.schema = r.schema.WithRoles(ref) }

// SetChunkSize bounds the rows returned by Next.
func (r *Reader) SetChunkSize(n int) {
	if n > 0 {
		r.chunkSize = n
	}
}

// Next returns up to chunk-size rows, or io.EOF once the file is drained.
// Reader is a dataset.ChunkSource.
func (r *Reader) Next() (*ds.Frame, error) {
	if len(r.buf) < r.chunkSize {
		r.buf = make([]map[string]any, r.chunkSize)
	}
	for i := range r.buf {
		r.buf[i] = nil
	}
	n, err := r.reader.Read(r.buf[:r.chunkSize])
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parquet read: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}
	f := ds.NewFrame(r.schema)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		setRow(f, f.Rows()-1, r.buf[i])
	}
	return f, nil
}

func (r *Reader) ReadAll() (*ds.Frame, error) {
	f := ds.NewFrame(r.schema)
	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		for i := 0; i < chunk.Rows(); i++ {
			if err := f.AppendRowFrom(chunk, i); err != nil {
				return nil, err
			}
		}
	}
}

func schemaOf(s *parquet.Schema) ds.Schema {
	fields := s.Fields()
	out := ds.Schema{Columns: make([]ds.ColumnSchema, len(fields))}
	for i, fd := range fields {
		k := ds.KindString
		switch fd.Type().Kind() {
		case parquet.Boolean:
			k = ds.KindBool
		case parquet.Int32, parquet.Int64:
			k = ds.KindInt
		case parquet.Float, parquet.Double:
			k = ds.KindFloat
		}
		out.Columns[i] = ds.ColumnSchema{Name: fd.Name(), Type: k, Nullable: true}
	}
	return out
}

func setRow(f *ds.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case ds.KindFloat:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case float32:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int64:
				_ = f.SetCell(row, cs.Name, float64(t))
			}
		case ds.KindInt:
			switch t := v.(type) {
			case int64:
				_ = f.SetCell(row, cs.Name, t)
			case int32:
				_ = f.SetCell(row, cs.Name, int64(t))
			case int:
				_ = f.SetCell(row, cs.Name, int64(t))
			}
		case ds.KindBool:
			if b, ok := v.(bool); ok {
				_ = f.SetCell(row, cs.Name, b)
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			case []byte:
				_ = f.SetCell(row, cs.Name, string(t))
			case bool:
				_ = f.SetCell(row, cs.Name, strconv.FormatBool(t))
			default:
				_ = f.SetCell(row, cs.Name, strings.TrimSpace(fmt.Sprint(t)))
			}
		}
	}
}
