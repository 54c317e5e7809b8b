package jsonlio

import (
	"io"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// StreamReader yields JSONL objects as Frame chunks.
type StreamReader struct {
	r         *Reader
	schema    ds.Schema
	chunkSize int
}

func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, io.Closer, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, nil, err
	}
	schema, err := r.InferSchema()
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return &StreamReader{r: r, schema: schema, chunkSize: chunkSize}, c, nil
}

func (s *StreamReader) Schema() ds.Schema { return s.schema }

func (s *StreamReader) WithRoles(ref ds.Schema) { s.schema = s.schema.WithRoles(ref) }

func (s *StreamReader) Next() (*ds.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := ds.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		m, err := s.r.next()
		if err == io.EOF {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	return f, nil
}
