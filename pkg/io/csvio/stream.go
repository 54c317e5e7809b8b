package csvio

import (
	"encoding/csv"
	"io"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	iox "github.com/wdm0006/baddata/pkg/io/ioutils"
)

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows.
type StreamReader struct {
	r         *Reader
	schema    ds.Schema
	chunkSize int
}

// NewStreamReader opens the file, infers schema (respecting options), and returns a StreamReader.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, io.Closer, error) {
	rr, c, err := Open(path, opt)
	if err != nil {
		return nil, nil, err
	}
	schema, _, err := rr.InferSchema()
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return &StreamReader{r: rr, schema: schema, chunkSize: chunkSize}, c, nil
}

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*ds.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := ds.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		rec, err := s.r.next()
		if err == io.EOF {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := s.r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s *StreamReader) Schema() ds.Schema { return s.schema }

// WithRoles re-attaches roles from ref to chunks produced from now on.
func (s *StreamReader) WithRoles(ref ds.Schema) { s.schema = s.schema.WithRoles(ref) }

func (s *StreamReader) Warnings() string { return s.r.Warnings() }

// StreamWriter appends frames to a CSV file with a header (written once).
type StreamWriter struct {
	w           *csv.Writer
	out         io.WriteCloser
	wroteHeader bool
	schema      ds.Schema
	opt         WriterOptions
}

func NewStreamWriter(path string, schema ds.Schema, opt WriterOptions) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{w: newCSVWriter(out, opt), out: out, schema: schema, opt: opt}, nil
}

func (s *StreamWriter) Write(fr *ds.Frame) error {
	if !s.wroteHeader && !s.opt.NoHeader {
		if err := s.w.Write(s.schema.Names()); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	if err := writeRows(s.w, fr); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *StreamWriter) Close() error {
	if !s.wroteHeader && !s.opt.NoHeader {
		_ = s.w.Write(s.schema.Names())
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
