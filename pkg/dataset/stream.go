package dataset

import (
	"context"
	"errors"
	"io"
)

// ChunkSource yields frames in chunks until io.EOF.
type ChunkSource interface {
	Next() (*Frame, error)
}

// ChunkSink consumes frames, typically writing them out.
type ChunkSink interface {
	Write(*Frame) error
	Close() error
}

// RunStream pulls chunks from src, applies the pipeline, and writes to sink.
// The sink is closed on return.
func RunStream(ctx context.Context, p *Pipeline, src ChunkSource, sink ChunkSink) (err error) {
	defer func() {
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err := p.Run(ctx, f)
		if err != nil {
			return err
		}
		if err := sink.Write(out); err != nil {
			return err
		}
	}
}

// CountingSink discards frames and counts rows and chunks.
type CountingSink struct {
	Rows   int
	Chunks int
}

func (c *CountingSink) Write(f *Frame) error {
	c.Rows += f.Rows()
	c.Chunks++
	return nil
}

func (c *CountingSink) Close() error { return nil }
