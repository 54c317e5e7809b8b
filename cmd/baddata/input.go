package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/io/csvio"
	iox "github.com/wdm0006/baddata/pkg/io/ioutils"
	"github.com/wdm0006/baddata/pkg/io/jsonlio"
	"github.com/wdm0006/baddata/pkg/io/parquetio"
	"github.com/wdm0006/baddata/pkg/scenario"
)

const defaultChunkSize = 10000

var csvOptions = csvio.ReaderOptions{HasHeader: true, SampleRows: 100}

// source is a chunked reader over an input file, roles already attached.
type source struct {
	ds.ChunkSource
	schema ds.Schema
	closer io.Closer
}

func (s *source) Close() error { return s.closer.Close() }

func requireFile(path string) error {
	if iox.IsStdio(path) {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return codeError(1, "The file %s does not exist.", path)
	}
	return nil
}

// resolveScenario picks the named scenario, or guesses it from the file
// name when name is empty. A nil result means no scenario applies.
func resolveScenario(name, path string) (*scenario.Scenario, error) {
	if name != "" {
		sc, err := scenario.Lookup(name)
		if err != nil {
			return nil, codeError(1, "%s", err)
		}
		return &sc, nil
	}
	if sc, ok := scenario.FromFilename(path); ok {
		return &sc, nil
	}
	return nil, nil
}

func openSource(path string, chunk int, sc *scenario.Scenario) (*source, error) {
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	var s *source
	switch iox.Format(path) {
	case "jsonl":
		sr, c, err := jsonlio.NewStreamReader(path, jsonlio.ReaderOptions{SampleRows: 100}, chunk)
		if err != nil {
			return nil, err
		}
		if sc != nil {
			sr.WithRoles(sc.Schema())
		}
		s = &source{ChunkSource: sr, schema: sr.Schema(), closer: c}
	case "parquet":
		r, err := parquetio.OpenReader(path)
		if err != nil {
			return nil, err
		}
		r.SetChunkSize(chunk)
		if sc != nil {
			r.WithRoles(sc.Schema())
		}
		s = &source{ChunkSource: r, schema: r.Schema(), closer: r}
	default:
		sr, c, err := csvio.NewStreamReader(path, csvOptions, chunk)
		if err != nil {
			return nil, err
		}
		if sc != nil {
			sr.WithRoles(sc.Schema())
		}
		s = &source{ChunkSource: sr, schema: sr.Schema(), closer: c}
	}
	return s, nil
}

// readFrame loads a whole file.
func readFrame(path string, sc *scenario.Scenario) (*ds.Frame, error) {
	switch iox.Format(path) {
	case "jsonl":
		r, c, err := jsonlio.Open(path, jsonlio.ReaderOptions{SampleRows: 100})
		if err != nil {
			return nil, err
		}
		defer c.Close()
		schema, err := r.InferSchema()
		if err != nil {
			return nil, err
		}
		return r.ReadAll(withRoles(schema, sc))
	case "parquet":
		r, err := parquetio.OpenReader(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		if sc != nil {
			r.WithRoles(sc.Schema())
		}
		return r.ReadAll()
	default:
		r, c, err := csvio.Open(path, csvOptions)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		schema, _, err := r.InferSchema()
		if err != nil {
			return nil, err
		}
		f, err := r.ReadAll(withRoles(schema, sc))
		if w := r.Warnings(); w != "" {
			log.WithField("file", path).Warn("repaired records: " + w)
		}
		return f, err
	}
}

func withRoles(s ds.Schema, sc *scenario.Scenario) ds.Schema {
	if sc == nil {
		return s
	}
	return s.WithRoles(sc.Schema())
}

// writeOutput runs render against the file out, or stdout when out is empty.
func writeOutput(out string, stdout io.Writer, render func(io.Writer) error) error {
	if out == "" {
		return render(stdout)
	}
	w, err := iox.CreateMaybeCompressed(out)
	if err != nil {
		return err
	}
	if err := render(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
