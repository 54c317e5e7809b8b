// Package jsonlio reads and writes frames as newline-delimited JSON objects.
package jsonlio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	iox "github.com/wdm0006/baddata/pkg/io/ioutils"
)

type ReaderOptions struct {
	SampleRows int
}

type Reader struct {
	dec *json.Decoder
	opt ReaderOptions
	buf []map[string]any
}

// Open opens a JSONL file (gzip-aware, "-" for stdin).
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	return &Reader{dec: json.NewDecoder(r), opt: opt}
}

// InferSchema samples objects and derives columns in document order. A key
// first seen in a later object is placed next to its neighbours there, so
// omitted null fields do not reorder the columns.
func (r *Reader) InferSchema() (ds.Schema, error) {
	limit := r.opt.SampleRows
	if limit <= 0 {
		limit = 100
	}
	var keys []string
	seen := map[string]struct{}{}
	for len(r.buf) < limit {
		var raw json.RawMessage
		if err := r.dec.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return ds.Schema{}, err
		}
		ks, err := objectKeys(raw)
		if err != nil {
			return ds.Schema{}, err
		}
		keys = mergeKeys(keys, seen, ks)
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return ds.Schema{}, err
		}
		r.buf = append(r.buf, m)
	}
	kinds := inferKinds(r.buf, keys)
	schema := ds.Schema{Columns: make([]ds.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = ds.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// mergeKeys adds the unseen keys of row to keys. A new key goes right after
// the nearest known key preceding it in row, or before the nearest known key
// following it when none precedes it.
func mergeKeys(keys []string, seen map[string]struct{}, row []string) []string {
	prev := -1
	for i, k := range row {
		if _, ok := seen[k]; ok {
			prev = slices.Index(keys, k)
			continue
		}
		seen[k] = struct{}{}
		at := len(keys)
		if prev >= 0 {
			at = prev + 1
		} else {
			for _, next := range row[i+1:] {
				if _, ok := seen[next]; ok {
					at = slices.Index(keys, next)
					break
				}
			}
		}
		keys = slices.Insert(keys, at, k)
		prev = at
	}
	return keys
}

// objectKeys lists the top-level keys of a JSON object in document order.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("jsonl: expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (r *Reader) next() (map[string]any, error) {
	if len(r.buf) > 0 {
		m := r.buf[0]
		r.buf = r.buf[1:]
		return m, nil
	}
	var m map[string]any
	if err := r.dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Reader) ReadAll(schema ds.Schema) (*ds.Frame, error) {
	f := ds.NewFrame(schema)
	for {
		m, err := r.next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
}

func setRowFromMap(f *ds.Frame, row int, m map[string]any) {
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
			case string:
				if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case ds.KindInt:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, int64(t))
			case string:
				if x, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case ds.KindBool:
			switch t := v.(type) {
			case bool:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			default:
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, string(b))
			}
		}
	}
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func inferKinds(sample []map[string]any, keys []string) []ds.Kind {
	kinds := make([]ds.Kind, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nStr := 0, 0, 0, 0
		for _, m := range sample {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			switch t := v.(type) {
			case float64:
				nNum++
				if float64(int64(t)) == t {
					nInt++
				}
			case bool:
				nBool++
			case string:
				s := strings.TrimSpace(t)
				if s == "" {
					continue
				}
				if numre.MatchString(s) {
					nNum++
					if !strings.ContainsAny(s, ".eE") {
						nInt++
					}
				} else {
					nStr++
				}
			default:
				nStr++
			}
		}
		switch {
		case nBool > nNum && nBool >= nStr:
			kinds[i] = ds.KindBool
		case nNum > nStr:
			if nInt == nNum {
				kinds[i] = ds.KindInt
			} else {
				kinds[i] = ds.KindFloat
			}
		default:
			kinds[i] = ds.KindString
		}
	}
	return kinds
}
