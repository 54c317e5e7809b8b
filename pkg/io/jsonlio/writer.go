package jsonlio

import (
	"bytes"
	"encoding/json"
	"io"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	iox "github.com/wdm0006/baddata/pkg/io/ioutils"
)

// EncodeRow renders one row as a JSON object in column order. Null cells
// are omitted.
func EncodeRow(f *ds.Frame, row int) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	first := true
	for i, cs := range f.Schema().Columns {
		c := f.Column(i)
		if c.IsNull(row) {
			continue
		}
		v := c.Value(row)
		if cs.Type == ds.KindTime {
			v, _ = f.FormatCell(row, i)
		}
		k, err := json.Marshal(cs.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.Write(k)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Encode writes one JSON object per line.
func Encode(w io.Writer, f *ds.Frame) error {
	for r := 0; r < f.Rows(); r++ {
		line, err := EncodeRow(f, r)
		if err != nil {
			return err
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func WriteAll(path string, f *ds.Frame) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(out, f)
}
