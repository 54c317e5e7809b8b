package csvio

import (
	"encoding/csv"
	"io"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	iox "github.com/wdm0006/baddata/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
	NoHeader  bool
}

func newCSVWriter(w io.Writer, opt WriterOptions) *csv.Writer {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	return cw
}

// Encode writes f with a header row. Nulls render as empty cells.
func Encode(w io.Writer, f *ds.Frame, opt WriterOptions) error {
	cw := newCSVWriter(w, opt)
	if !opt.NoHeader {
		if err := cw.Write(f.Schema().Names()); err != nil {
			return err
		}
	}
	if err := writeRows(cw, f); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeRows(cw *csv.Writer, f *ds.Frame) error {
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			row[c], _ = f.FormatCell(r, c)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteAll writes a Frame to a CSV file (gzip when the path ends in .gz,
// stdout for "-").
func WriteAll(path string, f *ds.Frame, opt WriterOptions) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(out, f, opt)
}
