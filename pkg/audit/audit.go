// Package audit records what a corruption pass changed, as a patch between
// the CSV renderings of the clean and corrupted datasets.
package audit

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/io/csvio"
)

// Summary counts changed lines. A mutated row shows as one deleted and one
// inserted line.
type Summary struct {
	Inserted int
	Deleted  int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d lines inserted, %d lines deleted", s.Inserted, s.Deleted)
}

// Audit holds the line diff between two renderings.
type Audit struct {
	before string
	diffs  []diffmatchpatch.Diff
}

// Compare renders both frames as CSV and diffs them line by line.
func Compare(clean, dirty *ds.Frame) (*Audit, error) {
	var a, b bytes.Buffer
	if err := csvio.Encode(&a, clean, csvio.WriterOptions{}); err != nil {
		return nil, fmt.Errorf("encode clean: %w", err)
	}
	if err := csvio.Encode(&b, dirty, csvio.WriterOptions{}); err != nil {
		return nil, fmt.Errorf("encode corrupted: %w", err)
	}
	return CompareText(a.String(), b.String()), nil
}

// CompareText diffs two texts line by line.
func CompareText(before, after string) *Audit {
	dmp := diffmatchpatch.New()
	c1, c2, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(c1, c2, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	return &Audit{before: before, diffs: diffs}
}

func (a *Audit) Summary() Summary {
	var s Summary
	for _, d := range a.diffs {
		n := strings.Count(d.Text, "\n")
		if n == 0 && d.Text != "" {
			n = 1
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Inserted += n
		case diffmatchpatch.DiffDelete:
			s.Deleted += n
		}
	}
	return s
}

// Empty reports whether the renderings were identical.
func (a *Audit) Empty() bool {
	for _, d := range a.diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			return false
		}
	}
	return true
}

// Patch returns the diff in patch text form. Empty when nothing changed.
func (a *Audit) Patch() string {
	if a.Empty() {
		return ""
	}
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(a.before, a.diffs))
}

func (a *Audit) WriteFile(path string) error {
	return os.WriteFile(path, []byte(a.Patch()), 0o644)
}
