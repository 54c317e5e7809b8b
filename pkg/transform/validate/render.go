package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// RenderText writes one line per result plus a summary line.
func RenderText(w io.Writer, rs []Result) error {
	passed := 0
	for _, r := range rs {
		status := "FAIL"
		if r.Success {
			status = "PASS"
			passed++
		}
		line := fmt.Sprintf("[%s] %s(%s)", status, r.ExpectationType, r.Column)
		switch {
		case r.MissingColumn:
			line += ": column missing"
		case r.UnexpectedCount > 0:
			line += fmt.Sprintf(": %d/%d unexpected (%.2f%%)", r.UnexpectedCount, r.ElementCount, r.UnexpectedPercent)
			if len(r.PartialUnexpected) > 0 {
				line += " e.g. " + strings.Join(quoteAll(r.PartialUnexpected), ", ")
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d/%d expectations passed\n", passed, len(rs))
	return err
}

// RenderJSON writes the results with a success summary.
func RenderJSON(w io.Writer, rs []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Success bool     `json:"success"`
		Results []Result `json:"results"`
	}{Passed(rs), rs})
}

// RenderMarkdown writes the results as a Markdown table.
func RenderMarkdown(w io.Writer, rs []Result) error {
	var b strings.Builder
	b.WriteString("| Expectation | Column | Success | Elements | Unexpected | Unexpected % |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range rs {
		fmt.Fprintf(&b, "| %s | %s | %t | %d | %d | %.2f |\n",
			r.ExpectationType, r.Column, r.Success, r.ElementCount, r.UnexpectedCount, r.UnexpectedPercent)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Render dispatches on format: text, json or md.
func Render(w io.Writer, format string, rs []Result) error {
	switch format {
	case "", "text":
		return RenderText(w, rs)
	case "json":
		return RenderJSON(w, rs)
	case "md", "markdown":
		return RenderMarkdown(w, rs)
	}
	return fmt.Errorf("unknown format %q", format)
}

func quoteAll(vs []string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
