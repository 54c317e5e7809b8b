package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wdm0006/baddata/pkg/profile"
)

type profileFlags struct {
	out       string
	format    string
	title     string
	topK      int
	chunkSize int
}

func newProfileCmd(stdout io.Writer) *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Profile a CSV, JSONL or Parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(args[0], flags, stdout)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.out, "out", "", "Report path (html default <input>_profiling_report.html; text/json default stdout)")
	f.StringVar(&flags.format, "format", "html", "Report format: html, text or json")
	f.StringVar(&flags.title, "title", profile.DefaultTitle, "HTML report title")
	f.IntVar(&flags.topK, "top", 5, "Most frequent values listed per column")
	f.IntVar(&flags.chunkSize, "chunk-size", defaultChunkSize, "Rows read per chunk")
	return cmd
}

func runProfile(path string, flags profileFlags, stdout io.Writer) error {
	if err := requireFile(path); err != nil {
		return err
	}
	switch flags.format {
	case "html", "text", "json":
	default:
		return codeError(1, "unsupported --format %q (html, text or json)", flags.format)
	}
	src, err := openSource(path, flags.chunkSize, nil)
	if err != nil {
		return err
	}
	defer src.Close()

	c := profile.NewCollector(src.schema, flags.topK)
	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		c.ConsumeFrame(f)
	}

	out := flags.out
	if out == "" && flags.format == "html" {
		out = profile.ReportName(path)
	}
	err = writeOutput(out, stdout, func(w io.Writer) error {
		switch flags.format {
		case "text":
			_, err := io.WriteString(w, c.ReportText())
			return err
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(c.ReportJSON())
		}
		return c.ReportHTML(w, flags.title)
	})
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(stdout, "Profiling report generated and saved as '%s'.\n", out)
	}
	return nil
}
