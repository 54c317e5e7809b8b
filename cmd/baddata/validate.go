package main

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdm0006/baddata/pkg/config"
	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/transform/validate"
)

type validateFlags struct {
	suite     string
	scenario  string
	format    string
	out       string
	fail      bool
	chunkSize int
}

func newValidateCmd(stdout io.Writer) *cobra.Command {
	var flags validateFlags
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a dataset against an expectation suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0], flags, stdout)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.suite, "suite", "", "Expectation suite file (.json, .yaml, .toml)")
	f.StringVar(&flags.scenario, "scenario", "", "Derive the suite from this scenario (default guessed from the file name)")
	f.StringVar(&flags.format, "format", "text", "Output format: text, json or md")
	f.StringVar(&flags.out, "out", "", "Write results to file instead of stdout")
	f.BoolVar(&flags.fail, "fail", false, "Exit 2 if any expectation fails")
	f.IntVar(&flags.chunkSize, "chunk-size", defaultChunkSize, "Rows read per chunk")
	return cmd
}

func runValidate(ctx context.Context, path string, flags validateFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := requireFile(path); err != nil {
		return err
	}
	sc, err := resolveScenario(flags.scenario, path)
	if err != nil {
		return err
	}
	src, err := openSource(path, flags.chunkSize, sc)
	if err != nil {
		return err
	}
	defer src.Close()

	var spec validate.SuiteSpec
	switch {
	case flags.suite != "":
		if spec, err = config.LoadSuite(flags.suite); err != nil {
			return codeError(1, "loading suite: %s", err)
		}
	case sc != nil:
		spec = validate.ScenarioSuite(*sc)
	default:
		spec = validate.DefaultSuite(src.schema)
	}
	suite, err := spec.Build()
	if err != nil {
		return codeError(1, "suite %s: %s", spec.Name, err)
	}

	acc := suite.NewAccumulator(src.schema)
	if err := ds.RunStream(ctx, ds.NewPipeline(), src, acc); err != nil {
		return err
	}
	rs := acc.Results()
	log.WithFields(log.Fields{"suite": spec.Name, "expectations": len(rs)}).Debug("validated")

	if err := writeOutput(flags.out, stdout, func(w io.Writer) error {
		return validate.Render(w, flags.format, rs)
	}); err != nil {
		return err
	}
	if flags.fail && !validate.Passed(rs) {
		failed := 0
		for _, r := range rs {
			if !r.Success {
				failed++
			}
		}
		return codeError(2, "%d of %d expectations failed", failed, len(rs))
	}
	return nil
}
