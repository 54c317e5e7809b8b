package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdm0006/baddata/pkg/audit"
	"github.com/wdm0006/baddata/pkg/config"
	"github.com/wdm0006/baddata/pkg/corrupt"
	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/io/csvio"
	iox "github.com/wdm0006/baddata/pkg/io/ioutils"
	"github.com/wdm0006/baddata/pkg/io/jsonlio"
	"github.com/wdm0006/baddata/pkg/io/kafkaio"
	"github.com/wdm0006/baddata/pkg/io/parquetio"
	"github.com/wdm0006/baddata/pkg/io/sqlio"
	"github.com/wdm0006/baddata/pkg/scenario"
)

// generateFlags holds the parsed flags for the generate command.
type generateFlags struct {
	config       string
	seed         uint64
	seeded       bool
	format       string
	out          string
	audit        string
	db           string
	table        string
	kafkaBrokers string
	kafkaTopic   string
	now          time.Time
}

func newGenerateCmd(stdout io.Writer) *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate <scenario> <count>",
		Short: "Generate a scenario dataset and inject bad data",
		Long:  "Scenarios: " + strings.Join(scenario.Names(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.seeded = cmd.Flags().Changed("seed")
			return runGenerate(cmd.Context(), args[0], args[1], flags, stdout)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.config, "config", "", "Corruption percentages file (.properties, .ini, .json, .yaml, .toml)")
	f.Uint64Var(&flags.seed, "seed", 0, "Random seed for reproducible output")
	f.StringVar(&flags.format, "format", "", "Output format: csv, jsonl or parquet (default from --out, else csv)")
	f.StringVar(&flags.out, "out", "", "Output path (default <scenario>_data.<format>)")
	f.StringVar(&flags.audit, "audit", "", "Write a patch of clean vs corrupted CSV to this file")
	f.StringVar(&flags.db, "db", "", "Also insert into this database (sqlite path or postgres:// DSN)")
	f.StringVar(&flags.table, "table", "", "Table for --db (default <scenario>_data)")
	f.StringVar(&flags.kafkaBrokers, "kafka-brokers", "", "Comma-separated Kafka brokers to publish rows to")
	f.StringVar(&flags.kafkaTopic, "kafka-topic", "", "Kafka topic for --kafka-brokers")
	return cmd
}

func runGenerate(ctx context.Context, name, countArg string, flags generateFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc, err := scenario.Lookup(name)
	if err != nil {
		return codeError(1, "%s", err)
	}
	n, err := strconv.Atoi(countArg)
	if err != nil || n < 0 {
		return codeError(1, "count must be a non-negative integer, got %q", countArg)
	}
	if (flags.kafkaBrokers == "") != (flags.kafkaTopic == "") {
		return codeError(1, "--kafka-brokers and --kafka-topic go together")
	}
	format, err := outputFormat(flags.format, flags.out)
	if err != nil {
		return err
	}
	out := flags.out
	if out == "" {
		out = scenario.OutputName(sc.Name, format)
	}

	cfg, _, err := config.LoadCorruption(flags.config)
	if err != nil {
		return codeError(1, "loading corruption config: %s", err)
	}

	seed := flags.seed
	if !flags.seeded {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	now := flags.now
	if now.IsZero() {
		now = time.Now()
	}
	log.WithFields(log.Fields{"scenario": sc.Name, "rows": n, "seed": seed, "config": cfg.String()}).Debug("generating")

	clean, err := sc.Generate(ctx, n, rng, now)
	if err != nil {
		return err
	}
	dirty, err := corrupt.NewEngine(rng, corrupt.WithClock(now)).Apply(ctx, clean, cfg)
	if err != nil {
		return err
	}

	if err := writeFrame(out, format, dirty); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	if flags.audit != "" {
		a, err := audit.Compare(clean, dirty)
		if err != nil {
			return err
		}
		if err := a.WriteFile(flags.audit); err != nil {
			return err
		}
		log.WithField("file", flags.audit).Info("audit: " + a.Summary().String())
	}
	if flags.db != "" {
		table := flags.table
		if table == "" {
			table = sc.Name + "_data"
		}
		db, err := sqlio.Open(flags.db)
		if err != nil {
			return err
		}
		if err := sqlio.WriteAll(ctx, db, table, dirty); err != nil {
			return err
		}
	}
	if flags.kafkaBrokers != "" {
		if err := publish(ctx, flags, sc.Name, dirty); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "Generated %s dataset with %d records and saved to '%s'.\n", sc.Name, n, out)
	return nil
}

func outputFormat(format, out string) (string, error) {
	if format == "" {
		format = iox.Format(out)
	}
	switch format {
	case "":
		return "csv", nil
	case "csv", "jsonl", "parquet":
		return format, nil
	}
	return "", codeError(1, "unsupported --format %q (csv, jsonl or parquet)", format)
}

func writeFrame(path, format string, f *ds.Frame) error {
	switch format {
	case "jsonl":
		return jsonlio.WriteAll(path, f)
	case "parquet":
		return parquetio.WriteAll(path, f)
	}
	return csvio.WriteAll(path, f, csvio.WriterOptions{})
}

func publish(ctx context.Context, flags generateFlags, name string, f *ds.Frame) (err error) {
	w := kafkaio.NewWriter(ctx, strings.Split(flags.kafkaBrokers, ","), flags.kafkaTopic, kafkaio.WithHeader("scenario", name))
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return w.Write(f)
}
