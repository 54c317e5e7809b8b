package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdm0006/baddata/pkg/config"
	"github.com/wdm0006/baddata/pkg/quality"
)

type dashboardFlags struct {
	scenario string
	serve    string
	format   string
	now      time.Time
}

func newDashboardCmd(stdout io.Writer) *cobra.Command {
	var flags dashboardFlags
	cmd := &cobra.Command{
		Use:   "dashboard <file> <slo-config>",
		Short: "Score a dataset against quality objectives",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), args[0], args[1], flags, stdout)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.scenario, "scenario", "", "Scenario the file was generated from (default guessed from the file name)")
	f.StringVar(&flags.serve, "serve", "", "Serve the dashboard on this address, e.g. :8080")
	f.StringVar(&flags.format, "format", "text", "Report format when not serving: text, json or html")
	return cmd
}

func runDashboard(ctx context.Context, path, sloPath string, flags dashboardFlags, stdout io.Writer) error {
	if err := requireFile(path); err != nil {
		return err
	}
	if err := requireFile(sloPath); err != nil {
		return err
	}
	slo, err := config.LoadSLO(sloPath)
	if err != nil {
		return codeError(1, "loading SLO config: %s", err)
	}
	sc, err := resolveScenario(flags.scenario, path)
	if err != nil {
		return err
	}
	f, err := readFrame(path, sc)
	if err != nil {
		return err
	}
	rpt := quality.Compute(f, quality.Options{Scenario: sc, Now: flags.now, SLO: slo, Source: path})
	for _, w := range rpt.Warnings() {
		log.Warn(w)
	}

	if flags.serve != "" {
		return serveDashboard(ctx, flags.serve, rpt)
	}
	switch flags.format {
	case "json":
		return rpt.WriteJSON(stdout)
	case "html":
		return rpt.WriteHTML(stdout)
	case "", "text":
		return rpt.WriteText(stdout)
	}
	return codeError(1, "unsupported --format %q (text, json or html)", flags.format)
}

func serveDashboard(ctx context.Context, addr string, rpt quality.Report) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reg := prometheus.NewRegistry()
	g, err := quality.NewGauges(reg)
	if err != nil {
		return err
	}
	g.Publish(rpt)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	srv := &http.Server{
		Addr:              addr,
		Handler:           quality.NewRouter(rpt, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.WithField("addr", addr).Info("serving dashboard")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
