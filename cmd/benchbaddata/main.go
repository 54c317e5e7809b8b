package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/wdm0006/baddata/pkg/config"
	"github.com/wdm0006/baddata/pkg/corrupt"
	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/io/csvio"
	"github.com/wdm0006/baddata/pkg/scenario"
)

// genSource fabricates scenario chunks until remain rows have been produced.
type genSource struct {
	ctx    context.Context
	sc     scenario.Scenario
	remain int
	chunk  int
	rng    *rand.Rand
	now    time.Time
}

func (g *genSource) Next() (*ds.Frame, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := min(g.chunk, g.remain)
	g.remain -= n
	return g.sc.Generate(g.ctx, n, g.rng, g.now)
}

func main() {
	var (
		name    = flag.String("scenario", "weather", "scenario to generate")
		rows    = flag.Int("rows", 1_000_000, "total rows to generate")
		chunk   = flag.Int("chunk", 100_000, "rows per chunk")
		cfgPath = flag.String("config", "", "corruption percentages file")
		out     = flag.String("out", "", "stream corrupted chunks to this CSV file instead of discarding them")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Uint64("seed", 42, "random seed")
	)
	flag.Parse()

	if err := run(*name, *rows, *chunk, *cfgPath, *out, *jsonOut, *seed, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(name string, rows, chunk int, cfgPath, out string, jsonOut bool, seed uint64, w io.Writer) error {
	if chunk <= 0 {
		return fmt.Errorf("chunk must be positive, got %d", chunk)
	}
	sc, err := scenario.Lookup(name)
	if err != nil {
		return err
	}
	cfg, _, err := config.LoadCorruption(cfgPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	now := time.Now()
	rng := rand.New(rand.NewPCG(seed, seed))
	p := corrupt.NewEngine(rng, corrupt.WithClock(now)).Pipeline(cfg)
	src := &genSource{ctx: ctx, sc: sc, remain: rows, chunk: chunk, rng: rng, now: now}

	counter := &ds.CountingSink{}
	var sink ds.ChunkSink = counter
	if out != "" {
		sw, err := csvio.NewStreamWriter(out, sc.Schema(), csvio.WriterOptions{})
		if err != nil {
			return err
		}
		sink = &teeSink{counter: counter, next: sw}
	}

	// Warm up
	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	if err := ds.RunStream(ctx, p, src, sink); err != nil {
		return err
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(rows) / elapsed.Seconds()
	summary := map[string]any{
		"scenario":              sc.Name,
		"rows":                  rows,
		"rows_out":              counter.Rows,
		"chunks":                counter.Chunks,
		"config":                cfg.String(),
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"chunk":                 chunk,
	}

	if jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Fprintln(w, string(b))
		return nil
	}
	fmt.Fprintf(w, "Scenario: %s (%s)\n", sc.Name, cfg)
	fmt.Fprintf(w, "Rows: %d in, %d out, %d chunks\n", rows, counter.Rows, counter.Chunks)
	fmt.Fprintf(w, "Elapsed: %s\n", elapsed)
	fmt.Fprintf(w, "Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Fprintf(w, "Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Fprintf(w, "Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Fprintf(w, "GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
	return nil
}

// teeSink counts chunks before handing them on.
type teeSink struct {
	counter *ds.CountingSink
	next    ds.ChunkSink
}

func (t *teeSink) Write(f *ds.Frame) error {
	_ = t.counter.Write(f)
	return t.next.Write(f)
}

func (t *teeSink) Close() error { return t.next.Close() }
