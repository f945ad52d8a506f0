package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"platewise/internal/adapters/oracle"
	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	"platewise/internal/harness"
	"platewise/internal/platform/config"
	"platewise/internal/platform/logger"
)

type summary struct {
	RunID      string            `json:"run_id,omitempty"`
	Total      int               `json:"total"`
	Mismatches int               `json:"mismatches"`
	Outcomes   []harness.Outcome `json:"outcomes"`
}

func main() {
	var (
		manifest = flag.String("manifest", "", "fixture manifest (yaml)")
		dbPath   = flag.String("db", "", "sqlite run history; empty disables")
		debug    = flag.Bool("debug", false, "seal a scan report per fixture")
		budget   = flag.Duration("budget", 1200*time.Millisecond, "decode budget per fixture")
		reports  = flag.String("reports", "", "write the sealed report history as json to this path")
		copyLast = flag.Bool("copy", false, "copy the newest sealed report to the clipboard")
	)
	flag.Parse()

	if *manifest == "" {
		log.Fatal("-manifest is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := logger.Named("harness")

	m, err := harness.LoadManifest(*manifest)
	if err != nil {
		log.Fatalf("load manifest: %v", err)
	}

	orc, mode, err := oracle.FromConfig(config.New())
	if err != nil {
		log.Fatalf("oracle: %v", err)
	}

	rec := diag.NewRecorder(
		diag.ResolveDebug(diag.FlagSource(*debug), diag.EnvSource(os.LookupEnv)),
		diag.WithCapacity(len(m.Fixtures)),
		diag.WithLogger(logger.Named("diag")),
	)
	dec := barcode.NewDecoder(orc,
		barcode.WithBudget(*budget),
		barcode.WithRecorder(rec),
	)

	l.Info().Str("oracle", mode).Int("fixtures", len(m.Fixtures)).Bool("debug", *debug).Msg("harness starting")
	outs := harness.NewRunner(dec, harness.WithLogger(l)).Run(ctx, m.Fixtures)

	sum := summary{Total: len(outs), Mismatches: harness.Mismatches(outs), Outcomes: outs}

	if *dbPath != "" {
		h, err := harness.OpenHistory(*dbPath)
		if err != nil {
			log.Fatalf("open history: %v", err)
		}
		run, err := h.Record(ctx, outs)
		if cerr := h.Close(); cerr != nil {
			l.Warn().Err(cerr).Msg("close history")
		}
		if err != nil {
			log.Fatalf("record run: %v", err)
		}
		sum.RunID = run.ID
	}

	if *reports != "" {
		raw, err := rec.ExportJSON()
		if err != nil {
			log.Fatalf("export reports: %v", err)
		}
		if err := os.WriteFile(*reports, raw, 0o644); err != nil {
			log.Fatalf("write reports: %v", err)
		}
	}
	if *copyLast && !rec.CopyLastToClipboard() {
		l.Warn().Msg("no report copied to clipboard")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		log.Fatalf("encode summary: %v", err)
	}
	if sum.Mismatches > 0 {
		os.Exit(1)
	}
}
