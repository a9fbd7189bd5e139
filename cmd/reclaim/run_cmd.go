package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/reclaim/internal/config"
	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/pipeline"
	"github.com/stwalsh4118/reclaim/internal/postalcode"
)

type runOptions struct {
	dryRun  bool
	migrate bool
	from    string
	output  string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [step...]",
		Short: "Run the import pipeline, or only the named steps",
		Long: `Run the import pipeline against the legacy export.

Without arguments every step runs in order. Named steps always run in
pipeline order. See "reclaim steps" for the list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return withCode(exitUsage, fmt.Errorf("--output must be text or json, got %q", opts.output))
			}
			if err := pipeline.ValidateSteps(args...); err != nil {
				return withCode(exitUsage, err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.from != "" {
				cutoff, err := time.Parse(config.DateLayout, opts.from)
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("--from must be a date (YYYY-MM-DD): %w", err))
				}
				cfg.Import.DateFrom = cutoff
			}
			return runPipeline(cmd, cfg, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Import into memory instead of the target database")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Apply schema migrations before importing")
	cmd.Flags().StringVar(&opts.from, "from", "", "Cutoff date overriding IMPORT_DATE_FROM (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Report format: text or json")
	return cmd
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, opts runOptions, steps []string) error {
	ctx := cmd.Context()
	log := logger.New(cfg.Server.Env)

	mapper, err := loadMapper(cfg.Import.MappingsFile)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("mapping tables: %w", err))
	}
	index, err := postalcode.Load(cfg.Import.PostalCodesFile)
	if err != nil {
		return err
	}
	log.Info("Postal code index loaded", map[string]interface{}{
		"ranges":    index.Len(),
		"conflicts": len(index.Conflicts()),
	})

	source, err := legacy.OpenSQLite(cfg.Import.LegacyPath)
	if err != nil {
		return err
	}
	defer source.Close()

	store, closeStore, err := openStore(ctx, cfg.Database, opts.dryRun, opts.migrate, log)
	if err != nil {
		return err
	}
	defer closeStore()

	auditFiles, err := pipeline.OpenAudit(cfg.Import.AuditDir, cfg.Import.AuditWorkbook)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Options{
		Store:   store,
		Source:  source,
		Index:   index,
		Mapper:  mapper,
		Log:     log,
		Cutoff:  cfg.Import.DateFrom,
		DataDir: cfg.Import.DataDir,
		Donors:  auditFiles.Donors,
		Persons: auditFiles.Persons,
	})
	if err != nil {
		return errors.Join(err, auditFiles.Close())
	}

	log.Info("Import started", map[string]interface{}{
		"cutoff":  cfg.Import.DateFrom.Format(config.DateLayout),
		"dry_run": opts.dryRun,
		"steps":   strings.Join(steps, ","),
	})

	var report pipeline.Report
	if len(steps) == 0 {
		report, err = p.Run(ctx)
	} else {
		report, err = p.RunSteps(ctx, steps...)
	}
	if closeErr := auditFiles.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if errors.Is(err, pipeline.ErrUnknownStep) {
		return withCode(exitUsage, err)
	}

	if writeErr := writeReport(cmd.OutOrStdout(), opts.output, report); writeErr != nil {
		err = errors.Join(err, writeErr)
	}
	if err != nil {
		return withCode(exitFailure, err)
	}
	if report.HasFailures() {
		return withCode(exitRecordFailures, errRecordFailures)
	}
	return nil
}

func writeReport(w io.Writer, format string, report pipeline.Report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tINSERTED\tSKIPPED\tFAILED\tWARNINGS\tDURATION")
	for _, s := range report.Steps {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			s.Step, s.Inserted, s.Skipped, s.Failed, s.Warnings, s.Duration.Round(time.Millisecond))
	}
	total := report.Total()
	fmt.Fprintf(tw, "total\t%d\t%d\t%d\t%d\t\n", total.Inserted, total.Skipped, total.Failed, total.Warnings)
	return tw.Flush()
}
