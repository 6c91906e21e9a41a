package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dwetl/internal/datasource/file"
	"dwetl/internal/pipeline"
	"dwetl/internal/report"
)

type qualityOptions struct {
	list     string
	parallel int
	format   string
	minScore float64
}

func newQualityCmd(g *globalOptions) *cobra.Command {
	opts := &qualityOptions{}

	cmd := &cobra.Command{
		Use:   "quality [input...]",
		Short: "Score the data quality of one or more input files",
		Long: `Run the pipeline up to the quality stage for each input, without writing to
a database, and print one report per input in argument order.`,
		Example: `  dwetl quality data/loans.csv
  dwetl quality --parallel 4 --list inputs.txt --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuality(cmd, g, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.list, "list", "", "file with one input path per line")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", runtime.GOMAXPROCS(0), "inputs scored concurrently")
	cmd.Flags().StringVarP(&opts.format, "format", "f", report.FormatText, "report format (text, json, yaml)")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 80, "fail when any input scores below this (0 disables)")
	return cmd
}

func runQuality(cmd *cobra.Command, g *globalOptions, opts *qualityOptions, args []string) error {
	cfg, logger, err := loadConfig(g, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	inputs := append([]string(nil), args...)
	if opts.list != "" {
		listed, err := file.ReadList(opts.list)
		if err != nil {
			return err
		}
		inputs = append(inputs, listed...)
	}
	if len(inputs) == 0 && cfg.Source.File.Path != "" {
		inputs = []string{cfg.Source.File.Path}
	}
	if len(inputs) == 0 {
		return errors.New("no inputs: pass files, --list or set source.file.path")
	}

	flush := setupMetrics(cfg.Metrics, cfg.Job, logger)
	defer flush()

	ctx := cmd.Context()
	results := make([]pipeline.Result, len(inputs))
	var eg errgroup.Group
	eg.SetLimit(max(opts.parallel, 1))
	for i, in := range inputs {
		eg.Go(func() error {
			// Each input gets its own pipeline; runs share nothing. Failed
			// inputs are reported from results; only interruption fails the group.
			results[i] = pipeline.New(cfg, nil, logger.WithField("input", in)).Run(ctx, in)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("quality interrupted: %w", err)
	}

	var failed []string
	out := cmd.OutOrStdout()
	for i, res := range results {
		if res.Quality != nil {
			if err := report.Write(out, opts.format, report.Document{Source: inputs[i], Report: *res.Quality}); err != nil {
				return err
			}
		}
		switch {
		case res.Err != nil:
			failed = append(failed, fmt.Sprintf("%s: %v", inputs[i], res.Err))
		case opts.minScore > 0 && res.QualityScore < opts.minScore:
			failed = append(failed, fmt.Sprintf("%s: score %.2f below %.2f", inputs[i], res.QualityScore, opts.minScore))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d inputs failed: %v", len(failed), len(inputs), failed)
	}
	return nil
}
