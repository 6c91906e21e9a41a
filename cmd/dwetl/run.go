package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dwetl/internal/pipeline"
	"dwetl/internal/storage"
)

type runOptions struct {
	dryRun bool
	output string
}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Run the full ETL and write the star schema to the sink",
		Long: `Run every stage against the input file and replace the dimension and fact
tables in the configured storage backend. The input defaults to source.file.path.`,
		Example: `  dwetl run --config pipeline.yaml data/loans.csv
  dwetl run --dry-run --output json data/loans.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, g, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "run every stage but skip the database write")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "result format (text, json)")
	return cmd
}

func runRun(cmd *cobra.Command, g *globalOptions, opts *runOptions, args []string) error {
	cfg, logger, err := loadConfig(g, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	input := cfg.Source.File.Path
	if len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return errors.New("no input: pass a file or set source.file.path")
	}

	flush := setupMetrics(cfg.Metrics, cfg.Job, logger)
	defer flush()

	ctx := cmd.Context()
	var repo storage.Repository
	if !opts.dryRun {
		if repo, err = openRepository(ctx, cfg.Storage); err != nil {
			return err
		}
		defer repo.Close()
	}

	res := pipeline.New(cfg, repo, logger).Run(ctx, input)
	if err := writeResult(cmd.OutOrStdout(), opts.output, res); err != nil {
		return err
	}
	return res.Err
}

func writeResult(w io.Writer, format string, res pipeline.Result) error {
	switch format {
	case "", "text":
		status := "OK"
		if !res.Success {
			status = "FAILED"
		}
		_, err := fmt.Fprintf(w, "run %s %s: %s records, quality %.2f (%s), %s\n",
			res.RunID, status, humanize.Comma(int64(res.ProcessedRecords)),
			res.QualityScore, res.Grade, res.Duration.Truncate(time.Millisecond))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}
