package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dwetl/internal/export"
	"dwetl/internal/pipeline"
)

type exportOptions struct {
	output string
	format string
}

func newExportCmd(g *globalOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export [input]",
		Short: "Write the cleaned and transformed records to a CSV or JSON file",
		Long: `Run the pipeline without a database and write the dataset as it stands after
the transform stage, one row per record that survived cleaning.`,
		Example: `  dwetl export -o processed.csv data/loans.csv
  dwetl export --format json -o processed.json data/loans.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, g, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination file (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", export.FormatCSV, "file format (csv, json)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runExport(cmd *cobra.Command, g *globalOptions, opts *exportOptions, args []string) error {
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

	res := pipeline.New(cfg, nil, logger).Run(cmd.Context(), input)
	if res.Err != nil {
		return res.Err
	}
	sum, err := export.WriteFile(opts.output, opts.format, res.Data, logger)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %s records to %s (%s, %s)\n",
		humanize.Comma(int64(sum.Rows)), sum.Path, sum.Format, humanize.Bytes(uint64(sum.Bytes)))
	return err
}
