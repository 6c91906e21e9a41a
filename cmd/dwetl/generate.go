package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dwetl/internal/sample"
)

type generateOptions struct {
	records     int
	seed        uint64
	output      string
	end         string
	missingRate float64
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic loan file for trying out the pipeline",
		Long: `Generate loan applications with the columns the default configuration
expects, including missing and malformed cells. Output is reproducible for a
given --seed and --end.`,
		Example: `  dwetl generate -n 5000 -o data/loans.csv
  dwetl generate --seed 7 --end 2016-03 > loans.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.records, "records", "n", 1000, "number of records")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 42, "random seed")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination file (default stdout)")
	cmd.Flags().StringVar(&opts.end, "end", "", "latest issue month as YYYY-MM (default current month)")
	cmd.Flags().Float64Var(&opts.missingRate, "missing-rate", 1, "multiplier applied to every column's missing share")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if opts.records <= 0 {
		return fmt.Errorf("records must be positive, got %d", opts.records)
	}
	o := sample.Options{Records: opts.records, Seed: opts.seed, MissingRate: opts.missingRate}
	if opts.end != "" {
		end, err := time.Parse("2006-01", opts.end)
		if err != nil {
			return fmt.Errorf("invalid --end %q: want YYYY-MM", opts.end)
		}
		o.End = end
	}

	if opts.output == "" {
		bw := bufio.NewWriter(cmd.OutOrStdout())
		if _, err := sample.Loans(bw, o); err != nil {
			return err
		}
		return bw.Flush()
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	cw := &countingWriter{w: bw}
	n, err := sample.Loans(cw, o)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "generated %s records in %s (%s)\n",
		humanize.Comma(int64(n)), opts.output, humanize.Bytes(uint64(cw.n)))
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
