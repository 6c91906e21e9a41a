// Command dwetl loads a delimited file into a star schema and scores its
// data quality.
//
//	dwetl run --config pipeline.yaml data/loans.csv
//	dwetl quality --parallel 4 --list inputs.txt
//	dwetl config validate --config pipeline.yaml
//	dwetl export --format json -o processed.json data/loans.csv
//	dwetl generate -n 5000 -o data/loans.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	// Register every storage backend; storage.kind picks one at runtime.
	_ "dwetl/internal/storage/all"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "dwetl",
		Short:         "Star-schema ETL with data-quality scoring",
		Long:          "dwetl cleans a delimited input file, builds dimension and fact tables with surrogate keys, scores data quality and writes the star schema to a database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "pipeline config file (YAML or JSON)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format override (text, json)")

	root.AddCommand(
		newRunCmd(g),
		newQualityCmd(g),
		newExportCmd(g),
		newGenerateCmd(),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
