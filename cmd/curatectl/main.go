// Package main provides curatectl, a command line front end for the curation pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	levelNames []string
	minLevel   int
	maxLevel   int
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "curatectl",
		Short: "Curate record lists from the command line",
		Long: `curatectl runs the curation pipeline over a local file of records:
eligibility, permission, ranking, ordering and truncation.

The permission domain and result limits come from a curator config file
(--config) or from the --levels / --min-level / --max-level flags.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Curator config file (YAML)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringSliceVar(&opts.levelNames, "levels", nil, "Named permission levels, lowest first")
	pf.IntVar(&opts.minLevel, "min-level", 1, "Lowest permission level of an unnamed domain")
	pf.IntVar(&opts.maxLevel, "max-level", 3, "Highest permission level of an unnamed domain")

	cmd.AddCommand(curateCmd(opts), rulesCmd(opts), versionCmd())
	return cmd
}
