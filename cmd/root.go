// Package cmd defines and implements the CLI commands for the viddisc
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// newRootCmd creates and configures the root command. Persistent flags are
// shared by every subcommand and bound into viper so env vars (VIDDISC_*)
// and flags resolve through one path.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viddisc",
		Short: "Discovers and scores candidate videos for venues.",
		Long: `viddisc walks the venue catalog, assembles candidate video URLs from
social links, websites, official sources, and an optional manifest file,
expands generic pages through a budgeted crawler, scores every candidate,
and upserts the results for review. Approved candidates can then be
promoted into venues that still lack a primary video.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("database-url", "", "Postgres connection string (or VIDDISC_DATABASE_URL)")
	pf.Bool("verbose", false, "enable debug logging with a development encoder")
	pf.Bool("dry-run", false, "score and report without writing to the database")
	pf.String("actor", "video-discovery-bot", "audit label stamped on automated decisions")
	pf.String("metrics-addr", "", "serve /metrics and /healthz on this address while running")

	for flag, key := range map[string]string{
		"database-url": "database_url",
		"verbose":      "verbose",
		"dry-run":      "dry_run",
		"actor":        "actor",
		"metrics-addr": "metrics_addr",
	} {
		cobra.CheckErr(viper.BindPFlag(key, pf.Lookup(flag)))
	}

	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newApplyCmd())
	return cmd
}

// bindFlags wires a subcommand's flags to viper keys. Subcommands share
// flag names (apply-limit on both discover and apply), so binding happens
// at run time rather than construction time to keep the active command's
// flags authoritative.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Execute runs the CLI and returns the process exit code: 0 on success
// (including degraded discovery), 1 on fatal errors.
func Execute() int {
	// Optional .env for local runs; absence is not an error.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
