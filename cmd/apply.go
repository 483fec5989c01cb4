package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newApplyCmd creates the 'apply' subcommand: promotion only, no discovery.
func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Promotes approved candidates into venues",
		Long: `Selects the highest-confidence approved candidates at or above the
auto-apply threshold and writes each into its venue's primary video
field. Venues that already have a video are left untouched, so the
command is safe to re-run.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(cmd.Flags(), map[string]string{
				"min-auto-apply": "min_auto_apply",
				"apply-limit":    "apply_limit",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			viper.Set("skip_discovery", true)
			viper.Set("apply_approved", true)
			return runPipeline(cmd)
		},
	}

	f := cmd.Flags()
	f.Int("min-auto-apply", 90, "confidence floor for promotion")
	f.Int("apply-limit", 5000, "maximum venues updated in one pass")

	return cmd
}
