package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup-staging",
	Short: "Remove abandoned staging uploads past the retention window",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r, err := paramsToReconciler()
		if err != nil {
			logFatalln(err)
		}
		n, err := r.ScrubStaging(context.Background(), datamgrFlags.cleanup.olderThan)
		if err != nil {
			failf("Staging cleanup failed: %v", err)
			osExit(1)
			return
		}
		if n == 0 {
			noticef("No expired staging objects found.")
			return
		}
		successf("Removed %d expired staging object(s).", n)
	},
}

func init() {
	addOlderThanFlag(cleanupCmd)
	rootCmd.AddCommand(cleanupCmd)
}
