package cmd

import (
	"context"

	"github.com/openenergyoutlook/datamgr/pkg/vcs"
	"github.com/spf13/cobra"
)

const (
	botName  = "github-actions[bot]"
	botEmail = "github-actions[bot]@users.noreply.github.com"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run one reconciliation pass (intended for CI)",
	Long: "Scan the manifest for pending work and apply it: pending deletions first, " +
		"otherwise at most one pending publication. Intended to run from automation " +
		"after a manifest change has merged; re-run until no work remains.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		r, err := paramsToReconciler()
		if err != nil {
			logFatalln(err)
		}
		if err := vcs.NewGit(".").SetIdentity(ctx, botName, botEmail); err != nil {
			logFatalln(err)
		}

		outcome, err := r.Run(ctx)
		if err != nil {
			failf("Reconciliation failed: %v", err)
			osExit(1)
			return
		}
		switch {
		case outcome.DeletionsProcessed:
			successf("Processed pending deletions: %d object(s) removed. Re-run to scan for publications.",
				outcome.DeletedObjects)
		case outcome.Published != nil:
			successf("Published %s %s.", outcome.Published.Dataset, outcome.Published.Version)
		default:
			noticef("Nothing to do.")
		}
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
