package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune-versions NAME",
	Short: "Mark all but the most recent versions of a dataset for deletion",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		keep := datamgrFlags.prune.keep
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		doomed, err := m.PlanPrune(name, keep)
		if err != nil {
			pruneFail(name, err)
			return
		}
		if len(doomed) == 0 {
			successf("Nothing to prune: %s has at most %d unmarked versions.", name, keep)
			return
		}

		noticef("Versions to be deleted: %s", strings.Join(doomed, ", "))
		if !askConfirm(fmt.Sprintf("Mark %d version(s) of '%s' for deletion?", len(doomed), name)) {
			noticef("Cancelled.")
			return
		}

		marked, err := m.PruneVersions(context.Background(), name, keep, datamgrFlags.message)
		if err != nil {
			pruneFail(name, err)
			return
		}
		successf("Marked %d version(s) of %s for deletion. Objects are removed on the next reconcile run.",
			len(marked), name)
	},
}

func pruneFail(name string, err error) {
	switch {
	case errors.Is(err, manifest.ErrNotFound):
		failf("Not found: %v", err)
	case errors.Is(err, status.ErrPendingEntry):
		failf("Cannot prune while a version is pending publication: %v", err)
	default:
		failf("Prune failed: %v", err)
	}
	osExit(1)
}

func init() {
	addMessageFlag(pruneCmd)
	keep := addKeepFlag(pruneCmd)
	_ = pruneCmd.MarkFlagRequired(keep)
	rootCmd.AddCommand(pruneCmd)
}
