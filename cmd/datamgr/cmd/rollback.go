package cmd

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback NAME VERSION",
	Short: "Retarget a dataset to a previous version",
	Long: "Append a new version entry reusing the content of a historical version. " +
		"No data is re-uploaded: the entry points at the object already in production.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, target := args[0], args[1]
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		if !askConfirm(fmt.Sprintf("Roll back %s to %s?", name, target)) {
			noticef("Cancelled.")
			return
		}

		res, err := m.Rollback(context.Background(), name, target, datamgrFlags.message)
		if err != nil {
			if errors.Is(err, status.ErrNoChanges) {
				successf("Latest version already matches %s, nothing to do.", target)
				return
			}
			failf("Rollback failed: %v", err)
			osExit(1)
			return
		}
		successf("Rollback staged and pushed: %s %s (pending publication)",
			res.Dataset, res.Entry.Version)
	},
}

func init() {
	addMessageFlag(rollbackCmd)
	rootCmd.AddCommand(rollbackCmd)
}
