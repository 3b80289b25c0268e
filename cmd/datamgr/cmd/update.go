package cmd

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update NAME FILE",
	Short: "Stage, commit and push a new version of a dataset",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, file := args[0], args[1]
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		message := datamgrFlags.message
		if message == "" {
			message = askText("Commit message", fmt.Sprintf("Update %s", name))
		}

		res, err := m.Update(context.Background(), name, file, message)
		if err != nil {
			if errors.Is(err, status.ErrNoChanges) {
				successf("No changes detected (identical file).")
				return
			}
			failf("Update failed: %v", err)
			osExit(1)
			return
		}
		if res.DiffPath != "" {
			noticef("Diff stored at %s", res.DiffPath)
		}
		successf("Update complete and pushed: %s %s (pending publication)",
			res.Dataset, res.Entry.Version)
	},
}

func init() {
	addMessageFlag(updateCmd)
	rootCmd.AddCommand(updateCmd)
}
