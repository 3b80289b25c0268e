package cmd

import (
	"context"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare NAME FILE",
	Short: "Stage a version without committing",
	Long: "Upload the payload to the staging bucket and record the pending manifest " +
		"entry, leaving the commit and push to the operator. Creates the dataset when " +
		"the name is new, otherwise stages an update.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, file := args[0], args[1]
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		res, err := m.Prepare(context.Background(), name, file)
		if err != nil {
			if errors.Is(err, status.ErrNoChanges) {
				successf("No changes detected (identical file).")
				return
			}
			failf("Prepare failed: %v", err)
			osExit(1)
			return
		}
		if res.DiffPath != "" {
			noticef("Diff stored at %s", res.DiffPath)
		}
		successf("Staged %s %s. Review, commit and push the manifest to publish.",
			res.Dataset, res.Entry.Version)
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}
