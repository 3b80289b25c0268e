package cmd

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Mark a dataset and all its versions for deletion",
	Long: "Flag an entire dataset for removal. The objects and the manifest entries " +
		"are removed later by the reconciler, after the marking commit has merged.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		noticef("This will permanently delete every version of '%s' from production.", name)
		if !askExact(fmt.Sprintf("Type the dataset name ('%s') to confirm", name), name) {
			noticef("Cancelled.")
			return
		}

		if err := m.MarkDatasetForDeletion(context.Background(), name, datamgrFlags.message); err != nil {
			switch {
			case errors.Is(err, manifest.ErrNotFound):
				failf("Not found: %v", err)
			case errors.Is(err, status.ErrPendingEntry):
				failf("Cannot delete while a version is pending publication: %v", err)
			default:
				failf("Delete failed: %v", err)
			}
			osExit(1)
			return
		}
		successf("Marked %s for deletion. Objects are removed on the next reconcile run.", name)
	},
}

func init() {
	addMessageFlag(deleteCmd)
	rootCmd.AddCommand(deleteCmd)
}
