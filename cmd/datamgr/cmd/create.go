package cmd

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create NAME FILE",
	Short: "Add a brand-new dataset (v1) to the manifest",
	Long: "Create a dataset from a local .sqlite file. The payload is uploaded to the " +
		"staging bucket and a pending v1 entry is committed and pushed; publication to " +
		"the production bucket happens after the change is merged.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, file := args[0], args[1]
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		message := datamgrFlags.message
		if message == "" {
			message = askText("Commit message", fmt.Sprintf("feat: add dataset '%s'", name))
		}

		res, err := m.Create(context.Background(), name, file, message)
		if err != nil {
			if errors.Is(err, status.ErrExists) {
				failf("Dataset '%s' already exists. Use 'update' instead.", name)
			} else {
				failf("Create failed: %v", err)
			}
			osExit(1)
			return
		}
		successf("New dataset created and pushed: %s %s (pending publication)",
			res.Dataset, res.Entry.Version)
	},
}

func init() {
	addMessageFlag(createCmd)
	rootCmd.AddCommand(createCmd)
}
