package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/spf13/cobra"
)

// resolveOutput maps the --output flag to a destination file. An empty
// flag means the dataset name in the working directory; an existing
// directory means the dataset name inside that directory.
func resolveOutput(output, name string) string {
	if output == "" {
		return name
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}

var pullCmd = &cobra.Command{
	Use:   "pull NAME",
	Short: "Download a dataset version and verify its hash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		output := resolveOutput(datamgrFlags.pull.output, name)
		entry, err := m.Pull(context.Background(), name, datamgrFlags.pull.version, output)
		if err != nil {
			switch {
			case errors.Is(err, manifest.ErrNotFound):
				failf("Not found: %v", err)
			case errors.Is(err, status.ErrIntegrity):
				failf("Integrity check failed: %v", err)
			default:
				failf("Pull failed: %v", err)
			}
			osExit(1)
			return
		}
		successf("Pulled %s %s to %s (sha256 verified)", name, entry.Version, output)
	},
}

func init() {
	addVersionFlag(pullCmd)
	addOutputFlag(pullCmd)
	rootCmd.AddCommand(pullCmd)
}
