package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list-datasets",
	Short: "List every dataset in the manifest with its latest version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}
		data, err := m.ListDatasets()
		if err != nil {
			failf("Reading manifest: %v", err)
			osExit(1)
			return
		}
		if len(data) == 0 {
			noticef("No datasets in the manifest.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLATEST\tVERSIONS\tUPDATED\tSHA256\tSTATE")
		for _, ds := range data {
			latest := ds.Latest()
			fmt.Fprintf(w, "%s\t%s\t%d\t%s (%s)\t%s\t%s\n",
				ds.FileName,
				ds.LatestVersion,
				len(ds.History),
				relativeAge(latest.Timestamp),
				latest.Timestamp.Format("2006-01-02 15:04"),
				shortHash(latest.SHA256),
				datasetState(ds))
		}
		_ = w.Flush()
	},
}

func relativeAge(t time.Time) string {
	return units.HumanDuration(time.Since(t)) + " ago"
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func datasetState(ds model.Dataset) string {
	if ds.MarkedForDeletion() {
		return "pending deletion"
	}
	for i := range ds.History {
		if ds.History[i].Pending() {
			return fmt.Sprintf("%s pending publication", ds.History[i].Version)
		}
	}
	return "published"
}

func init() {
	rootCmd.AddCommand(listCmd)
}
