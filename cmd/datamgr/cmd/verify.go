package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Probe bucket access for read, write and delete permissions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m, err := paramsToManager()
		if err != nil {
			logFatalln(err)
		}

		ok := true
		for _, report := range m.Verify(context.Background()) {
			if report.FullAccess() {
				successf("%s: %s", report.Bucket, report.Message)
			} else {
				ok = false
				failf("%s: %s", report.Bucket, report.Message)
			}
		}
		if !ok {
			osExit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
