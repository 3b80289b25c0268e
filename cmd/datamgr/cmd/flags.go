package cmd

import (
	"time"

	"github.com/openenergyoutlook/datamgr/pkg/core"
	"github.com/openenergyoutlook/datamgr/pkg/diff"
	"github.com/openenergyoutlook/datamgr/pkg/dlogger"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/openenergyoutlook/datamgr/pkg/reconcile"
	"github.com/openenergyoutlook/datamgr/pkg/storage"
	"github.com/openenergyoutlook/datamgr/pkg/storage/sthree"
	"github.com/openenergyoutlook/datamgr/pkg/vcs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type flagsT struct {
	root struct {
		yes      bool
		logLevel string
	}
	message string
	pull    struct {
		version string
		output  string
	}
	prune struct {
		keep int
	}
	cleanup struct {
		olderThan time.Duration
	}
}

var datamgrFlags = flagsT{}

func addYesFlag(cmd *cobra.Command) string {
	yes := "yes"
	cmd.PersistentFlags().BoolVarP(&datamgrFlags.root.yes, yes, "y", false,
		"Run non-interactively: auto-accept all prompts and use defaults")
	return yes
}

func addLogLevelFlag(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&datamgrFlags.root.logLevel, loglevel, "",
		"Log level (debug, info, none). Overrides the configured level")
	return loglevel
}

func addMessageFlag(cmd *cobra.Command) string {
	message := "message"
	cmd.Flags().StringVarP(&datamgrFlags.message, message, "m", "",
		"The commit message for this change")
	return message
}

func addVersionFlag(cmd *cobra.Command) string {
	version := "version"
	cmd.Flags().StringVarP(&datamgrFlags.pull.version, version, "v", "latest",
		"Version to pull (e.g. 'v1'). Defaults to latest")
	return version
}

func addOutputFlag(cmd *cobra.Command) string {
	output := "output"
	cmd.Flags().StringVarP(&datamgrFlags.pull.output, output, "o", "",
		"Output path for the file. Defaults to the dataset name in the current directory")
	return output
}

func addKeepFlag(cmd *cobra.Command) string {
	keep := "keep"
	cmd.Flags().IntVar(&datamgrFlags.prune.keep, keep, 0,
		"Number of most recent versions to keep")
	return keep
}

func addOlderThanFlag(cmd *cobra.Command) string {
	olderThan := "older-than"
	cmd.Flags().DurationVar(&datamgrFlags.cleanup.olderThan, olderThan, reconcile.DefaultStagingRetention,
		"Age threshold for removing abandoned staging objects")
	return olderThan
}

func logLevel() string {
	if datamgrFlags.root.logLevel != "" {
		return datamgrFlags.root.logLevel
	}
	if config != nil && config.LogLevel != "" {
		return config.LogLevel
	}
	return dlogger.LogLevelInfo
}

func newLogger() *zap.Logger {
	return dlogger.MustGetLogger(logLevel())
}

func configToStores(l *zap.Logger) (staging, production storage.Store, err error) {
	if err = config.validateR2(); err != nil {
		return nil, nil, err
	}
	awsConfig := sthree.R2Config(config.AccountID, config.AccessKey, config.SecretKey)
	staging = sthree.New(sthree.Bucket(config.StagingBucket), sthree.AWSConfig(awsConfig))
	production = sthree.New(sthree.Bucket(config.ProductionBucket), sthree.AWSConfig(awsConfig))
	l.Debug("object stores configured",
		zap.String("staging", staging.String()),
		zap.String("production", production.String()))
	return staging, production, nil
}

func newManifestStore(l *zap.Logger) *manifest.Store {
	return manifest.New(afero.NewOsFs(), config.ManifestPath, manifest.Logger(l))
}

// paramsToManager assembles the lifecycle manager from the process
// configuration. Commands that never touch version control (pull,
// verify) still get a fully wired manager; the git collaborator only
// runs when an operation commits.
func paramsToManager() (*core.Manager, error) {
	l := newLogger()
	staging, production, err := configToStores(l)
	if err != nil {
		return nil, err
	}
	mf := newManifestStore(l)
	return core.New(mf, staging, production,
		core.WithVCS(vcs.NewGit(".")),
		core.WithDiffer(diff.NewSQL()),
		core.WithMaxDiffLines(config.MaxDiffLines),
		core.WithLogger(l),
	), nil
}

func paramsToReconciler() (*reconcile.Reconciler, error) {
	l := newLogger()
	staging, production, err := configToStores(l)
	if err != nil {
		return nil, err
	}
	mf := newManifestStore(l)
	return reconcile.New(mf, staging, production,
		reconcile.WithVCS(vcs.NewGit(".")),
		reconcile.WithLogger(l),
	), nil
}
