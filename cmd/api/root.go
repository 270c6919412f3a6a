package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"civic-backoffice/internal/config"
	"civic-backoffice/internal/infrastructure/logging"
)

// app is filled by the root command before any subcommand runs.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "civicd",
		Short:         "Civic back office: property applications, workflow and audit trail",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg = config.Load()
			a.log = logging.New(a.cfg.LogLevel, a.cfg.LogFormat, cmd.ErrOrStderr())
			// package-level logrus calls (db, cache) follow the same settings
			logrus.SetFormatter(a.log.Formatter)
			logrus.SetLevel(a.log.GetLevel())
			logrus.SetOutput(a.log.Out)
			return a.cfg.Validate()
		},
	}
	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedWardsCmd(a))
	return root
}
