package cmd

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/G-Research/rainbow/internal/common/logging"
	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
	"github.com/G-Research/rainbow/internal/rainbow"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := generateCmd(rainbow.New())
	cmd.Use = "rainbow PEPPER"
	cmd.Short = "rainbow generates peppered digest tables for numeric keyspaces."
	cmd.Long = `rainbow generates peppered digest tables for numeric keyspaces.

Every id from 0 to 10^digits-1 is formatted as a fixed width decimal, joined to the pepper with a '+'
and hashed. One "<id>\t<DIGEST>" line per id is written to standard out; logs go to standard error.

Running rainbow with a pepper is shorthand for "rainbow generate". A pepper that is also the name of a
command, such as "version" or "generate", runs that command instead; use "rainbow generate PEPPER" for those.

Persistent config can be saved in a yaml file, passed with the --config argument. Example structure:
digits: 8
workers: 4
algorithm: sha256
padding: zero`
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.WithStack(&rainbowerrors.ErrInvalidArgument{
			Name:    "flags",
			Value:   c.CommandPath(),
			Message: err.Error(),
		})
	})

	cmd.AddCommand(
		generateCmd(rainbow.New()),
		versionCmd(rainbow.New()),
	)

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := RootCmd().Execute()
	if err != nil {
		logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Error("rainbow failed")
	}
	return rainbowerrors.ExitCodeFromError(err)
}

// Print version info and exit.
func versionCmd(app *rainbow.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()
			return app.Version()
		},
	}
	return cmd
}
