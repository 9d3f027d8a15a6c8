package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	stsversion "github.com/tourney/sts/pkg/version"
)

type rootOptions struct {
	debug   bool
	version bool

	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sts",
		Short: "Sports tournament scheduling with SAT encodings",
		Long: `sts builds constraint encodings of the sports tournament scheduling
problem, solves them with an in-process backend or exports them for
external solvers, and decodes the answers back into schedules.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.logger = logrus.New()
			o.logger.SetOutput(cmd.ErrOrStderr())
			if o.debug {
				o.logger.SetLevel(logrus.DebugLevel)
			}
			o.logger.Debugf("log level %s", o.logger.Level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.version {
				fmt.Fprint(cmd.OutOrStdout(), stsversion.String())
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "use debug log level")
	cmd.Flags().BoolVar(&o.version, "version", false, "displays the sts version")

	cmd.AddCommand(
		newSolveCmd(o),
		newBatchCmd(o),
		newExportCmd(o),
		newDecodeCmd(o),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sts version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), stsversion.String())
		},
	}
}
