package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	cmd := &cobra.Command{
		Use:           "bfa",
		Short:         "Taskflow sales dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	cmd.AddCommand(serve, newFilterCmd())
	return cmd
}
