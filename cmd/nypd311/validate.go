package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nypd311/internal/config"
)

var errInvalidConfig = errors.New("configuration is invalid")

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.printIssues(config.ValidateRun(a.cfg)) {
				return errInvalidConfig
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}
