package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nypd311/internal/query"
)

func newWhereCmd(a *app) *cobra.Command {
	var (
		borough string
		year    int
	)
	cmd := &cobra.Command{
		Use:   "where",
		Short: "Print the filter predicate sent for one borough and year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := query.ParseBorough(borough)
			if err != nil {
				return err
			}
			if err := query.ValidateYear(year); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), query.Spec{Borough: b, Year: year}.Where())
			return nil
		},
	}
	cmd.Flags().StringVar(&borough, "borough", "", "borough name")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year")
	_ = cmd.MarkFlagRequired("borough")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}
