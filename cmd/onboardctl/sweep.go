package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"peoplehub/hr-portal/hr-portal-backend/internal/app"
)

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Refresh overdue flags on every active onboarding once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Onboarding.SweepOverdue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, updated %d, newly overdue %d, failed %d\n",
					result.Scanned, result.Updated, result.NewlyOverdue, result.Failed)
				return nil
			})
		},
	}
}
