package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/importdata/internal/application"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := setup(root)
			if err != nil {
				return err
			}
			defer closeLog.Close()

			app, err := application.New(cmd.Context(), cfg)
			if err != nil {
				return classify(err)
			}
			defer app.Close()

			version, err := app.Migrate(cmd.Context())
			if err != nil {
				return classify(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return err
		},
	}
}
