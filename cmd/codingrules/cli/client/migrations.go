package client

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/codingrules/pkg/db/migrations"
	"github.com/spf13/cobra"
)

func NewMigrationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrations",
		Short: "Manage rule store schema migrations",
	}

	cmd.AddCommand(NewMigrationsStatusCommand())
	cmd.AddCommand(NewMigrationsRollbackCommand())

	return cmd
}

func NewMigrationsStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List schema migrations",
		Long:  "List every schema migration and when it was applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer st.Close()

			statuses, err := migrations.NewMigrator(st.DB()).Status(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tDESCRIPTION\tAPPLIED")
			for _, s := range statuses {
				applied := "pending"
				if s.Applied {
					applied = humanize.Time(s.AppliedAt)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, s.Description, applied)
			}
			return tw.Flush()
		},
	}

	return cmd
}

func NewMigrationsRollbackCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert the latest schema migration",
		Long:  "Revert the latest schema migration. Its tables and their data are dropped (needs confirmation).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("rollback drops data, pass --confirm to proceed")
			}

			st, _, err := openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer st.Close()

			version, err := migrations.NewMigrator(st.DB()).Rollback(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Rolled back migration %d\n", version)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirm, "confirm", "c", false, "Confirms the rollback")

	return cmd
}
