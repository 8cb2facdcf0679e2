package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bookstack-tools/booksync/internal/report"
)

var flagCSVPath string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Export the instance's users and roles",
	Long: `Users lists every user of the BookStack instance grouped by role.
A user with several roles appears once per role; users without any role are
grouped under "(No role)".

With --csv the listing is additionally written as a CSV file with the
columns Role, User Name, Email and User ID.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := buildConnectionRuntime()
		if err != nil {
			return err
		}

		rows, err := report.CollectUserRows(ctx, rt.client)
		if err != nil {
			return err
		}
		if err := report.WriteUsersSummary(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
		if flagCSVPath == "" {
			return nil
		}

		f, err := os.Create(flagCSVPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.WriteUsersCSV(f, rows); err != nil {
			return err
		}
		rt.logger.Printf("wrote %d rows to %s", len(rows), flagCSVPath)
		return f.Close()
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.Flags().StringVar(&flagCSVPath, "csv", "", "write the listing to this CSV file")
}
