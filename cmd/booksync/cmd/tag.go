package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bookstack-tools/booksync/internal/tags"
)

var tagCmd = &cobra.Command{
	Use:   "tag <name> <value>",
	Short: "Apply a tag to every page of the book",
	Long: `Tag upserts a name/value tag across all pages of the configured book.
Pages already carrying the exact pair are skipped; pages with the name but a
different value get the value replaced. Other tags on a page are preserved.

Example:
  booksync tag reviewed 2026-08`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		book, err := rt.findBook(ctx)
		if err != nil {
			return err
		}

		summary, err := tags.Apply(ctx, rt.client, book.ID, tags.Config{
			Name:   args[0],
			Value:  args[1],
			DryRun: rt.cfg.DryRun,
			Logger: rt.logger,
		})
		if err != nil {
			return err
		}
		rt.logger.Printf("checked %d pages, updated %d", summary.Checked, summary.Updated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
}
