package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bookstack-tools/booksync/internal/treesync"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the book into the local content tree",
	Long: `Pull materializes the configured book as a directory tree: root pages
become markdown files, chapters become subdirectories. Names carry the
two-digit order prefix, so a later push reproduces the same ordering.

Pages authored in markdown keep their source; HTML-only pages are converted
to markdown, preserving BookStack callouts as "> [!TYPE]" blockquotes.
Files whose content already matches are left untouched, and local files
without a remote counterpart are never deleted.`,
	Args: cobra.NoArgs,
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

		puller, err := treesync.NewPuller(rt.client, treesync.PullerOptions{
			Book:      *book,
			OutputDir: rt.cfg.ResolveContentDir(),
			DryRun:    rt.cfg.DryRun,
			Logger:    rt.logger,
		})
		if err != nil {
			return err
		}

		rt.logger.Printf("pulling book %q (id=%d) into %s", book.Name, book.ID, rt.cfg.ResolveContentDir())
		return puller.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
