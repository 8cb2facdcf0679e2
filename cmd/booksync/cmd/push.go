package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bookstack-tools/booksync/internal/treesync"
)

var (
	flagWatch    bool
	flagDebounce time.Duration
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local content tree into the book",
	Long: `Push walks the content directory and upserts its pages and chapters
into the configured book. Nothing is ever deleted remotely.

Sibling order follows the local sort: pages and chapters get sequential
priorities from their position in the directory listing. Pages whose content
already matches the remote copy are skipped; a pure reorder updates only the
priority.

With --watch the push repeats whenever a file under the content directory
changes.`,
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

		pusher, err := treesync.NewPusher(rt.client, treesync.PusherOptions{
			Book:        *book,
			ContentRoot: rt.cfg.ResolveContentDir(),
			DryRun:      rt.cfg.DryRun,
			Logger:      rt.logger,
		})
		if err != nil {
			return err
		}

		rt.logger.Printf("pushing %s into book %q (id=%d)", rt.cfg.ResolveContentDir(), book.Name, book.ID)
		if err := pusher.Run(ctx); err != nil {
			return err
		}
		if !flagWatch {
			return nil
		}

		rt.logger.Printf("watching %s for changes", rt.cfg.ResolveContentDir())
		watcher := treesync.NewWatcher(pusher, treesync.WatcherOptions{
			Debounce: flagDebounce,
			Logger:   rt.logger,
		})
		return watcher.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().BoolVar(&flagWatch, "watch", false, "keep running and re-push on file changes")
	pushCmd.Flags().DurationVar(&flagDebounce, "debounce", 2*time.Second, "quiet period before a watched change triggers a push")
}
