// Package tags applies a single tag across every page of a book.
package tags

import (
	"context"
	"errors"

	"github.com/bookstack-tools/booksync/internal/bookstack"
)

type Logger interface {
	Printf(format string, args ...any)
}

// Client is the page surface the tagger needs; *bookstack.Client satisfies it.
type Client interface {
	EachPage(ctx context.Context, bookID int, fn func(bookstack.Page) error) error
	GetPage(ctx context.Context, id int) (*bookstack.Page, error)
	UpdatePage(ctx context.Context, id int, req bookstack.PageUpdate) (*bookstack.Page, error)
}

type Config struct {
	Name   string
	Value  string
	DryRun bool
	Logger Logger
}

type Summary struct {
	Checked int
	Updated int
}

// Apply upserts the tag on every page of the book: pages that already carry
// the name/value pair are skipped, pages with the name but another value get
// the value replaced, everything else gets the tag appended. The rest of the
// page's tags are preserved.
func Apply(ctx context.Context, client Client, bookID int, cfg Config) (Summary, error) {
	if cfg.Name == "" {
		return Summary{}, errors.New("tags: tag name is required")
	}

	var summary Summary
	err := client.EachPage(ctx, bookID, func(listing bookstack.Page) error {
		summary.Checked++

		// Listings omit tags, so fetch the full page before deciding.
		page, err := client.GetPage(ctx, listing.ID)
		if err != nil {
			return err
		}
		updated, changed := upsert(page.Tags, cfg.Name, cfg.Value)
		if !changed {
			logf(cfg.Logger, "page %q already tagged %s=%s", page.Name, cfg.Name, cfg.Value)
			return nil
		}

		summary.Updated++
		logf(cfg.Logger, "tagging page %q with %s=%s", page.Name, cfg.Name, cfg.Value)
		if cfg.DryRun {
			return nil
		}
		_, err = client.UpdatePage(ctx, page.ID, bookstack.PageUpdate{Tags: updated})
		return err
	})
	return summary, err
}

// upsert returns the page's tag list with name=value guaranteed present, and
// whether anything changed.
func upsert(tags []bookstack.Tag, name, value string) ([]bookstack.Tag, bool) {
	out := make([]bookstack.Tag, len(tags))
	copy(out, tags)
	for i := range out {
		if out[i].Name != name {
			continue
		}
		if out[i].Value == value {
			return out, false
		}
		out[i].Value = value
		return out, true
	}
	return append(out, bookstack.Tag{Name: name, Value: value}), true
}

func logf(logger Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
