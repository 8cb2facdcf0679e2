package treesync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bookstack-tools/booksync/internal/bookstack"
	"github.com/bookstack-tools/booksync/internal/markdown"
)

// Logger receives one line per sync decision. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// Client is the remote surface the synchronizer needs. *bookstack.Client
// satisfies it; tests substitute fakes.
type Client interface {
	FindChapter(ctx context.Context, bookID int, name string) (*bookstack.Chapter, error)
	CreateChapter(ctx context.Context, req bookstack.ChapterCreate) (*bookstack.Chapter, error)
	UpdateChapter(ctx context.Context, id int, req bookstack.ChapterUpdate) (*bookstack.Chapter, error)
	ListChapters(ctx context.Context, bookID int) ([]bookstack.Chapter, error)
	FindPage(ctx context.Context, bookID, chapterID int, name string) (*bookstack.Page, error)
	GetPage(ctx context.Context, id int) (*bookstack.Page, error)
	CreatePage(ctx context.Context, req bookstack.PageCreate) (*bookstack.Page, error)
	UpdatePage(ctx context.Context, id int, req bookstack.PageUpdate) (*bookstack.Page, error)
	ListBookPages(ctx context.Context, bookID int) ([]bookstack.Page, error)
	ListChapterPages(ctx context.Context, chapterID int) ([]bookstack.Page, error)
}

type PusherOptions struct {
	Book        bookstack.Book
	ContentRoot string
	DryRun      bool
	Logger      Logger
}

// Pusher mirrors the local content tree into the remote book. Pages and
// chapters are upserted by name; nothing is ever deleted remotely.
type Pusher struct {
	client Client
	book   bookstack.Book
	root   string
	dryRun bool
	logger Logger
}

func NewPusher(client Client, opts PusherOptions) (*Pusher, error) {
	if client == nil {
		return nil, errors.New("treesync: client is required")
	}
	info, err := os.Stat(opts.ContentRoot)
	if err != nil {
		return nil, fmt.Errorf("content directory %q: %w", opts.ContentRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path %q is not a directory", opts.ContentRoot)
	}
	return &Pusher{
		client: client,
		book:   opts.Book,
		root:   opts.ContentRoot,
		dryRun: opts.DryRun,
		logger: opts.Logger,
	}, nil
}

// pageScope names where a page lives. A zero ChapterID with Name set marks a
// chapter that exists only in the dry-run plan, so page lookups against it
// would hit the wrong scope and are skipped.
type pageScope struct {
	ChapterID int
	Name      string
	Planned   bool
}

func (s pageScope) label() string {
	if s.Name == "" {
		return "book root"
	}
	return s.Name
}

// Run pushes the whole tree: root pages first, then each chapter and its
// pages. Sibling priorities are assigned sequentially from the local sort
// order, so remote ordering always matches the directory listing.
func (p *Pusher) Run(ctx context.Context) error {
	rootPages, chapters, err := collectContent(p.root)
	if err != nil {
		return err
	}

	for i, page := range rootPages {
		if err := p.pushPage(ctx, pageScope{}, page, i+1); err != nil {
			return err
		}
	}
	for i, ch := range chapters {
		scope, err := p.ensureChapter(ctx, ch, i+1)
		if err != nil {
			return err
		}
		for j, page := range ch.Pages {
			if err := p.pushPage(ctx, scope, page, j+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pusher) ensureChapter(ctx context.Context, ch chapterDir, priority int) (pageScope, error) {
	existing, err := p.client.FindChapter(ctx, p.book.ID, ch.Title)
	if err != nil {
		return pageScope{}, err
	}
	if existing == nil {
		p.logf("creating chapter %q with priority %d", ch.Title, priority)
		if p.dryRun {
			return pageScope{Name: ch.Title, Planned: true}, nil
		}
		created, err := p.client.CreateChapter(ctx, bookstack.ChapterCreate{
			BookID:   p.book.ID,
			Name:     ch.Title,
			Priority: &priority,
		})
		if err != nil {
			return pageScope{}, err
		}
		return pageScope{ChapterID: created.ID, Name: created.Name}, nil
	}

	if existing.Priority == nil || *existing.Priority != priority {
		p.logf("updating chapter %q priority to %d", ch.Title, priority)
		if !p.dryRun {
			if _, err := p.client.UpdateChapter(ctx, existing.ID, bookstack.ChapterUpdate{Priority: &priority}); err != nil {
				return pageScope{}, err
			}
		}
	} else {
		p.logf("chapter %q unchanged", ch.Title)
	}
	return pageScope{ChapterID: existing.ID, Name: existing.Name}, nil
}

func (p *Pusher) pushPage(ctx context.Context, scope pageScope, page pageFile, priority int) error {
	raw, err := os.ReadFile(page.Path)
	if err != nil {
		return err
	}
	content := markdown.InlineImages(string(raw), filepath.Dir(page.Path), p.root)

	if scope.Planned {
		// The parent chapter does not exist yet (dry run), so every page
		// under it is necessarily a create.
		p.logf("creating page %q in %s with priority %d", page.Title, scope.label(), priority)
		return nil
	}

	existing, err := p.client.FindPage(ctx, p.book.ID, scope.ChapterID, page.Title)
	if err != nil {
		return err
	}
	if existing == nil {
		p.logf("creating page %q in %s with priority %d", page.Title, scope.label(), priority)
		if p.dryRun {
			return nil
		}
		req := bookstack.PageCreate{
			Name:     page.Title,
			Markdown: content,
			Priority: &priority,
		}
		if scope.ChapterID != 0 {
			req.ChapterID = scope.ChapterID
		} else {
			req.BookID = p.book.ID
		}
		_, err := p.client.CreatePage(ctx, req)
		return err
	}

	full, err := p.client.GetPage(ctx, existing.ID)
	if err != nil {
		return err
	}
	if markdown.Equivalent(content, full.Markdown, full.HTML) {
		if existing.Priority != nil && *existing.Priority == priority {
			p.logf("page %q in %s unchanged", page.Title, scope.label())
			return nil
		}
		p.logf("reordering page %q in %s to priority %d", page.Title, scope.label(), priority)
		if p.dryRun {
			return nil
		}
		_, err := p.client.UpdatePage(ctx, existing.ID, bookstack.PageUpdate{Priority: &priority})
		return err
	}

	p.logf("updating page %q in %s", page.Title, scope.label())
	if p.dryRun {
		return nil
	}
	_, err = p.client.UpdatePage(ctx, existing.ID, bookstack.PageUpdate{
		Markdown: &content,
		Priority: &priority,
	})
	return err
}

func (p *Pusher) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
