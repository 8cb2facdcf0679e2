package treesync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookstack-tools/booksync/internal/bookstack"
	"github.com/bookstack-tools/booksync/internal/markdown"
	"github.com/bookstack-tools/booksync/internal/naming"
)

type PullerOptions struct {
	Book      bookstack.Book
	OutputDir string
	DryRun    bool
	Logger    Logger
}

// Puller materializes the remote book into a local tree of codec-named files
// and directories. Existing files are only rewritten when their content
// differs; local files without a remote counterpart are left alone.
type Puller struct {
	client Client
	book   bookstack.Book
	out    string
	dryRun bool
	logger Logger
}

func NewPuller(client Client, opts PullerOptions) (*Puller, error) {
	if client == nil {
		return nil, errors.New("treesync: client is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errors.New("treesync: output directory is required")
	}
	return &Puller{
		client: client,
		book:   opts.Book,
		out:    opts.OutputDir,
		dryRun: opts.DryRun,
		logger: opts.Logger,
	}, nil
}

// Run downloads the whole book: root pages as files in the output directory,
// chapters as subdirectories holding their pages.
func (p *Puller) Run(ctx context.Context) error {
	if !p.dryRun {
		if err := os.MkdirAll(p.out, 0o755); err != nil {
			return err
		}
	}

	pages, err := p.client.ListBookPages(ctx, p.book.ID)
	if err != nil {
		return err
	}
	for _, page := range pages {
		if page.InChapter() {
			continue
		}
		if err := p.pullPage(ctx, p.out, page); err != nil {
			return err
		}
	}

	chapters, err := p.client.ListChapters(ctx, p.book.ID)
	if err != nil {
		return err
	}
	for _, ch := range chapters {
		dir := filepath.Join(p.out, naming.Encode(ch.Priority, ch.Name))
		if !p.dryRun {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		chapterPages, err := p.client.ListChapterPages(ctx, ch.ID)
		if err != nil {
			return err
		}
		for _, page := range chapterPages {
			if err := p.pullPage(ctx, dir, page); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Puller) pullPage(ctx context.Context, dir string, page bookstack.Page) error {
	full, err := p.client.GetPage(ctx, page.ID)
	if err != nil {
		return err
	}
	name := full.Name
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Page-%d", full.ID)
	}
	path := filepath.Join(dir, naming.Encode(full.Priority, name)+".md")
	return p.writeIfChanged(path, contentFor(full))
}

// contentFor picks the local representation of a page: its markdown source
// when the page was authored in markdown, otherwise the rendered HTML run
// through the converter. Pages with neither become empty files.
func contentFor(page *bookstack.Page) string {
	if page.Markdown != nil && strings.TrimSpace(*page.Markdown) != "" {
		return *page.Markdown
	}
	if page.HTML != nil && strings.TrimSpace(*page.HTML) != "" {
		return markdown.Convert(*page.HTML)
	}
	return ""
}

func (p *Puller) writeIfChanged(path, content string) error {
	if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
		p.logf("unchanged %s", path)
		return nil
	}
	p.logf("writing %s", path)
	if p.dryRun {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (p *Puller) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
