// Package treesync maps a BookStack book onto a local directory tree and
// keeps the two in sync: push walks the tree and upserts remotely, pull
// materializes the remote hierarchy into files.
//
// The tree is exactly two levels deep: markdown files at the root are book
// pages, first-level directories are chapters holding their pages. Anything
// deeper is ignored.
package treesync

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bookstack-tools/booksync/internal/naming"
)

type pageFile struct {
	Order int
	Title string
	Path  string
}

type chapterDir struct {
	Order int
	Title string
	Path  string
	Pages []pageFile
}

// collectContent gathers root pages and chapters from the content root,
// each list in sibling order (numeric prefix ascending, unordered last,
// ties by case-insensitive title). Chapters without markdown files are
// skipped entirely.
func collectContent(root string) ([]pageFile, []chapterDir, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, err
	}

	var rootPages []pageFile
	var chapters []chapterDir
	for _, entry := range entries {
		if entry.IsDir() {
			dir := filepath.Join(root, entry.Name())
			pages, err := collectPages(dir)
			if err != nil {
				return nil, nil, err
			}
			if len(pages) == 0 {
				continue
			}
			decoded := naming.Decode(entry.Name())
			chapters = append(chapters, chapterDir{
				Order: decoded.Order,
				Title: decoded.Title,
				Path:  dir,
				Pages: pages,
			})
			continue
		}
		if !isMarkdown(entry.Name()) {
			continue
		}
		rootPages = append(rootPages, decodePageFile(root, entry.Name()))
	}

	sort.Slice(rootPages, func(i, j int) bool {
		return naming.Less(naming.Name{Order: rootPages[i].Order, Title: rootPages[i].Title},
			naming.Name{Order: rootPages[j].Order, Title: rootPages[j].Title})
	})
	sort.Slice(chapters, func(i, j int) bool {
		return naming.Less(naming.Name{Order: chapters[i].Order, Title: chapters[i].Title},
			naming.Name{Order: chapters[j].Order, Title: chapters[j].Title})
	})
	return rootPages, chapters, nil
}

// collectPages lists the markdown files directly inside a chapter
// directory. Subdirectories are not descended into.
func collectPages(dir string) ([]pageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pages []pageFile
	for _, entry := range entries {
		if entry.IsDir() || !isMarkdown(entry.Name()) {
			continue
		}
		pages = append(pages, decodePageFile(dir, entry.Name()))
	}
	sort.Slice(pages, func(i, j int) bool {
		return naming.Less(naming.Name{Order: pages[i].Order, Title: pages[i].Title},
			naming.Name{Order: pages[j].Order, Title: pages[j].Title})
	})
	return pages, nil
}

func decodePageFile(dir, name string) pageFile {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	decoded := naming.Decode(stem)
	return pageFile{
		Order: decoded.Order,
		Title: decoded.Title,
		Path:  filepath.Join(dir, name),
	}
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}
