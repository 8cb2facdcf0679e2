package treesync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/bookstack-tools/booksync/internal/bookstack"
)

// fakeClient is an in-memory stand-in for the BookStack API. It records every
// mutation so tests can assert on exactly what the synchronizer sent. Guarded
// by a mutex because the watcher tests drive it from another goroutine.
type fakeClient struct {
	mu     sync.Mutex
	book   bookstack.Book
	nextID int

	chapters map[int]*bookstack.Chapter
	pages    map[int]*bookstack.Page

	chapterCreates []bookstack.ChapterCreate
	chapterUpdates map[int][]bookstack.ChapterUpdate
	pageCreates    []bookstack.PageCreate
	pageUpdates    map[int][]bookstack.PageUpdate
}

func newFakeClient(book bookstack.Book) *fakeClient {
	return &fakeClient{
		book:           book,
		nextID:         100,
		chapters:       map[int]*bookstack.Chapter{},
		pages:          map[int]*bookstack.Page{},
		chapterUpdates: map[int][]bookstack.ChapterUpdate{},
		pageUpdates:    map[int][]bookstack.PageUpdate{},
	}
}

func (f *fakeClient) seedChapter(name string, priority *int) *bookstack.Chapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ch := &bookstack.Chapter{ID: f.nextID, BookID: f.book.ID, Name: name, Priority: priority}
	f.chapters[ch.ID] = ch
	return ch
}

func (f *fakeClient) seedPage(chapterID int, name string, priority *int, md, html *string) *bookstack.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	pg := &bookstack.Page{
		ID:        f.nextID,
		BookID:    f.book.ID,
		ChapterID: chapterID,
		Name:      name,
		Priority:  priority,
		Markdown:  md,
		HTML:      html,
	}
	f.pages[pg.ID] = pg
	return pg
}

func (f *fakeClient) FindChapter(_ context.Context, bookID int, name string) (*bookstack.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.chapters {
		if ch.BookID == bookID && ch.Name == name {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeClient) CreateChapter(_ context.Context, req bookstack.ChapterCreate) (*bookstack.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chapterCreates = append(f.chapterCreates, req)
	f.nextID++
	ch := &bookstack.Chapter{ID: f.nextID, BookID: req.BookID, Name: req.Name, Priority: req.Priority}
	f.chapters[ch.ID] = ch
	cp := *ch
	return &cp, nil
}

func (f *fakeClient) UpdateChapter(_ context.Context, id int, req bookstack.ChapterUpdate) (*bookstack.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.chapters[id]
	if !ok {
		return nil, fmt.Errorf("fake: no chapter %d", id)
	}
	f.chapterUpdates[id] = append(f.chapterUpdates[id], req)
	if req.Name != nil {
		ch.Name = *req.Name
	}
	if req.Priority != nil {
		ch.Priority = req.Priority
	}
	cp := *ch
	return &cp, nil
}

func (f *fakeClient) ListChapters(_ context.Context, bookID int) ([]bookstack.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bookstack.Chapter
	for _, ch := range f.chapters {
		if ch.BookID == bookID {
			out = append(out, *ch)
		}
	}
	sortSiblingChapters(out)
	return out, nil
}

func (f *fakeClient) FindPage(_ context.Context, bookID, chapterID int, name string) (*bookstack.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pg := range f.pages {
		if pg.BookID == bookID && pg.ChapterID == chapterID && pg.Name == name {
			cp := *pg
			cp.Markdown, cp.HTML = nil, nil // listings carry no content
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeClient) GetPage(_ context.Context, id int) (*bookstack.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg, ok := f.pages[id]
	if !ok {
		return nil, fmt.Errorf("fake: no page %d", id)
	}
	cp := *pg
	return &cp, nil
}

func (f *fakeClient) CreatePage(_ context.Context, req bookstack.PageCreate) (*bookstack.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCreates = append(f.pageCreates, req)
	f.nextID++
	md := req.Markdown
	pg := &bookstack.Page{
		ID:        f.nextID,
		BookID:    f.book.ID,
		ChapterID: req.ChapterID,
		Name:      req.Name,
		Priority:  req.Priority,
		Markdown:  &md,
	}
	f.pages[pg.ID] = pg
	cp := *pg
	return &cp, nil
}

func (f *fakeClient) UpdatePage(_ context.Context, id int, req bookstack.PageUpdate) (*bookstack.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pg, ok := f.pages[id]
	if !ok {
		return nil, fmt.Errorf("fake: no page %d", id)
	}
	f.pageUpdates[id] = append(f.pageUpdates[id], req)
	if req.Markdown != nil {
		pg.Markdown = req.Markdown
	}
	if req.Priority != nil {
		pg.Priority = req.Priority
	}
	if req.Tags != nil {
		pg.Tags = req.Tags
	}
	cp := *pg
	return &cp, nil
}

func (f *fakeClient) ListBookPages(_ context.Context, bookID int) ([]bookstack.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bookstack.Page
	for _, pg := range f.pages {
		if pg.BookID == bookID {
			out = append(out, *pg)
		}
	}
	sortSiblingPages(out)
	return out, nil
}

func (f *fakeClient) ListChapterPages(_ context.Context, chapterID int) ([]bookstack.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bookstack.Page
	for _, pg := range f.pages {
		if pg.ChapterID == chapterID {
			out = append(out, *pg)
		}
	}
	sortSiblingPages(out)
	return out, nil
}

func (f *fakeClient) pageCreateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pageCreates)
}

func sortSiblingChapters(chapters []bookstack.Chapter) {
	sort.Slice(chapters, func(i, j int) bool {
		return siblingKeyLess(chapters[i].Priority, chapters[i].Name, chapters[j].Priority, chapters[j].Name)
	})
}

func sortSiblingPages(pages []bookstack.Page) {
	sort.Slice(pages, func(i, j int) bool {
		return siblingKeyLess(pages[i].Priority, pages[i].Name, pages[j].Priority, pages[j].Name)
	})
}

func siblingKeyLess(ap *int, an string, bp *int, bn string) bool {
	av, bv := 0, 0
	if ap != nil {
		av = *ap
	}
	if bp != nil {
		bv = *bp
	}
	if av != bv {
		return av < bv
	}
	return strings.ToLower(an) < strings.ToLower(bn)
}

// recordLogger captures decision lines for assertions.
type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}

func writePage(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write page failed: %v", err)
	}
}
