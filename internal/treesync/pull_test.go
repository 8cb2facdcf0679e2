package treesync

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func newTestPuller(t *testing.T, client Client, out string, dryRun bool, logger Logger) *Puller {
	t.Helper()
	p, err := NewPuller(client, PullerOptions{
		Book:      testBook,
		OutputDir: out,
		DryRun:    dryRun,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("NewPuller failed: %v", err)
	}
	return p
}

func readOut(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s failed: %v", path, err)
	}
	return string(data)
}

func TestPullMaterializesBookTree(t *testing.T) {
	fake := newFakeClient(testBook)
	fake.seedPage(0, "Welcome", intPtr(1), strPtr("# Welcome\n"), nil)
	ch := fake.seedChapter("Guides", intPtr(2))
	fake.seedPage(ch.ID, "Install", intPtr(1), nil, strPtr("<p>Hi</p>"))

	out := filepath.Join(t.TempDir(), "Handbook")
	if err := newTestPuller(t, fake, out, false, nil).Run(context.Background()); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	if got := readOut(t, filepath.Join(out, "01 Welcome.md")); got != "# Welcome\n" {
		t.Fatalf("markdown pages must keep their source, got %q", got)
	}
	if got := readOut(t, filepath.Join(out, "02 Guides", "01 Install.md")); got != "Hi\n" {
		t.Fatalf("html-only pages must be converted, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(out, "01 Install.md")); !os.IsNotExist(err) {
		t.Fatalf("chapter pages must not appear at the book root")
	}
}

func TestPullLeavesUnchangedFilesAlone(t *testing.T) {
	fake := newFakeClient(testBook)
	fake.seedPage(0, "Welcome", intPtr(1), strPtr("stable\n"), nil)

	out := t.TempDir()
	if err := newTestPuller(t, fake, out, false, nil).Run(context.Background()); err != nil {
		t.Fatalf("first pull failed: %v", err)
	}

	log := &recordLogger{}
	if err := newTestPuller(t, fake, out, false, log).Run(context.Background()); err != nil {
		t.Fatalf("second pull failed: %v", err)
	}
	if log.contains("writing") {
		t.Fatalf("second pull must not rewrite identical files, got %v", log.lines)
	}
	if !log.contains("unchanged") {
		t.Fatalf("expected an unchanged decision line, got %v", log.lines)
	}
}

func TestPullNamesPagesWithoutTitles(t *testing.T) {
	fake := newFakeClient(testBook)
	pg := fake.seedPage(0, "", nil, strPtr("body\n"), nil)

	out := t.TempDir()
	if err := newTestPuller(t, fake, out, false, nil).Run(context.Background()); err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	want := filepath.Join(out, "Page-"+strconv.Itoa(pg.ID)+".md")
	if got := readOut(t, want); got != "body\n" {
		t.Fatalf("unexpected content for fallback-named page: %q", got)
	}
}

func TestPullWritesEmptyFileForContentlessPage(t *testing.T) {
	fake := newFakeClient(testBook)
	fake.seedPage(0, "Blank", intPtr(1), nil, nil)

	out := t.TempDir()
	if err := newTestPuller(t, fake, out, false, nil).Run(context.Background()); err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if got := readOut(t, filepath.Join(out, "01 Blank.md")); got != "" {
		t.Fatalf("contentless pages must become empty files, got %q", got)
	}
}

func TestPullDryRunWritesNothing(t *testing.T) {
	fake := newFakeClient(testBook)
	fake.seedPage(0, "Welcome", intPtr(1), strPtr("hello\n"), nil)
	ch := fake.seedChapter("Guides", intPtr(2))
	fake.seedPage(ch.ID, "Install", intPtr(1), strPtr("install\n"), nil)

	out := filepath.Join(t.TempDir(), "Handbook")
	log := &recordLogger{}
	if err := newTestPuller(t, fake, out, true, log).Run(context.Background()); err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create the output directory")
	}
	if !log.contains("writing") {
		t.Fatalf("dry run must still log its plan, got %v", log.lines)
	}
}
