package report

import (
	"context"
	"strings"
	"testing"

	"github.com/bookstack-tools/booksync/internal/bookstack"
)

type fakeUsers struct {
	users []bookstack.User
}

func (f *fakeUsers) ListUsers(_ context.Context) ([]bookstack.User, error) {
	return f.users, nil
}

func testClient() *fakeUsers {
	return &fakeUsers{users: []bookstack.User{
		{ID: 1, Name: "Zoe", Email: "zoe@example.com", Roles: []bookstack.Role{
			{ID: 10, DisplayName: "Admin"},
			{ID: 11, DisplayName: "Editor"},
		}},
		{ID: 2, Name: "amir", Email: "amir@example.com", Roles: []bookstack.Role{
			{ID: 10, DisplayName: "Admin"},
		}},
		{ID: 3, Name: "Guest", Email: "guest@example.com"},
	}}
}

func TestCollectUserRowsFlattensAndSorts(t *testing.T) {
	rows, err := CollectUserRows(context.Background(), testClient())
	if err != nil {
		t.Fatalf("CollectUserRows failed: %v", err)
	}

	want := []struct{ role, name string }{
		{"(No role)", "Guest"},
		{"Admin", "amir"},
		{"Admin", "Zoe"},
		{"Editor", "Zoe"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), rows)
	}
	for i, w := range want {
		if rows[i].Role != w.role || rows[i].Name != w.name {
			t.Fatalf("row %d = %+v, want %s/%s", i, rows[i], w.role, w.name)
		}
	}
}

func TestWriteUsersCSV(t *testing.T) {
	rows, err := CollectUserRows(context.Background(), testClient())
	if err != nil {
		t.Fatalf("CollectUserRows failed: %v", err)
	}

	var buf strings.Builder
	if err := WriteUsersCSV(&buf, rows); err != nil {
		t.Fatalf("WriteUsersCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Role,User Name,Email,User ID" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d lines", len(lines))
	}
	if lines[1] != "(No role),Guest,guest@example.com,3" {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestWriteUsersSummaryGroupsByRole(t *testing.T) {
	rows, err := CollectUserRows(context.Background(), testClient())
	if err != nil {
		t.Fatalf("CollectUserRows failed: %v", err)
	}

	var buf strings.Builder
	if err := WriteUsersSummary(&buf, rows); err != nil {
		t.Fatalf("WriteUsersSummary failed: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "Admin:") != 1 {
		t.Fatalf("each role must appear once as a heading:\n%s", out)
	}
	if !strings.Contains(out, "  - Zoe <zoe@example.com>") {
		t.Fatalf("expected member lines under headings:\n%s", out)
	}
}
