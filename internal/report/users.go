// Package report builds exports of BookStack instance data that the API only
// exposes piecemeal. Currently: a role/user listing as CSV.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bookstack-tools/booksync/internal/bookstack"
)

// UserClient is the listing surface the report needs.
type UserClient interface {
	ListUsers(ctx context.Context) ([]bookstack.User, error)
}

const noRole = "(No role)"

// UserRow is one (role, user) pairing. Users with several roles produce one
// row per role; users without any role appear once under "(No role)".
type UserRow struct {
	Role   string
	Name   string
	Email  string
	UserID int
}

// CollectUserRows flattens the user listing into rows sorted by role then
// user name, both case-insensitive.
func CollectUserRows(ctx context.Context, client UserClient) ([]UserRow, error) {
	users, err := client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var rows []UserRow
	for _, user := range users {
		if len(user.Roles) == 0 {
			rows = append(rows, UserRow{Role: noRole, Name: user.Name, Email: user.Email, UserID: user.ID})
			continue
		}
		for _, role := range user.Roles {
			name := role.DisplayName
			if strings.TrimSpace(name) == "" {
				name = noRole
			}
			rows = append(rows, UserRow{Role: name, Name: user.Name, Email: user.Email, UserID: user.ID})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ri, rj := strings.ToLower(rows[i].Role), strings.ToLower(rows[j].Role)
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	return rows, nil
}

// WriteUsersCSV writes the rows with a header line.
func WriteUsersCSV(w io.Writer, rows []UserRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Role", "User Name", "Email", "User ID"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Role, row.Name, row.Email, strconv.Itoa(row.UserID)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUsersSummary prints a grouped role/member overview for the console.
func WriteUsersSummary(w io.Writer, rows []UserRow) error {
	lastRole := ""
	for _, row := range rows {
		if row.Role != lastRole {
			if lastRole != "" {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%s:\n", row.Role); err != nil {
				return err
			}
			lastRole = row.Role
		}
		if _, err := fmt.Fprintf(w, "  - %s <%s>\n", row.Name, row.Email); err != nil {
			return err
		}
	}
	return nil
}
