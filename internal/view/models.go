package view

import (
	"fmt"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// Page carries what the layout needs on every page.
type Page struct {
	Authenticated bool
	UserName      string
}

// PageFor builds the layout state from the request's identity, if any.
func PageFor(identity *types.Identity) Page {
	if identity == nil {
		return Page{}
	}
	return Page{Authenticated: true, UserName: identity.UserName}
}

type IndexPage struct {
	Page
}

// RegisterPage re-populates name and email after a failed submission.
// Password fields are always rendered empty.
type RegisterPage struct {
	Page
	Error string
	Name  string
	Email string
}

type LoginPage struct {
	Page
	Error string
	Email string
}

type DashboardPage struct {
	Page
}

type UsersPage struct {
	Page
	Users []UserRow
}

type UserRow struct {
	ID        int64
	Name      string
	Email     string
	Status    string
	CreatedAt string
	UpdatedAt string
	DeleteURL string
}

// NewUserRows maps store records to table rows, keeping their order.
func NewUserRows(users []types.User) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		status := "Inactive"
		if u.IsActive() {
			status = "Active"
		}
		rows = append(rows, UserRow{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Status:    status,
			CreatedAt: u.CreatedAt.Format(timestampLayout),
			UpdatedAt: u.UpdatedAt.Format(timestampLayout),
			DeleteURL: fmt.Sprintf("/users?action=softdelete&id=%d", u.ID),
		})
	}
	return rows
}
