// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Accounts are created either through email/password registration or on the
// first GitHub login. GitHubID is nil for password accounts; PasswordHash is
// empty for GitHub-only accounts.
//
// WHY GitHubID *int64?
// The column is UNIQUE but NULLable: SQLite allows any number of NULLs in a
// UNIQUE column, so password users never collide with each other.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Username     string    `json:"username"   db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name"  db:"last_name"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	GitHubID     *int64    `json:"-"          db:"github_id"`
	IsAdmin      bool      `json:"-"          db:"is_admin"`
	CreatedAt    time.Time `json:"-"          db:"created_at"`
	UpdatedAt    time.Time `json:"-"          db:"updated_at"`
}

// UserView is a user as seen by another (possibly anonymous) user.
type UserView struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// View projects the user for a viewer. subscribed must already be resolved
// against the viewer's subscriptions.
func (u *User) View(subscribed bool) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// AuthorSummary is the payload of a subscription: the author, their recipe
// count and a (possibly truncated) list of their newest recipes.
type AuthorSummary struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int             `json:"recipes_count"`
}
