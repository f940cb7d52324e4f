// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Developer represents a developer account and the profile we mirror from GitHub.
//
// WHY username AS THE PRIMARY KEY?
// GitHub is the only identity provider, and every document in the system
// (session, portfolio) hangs off the GitHub username. Using the username
// directly keeps the three collections joinable without an extra lookup.
// The trade-off: if a user renames their GitHub account, they get a fresh
// account here. That's acceptable for a portfolio site where the username
// IS the public URL slug.
//
// All profile fields are plain strings with "" as the zero value. GitHub
// returns null for anything the user hasn't filled in — an empty string is
// simpler to work with than a pile of nullable pointers and safe to display.
type Developer struct {
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	AvatarURL       string    `json:"avatar_url"`
	Bio             string    `json:"bio"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Blog            string    `json:"blog"`
	TwitterUsername string    `json:"twitter_username"`
	HTMLURL         string    `json:"html_url"`
	PublicRepos     int       `json:"public_repos"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
