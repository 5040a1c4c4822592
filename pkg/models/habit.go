// Package models contains domain models for webtools.
package models

// Habit is a user-defined task with a completion flag, kept in the
// client's session cookie.
type Habit struct {
	Done bool   `json:"done"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}
