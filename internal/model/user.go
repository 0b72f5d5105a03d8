// Package model defines the entities persisted by the service.
package model

// User owns zero or more tasks.
//
// Slug is derived from Username once, at creation. Updates never touch
// Username or Slug, so the two can drift apart only if the slug function changes.
type User struct {
	ID        int64  `json:"id"        db:"id"`
	Username  string `json:"username"  db:"username"`
	Firstname string `json:"firstname" db:"firstname"`
	Lastname  string `json:"lastname"  db:"lastname"`
	Age       int    `json:"age"       db:"age"`
	Slug      string `json:"slug"      db:"slug"`
}
