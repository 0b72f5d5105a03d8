package model

// Task belongs to exactly one user. UserID is set at creation and never changes.
type Task struct {
	ID       int64  `json:"id"       db:"id"`
	Title    string `json:"title"    db:"title"`
	Content  string `json:"content"  db:"content"`
	Priority int    `json:"priority" db:"priority"`
	UserID   int64  `json:"user_id"  db:"user_id"`
	Slug     string `json:"slug"     db:"slug"`
}
