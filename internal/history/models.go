// internal/history/models.go
package history

import "time"

// Paper is one generated exam paper as persisted for the user's history.
type Paper struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Prompt       string    `json:"prompt"`
	Content      string    `json:"content"`
	ItemCount    int       `json:"itemCount"`
	CountMatches bool      `json:"countMatches"`
	CreatedAt    time.Time `json:"createdAt"`
}
