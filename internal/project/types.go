package project

import (
	"time"

	"github.com/ashwanth2007/TheVibeCoders/internal/history"
)

// Project is one stored app: its metadata plus the full version history.
type Project struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	InitialPrompt string       `json:"initialPrompt"`
	History       *history.Log `json:"codeHistory"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Summary is the listing shape: metadata without the (potentially large)
// history document.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	InitialPrompt string    `json:"initialPrompt"`
	Versions      int       `json:"versions"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
