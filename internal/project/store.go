// Package project persists apps and their version history and exposes the
// REST surface for project CRUD and manual file edits.
package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/history"
)

// ErrNotFound is returned when no project exists with the requested ID.
var ErrNotFound = errors.New("project not found")

// Store manages project persistence. It also implements history.Persister
// so a live studio session's history store mirrors straight into SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a project store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new project with an empty history.
func (s *Store) Create(ctx context.Context, name, initialPrompt string) (*Project, error) {
	p := &Project{
		ID:            uuid.New().String(),
		Name:          name,
		InitialPrompt: initialPrompt,
		History:       history.NewLog(),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	historyJSON, err := json.Marshal(p.History)
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, initial_prompt, code_history, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.InitialPrompt, string(historyJSON), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return p, nil
}

// Get retrieves a project with its full history.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	var p Project
	var historyJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, initial_prompt, code_history, created_at, updated_at
		 FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.InitialPrompt, &historyJSON, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	p.History = history.NewLog()
	if err := json.Unmarshal([]byte(historyJSON), p.History); err != nil {
		return nil, fmt.Errorf("decoding project history: %w", err)
	}
	return &p, nil
}

// List returns project summaries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, initial_prompt, code_history, created_at, updated_at
		 FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		var historyJSON string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.InitialPrompt, &historyJSON, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		var log history.Log
		if err := json.Unmarshal([]byte(historyJSON), &log); err == nil {
			sum.Versions = log.Len()
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Rename updates a project's name.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("renaming project: %w", err)
	}
	return requireRow(res)
}

// Delete removes a project.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireRow(res)
}

// SaveHistory replaces a project's history document. Implements
// history.Persister.
func (s *Store) SaveHistory(ctx context.Context, projectID string, log *history.Log) error {
	historyJSON, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshalling history: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET code_history = ?, updated_at = ? WHERE id = ?`,
		string(historyJSON), time.Now().UTC(), projectID)
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
