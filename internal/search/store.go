package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ashwanth2007/TheVibeCoders/internal/project"
)

const collectionName = "projects"

// Result is one search hit.
type Result struct {
	ProjectID  string  `json:"projectId"`
	Name       string  `json:"name"`
	Similarity float32 `json:"similarity"`
}

// Store is an in-memory vector index over projects, one document per
// project. Re-indexing a project replaces its document.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewStore creates an empty index backed by the given embedder.
func NewStore(embedder Embedder) (*Store, error) {
	db := chromem.NewDB()
	ef := toChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Store{db: db, collection: col, embedFunc: ef}, nil
}

// documentText flattens the searchable surface of a project: its name, the
// prompt that created it and the shape of its current file set.
func documentText(p *project.Project) string {
	parts := []string{p.Name}
	if p.InitialPrompt != "" {
		parts = append(parts, p.InitialPrompt)
	}
	if entry, ok := p.History.Current(); ok {
		for _, f := range entry.Files {
			parts = append(parts, f.Path)
		}
	}
	return strings.Join(parts, "\n")
}

// IndexProject adds or replaces the document for a project. Implements
// project.Indexer.
func (s *Store) IndexProject(ctx context.Context, p *project.Project) error {
	doc := chromem.Document{
		ID:      p.ID,
		Content: documentText(p),
		Metadata: map[string]string{
			"name": p.Name,
		},
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("indexing project %s: %w", p.ID, err)
	}
	return nil
}

// RemoveProject drops a project's document. Implements project.Indexer.
func (s *Store) RemoveProject(ctx context.Context, id string) error {
	if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("unindexing project %s: %w", id, err)
	}
	return nil
}

// Search returns the closest projects to the query, best match first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	hits, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			ProjectID:  h.ID,
			Name:       h.Metadata["name"],
			Similarity: h.Similarity,
		}
	}
	return results, nil
}

// Persist snapshots the index into dir.
func (s *Store) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(filepath.Join(dir, "search.gob.gz"), true, "")
}

// Load restores a snapshot written by Persist. A missing snapshot is not an
// error for the caller to care about; it just starts empty.
func (s *Store) Load(ctx context.Context, dir string) error {
	if err := s.db.ImportFromFile(filepath.Join(dir, "search.gob.gz"), ""); err != nil {
		return fmt.Errorf("importing index: %w", err)
	}
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

// Count returns the number of indexed projects.
func (s *Store) Count() int { return s.collection.Count() }
