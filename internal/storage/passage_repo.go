package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_passage_store.go -package=mocks floorplan-ai/internal/storage PassageStore

import (
	"context"
	"database/sql"
	"fmt"
)

// PassageStore defines the interface for passage storage operations.
type PassageStore interface {
	// Insert inserts a single passage into the database.
	// The passage.ID must be set (UUID) before calling this method.
	Insert(ctx context.Context, passage *Passage) error
	// GetByID gets a passage by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Passage, error)
	// ListIDsByDocument returns all passage IDs for a document, ordered by
	// passage_index.
	ListIDsByDocument(ctx context.Context, docID string) ([]string, error)
	// DeleteByDocument deletes all passages for a given document ID.
	DeleteByDocument(ctx context.Context, docID string) error
}

// PassageRepo provides methods for passage operations.
// It implements the PassageStore interface.
type PassageRepo struct {
	db *sql.DB
}

// NewPassageRepo creates a new PassageRepo.
func NewPassageRepo(db *sql.DB) *PassageRepo {
	return &PassageRepo{db: db}
}

// DB exposes the underlying database handle for aggregate queries.
func (r *PassageRepo) DB() *sql.DB {
	return r.db
}

// Insert inserts a single passage into the database.
// The passage.ID must be set (UUID) before calling this method.
func (r *PassageRepo) Insert(ctx context.Context, passage *Passage) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO passages (id, doc_id, page_number, passage_index, text) VALUES (?, ?, ?, ?, ?)",
		passage.ID, passage.DocID, passage.PageNumber, passage.PassageIndex, passage.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert passage: %w", err)
	}
	return nil
}

// GetByID gets a passage by its ID. Returns ErrNotFound if not found.
func (r *PassageRepo) GetByID(ctx context.Context, id string) (*Passage, error) {
	var passage Passage
	err := r.db.QueryRowContext(ctx,
		"SELECT id, doc_id, page_number, passage_index, text FROM passages WHERE id = ?",
		id,
	).Scan(&passage.ID, &passage.DocID, &passage.PageNumber, &passage.PassageIndex, &passage.Text)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query passage: %w", err)
	}

	return &passage, nil
}

// ListIDsByDocument returns all passage IDs for a document, ordered by
// passage_index. Returns an empty slice if no passages exist (not an error).
// Used to get Qdrant point IDs for deletion before re-indexing.
func (r *PassageRepo) ListIDsByDocument(ctx context.Context, docID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM passages WHERE doc_id = ? ORDER BY passage_index",
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query passage IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan passage ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// DeleteByDocument deletes all passages for a given document ID.
// Used when re-indexing a document to remove old passages before inserting
// new ones.
func (r *PassageRepo) DeleteByDocument(ctx context.Context, docID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM passages WHERE doc_id = ?", docID)
	if err != nil {
		return fmt.Errorf("failed to delete passages by document: %w", err)
	}
	return nil
}
