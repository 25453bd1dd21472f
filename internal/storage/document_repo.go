package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks floorplan-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Insert inserts a document. The document.ID must be set (UUID) before
	// calling this method.
	Insert(ctx context.Context, doc *Document) error
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Document, error)
	// ListAll returns all documents ordered by creation time, newest first.
	ListAll(ctx context.Context) ([]Document, error)
	// Delete deletes a document and, via cascade, its pages and passages.
	// Returns ErrNotFound if the document does not exist.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// DB exposes the underlying database handle for aggregate queries.
func (r *DocumentRepo) DB() *sql.DB {
	return r.db
}

// Insert inserts a document.
func (r *DocumentRepo) Insert(ctx context.Context, doc *Document) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, filename, title, page_count) VALUES (?, ?, ?, ?)",
		doc.ID, doc.Filename, doc.Title, doc.PageCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, filename, title, page_count, created_at FROM documents WHERE id = ?",
		id,
	).Scan(&doc.ID, &doc.Filename, &doc.Title, &doc.PageCount, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.CreatedAt, err = parseSQLiteTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}

	return &doc, nil
}

// ListAll returns all documents ordered by creation time, newest first.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, filename, title, page_count, created_at FROM documents ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var doc Document
		var createdAtStr string
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Title, &doc.PageCount, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		doc.CreatedAt, err = parseSQLiteTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// Delete deletes a document. Pages and passages go with it via cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// parseSQLiteTime parses a DATETIME column value. SQLite stores the default
// CURRENT_TIMESTAMP in "2006-01-02 15:04:05" form but may also return
// RFC3339 depending on how the value was written.
func parseSQLiteTime(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
