package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_page_store.go -package=mocks floorplan-ai/internal/storage PageStore

import (
	"context"
	"database/sql"
	"fmt"
)

// PageStore defines the interface for page storage operations.
type PageStore interface {
	// Insert inserts a single page of document text.
	Insert(ctx context.Context, page *Page) error
	// GetText returns the text of one page. Returns ErrNotFound if the page
	// does not exist.
	GetText(ctx context.Context, docID string, pageNumber int) (string, error)
	// ListByDocument returns all pages of a document ordered by page number.
	ListByDocument(ctx context.Context, docID string) ([]Page, error)
}

// PageRepo provides methods for page operations.
// It implements the PageStore interface.
type PageRepo struct {
	db *sql.DB
}

// NewPageRepo creates a new PageRepo.
func NewPageRepo(db *sql.DB) *PageRepo {
	return &PageRepo{db: db}
}

// Insert inserts a single page of document text.
func (r *PageRepo) Insert(ctx context.Context, page *Page) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO pages (doc_id, page_number, text) VALUES (?, ?, ?)",
		page.DocID, page.PageNumber, page.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// GetText returns the text of one page. Returns ErrNotFound if the page does
// not exist.
func (r *PageRepo) GetText(ctx context.Context, docID string, pageNumber int) (string, error) {
	var text string
	err := r.db.QueryRowContext(ctx,
		"SELECT text FROM pages WHERE doc_id = ? AND page_number = ?",
		docID, pageNumber,
	).Scan(&text)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query page: %w", err)
	}
	return text, nil
}

// ListByDocument returns all pages of a document ordered by page number.
// Returns an empty slice if the document has no pages (not an error).
func (r *PageRepo) ListByDocument(ctx context.Context, docID string) ([]Page, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT doc_id, page_number, text FROM pages WHERE doc_id = ? ORDER BY page_number",
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var pages []Page
	for rows.Next() {
		var page Page
		if err := rows.Scan(&page.DocID, &page.PageNumber, &page.Text); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return pages, nil
}
