package storage

import "time"

// Document represents an ingested floor plan document in the database.
type Document struct {
	ID        string // UUID
	Filename  string
	Title     string
	PageCount int
	CreatedAt time.Time
}

// Page holds the extracted text of one document page.
type Page struct {
	DocID      string
	PageNumber int // 1-based
	Text       string
}

// Passage represents a passage of page text, indexed for vector search.
type Passage struct {
	ID           string // UUID (same as Qdrant point ID)
	DocID        string
	PageNumber   int // 1-based page the passage came from
	PassageIndex int // Index within the document (starts at 0)
	Text         string
}
