package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"floorplan-ai/internal/indexer"
	"floorplan-ai/internal/storage"
)

type stubDocStore struct {
	docs    []storage.Document
	getErr  error
	listErr error
}

func (s *stubDocStore) Insert(ctx context.Context, doc *storage.Document) error { return nil }

func (s *stubDocStore) GetByID(ctx context.Context, id string) (*storage.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for i := range s.docs {
		if s.docs[i].ID == id {
			return &s.docs[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *stubDocStore) ListAll(ctx context.Context) ([]storage.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.docs, nil
}

func (s *stubDocStore) Delete(ctx context.Context, id string) error { return nil }

type stubIngestor struct {
	indexErr   error
	removeErr  error
	indexed    []*storage.Document
	removedIDs []string
}

func (s *stubIngestor) IndexDocument(ctx context.Context, doc *storage.Document, pages []indexer.PageText) error {
	if s.indexErr != nil {
		return s.indexErr
	}
	doc.PageCount = len(pages)
	s.indexed = append(s.indexed, doc)
	return nil
}

func (s *stubIngestor) RemoveDocument(ctx context.Context, docID string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removedIDs = append(s.removedIDs, docID)
	return nil
}

func TestDocumentService_IngestDocument(t *testing.T) {
	ingestor := &stubIngestor{}
	svc := NewDocumentService(&stubDocStore{}, ingestor)

	doc, err := svc.IngestDocument(context.Background(), IngestRequest{
		Filename: "riverside-residence.pdf",
		Pages: []indexer.PageText{
			{PageNumber: 1, Text: "KITCHEN 15'x12'"},
			{PageNumber: 2, Text: "BEDROOM 12'x10'"},
		},
	})
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}

	if doc.ID == "" {
		t.Error("IngestDocument() did not assign an ID")
	}
	if doc.Title != "riverside residence" {
		t.Errorf("Title = %q, want derived from filename", doc.Title)
	}
	if doc.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", doc.PageCount)
	}
	if len(ingestor.indexed) != 1 {
		t.Errorf("indexed %d documents, want 1", len(ingestor.indexed))
	}
}

func TestDocumentService_IngestDocument_ExplicitTitle(t *testing.T) {
	svc := NewDocumentService(&stubDocStore{}, &stubIngestor{})

	doc, err := svc.IngestDocument(context.Background(), IngestRequest{
		Filename: "plan.pdf",
		Title:    "Riverside Residence",
		Pages:    []indexer.PageText{{PageNumber: 1, Text: "KITCHEN"}},
	})
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if doc.Title != "Riverside Residence" {
		t.Errorf("Title = %q, want explicit title kept", doc.Title)
	}
}

func TestDocumentService_IngestDocument_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       IngestRequest
		wantField string
	}{
		{
			name:      "missing filename",
			req:       IngestRequest{Pages: []indexer.PageText{{PageNumber: 1, Text: "x"}}},
			wantField: "filename",
		},
		{
			name:      "no pages",
			req:       IngestRequest{Filename: "plan.pdf"},
			wantField: "pages",
		},
		{
			name: "bad page number",
			req: IngestRequest{
				Filename: "plan.pdf",
				Pages:    []indexer.PageText{{PageNumber: 0, Text: "x"}},
			},
			wantField: "pages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingestor := &stubIngestor{}
			svc := NewDocumentService(&stubDocStore{}, ingestor)

			_, err := svc.IngestDocument(context.Background(), tt.req)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("IngestDocument() error = %v, want ValidationError", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", validationErr.Field, tt.wantField)
			}
			if len(ingestor.indexed) != 0 {
				t.Error("ingestor should not be called for invalid input")
			}
		})
	}
}

func TestDocumentService_IngestDocument_IndexFailure(t *testing.T) {
	svc := NewDocumentService(&stubDocStore{}, &stubIngestor{indexErr: errors.New("embeddings down")})

	_, err := svc.IngestDocument(context.Background(), IngestRequest{
		Filename: "plan.pdf",
		Pages:    []indexer.PageText{{PageNumber: 1, Text: "KITCHEN"}},
	})
	if err == nil {
		t.Fatal("IngestDocument() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to index document") {
		t.Errorf("IngestDocument() error = %v", err)
	}
}

func TestDocumentService_ListDocuments(t *testing.T) {
	store := &stubDocStore{docs: []storage.Document{
		{ID: "doc-1", Title: "Riverside"},
		{ID: "doc-2", Title: "Hillside"},
	}}
	svc := NewDocumentService(store, &stubIngestor{})

	docs, err := svc.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("ListDocuments() returned %d docs, want 2", len(docs))
	}
}

func TestDocumentService_GetDocument(t *testing.T) {
	store := &stubDocStore{docs: []storage.Document{{ID: "doc-1", Title: "Riverside"}}}
	svc := NewDocumentService(store, &stubIngestor{})

	doc, err := svc.GetDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if doc.Title != "Riverside" {
		t.Errorf("Title = %q, want Riverside", doc.Title)
	}
}

func TestDocumentService_GetDocument_NotFound(t *testing.T) {
	svc := NewDocumentService(&stubDocStore{}, &stubIngestor{})

	_, err := svc.GetDocument(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentService_DeleteDocument(t *testing.T) {
	ingestor := &stubIngestor{}
	svc := NewDocumentService(&stubDocStore{}, ingestor)

	if err := svc.DeleteDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if len(ingestor.removedIDs) != 1 || ingestor.removedIDs[0] != "doc-1" {
		t.Errorf("removedIDs = %v, want [doc-1]", ingestor.removedIDs)
	}
}

func TestDocumentService_DeleteDocument_NotFound(t *testing.T) {
	svc := NewDocumentService(&stubDocStore{}, &stubIngestor{removeErr: storage.ErrNotFound})

	err := svc.DeleteDocument(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteDocument() error = %v, want ErrNotFound", err)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"riverside-residence.pdf", "riverside residence"},
		{"floor_plan_v2.pdf", "floor plan v2"},
		{"uploads/house.pdf", "house"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := titleFromFilename(tt.filename); got != tt.want {
				t.Errorf("titleFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
