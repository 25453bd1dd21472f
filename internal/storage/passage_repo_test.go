package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestPassageRepo_InsertAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	docID := insertTestDocument(t, NewDocumentRepo(db), 1)
	repo := NewPassageRepo(db)

	passage := &Passage{
		ID:           uuid.NewString(),
		DocID:        docID,
		PageNumber:   1,
		PassageIndex: 0,
		Text:         "The kitchen opens onto the dining area.",
	}
	if err := repo.Insert(context.Background(), passage); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), passage.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.ID != passage.ID {
		t.Errorf("GetByID() ID = %v, want %v", got.ID, passage.ID)
	}
	if got.DocID != docID {
		t.Errorf("GetByID() DocID = %v, want %v", got.DocID, docID)
	}
	if got.PageNumber != 1 {
		t.Errorf("GetByID() PageNumber = %v, want 1", got.PageNumber)
	}
	if got.Text != passage.Text {
		t.Errorf("GetByID() Text = %q, want %q", got.Text, passage.Text)
	}
}

func TestPassageRepo_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPassageRepo(db)

	if _, err := repo.GetByID(context.Background(), uuid.NewString()); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestPassageRepo_ListIDsByDocument(t *testing.T) {
	db := setupTestDB(t)
	docID := insertTestDocument(t, NewDocumentRepo(db), 1)
	repo := NewPassageRepo(db)

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	// Insert out of index order: listing must come back ordered.
	for _, i := range []int{2, 0, 1} {
		passage := &Passage{
			ID:           ids[i],
			DocID:        docID,
			PageNumber:   1,
			PassageIndex: i,
			Text:         "passage text",
		}
		if err := repo.Insert(context.Background(), passage); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	got, err := repo.ListIDsByDocument(context.Background(), docID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("ListIDsByDocument() returned %d IDs, want 3", len(got))
	}
	for i, id := range got {
		if id != ids[i] {
			t.Errorf("ids[%d] = %v, want %v", i, id, ids[i])
		}
	}
}

func TestPassageRepo_ListIDsByDocument_Empty(t *testing.T) {
	db := setupTestDB(t)
	docID := insertTestDocument(t, NewDocumentRepo(db), 1)
	repo := NewPassageRepo(db)

	ids, err := repo.ListIDsByDocument(context.Background(), docID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDsByDocument() returned %d IDs, want 0", len(ids))
	}
}

func TestPassageRepo_DeleteByDocument(t *testing.T) {
	db := setupTestDB(t)
	docRepo := NewDocumentRepo(db)
	keepDocID := insertTestDocument(t, docRepo, 1)
	dropDocID := insertTestDocument(t, docRepo, 1)
	repo := NewPassageRepo(db)

	keep := &Passage{ID: uuid.NewString(), DocID: keepDocID, PageNumber: 1, PassageIndex: 0, Text: "keep"}
	drop := &Passage{ID: uuid.NewString(), DocID: dropDocID, PageNumber: 1, PassageIndex: 0, Text: "drop"}
	for _, passage := range []*Passage{keep, drop} {
		if err := repo.Insert(context.Background(), passage); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if err := repo.DeleteByDocument(context.Background(), dropDocID); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}

	if _, err := repo.GetByID(context.Background(), drop.ID); err != ErrNotFound {
		t.Errorf("GetByID() deleted passage error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(context.Background(), keep.ID); err != nil {
		t.Errorf("GetByID() kept passage error = %v, want nil", err)
	}
}
