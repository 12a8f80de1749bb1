package server

import (
	"strings"

	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/pipeline"
)

// Store holds a generated dataset in memory for read-only lookups. The
// dataset is immutable after load, so access needs no synchronization.
type Store struct {
	doc  *models.Document
	byID map[string]*models.Blockface
}

// NewStore loads a generated document from disk.
func NewStore(path string) (*Store, error) {
	doc, err := pipeline.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return NewStoreFromDocument(doc), nil
}

// NewStoreFromDocument wraps an already-loaded document (for tests).
func NewStoreFromDocument(doc *models.Document) *Store {
	byID := make(map[string]*models.Blockface, len(doc.Blockfaces))
	for i := range doc.Blockfaces {
		byID[doc.Blockfaces[i].ID] = &doc.Blockfaces[i]
	}
	return &Store{doc: doc, byID: byID}
}

// Document returns the loaded dataset.
func (s *Store) Document() *models.Document {
	return s.doc
}

// Get returns the blockface with the given identifier.
func (s *Store) Get(id string) (*models.Blockface, bool) {
	bf, ok := s.byID[id]
	return bf, ok
}

// ListQuery filters and pages the blockface list.
type ListQuery struct {
	Street  string
	HasRegs bool
	Offset  int
	Limit   int
}

// List returns the matching page and the total count before paging.
func (s *Store) List(q ListQuery) ([]models.Blockface, int) {
	street := strings.ToLower(strings.TrimSpace(q.Street))

	matched := make([]models.Blockface, 0)
	for _, bf := range s.doc.Blockfaces {
		if street != "" && !strings.Contains(strings.ToLower(bf.Street), street) {
			continue
		}
		if q.HasRegs && len(bf.Regulations) == 0 {
			continue
		}
		matched = append(matched, bf)
	}

	total := len(matched)
	if q.Offset >= total {
		return []models.Blockface{}, total
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > total {
		end = total
	}
	return matched[q.Offset:end], total
}
