// Package search keeps a Bleve keyword index over live notes.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/noterag/noterag/internal/domain"
)

type noteDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteIndex is an in-memory keyword index. It is rebuilt from the database on
// startup and kept current by the index worker.
type NoteIndex struct {
	index bleve.Index
}

// NewNoteIndex creates an empty in-memory index.
func NewNoteIndex() (*NoteIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.AddDocumentMapping("note", docMapping)
	im.DefaultType = "note"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create note index: %w", err)
	}
	return &NoteIndex{index: index}, nil
}

// Index adds or replaces a note.
func (n *NoteIndex) Index(ctx context.Context, note *domain.Note) error {
	if err := n.index.Index(docID(note.ID), noteDocument{Title: note.Title, Content: note.Content}); err != nil {
		return fmt.Errorf("failed to index note %d: %w", note.ID, err)
	}
	return nil
}

// IndexAll adds or replaces notes in one batch. Documents not in notes are kept.
func (n *NoteIndex) IndexAll(ctx context.Context, notes []*domain.Note) error {
	batch := n.index.NewBatch()
	for _, note := range notes {
		if err := batch.Index(docID(note.ID), noteDocument{Title: note.Title, Content: note.Content}); err != nil {
			return fmt.Errorf("failed to batch note %d: %w", note.ID, err)
		}
	}
	if err := n.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply note batch: %w", err)
	}
	return nil
}

// Remove drops a note. Removing an unknown note is not an error.
func (n *NoteIndex) Remove(ctx context.Context, noteID int64) error {
	if err := n.index.Delete(docID(noteID)); err != nil {
		return fmt.Errorf("failed to remove note %d: %w", noteID, err)
	}
	return nil
}

// Search returns the ids of notes whose title or content contains q as a
// phrase, best first. CJK text is tokenized per character, so a phrase match
// keeps hits to notes containing the query characters in order.
func (n *NoteIndex) Search(ctx context.Context, q string, limit int) ([]int64, error) {
	title := bleve.NewMatchPhraseQuery(q)
	title.SetField("title")
	content := bleve.NewMatchPhraseQuery(q)
	content.SetField("content")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(title, content))
	req.Size = limit

	results, err := n.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("note search failed: %w", err)
	}

	ids := make([]int64, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Count returns the number of indexed notes.
func (n *NoteIndex) Count() (uint64, error) {
	return n.index.DocCount()
}

// Close releases the index.
func (n *NoteIndex) Close() error {
	return n.index.Close()
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}
