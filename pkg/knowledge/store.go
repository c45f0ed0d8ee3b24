package knowledge

import (
	"sort"
	"sync"
	"time"
)

// Store is the in-memory chunk collection. All methods are safe for
// concurrent callers; a document's chunks are only ever swapped wholesale,
// so readers never see a half-ingested document.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]Document
	chunks  map[string][]Chunk
	nextSeq int
}

// Stats summarizes the knowledge base for the status endpoint.
type Stats struct {
	Documents   int            `json:"documents"`
	Chunks      int            `json:"chunks"`
	Categories  map[string]int `json:"categories"`
	LastUpdated *time.Time     `json:"last_updated,omitempty"`
}

// NewStore creates an empty knowledge store.
func NewStore() *Store {
	return &Store{
		docs:   make(map[string]Document),
		chunks: make(map[string][]Chunk),
	}
}

// Replace stores a document and its freshly built chunks, superseding any
// prior chunks under the same document identifier. A new document gets the
// next insertion sequence; a re-ingested one keeps its original sequence
// and creation time.
func (s *Store) Replace(doc Document, chunks []Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if prior, ok := s.docs[doc.ID]; ok {
		doc.Seq = prior.Seq
		doc.CreatedAt = prior.CreatedAt
	} else {
		doc.Seq = s.nextSeq
		s.nextSeq++
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	owned := make([]Chunk, len(chunks))
	copy(owned, chunks)
	for i := range owned {
		owned[i].DocumentID = doc.ID
		owned[i].Ordinal = i
		owned[i].DocumentSeq = doc.Seq
	}

	s.docs[doc.ID] = doc
	s.chunks[doc.ID] = owned
}

// Remove deletes a document and all of its chunks.
func (s *Store) Remove(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, documentID)
	delete(s.chunks, documentID)
}

// Document returns a stored document by identifier.
func (s *Store) Document(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	return doc, ok
}

// Documents returns all stored documents keyed by identifier.
func (s *Store) Documents() map[string]Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]Document, len(s.docs))
	for id, doc := range s.docs {
		docs[id] = doc
	}
	return docs
}

// AllChunks returns every stored chunk, ordered by document insertion
// sequence and then chunk ordinal so iteration order is deterministic.
func (s *Store) AllChunks() []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, chunks := range s.chunks {
		total += len(chunks)
	}

	all := make([]Chunk, 0, total)
	for _, chunks := range s.chunks {
		all = append(all, chunks...)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].DocumentSeq != all[j].DocumentSeq {
			return all[i].DocumentSeq < all[j].DocumentSeq
		}
		return all[i].Ordinal < all[j].Ordinal
	})

	return all
}

// Stats returns document/chunk totals, per-category counts and the most
// recent update time.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Documents:  len(s.docs),
		Categories: make(map[string]int),
	}

	for _, chunks := range s.chunks {
		stats.Chunks += len(chunks)
	}

	for _, doc := range s.docs {
		category := doc.Category
		if category == "" {
			category = "uncategorized"
		}
		stats.Categories[category]++

		if stats.LastUpdated == nil || doc.UpdatedAt.After(*stats.LastUpdated) {
			updated := doc.UpdatedAt
			stats.LastUpdated = &updated
		}
	}

	return stats
}
