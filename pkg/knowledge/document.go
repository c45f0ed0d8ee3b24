// Package knowledge holds the document and chunk model and the in-memory
// store the retrieval engine queries.
package knowledge

import (
	"strings"
	"time"
)

// Access labels who may retrieve a document's content.
type Access string

const (
	AccessPublic  Access = "public"
	AccessPrivate Access = "private"
)

// Document is an ingested piece of content. It is immutable once stored;
// re-ingesting under the same identifier supersedes all of its chunks.
type Document struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Category string            `json:"category"`
	Source   string            `json:"source"`
	URL      string            `json:"url"`
	Access   Access            `json:"access"`
	Text     string            `json:"text"`
	Tags     []string          `json:"tags,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Seq is the document's insertion sequence, used as the primary
	// similarity tie-break. It survives re-ingestion so rankings stay
	// reproducible across updates.
	Seq int `json:"-"`
}

// Chunk is the atomic retrievable unit: a bounded slice of a document's
// text with its embedding. Ordinal preserves the original order for
// context reconstruction and tie-breaking.
type Chunk struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Ordinal     int       `json:"ordinal"`
	Text        string    `json:"text"`
	Fingerprint string    `json:"fingerprint"`
	Embedding   []float32 `json:"embedding"`
	EmbeddedAt  time.Time `json:"embedded_at"`

	// DocumentSeq mirrors the owning document's insertion sequence.
	DocumentSeq int `json:"-"`
}

// DocumentID derives the deterministic identifier for a document title:
// lowercased, whitespace collapsed to dashes, everything else stripped.
func DocumentID(title string) string {
	id := strings.ToLower(title)
	id = strings.Join(strings.Fields(id), "-")

	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
