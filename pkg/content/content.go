// Package content ingests markdown files from a directory into the
// knowledge engine. Files carry optional YAML frontmatter for title,
// category, tags and access level; the body is the document text.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/knowledge"
	"github.com/summitchronicles/basecamp/pkg/rag"
)

// Ingestor is the slice of the engine the loader needs.
type Ingestor interface {
	Ingest(ctx context.Context, req rag.IngestRequest) (*rag.IngestResult, error)
	Remove(documentID string)
}

// Frontmatter is the YAML header of a markdown content file. Every field
// is optional; a missing title falls back to the file name.
type Frontmatter struct {
	Title    string   `yaml:"title"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Date     string   `yaml:"date"`
	Access   string   `yaml:"access"`
	URL      string   `yaml:"url"`
}

// Result summarizes a directory ingestion pass.
type Result struct {
	Processed  int            `json:"processed"`
	Failed     int            `json:"failed"`
	Chunks     int            `json:"chunks"`
	Categories map[string]int `json:"categories"`
}

// Loader walks a content directory and feeds markdown files to the
// engine. It remembers which document each file produced so the watcher
// can remove documents when their files disappear.
type Loader struct {
	mu       sync.Mutex
	ingestor Ingestor
	dir      string
	byPath   map[string]string
	logger   *zap.Logger
}

// NewLoader creates a loader for the given content directory.
func NewLoader(ingestor Ingestor, dir string, logger *zap.Logger) *Loader {
	return &Loader{
		ingestor: ingestor,
		dir:      dir,
		byPath:   make(map[string]string),
		logger:   logger,
	}
}

// LoadDir ingests every .md file under the content directory. A file
// that fails to parse or embed is logged and counted, never fatal for
// the rest of the pass.
func (l *Loader) LoadDir(ctx context.Context) (*Result, error) {
	result := &Result{Categories: make(map[string]int)}

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			result.Failed++
			l.logger.Warn("content file not readable", zap.String("path", path), zap.Error(readErr))
			return nil
		}

		req, parseErr := Parse(data, path)
		if parseErr != nil {
			result.Failed++
			l.logger.Warn("content file not parsed", zap.String("path", path), zap.Error(parseErr))
			return nil
		}

		ingested, ingestErr := l.ingest(ctx, path, req)
		if ingestErr != nil {
			result.Failed++
			l.logger.Warn("content file not ingested", zap.String("path", path), zap.Error(ingestErr))
			return nil
		}

		result.Processed++
		result.Chunks += ingested.Chunks

		category := req.Category
		if category == "" {
			category = "uncategorized"
		}
		result.Categories[category]++

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking content dir %q: %w", l.dir, err)
	}

	l.logger.Info("content directory ingested",
		zap.String("dir", l.dir),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
		zap.Int("chunks", result.Chunks),
	)

	return result, nil
}

// LoadFile parses and ingests a single markdown file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*rag.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	req, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	return l.ingest(ctx, path, req)
}

func (l *Loader) ingest(ctx context.Context, path string, req rag.IngestRequest) (*rag.IngestResult, error) {
	result, err := l.ingestor.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.byPath[path] = result.ID
	l.mu.Unlock()

	l.logger.Debug("content file ingested",
		zap.String("path", path),
		zap.String("id", result.ID),
		zap.Int("chunks", result.Chunks),
	)

	return result, nil
}

// RemoveFile drops the document previously ingested from path, if any.
func (l *Loader) RemoveFile(path string) {
	l.mu.Lock()
	id, ok := l.byPath[path]
	delete(l.byPath, path)
	l.mu.Unlock()

	if ok {
		l.ingestor.Remove(id)
		l.logger.Debug("content file removed", zap.String("path", path), zap.String("id", id))
	}
}

var frontmatterDelimiter = []byte("---")

// Parse turns a markdown file into an ingestion request. A leading
// `---` block is parsed as YAML frontmatter; without one the whole file
// is the document text and the title comes from the file name.
func Parse(data []byte, path string) (rag.IngestRequest, error) {
	var fm Frontmatter
	body := data

	if bytes.HasPrefix(data, frontmatterDelimiter) {
		rest := data[len(frontmatterDelimiter):]
		end := bytes.Index(rest, []byte("\n---"))
		if end < 0 {
			return rag.IngestRequest{}, fmt.Errorf("unterminated frontmatter in %q", path)
		}

		if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
			return rag.IngestRequest{}, fmt.Errorf("parsing frontmatter of %q: %w", path, err)
		}

		body = rest[end+len("\n---"):]
		if newline := bytes.IndexByte(body, '\n'); newline >= 0 {
			body = body[newline+1:]
		} else {
			body = nil
		}
	}

	title := fm.Title
	if title == "" {
		title = titleFromPath(path)
	}

	url := fm.URL
	if url == "" {
		url = "/" + knowledge.DocumentID(title)
	}

	req := rag.IngestRequest{
		Title:    title,
		Source:   "file:" + filepath.Base(path),
		URL:      url,
		Access:   knowledge.Access(fm.Access),
		Text:     strings.TrimSpace(string(body)),
		Category: fm.Category,
		Tags:     fm.Tags,
	}
	if fm.Date != "" {
		req.Metadata = map[string]string{"date": fm.Date}
	}

	return req, nil
}

// titleFromPath derives a readable title from a file name:
// "alpine-training.md" becomes "alpine training".
func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	}), " ")
}
