// Package jsonfile loads the corpus from a directory of JSON files or a
// single JSON file. Each file holds either one document object or an array
// of them.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

type documentRecord struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Body        string `json:"body"`
	Content     string `json:"content"` // legacy ingestion field, same as body
	Category    string `json:"category"`
	Type        string `json:"type"` // legacy ingestion field, same as category
	PublishedAt string `json:"published_at"`
	PubDate     string `json:"pub_date"` // legacy ingestion field
}

func (s *Source) Load(ctx context.Context) ([]domain.Document, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat corpus path: %w", err)
	}

	files := []string{s.path}
	if info.IsDir() {
		files, err = listJSONFiles(s.path)
		if err != nil {
			return nil, err
		}
	}

	docs := make([]domain.Document, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("load corpus file %s: %w", filepath.Base(file), err)
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	// Deterministic corpus order regardless of directory listing order.
	sort.Strings(files)
	return files, nil
}

func loadFile(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []documentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var single documentRecord
		if singleErr := json.Unmarshal(data, &single); singleErr != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		records = []documentRecord{single}
	}

	docs := make([]domain.Document, 0, len(records))
	for _, record := range records {
		doc, ok := record.toDocument()
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r documentRecord) toDocument() (domain.Document, bool) {
	body := r.Body
	if body == "" {
		body = r.Content
	}
	if strings.TrimSpace(body) == "" {
		return domain.Document{}, false
	}

	category := r.Category
	if category == "" {
		category = r.Type
	}
	publishedAt := r.PublishedAt
	if publishedAt == "" {
		publishedAt = r.PubDate
	}

	return domain.Document{
		Title:       strings.TrimSpace(r.Title),
		URL:         strings.TrimSpace(r.URL),
		Body:        body,
		Category:    domain.NormalizeCategory(category),
		PublishedAt: strings.TrimSpace(publishedAt),
	}, true
}
