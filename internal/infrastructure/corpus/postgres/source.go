// Package postgres loads the corpus from a documents table maintained by
// the external ingestion pipeline.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

type Source struct {
	db *sql.DB
}

func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Source) Load(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT title, url, body, category, published_at
FROM documents
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0, 256)
	for rows.Next() {
		var doc domain.Document
		var url, category, publishedAt sql.NullString
		if err := rows.Scan(&doc.Title, &url, &doc.Body, &category, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.URL = url.String
		doc.Category = domain.NormalizeCategory(category.String)
		doc.PublishedAt = publishedAt.String
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
