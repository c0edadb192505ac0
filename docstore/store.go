// Package docstore provides a generic document store on top of a relational
// table: schemaless JSON documents grouped into named collections and keyed by
// a document id. Field-equality queries and single-field ordering are pushed
// down to SQLite's json_extract.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a raw stored document together with its key.
type Document struct {
	ID     string
	Fields map[string]any
}

// record is the relational shape of a stored document.
type record struct {
	Collection string `gorm:"primaryKey;size:64;not null"`
	DocID      string `gorm:"primaryKey;size:64;not null;column:doc_id"`
	Data       string `gorm:"not null"`
}

// TableName returns the table name for document records.
func (record) TableName() string {
	return "documents"
}

// Store bridges collection-level document operations onto an injected GORM
// connection. It carries no business logic and performs no validation; callers
// must check existence before update/delete when they need to distinguish
// "not found" from "done".
type Store struct {
	db *gorm.DB
}

// New creates a Store using the given database connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the backing table if it does not exist.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&record{})
}

// GetAll returns every document in a collection. Full scan, no pagination.
func (s *Store) GetAll(ctx context.Context, collection string) ([]Document, error) {
	var recs []record
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to scan collection %s: %w", collection, err)
	}
	return decodeAll(recs)
}

// GetByID returns the fields of a single document, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, collection, id string) (map[string]any, error) {
	var rec record
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return decode(rec.Data)
}

// Put upserts a document, replacing the whole body.
func (s *Store) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	rec := record{Collection: collection, DocID: id, Data: string(data)}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to put document %s/%s: %w", collection, id, err)
	}
	return nil
}

// UpdatePartial merges the given fields into an existing document. When the
// document is absent this is a silent no-op; callers that care check
// existence first.
func (s *Store) UpdatePartial(ctx context.Context, collection, id string, fields map[string]any) error {
	var rec record
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load document %s/%s: %w", collection, id, err)
	}

	current, err := decode(rec.Data)
	if err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}

	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	rec.Data = string(data)
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document and reports whether one existed.
func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&record{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete document %s/%s: %w", collection, id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// QueryByField returns the documents whose field equals value, ordered by
// orderBy (descending when desc is set). Field names come from code-level
// constants, never from request input.
func (s *Store) QueryByField(ctx context.Context, collection, field string, value any, orderBy string, desc bool) ([]Document, error) {
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	var recs []record
	err := s.db.WithContext(ctx).
		Where(fmt.Sprintf("collection = ? AND json_extract(data, '$.%s') = ?", field), collection, value).
		Order(fmt.Sprintf("json_extract(data, '$.%s') %s", orderBy, direction)).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s by %s: %w", collection, field, err)
	}
	return decodeAll(recs)
}

func decode(data string) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return fields, nil
}

func decodeAll(recs []record) ([]Document, error) {
	docs := make([]Document, 0, len(recs))
	for _, rec := range recs {
		fields, err := decode(rec.Data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: rec.DocID, Fields: fields})
	}
	return docs, nil
}
