package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// vectorDocument is the pgvector row layout. Tenants share one table; the
// tenant column is the collection boundary, so Drop is a scoped DELETE.
type vectorDocument struct {
	TenantId   uuid.UUID       `gorm:"column:tenant_id;type:uuid;primaryKey"`
	DocId      string          `gorm:"column:doc_id;type:varchar(64);primaryKey"`
	Document   string          `gorm:"column:document;type:text;not null"`
	Embedding  pgvector.Vector `gorm:"column:embedding;type:vector(768);not null"`
	DocType    string          `gorm:"column:doc_type;type:varchar(32);not null;index:idx_vecdoc_tenant_type,priority:2"`
	ContentId  *uuid.UUID      `gorm:"column:content_id;type:uuid"`
	CategoryId uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	Title      string          `gorm:"column:title;type:varchar(255)"`
	Priority   int             `gorm:"column:priority;not null;default:1"`
	Active     bool            `gorm:"column:active;not null;default:true"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (vectorDocument) TableName() string {
	return "vector_documents"
}

type PgvectorIndex struct {
	db *gorm.DB
}

func NewPgvectorIndex(db *gorm.DB) Index {
	return &PgvectorIndex{db: db}
}

// MigratePgvector creates the shared vector table. Run from the migration
// command, after `CREATE EXTENSION IF NOT EXISTS vector`.
func MigratePgvector(db *gorm.DB) error {
	return db.AutoMigrate(&vectorDocument{})
}

func toRow(tenantID uuid.UUID, doc Document) *vectorDocument {
	return &vectorDocument{
		TenantId:   tenantID,
		DocId:      doc.ID,
		Document:   doc.Text,
		Embedding:  pgvector.NewVector(doc.Embedding),
		DocType:    doc.Metadata.Type,
		ContentId:  doc.Metadata.ContentID,
		CategoryId: doc.Metadata.CategoryID,
		Title:      doc.Metadata.Title,
		Priority:   doc.Metadata.Priority,
		Active:     doc.Metadata.Active,
		UpdatedAt:  time.Now(),
	}
}

func fromRow(row *vectorDocument) Document {
	return Document{
		ID:        row.DocId,
		Text:      row.Document,
		Embedding: row.Embedding.Slice(),
		Metadata: Metadata{
			Type:       row.DocType,
			ContentID:  row.ContentId,
			CategoryID: row.CategoryId,
			Title:      row.Title,
			Priority:   row.Priority,
			Active:     row.Active,
		},
	}
}

// applyFilter translates the metadata filter into WHERE clauses.
func (p *PgvectorIndex) applyFilter(query *gorm.DB, filter Filter) (*gorm.DB, error) {
	for field, value := range filter {
		switch field {
		case "type":
			query = query.Where("doc_type = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		case "category_id":
			query = query.Where("category_id = ?", value)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, field)
		}
	}
	return query, nil
}

// Create is a no-op: the shared table is provisioned by migration and rows
// appear lazily on first insert.
func (p *PgvectorIndex) Create(ctx context.Context, tenantID uuid.UUID) error {
	return nil
}

func (p *PgvectorIndex) Drop(ctx context.Context, tenantID uuid.UUID) error {
	return p.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&vectorDocument{}).Error
}

func (p *PgvectorIndex) Add(ctx context.Context, tenantID uuid.UUID, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]*vectorDocument, len(docs))
	for i, doc := range docs {
		rows[i] = toRow(tenantID, doc)
	}
	if err := p.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDocumentExists
		}
		return err
	}
	return nil
}

func (p *PgvectorIndex) Upsert(ctx context.Context, tenantID uuid.UUID, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]*vectorDocument, len(docs))
	for i, doc := range docs {
		rows[i] = toRow(tenantID, doc)
	}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "doc_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(rows, 100).Error
}

func (p *PgvectorIndex) Delete(ctx context.Context, tenantID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).
		Where("tenant_id = ? AND doc_id IN ?", tenantID, ids).
		Delete(&vectorDocument{}).Error
}

func (p *PgvectorIndex) Get(ctx context.Context, tenantID uuid.UUID, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}
	var rows []*vectorDocument
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND doc_id IN ?", tenantID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(rows))
	for i, row := range rows {
		docs[i] = fromRow(row)
	}
	return docs, nil
}

func (p *PgvectorIndex) Query(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int, filter Filter) ([]Match, error) {
	if limit <= 0 {
		return []Match{}, nil
	}

	type scoredRow struct {
		vectorDocument
		Distance float64
	}
	var rows []scoredRow

	queryVector := pgvector.NewVector(embedding)

	query := p.db.WithContext(ctx).
		Table("vector_documents").
		Select("vector_documents.*, embedding <=> ? AS distance", queryVector).
		Where("tenant_id = ?", tenantID)

	query, err := p.applyFilter(query, filter)
	if err != nil {
		return nil, err
	}

	err = query.
		Order("distance ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(rows))
	for i, row := range rows {
		matches[i] = Match{
			Document: fromRow(&row.vectorDocument),
			Distance: row.Distance,
		}
	}
	return matches, nil
}

func (p *PgvectorIndex) SetActiveByCategory(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID, active bool) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	result := p.db.WithContext(ctx).
		Model(&vectorDocument{}).
		Where("tenant_id = ? AND category_id IN ?", tenantID, categoryIDs).
		Updates(map[string]interface{}{
			"active":     active,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
