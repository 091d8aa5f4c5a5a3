package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantIndex keeps one Qdrant collection per tenant. Point ids in Qdrant
// must be UUIDs, so document ids are mapped through a deterministic v5 UUID
// and the original id travels in the payload.
type QdrantIndex struct {
	client    *qdrant.Client
	dimension uint64
}

func NewQdrantIndex(host string, port int, dimension int) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	index := &QdrantIndex{
		client:    client,
		dimension: uint64(dimension),
	}

	if err := index.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant unreachable at %s:%d: %w", host, port, err)
	}

	return index, nil
}

func newBackoff() *backoff.ExponentialBackOff {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second
	return exponentialBackoff
}

func (q *QdrantIndex) healthCheckWithRetry(ctx context.Context) error {
	operation := func() error {
		result, err := q.client.HealthCheck(ctx)
		if err != nil {
			return err
		}
		if result == nil || result.Title == "" {
			return fmt.Errorf("health check returned invalid response")
		}
		return nil
	}
	return backoff.Retry(operation, newBackoff())
}

func (q *QdrantIndex) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

func collectionName(tenantID uuid.UUID) string {
	return fmt.Sprintf("agent_%s", tenantID)
}

// pointID maps a document id onto a stable UUID point id.
func pointID(docID string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String())
}

func (q *QdrantIndex) Create(ctx context.Context, tenantID uuid.UUID) error {
	name := collectionName(tenantID)

	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, existing := range collections {
		if existing == name {
			return nil
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	// Payload indexes for the filterable fields; without them filtered
	// queries degrade badly on large tenants.
	for _, field := range []string{"doc_id", "doc_type", "category_id"} {
		_, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}
	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: name,
		FieldName:      "active",
		FieldType:      qdrant.FieldType_FieldTypeBool.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create index for field active: %w", err)
	}

	return nil
}

func (q *QdrantIndex) Drop(ctx context.Context, tenantID uuid.UUID) error {
	name := collectionName(tenantID)

	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, existing := range collections {
		if existing == name {
			if err := q.client.DeleteCollection(ctx, name); err != nil {
				return fmt.Errorf("failed to delete collection %s: %w", name, err)
			}
			return nil
		}
	}
	return nil
}

func toPoint(doc Document) *qdrant.PointStruct {
	payload := map[string]any{
		"doc_id":      doc.ID,
		"document":    doc.Text,
		"doc_type":    doc.Metadata.Type,
		"category_id": doc.Metadata.CategoryID.String(),
		"title":       doc.Metadata.Title,
		"priority":    doc.Metadata.Priority,
		"active":      doc.Metadata.Active,
	}
	if doc.Metadata.ContentID != nil {
		payload["content_id"] = doc.Metadata.ContentID.String()
	}
	return &qdrant.PointStruct{
		Id:      pointID(doc.ID),
		Vectors: qdrant.NewVectors(doc.Embedding...),
		Payload: qdrant.NewValueMap(payload),
	}
}

func fromPayload(payload map[string]*qdrant.Value, vector []float32) Document {
	doc := Document{
		ID:        payload["doc_id"].GetStringValue(),
		Text:      payload["document"].GetStringValue(),
		Embedding: vector,
		Metadata: Metadata{
			Type:     payload["doc_type"].GetStringValue(),
			Title:    payload["title"].GetStringValue(),
			Priority: int(payload["priority"].GetIntegerValue()),
			Active:   payload["active"].GetBoolValue(),
		},
	}
	if categoryID, err := uuid.Parse(payload["category_id"].GetStringValue()); err == nil {
		doc.Metadata.CategoryID = categoryID
	}
	if raw, ok := payload["content_id"]; ok {
		if contentID, err := uuid.Parse(raw.GetStringValue()); err == nil {
			doc.Metadata.ContentID = &contentID
		}
	}
	return doc
}

func (q *QdrantIndex) upsertWithRetry(ctx context.Context, name string, points []*qdrant.PointStruct) error {
	operation := func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: name,
			Points:         points,
		})
		return err
	}
	return backoff.Retry(operation, newBackoff())
}

func (q *QdrantIndex) Add(ctx context.Context, tenantID uuid.UUID, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	existing, err := q.Get(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: %s", ErrDocumentExists, existing[0].ID)
	}
	return q.Upsert(ctx, tenantID, docs)
}

func (q *QdrantIndex) Upsert(ctx context.Context, tenantID uuid.UUID, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	name := collectionName(tenantID)

	batchSize := 100
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[i:end]
		points := make([]*qdrant.PointStruct, len(batch))
		for j, doc := range batch {
			points[j] = toPoint(doc)
		}
		if err := q.upsertWithRetry(ctx, name, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (q *QdrantIndex) Delete(ctx context.Context, tenantID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIds := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIds[i] = pointID(id)
	}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName(tenantID),
		Points:         qdrant.NewPointsSelector(pointIds...),
	})
	return err
}

func (q *QdrantIndex) Get(ctx context.Context, tenantID uuid.UUID, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}
	pointIds := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIds[i] = pointID(id)
	}
	results, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: collectionName(tenantID),
		Ids:            pointIds,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get points: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, point := range results {
		var vector []float32
		if v := point.Vectors.GetVector(); v != nil {
			vector = v.Data
		}
		docs = append(docs, fromPayload(point.Payload, vector))
	}
	return docs, nil
}

func buildConditions(filter Filter) ([]*qdrant.Condition, error) {
	conditions := make([]*qdrant.Condition, 0, len(filter))
	for field, value := range filter {
		switch field {
		case "type":
			conditions = append(conditions, qdrant.NewMatch("doc_type", fmt.Sprint(value)))
		case "active":
			active, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: active wants bool, got %T", ErrUnsupportedFilter, value)
			}
			conditions = append(conditions, qdrant.NewMatchBool("active", active))
		case "category_id":
			conditions = append(conditions, qdrant.NewMatch("category_id", fmt.Sprint(value)))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, field)
		}
	}
	return conditions, nil
}

func (q *QdrantIndex) Query(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int, filter Filter) ([]Match, error) {
	if limit <= 0 {
		return []Match{}, nil
	}

	conditions, err := buildConditions(filter)
	if err != nil {
		return nil, err
	}
	var qdrantFilter *qdrant.Filter
	if len(conditions) > 0 {
		qdrantFilter = &qdrant.Filter{Must: conditions}
	}

	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName(tenantID),
		Query:          qdrant.NewQuery(embedding...),
		Filter:         qdrantFilter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		// Qdrant reports cosine similarity; normalize to the distance
		// scale the rest of the engine expects.
		matches = append(matches, Match{
			Document: fromPayload(result.Payload, nil),
			Distance: 1 - float64(result.Score),
		})
	}
	return matches, nil
}

func (q *QdrantIndex) SetActiveByCategory(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID, active bool) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	name := collectionName(tenantID)

	keywords := make([]string, len(categoryIDs))
	for i, id := range categoryIDs {
		keywords[i] = id.String()
	}
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeywords("category_id", keywords...),
		},
	}

	affected, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}

	_, err = q.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: name,
		Payload:        qdrant.NewValueMap(map[string]any{"active": active}),
		PointsSelector: qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set payload: %w", err)
	}
	return int64(affected), nil
}
