package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// RetrievalResult is one scored candidate returned by Search. Score is the
// final (possibly boosted) ranking score; RerankScore keeps the raw
// cross-encoder relevance when reranking ran.
type RetrievalResult struct {
	ID          string     `json:"id"`
	Document    string     `json:"document"`
	ContentID   *uuid.UUID `json:"content_id,omitempty"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Title       string     `json:"title"`
	Priority    int        `json:"priority"`
	Distance    float64    `json:"distance"`
	Score       float64    `json:"score"`
	RerankScore *float64   `json:"rerank_score,omitempty"`
	Reranked    bool       `json:"reranked"`
}

// SearchParams carries every input that shapes a search outcome. All of the
// fields below except the boost settings participate in the cache key; the
// boost settings do not because boosted ordering is deterministic given the
// same candidates, and callers of one tenant share boost configuration.
type SearchParams struct {
	TenantID            uuid.UUID
	Query               string
	NResults            int
	UseReranking        bool
	UsePriorityBoost    bool
	PriorityBoostFactor float64
	IncludeInactive     bool
	SessionID           string
}

// CacheKey derives the opaque per-search hash. Tenant id is hashed in as
// well as used for the key prefix, so two tenants never collide even if the
// prefix scheme changes.
func (p SearchParams) CacheKey() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%t\x00%t\x00%s",
		p.TenantID, p.Query, p.NResults, p.UseReranking, p.IncludeInactive, p.SessionID)
	return hex.EncodeToString(h.Sum(nil))
}
