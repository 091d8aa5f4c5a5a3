package dto

import (
	"github.com/google/uuid"
)

type SearchRequest struct {
	Query               string  `json:"query" validate:"required"`
	NResults            int     `json:"n_results" validate:"omitempty,min=1,max=50"`
	UseReranking        bool    `json:"use_reranking"`
	UsePriorityBoost    bool    `json:"use_priority_boost"`
	PriorityBoostFactor float64 `json:"priority_boost_factor" validate:"omitempty,gt=0,lte=1"`
	IncludeInactive     bool    `json:"include_inactive"`
	SessionId           string  `json:"session_id"`
}

type SearchResultItem struct {
	Id          string     `json:"id"`
	Document    string     `json:"document"`
	ContentId   *uuid.UUID `json:"content_id,omitempty"`
	CategoryId  uuid.UUID  `json:"category_id"`
	Title       string     `json:"title"`
	Priority    int        `json:"priority"`
	Score       float64    `json:"score"`
	RerankScore *float64   `json:"rerank_score,omitempty"`
	Reranked    bool       `json:"reranked"`
}

type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
	Count   int                `json:"count"`
}

type IngestContentRequest struct {
	Id         *uuid.UUID `json:"id"`
	CategoryId uuid.UUID  `json:"category_id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	Body       string     `json:"body" validate:"required"`
	Keywords   string     `json:"keywords"`
	Priority   int        `json:"priority" validate:"omitempty,min=1,max=10"`
	State      string     `json:"state" validate:"omitempty,oneof=draft review published active inactive archived"`
}

type IngestContentResponse struct {
	Id     uuid.UUID `json:"id"`
	Queued bool      `json:"queued"`
}

// PublishEmbedContentMessage is the payload queued on the ingest topic; the
// consumer re-reads the unit from the store so stale queue entries cannot
// index outdated text.
type PublishEmbedContentMessage struct {
	ContentId uuid.UUID `json:"content_id"`
}

type CascadeToggleRequest struct {
	CategoryIds []uuid.UUID `json:"category_ids" validate:"required,min=1"`
	Active      *bool       `json:"active" validate:"required"`
}

type CascadeToggleResponse struct {
	Affected int64 `json:"affected"`
}

type ReindexResponse struct {
	TenantId   uuid.UUID `json:"tenant_id"`
	Categories int       `json:"categories"`
	Units      int       `json:"units"`
	Total      int       `json:"total"`
}
