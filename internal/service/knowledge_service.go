package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agent-chatbot-be/internal/config"
	"agent-chatbot-be/internal/dto"
	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/pkg/logger"
	"agent-chatbot-be/internal/pkg/serverutils"
	"agent-chatbot-be/internal/repository/contract"
	"agent-chatbot-be/internal/repository/memory"
	"agent-chatbot-be/pkg/events"
	"agent-chatbot-be/pkg/indexer"
	pktNats "agent-chatbot-be/pkg/nats"
	"agent-chatbot-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeService interface {
	Search(ctx context.Context, tenantID uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
	Reindex(ctx context.Context, tenantID uuid.UUID) (*dto.ReindexResponse, error)
	IngestContent(ctx context.Context, tenantID uuid.UUID, req *dto.IngestContentRequest) (*dto.IngestContentResponse, error)
	CascadeToggle(ctx context.Context, tenantID uuid.UUID, req *dto.CascadeToggleRequest) (*dto.CascadeToggleResponse, error)
}

type knowledgeService struct {
	engine           *retrieval.Engine
	indexer          *indexer.Indexer
	contents         contract.ContentRepository
	categories       contract.CategoryRepository
	sessions         *memory.SessionRepository
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	retrievalCfg     config.RetrievalConfig
	logger           logger.ILogger
}

func NewKnowledgeService(
	engine *retrieval.Engine,
	ix *indexer.Indexer,
	contents contract.ContentRepository,
	categories contract.CategoryRepository,
	sessions *memory.SessionRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	retrievalCfg config.RetrievalConfig,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		engine:           engine,
		indexer:          ix,
		contents:         contents,
		categories:       categories,
		sessions:         sessions,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		retrievalCfg:     retrievalCfg,
		logger:           log,
	}
}

func (c *knowledgeService) Search(ctx context.Context, tenantID uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	params := retrieval.SearchParams{
		TenantID:            tenantID,
		Query:               req.Query,
		NResults:            req.NResults,
		UseReranking:        req.UseReranking,
		UsePriorityBoost:    req.UsePriorityBoost,
		PriorityBoostFactor: req.PriorityBoostFactor,
		IncludeInactive:     req.IncludeInactive,
		SessionID:           req.SessionId,
	}
	if params.NResults <= 0 {
		params.NResults = c.retrievalCfg.DefaultNResults
	}
	if params.UsePriorityBoost && params.PriorityBoostFactor <= 0 {
		params.PriorityBoostFactor = c.retrievalCfg.PriorityBoostFactor
	}

	results, err := c.engine.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	if req.SessionId != "" {
		c.touchSession(tenantID, req.SessionId, req.Query, results)
	}

	items := make([]dto.SearchResultItem, len(results))
	for i, result := range results {
		items[i] = dto.SearchResultItem{
			Id:          result.ID,
			Document:    result.Document,
			ContentId:   result.ContentID,
			CategoryId:  result.CategoryID,
			Title:       result.Title,
			Priority:    result.Priority,
			Score:       result.Score,
			RerankScore: result.RerankScore,
			Reranked:    result.Reranked,
		}
	}

	return &dto.SearchResponse{
		Results: items,
		Count:   len(items),
	}, nil
}

// touchSession records the conversational focus: the last query and, when
// the top hit is unambiguous, its category.
func (c *knowledgeService) touchSession(tenantID uuid.UUID, sessionID, query string, results []retrieval.RetrievalResult) {
	session, found := c.sessions.Get(sessionID)
	if !found {
		session = &entity.ChatSession{
			Id:       sessionID,
			TenantId: tenantID,
		}
	}
	session.LastQuery = query
	if len(results) > 0 {
		focus := results[0].CategoryID
		session.FocusCategoryId = &focus
	}
	c.sessions.Save(session)
}

func (c *knowledgeService) Reindex(ctx context.Context, tenantID uuid.UUID) (*dto.ReindexResponse, error) {
	report, err := c.indexer.ReindexTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NewKnowledgeReindexedEvent(tenantID, report.Total))

	return &dto.ReindexResponse{
		TenantId:   report.TenantID,
		Categories: report.Categories,
		Units:      report.Units,
		Total:      report.Total,
	}, nil
}

func (c *knowledgeService) IngestContent(ctx context.Context, tenantID uuid.UUID, req *dto.IngestContentRequest) (*dto.IngestContentResponse, error) {
	category, err := c.categories.GetByID(ctx, req.CategoryId)
	if err != nil {
		return nil, err
	}
	if category == nil || category.TenantId != tenantID {
		return nil, serverutils.NewHttpError(fiber.StatusNotFound, "Category not found")
	}

	unit, err := c.resolveUnit(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	msgPayload := dto.PublishEmbedContentMessage{
		ContentId: unit.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NewContentIngestedEvent(tenantID, unit.Id))

	return &dto.IngestContentResponse{
		Id:     unit.Id,
		Queued: true,
	}, nil
}

// resolveUnit persists the incoming payload as a new unit or an update of
// an existing one.
func (c *knowledgeService) resolveUnit(ctx context.Context, tenantID uuid.UUID, req *dto.IngestContentRequest) (*entity.ContentUnit, error) {
	state := entity.ContentState(req.State)
	if state == "" {
		state = entity.StateActive
	}
	// Mid-range default on the 1-10 scale, matching the column default.
	priority := req.Priority
	if priority == 0 {
		priority = 5
	}

	if req.Id != nil {
		existing, err := c.contents.GetUnitState(ctx, *req.Id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, serverutils.NewHttpError(fiber.StatusNotFound, "Content unit not found")
		}

		now := time.Now()
		unit := &entity.ContentUnit{
			Id:         *req.Id,
			TenantId:   tenantID,
			CategoryId: req.CategoryId,
			Title:      req.Title,
			Body:       req.Body,
			Keywords:   req.Keywords,
			Priority:   priority,
			State:      state,
			UpdatedAt:  &now,
		}
		if err := c.contents.Update(ctx, unit); err != nil {
			return nil, err
		}
		return unit, nil
	}

	unit := &entity.ContentUnit{
		Id:         uuid.New(),
		TenantId:   tenantID,
		CategoryId: req.CategoryId,
		Title:      req.Title,
		Body:       req.Body,
		Keywords:   req.Keywords,
		Priority:   priority,
		State:      state,
		CreatedAt:  time.Now(),
	}
	if err := c.contents.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (c *knowledgeService) CascadeToggle(ctx context.Context, tenantID uuid.UUID, req *dto.CascadeToggleRequest) (*dto.CascadeToggleResponse, error) {
	affected, err := c.indexer.CascadeToggle(ctx, tenantID, req.CategoryIds, *req.Active)
	if err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NewKnowledgeInvalidatedEvent(tenantID, "cascade_toggle"))

	return &dto.CascadeToggleResponse{
		Affected: affected,
	}, nil
}

// publishEvent broadcasts to NATS when configured. Broadcasting is
// auxiliary; a failure never fails the request.
func (c *knowledgeService) publishEvent(ctx context.Context, event events.Event) {
	if c.eventPublisher == nil {
		return
	}
	if err := c.eventPublisher.Publish(ctx, event); err != nil {
		c.logger.Warn("KnowledgeService", fmt.Sprintf("Failed to publish %s event", event.EventType()), map[string]interface{}{
			"error": err.Error(),
		})
	}
}
