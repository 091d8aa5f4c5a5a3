package controller

import (
	"agent-chatbot-be/internal/dto"
	"agent-chatbot-be/internal/pkg/serverutils"
	"agent-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
	IngestContent(ctx *fiber.Ctx) error
	CascadeToggle(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agents/:agentId")
	h.Post("search", c.Search)
	h.Post("reindex", c.Reindex)
	h.Post("content/ingest", c.IngestContent)
	h.Post("categories/toggle", c.CascadeToggle)
}

func tenantIDFromPath(ctx *fiber.Ctx) (uuid.UUID, error) {
	tenantID, err := uuid.Parse(ctx.Params("agentId"))
	if err != nil {
		return uuid.Nil, serverutils.NewHttpError(fiber.StatusBadRequest, "Invalid agent id")
	}
	return tenantID, nil
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	tenantID, err := tenantIDFromPath(ctx)
	if err != nil {
		return err
	}

	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Search(ctx.Context(), tenantID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search knowledge", res))
}

func (c *knowledgeController) Reindex(ctx *fiber.Ctx) error {
	tenantID, err := tenantIDFromPath(ctx)
	if err != nil {
		return err
	}

	res, err := c.knowledgeService.Reindex(ctx.Context(), tenantID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reindex agent", res))
}

func (c *knowledgeController) IngestContent(ctx *fiber.Ctx) error {
	tenantID, err := tenantIDFromPath(ctx)
	if err != nil {
		return err
	}

	var req dto.IngestContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.IngestContent(ctx.Context(), tenantID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue content ingestion", res))
}

func (c *knowledgeController) CascadeToggle(ctx *fiber.Ctx) error {
	tenantID, err := tenantIDFromPath(ctx)
	if err != nil {
		return err
	}

	var req dto.CascadeToggleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.CascadeToggle(ctx.Context(), tenantID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle categories", res))
}
