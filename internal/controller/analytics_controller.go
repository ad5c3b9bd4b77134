package controller

import (
	"docpilot-be/internal/dto"
	"docpilot-be/internal/pkg/serverutils"
	"docpilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	GetSnapshot(ctx *fiber.Ctx) error
	RecordUser(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analytics/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("snapshot", c.GetSnapshot)
	h.Post("users", c.RecordUser)
}

func (c *analyticsController) GetSnapshot(ctx *fiber.Ctx) error {
	tenantId, _ := requestIdentity(ctx)

	res, err := c.analyticsService.GetSnapshot(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Analytics snapshot", res))
}

// RecordUser is called by the auth collaborator when a member joins the
// organization.
func (c *analyticsController) RecordUser(ctx *fiber.Ctx) error {
	var req dto.RecordUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.analyticsService.RecordUser(ctx.Context(), req.TenantId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("User recorded", nil))
}
