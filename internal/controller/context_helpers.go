package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// requestIdentity pulls the authenticated tenant and user out of locals.
// The JWT middleware guarantees both are present on protected routes.
func requestIdentity(ctx *fiber.Ctx) (tenantId uuid.UUID, userId uuid.UUID) {
	if s, ok := ctx.Locals("tenant_id").(string); ok {
		tenantId, _ = uuid.Parse(s)
	}
	if s, ok := ctx.Locals("user_id").(string); ok {
		userId, _ = uuid.Parse(s)
	}
	return tenantId, userId
}
