package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ChatRateLimiter caps chat requests per tenant over a sliding window using
// redis INCR + EXPIRE, so the cap holds across instances. Redis being down
// fails open.
func ChatRateLimiter(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tenantId, ok := ctx.Locals("tenant_id").(string)
		if !ok || tenantId == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing tenant"))
		}

		key := fmt.Sprintf("ratelimit:chat:%s", tenantId)
		count, err := rdb.Incr(ctx.Context(), key).Result()
		if err != nil {
			return ctx.Next()
		}
		if count == 1 {
			rdb.Expire(ctx.Context(), key, window)
		}

		if count > int64(limit) {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(ErrorResponse(429, "Chat rate limit exceeded, try again shortly"))
		}
		return ctx.Next()
	}
}
