package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/pkg/serverutils"
	"docpilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	rateLimiter fiber.Handler
}

func NewChatController(chatService service.IChatService, rateLimiter fiber.Handler) IChatController {
	return &chatController{
		chatService: chatService,
		rateLimiter: rateLimiter,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	if c.rateLimiter != nil {
		h.Use(c.rateLimiter)
	}
	h.Post("stream", c.Stream)
}

// Stream answers one chat turn over SSE. Every event is a "data:" line with
// a JSON payload; the stream always ends with the [DONE] sentinel, including
// after an error.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	tenantId, userId := requestIdentity(ctx)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The fiber ctx is recycled once this handler returns; only reqCtx and
	// plain values may cross into the stream writer.
	reqCtx := ctx.Context()

	reqCtx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		emit := func(event dto.StreamEvent) error {
			data, err := json.Marshal(event)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return err
			}
			// Flush per event; a failed flush means the caller is gone.
			return w.Flush()
		}

		if err := c.chatService.StreamChat(reqCtx, tenantId, userId, &req, emit); err != nil {
			_ = emit(dto.ErrorEvent(err.Error()))
		}

		fmt.Fprintf(w, "data: %s\n\n", dto.DoneSentinel)
		_ = w.Flush()
	}))

	return nil
}
