package dto

import (
	"time"

	"github.com/google/uuid"
)

// DoneSentinel terminates every chat stream, successful or not. It is sent as
// a raw data line, not JSON.
const DoneSentinel = "[DONE]"

type SendChatRequest struct {
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
	ProjectId      *uuid.UUID `json:"project_id,omitempty"`
	Message        string     `json:"message" validate:"required,max=8000"`
}

const (
	StreamEventConversationId = "conversation_id"
	StreamEventContent        = "content"
	StreamEventError          = "error"
)

// StreamEvent is one JSON payload on the chat stream. Type discriminates:
// conversation_id right before the sentinel when a new conversation was
// created, content for each answer fragment, error once if the turn failed
// mid-stream.
type StreamEvent struct {
	Type           string     `json:"type"`
	ConversationId *uuid.UUID `json:"conversationId,omitempty"`
	Content        string     `json:"content,omitempty"`
	Error          string     `json:"error,omitempty"`
}

func ContentEvent(fragment string) StreamEvent {
	return StreamEvent{Type: StreamEventContent, Content: fragment}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: StreamEventError, Error: message}
}

func ConversationIdEvent(id uuid.UUID) StreamEvent {
	return StreamEvent{Type: StreamEventConversationId, ConversationId: &id}
}

type GetConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ProjectId *uuid.UUID `json:"project_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
