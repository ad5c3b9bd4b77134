package dto

import "github.com/google/uuid"

// PublishEmbedDocumentMessage is the payload on the embed queue. The tenant
// id travels with the message so the worker never has to infer it.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	TenantId   uuid.UUID `json:"tenant_id"`
}
