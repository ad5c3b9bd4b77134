package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentRequest struct {
	Filename  string     `json:"filename" validate:"required,max=255"`
	Content   string     `json:"content" validate:"required"`
	ProjectId *uuid.UUID `json:"project_id,omitempty"`
}

type UploadDocumentResponse struct {
	Id           uuid.UUID `json:"id"`
	VectorStatus string    `json:"vector_status"`
}

type RenameDocumentRequest struct {
	Id       uuid.UUID
	Filename string `json:"filename" validate:"required,max=255"`
}

type ShowDocumentResponse struct {
	Id           uuid.UUID  `json:"id"`
	Filename     string     `json:"filename"`
	ProjectId    *uuid.UUID `json:"project_id,omitempty"`
	Size         int        `json:"size"`
	VectorStatus string     `json:"vector_status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Id           uuid.UUID  `json:"id"`
	Filename     string     `json:"filename"`
	ProjectId    *uuid.UUID `json:"project_id,omitempty"`
	Size         int        `json:"size"`
	VectorStatus string     `json:"vector_status"`
	CreatedAt    time.Time  `json:"created_at"`
}

type DeleteDocumentResponse struct {
	Id             uuid.UUID `json:"id"`
	VectorsDeleted int64     `json:"vectors_deleted"`
}
