package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type CreateProjectResponse struct {
	Id uuid.UUID `json:"id"`
}

type ListProjectsResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type DeleteProjectResponse struct {
	Id               uuid.UUID `json:"id"`
	DocumentsDeleted int       `json:"documents_deleted"`
	VectorsDeleted   int64     `json:"vectors_deleted"`
}
