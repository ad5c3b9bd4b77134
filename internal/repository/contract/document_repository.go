package contract

import (
	"context"

	"docpilot-be/internal/entity"
	"docpilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	// UpdateVectorStatus transitions the tri-state vectorization status
	// without touching the rest of the row.
	UpdateVectorStatus(ctx context.Context, id uuid.UUID, status entity.VectorStatus) error
	Delete(ctx context.Context, id uuid.UUID, tenantId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
}
