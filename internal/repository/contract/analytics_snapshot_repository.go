package contract

import (
	"context"

	"docpilot-be/internal/entity"

	"github.com/google/uuid"
)

// AnalyticsSnapshotRepository persists the one-row-per-tenant rollup.
type AnalyticsSnapshotRepository interface {
	// Ensure creates a zero-valued snapshot for the tenant if none exists.
	// Concurrent calls for the same tenant must still leave exactly one row;
	// the unique index on tenant_id is the enforcement mechanism.
	Ensure(ctx context.Context, tenantId uuid.UUID) error
	FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.AnalyticsSnapshot, error)
	// Save writes the whole snapshot row back.
	Save(ctx context.Context, snapshot *entity.AnalyticsSnapshot) error
}
