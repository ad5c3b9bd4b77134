package implementation

import (
	"context"
	"errors"

	"docpilot-be/internal/entity"
	"docpilot-be/internal/mapper"
	"docpilot-be/internal/model"
	"docpilot-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsSnapshotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalyticsMapper
}

func NewAnalyticsSnapshotRepository(db *gorm.DB) contract.AnalyticsSnapshotRepository {
	return &AnalyticsSnapshotRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalyticsMapper(),
	}
}

// Ensure inserts a zero-valued snapshot row unless one already exists for the
// tenant. ON CONFLICT DO NOTHING against the unique tenant_id index makes
// concurrent first-touch events converge on a single row without any
// application-level locking.
func (r *AnalyticsSnapshotRepositoryImpl) Ensure(ctx context.Context, tenantId uuid.UUID) error {
	row := &model.AnalyticsSnapshot{
		Id:                  uuid.New(),
		TenantId:            tenantId,
		ProjectDocCounts:    datatypes.JSON("[]"),
		MessagesPerDay:      datatypes.JSON("[]"),
		RecentDocuments:     datatypes.JSON("[]"),
		RecentConversations: datatypes.JSON("[]"),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *AnalyticsSnapshotRepositoryImpl) FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.AnalyticsSnapshot, error) {
	var m model.AnalyticsSnapshot
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AnalyticsSnapshotRepositoryImpl) Save(ctx context.Context, snapshot *entity.AnalyticsSnapshot) error {
	m := r.mapper.ToModel(snapshot)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*snapshot = *r.mapper.ToEntity(m)
	return nil
}
