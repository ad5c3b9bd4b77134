package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/logger"
	"docpilot-be/internal/repository/contract"

	"github.com/google/uuid"
)

// Notifier receives a ping whenever a tenant's snapshot changed, so a live
// dashboard can refetch. Implementations must not block.
type Notifier interface {
	NotifyTenant(tenantId uuid.UUID, event string)
}

// Aggregator maintains the per-tenant analytics snapshot as an incrementally
// updated materialized view. Every mutation is a read-modify-write of the
// whole row, so updates for the same tenant are serialized through a
// per-tenant mutex; different tenants never contend.
//
// Callers treat every Record* call as best-effort: an analytics failure must
// not fail the business event that triggered it.
type Aggregator struct {
	snapshots contract.AnalyticsSnapshotRepository
	logger    logger.ILogger
	notifier  Notifier

	mu      sync.Mutex
	tenants map[uuid.UUID]*sync.Mutex
}

func NewAggregator(snapshots contract.AnalyticsSnapshotRepository, log logger.ILogger, notifier Notifier) *Aggregator {
	return &Aggregator{
		snapshots: snapshots,
		logger:    log,
		notifier:  notifier,
		tenants:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (a *Aggregator) tenantLock(tenantId uuid.UUID) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.tenants[tenantId]
	if !ok {
		l = &sync.Mutex{}
		a.tenants[tenantId] = l
	}
	return l
}

// Ensure creates a zero-valued snapshot for the tenant if none exists yet.
// Safe to call concurrently; the unique index on tenant_id guarantees a
// single row regardless of races.
func (a *Aggregator) Ensure(ctx context.Context, tenantId uuid.UUID) error {
	return a.snapshots.Ensure(ctx, tenantId)
}

// GetSnapshot returns the tenant's snapshot, creating it first so a brand-new
// tenant sees zeros instead of a not-found error.
func (a *Aggregator) GetSnapshot(ctx context.Context, tenantId uuid.UUID) (*entity.AnalyticsSnapshot, error) {
	if err := a.snapshots.Ensure(ctx, tenantId); err != nil {
		return nil, fmt.Errorf("ensure snapshot: %w", err)
	}
	return a.snapshots.FindByTenant(ctx, tenantId)
}

// RecordDocument registers a freshly ingested document: totals, status
// histogram, per-project rollup, and the recent-documents list.
func (a *Aggregator) RecordDocument(ctx context.Context, tenantId uuid.UUID, filename string, vectorized bool, projectId *uuid.UUID, projectName string) error {
	return a.mutate(ctx, tenantId, "RecordDocument", func(s *entity.AnalyticsSnapshot) {
		s.TotalDocuments++
		if vectorized {
			s.DocumentsByStatus.Ready++
		} else {
			s.DocumentsByStatus.Processing++
		}

		p := findOrCreateProject(s, projectId, projectName)
		p.Documents++
		if vectorized {
			p.Vectorized++
		}

		s.RecentDocuments = append([]entity.RecentDocument{{
			Filename:   filename,
			Vectorized: vectorized,
			UploadedAt: time.Now().UTC(),
		}}, s.RecentDocuments...)
		if len(s.RecentDocuments) > entity.RecentDocumentsBound {
			s.RecentDocuments = s.RecentDocuments[:entity.RecentDocumentsBound]
		}
	})
}

// MarkVectorized moves one document from processing to ready. The processing
// counter is clamped at zero so a duplicate or out-of-order event can never
// drive it negative.
func (a *Aggregator) MarkVectorized(ctx context.Context, tenantId uuid.UUID, projectId *uuid.UUID, projectName string) error {
	return a.mutate(ctx, tenantId, "MarkVectorized", func(s *entity.AnalyticsSnapshot) {
		if s.DocumentsByStatus.Processing > 0 {
			s.DocumentsByStatus.Processing--
		}
		s.DocumentsByStatus.Ready++

		p := findOrCreateProject(s, projectId, projectName)
		p.Vectorized++
	})
}

// RecordConversation registers a finished chat exchange: conversation and
// message totals, today's entry in the per-day series, and the
// recent-conversations list.
func (a *Aggregator) RecordConversation(ctx context.Context, tenantId uuid.UUID, title string, messageCount int, projectId *uuid.UUID, projectName string) error {
	return a.mutate(ctx, tenantId, "RecordConversation", func(s *entity.AnalyticsSnapshot) {
		s.TotalConversations++
		s.TotalMessages += messageCount

		today := time.Now().UTC().Format("2006-01-02")
		found := false
		for i := range s.MessagesPerDay {
			if s.MessagesPerDay[i].Date == today {
				s.MessagesPerDay[i].Messages += messageCount
				found = true
				break
			}
		}
		if !found {
			s.MessagesPerDay = append(s.MessagesPerDay, entity.DailyMessageCount{
				Date:     today,
				Messages: messageCount,
			})
		}
		sort.Slice(s.MessagesPerDay, func(i, j int) bool {
			return s.MessagesPerDay[i].Date < s.MessagesPerDay[j].Date
		})
		if len(s.MessagesPerDay) > entity.MessagesPerDayBound {
			s.MessagesPerDay = s.MessagesPerDay[len(s.MessagesPerDay)-entity.MessagesPerDayBound:]
		}

		s.RecentConversations = append([]entity.RecentConversation{{
			Title:     title,
			Messages:  messageCount,
			StartedAt: time.Now().UTC(),
		}}, s.RecentConversations...)
		if len(s.RecentConversations) > entity.RecentConversationsBound {
			s.RecentConversations = s.RecentConversations[:entity.RecentConversationsBound]
		}
	})
}

// RecordUser increments the tenant's user count. Called by the auth layer
// when a member joins the organization.
func (a *Aggregator) RecordUser(ctx context.Context, tenantId uuid.UUID) error {
	return a.mutate(ctx, tenantId, "RecordUser", func(s *entity.AnalyticsSnapshot) {
		s.TotalUsers++
	})
}

// mutate is the shared ensure-load-apply-save cycle. It holds the tenant's
// lock across the whole cycle so two events for the same tenant cannot lose
// each other's increments.
func (a *Aggregator) mutate(ctx context.Context, tenantId uuid.UUID, op string, apply func(*entity.AnalyticsSnapshot)) error {
	lock := a.tenantLock(tenantId)
	lock.Lock()
	defer lock.Unlock()

	if err := a.snapshots.Ensure(ctx, tenantId); err != nil {
		a.warn(op, tenantId, err)
		return err
	}

	snapshot, err := a.snapshots.FindByTenant(ctx, tenantId)
	if err != nil {
		a.warn(op, tenantId, err)
		return err
	}

	apply(snapshot)
	recomputeDerived(snapshot)
	now := time.Now().UTC()
	snapshot.UpdatedAt = &now

	if err := a.snapshots.Save(ctx, snapshot); err != nil {
		a.warn(op, tenantId, err)
		return err
	}

	if a.notifier != nil {
		a.notifier.NotifyTenant(tenantId, "analytics_updated")
	}
	return nil
}

func (a *Aggregator) warn(op string, tenantId uuid.UUID, err error) {
	a.logger.Warn("Analytics", "Snapshot update failed, dashboard will be stale", map[string]interface{}{
		"operation": op,
		"tenant_id": tenantId,
		"error":     err.Error(),
	})
}

// findOrCreateProject returns the rollup entry for the project, creating it
// if absent. A nil project id maps to the single "unassigned" bucket.
// TotalProjects tracks the number of real (non-unassigned) entries.
func findOrCreateProject(s *entity.AnalyticsSnapshot, projectId *uuid.UUID, projectName string) *entity.ProjectDocCount {
	for i := range s.ProjectDocCounts {
		existing := s.ProjectDocCounts[i].ProjectId
		if projectId == nil && existing == nil {
			return &s.ProjectDocCounts[i]
		}
		if projectId != nil && existing != nil && *existing == *projectId {
			return &s.ProjectDocCounts[i]
		}
	}

	name := projectName
	if projectId == nil {
		name = "Unassigned"
	}
	s.ProjectDocCounts = append(s.ProjectDocCounts, entity.ProjectDocCount{
		ProjectId:   projectId,
		ProjectName: name,
	})
	if projectId != nil {
		s.TotalProjects++
	}
	return &s.ProjectDocCounts[len(s.ProjectDocCounts)-1]
}

// recomputeDerived rebuilds every ratio from the raw counters so they can
// never drift from their inputs.
func recomputeDerived(s *entity.AnalyticsSnapshot) {
	if s.TotalDocuments > 0 {
		s.ProcessingRate = int(float64(s.DocumentsByStatus.Ready) / float64(s.TotalDocuments) * 100)
	} else {
		s.ProcessingRate = 0
	}
	if s.TotalConversations > 0 {
		s.AvgMessagesPerConv = s.TotalMessages / s.TotalConversations
	} else {
		s.AvgMessagesPerConv = 0
	}
	if s.TotalProjects > 0 {
		s.AvgDocumentsPerProj = s.TotalDocuments / s.TotalProjects
	} else {
		s.AvgDocumentsPerProj = 0
	}
}
