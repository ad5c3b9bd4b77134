package analytics

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"docpilot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// memSnapshotRepo is an in-memory stand-in for the gorm-backed repository.
type memSnapshotRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*entity.AnalyticsSnapshot
	saveErr   error
	ensureErr error
	ensures   int
}

func newMemSnapshotRepo() *memSnapshotRepo {
	return &memSnapshotRepo{rows: make(map[uuid.UUID]*entity.AnalyticsSnapshot)}
}

func (m *memSnapshotRepo) Ensure(_ context.Context, tenantId uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensures++
	if m.ensureErr != nil {
		return m.ensureErr
	}
	if _, ok := m.rows[tenantId]; !ok {
		m.rows[tenantId] = &entity.AnalyticsSnapshot{
			Id:        uuid.New(),
			TenantId:  tenantId,
			CreatedAt: time.Now().UTC(),
		}
	}
	return nil
}

func (m *memSnapshotRepo) FindByTenant(_ context.Context, tenantId uuid.UUID) (*entity.AnalyticsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[tenantId]
	if !ok {
		return nil, fmt.Errorf("snapshot not found")
	}
	cp := *row
	return &cp, nil
}

func (m *memSnapshotRepo) Save(_ context.Context, snapshot *entity.AnalyticsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *snapshot
	m.rows[snapshot.TenantId] = &cp
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifier) NotifyTenant(_ uuid.UUID, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestGetSnapshotCreatesZeroValuedRow(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, tenantId, snap.TenantId)
	assert.Zero(t, snap.TotalDocuments)
	assert.Zero(t, snap.ProcessingRate)
}

func TestEnsureConcurrentlyLeavesOneRow(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, agg.Ensure(context.Background(), tenantId))
		}()
	}
	wg.Wait()

	assert.Len(t, repo.rows, 1)
}

func TestRecordDocumentUpdatesHistogramAndRollup(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()
	projectId := uuid.New()

	err := agg.RecordDocument(context.Background(), tenantId, "report.pdf", false, &projectId, "Quarterly")
	assert.NoError(t, err)
	err = agg.RecordDocument(context.Background(), tenantId, "loose.pdf", true, nil, "")
	assert.NoError(t, err)

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, 2, snap.TotalDocuments)
	assert.Equal(t, 1, snap.DocumentsByStatus.Processing)
	assert.Equal(t, 1, snap.DocumentsByStatus.Ready)
	assert.Equal(t, 1, snap.TotalProjects, "unassigned bucket must not count as a project")
	assert.Len(t, snap.ProjectDocCounts, 2)
	assert.Equal(t, "report.pdf", snap.RecentDocuments[1].Filename)
	assert.Equal(t, "loose.pdf", snap.RecentDocuments[0].Filename, "newest document leads the list")
	assert.Equal(t, 50, snap.ProcessingRate)
}

func TestRecentDocumentsListBounded(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	for i := 0; i < entity.RecentDocumentsBound+3; i++ {
		err := agg.RecordDocument(context.Background(), tenantId, fmt.Sprintf("doc-%02d.pdf", i), true, nil, "")
		assert.NoError(t, err)
	}

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Len(t, snap.RecentDocuments, entity.RecentDocumentsBound)
	assert.Equal(t, "doc-12.pdf", snap.RecentDocuments[0].Filename)
}

func TestMarkVectorizedClampsAtZero(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	// Duplicate event for a tenant with nothing in processing.
	err := agg.MarkVectorized(context.Background(), tenantId, nil, "")
	assert.NoError(t, err)

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.DocumentsByStatus.Processing, "processing must never go negative")
	assert.Equal(t, 1, snap.DocumentsByStatus.Ready)
}

func TestMarkVectorizedMovesProcessingToReady(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()
	projectId := uuid.New()

	assert.NoError(t, agg.RecordDocument(context.Background(), tenantId, "a.pdf", false, &projectId, "Docs"))
	assert.NoError(t, agg.MarkVectorized(context.Background(), tenantId, &projectId, "Docs"))

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.DocumentsByStatus.Processing)
	assert.Equal(t, 1, snap.DocumentsByStatus.Ready)
	assert.Equal(t, 100, snap.ProcessingRate)
	assert.Equal(t, 1, snap.ProjectDocCounts[0].Vectorized)
}

func TestRecordConversationMaintainsDailySeries(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	assert.NoError(t, agg.RecordConversation(context.Background(), tenantId, "First chat", 2, nil, ""))
	assert.NoError(t, agg.RecordConversation(context.Background(), tenantId, "Second chat", 2, nil, ""))

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, 2, snap.TotalConversations)
	assert.Equal(t, 4, snap.TotalMessages)
	assert.Equal(t, 2, snap.AvgMessagesPerConv)

	// Both exchanges happened today, so the series has one merged entry.
	assert.Len(t, snap.MessagesPerDay, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), snap.MessagesPerDay[0].Date)
	assert.Equal(t, 4, snap.MessagesPerDay[0].Messages)

	assert.Equal(t, "Second chat", snap.RecentConversations[0].Title)
}

func TestDailySeriesDropsOldestBeyondBound(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	// Seed a snapshot whose series is already full of older days.
	assert.NoError(t, repo.Ensure(context.Background(), tenantId))
	seeded, err := repo.FindByTenant(context.Background(), tenantId)
	assert.NoError(t, err)
	for i := entity.MessagesPerDayBound; i >= 1; i-- {
		day := time.Now().UTC().AddDate(0, 0, -i).Format("2006-01-02")
		seeded.MessagesPerDay = append(seeded.MessagesPerDay, entity.DailyMessageCount{Date: day, Messages: 1})
	}
	assert.NoError(t, repo.Save(context.Background(), seeded))

	assert.NoError(t, agg.RecordConversation(context.Background(), tenantId, "Today", 2, nil, ""))

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Len(t, snap.MessagesPerDay, entity.MessagesPerDayBound)

	oldest := time.Now().UTC().AddDate(0, 0, -entity.MessagesPerDayBound).Format("2006-01-02")
	for _, e := range snap.MessagesPerDay {
		assert.NotEqual(t, oldest, e.Date, "the oldest day must be the one dropped")
	}
	last := snap.MessagesPerDay[len(snap.MessagesPerDay)-1]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), last.Date)
}

func TestRecordUserRecomputesAverages(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	assert.NoError(t, agg.RecordUser(context.Background(), tenantId))
	assert.NoError(t, agg.RecordUser(context.Background(), tenantId))

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, 2, snap.TotalUsers)
}

func TestConcurrentSameTenantUpdatesLoseNothing(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, agg.RecordUser(context.Background(), tenantId))
		}()
	}
	wg.Wait()

	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, n, snap.TotalUsers, "per-tenant serialization must prevent lost updates")
}

func TestSaveFailureReturnsErrorAndLeavesStoreUntouched(t *testing.T) {
	repo := newMemSnapshotRepo()
	agg := NewAggregator(repo, nopLogger{}, nil)
	tenantId := uuid.New()

	assert.NoError(t, agg.RecordDocument(context.Background(), tenantId, "a.pdf", false, nil, ""))

	repo.saveErr = fmt.Errorf("connection reset")
	err := agg.RecordDocument(context.Background(), tenantId, "b.pdf", false, nil, "")
	assert.Error(t, err)

	repo.saveErr = nil
	snap, err := agg.GetSnapshot(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, 1, snap.TotalDocuments, "failed update must not partially apply")
}

func TestMutationsNotifyDashboard(t *testing.T) {
	repo := newMemSnapshotRepo()
	notifier := &recordingNotifier{}
	agg := NewAggregator(repo, nopLogger{}, notifier)
	tenantId := uuid.New()

	assert.NoError(t, agg.RecordDocument(context.Background(), tenantId, "a.pdf", false, nil, ""))
	assert.NoError(t, agg.RecordUser(context.Background(), tenantId))

	assert.Equal(t, []string{"analytics_updated", "analytics_updated"}, notifier.events)
}
