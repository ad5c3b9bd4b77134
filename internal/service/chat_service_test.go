package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/metrics"
	"docpilot-be/internal/repository/contract"
	"docpilot-be/internal/repository/specification"
	"docpilot-be/internal/repository/unitofwork"
	"docpilot-be/pkg/analytics"
	"docpilot-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ---- in-memory unit of work ----

type fakeConversationRepo struct {
	existing *entity.Conversation
	created  []*entity.Conversation
	updated  []*entity.Conversation
}

func (f *fakeConversationRepo) Create(_ context.Context, conv *entity.Conversation) error {
	f.created = append(f.created, conv)
	return nil
}

func (f *fakeConversationRepo) Update(_ context.Context, conv *entity.Conversation) error {
	f.updated = append(f.updated, conv)
	return nil
}

func (f *fakeConversationRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeConversationRepo) FindOne(context.Context, ...specification.Specification) (*entity.Conversation, error) {
	return f.existing, nil
}

func (f *fakeConversationRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Conversation, error) {
	return nil, nil
}

type fakeChatMessageRepo struct {
	history []*entity.ChatMessage
	stored  []*entity.ChatMessage
}

func (f *fakeChatMessageRepo) CreateBulk(_ context.Context, msgs []*entity.ChatMessage) error {
	f.stored = append(f.stored, msgs...)
	return nil
}

func (f *fakeChatMessageRepo) DeleteByConversationId(context.Context, uuid.UUID) error { return nil }

func (f *fakeChatMessageRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.ChatMessage, error) {
	return f.history, nil
}

type fakeUow struct {
	convs      *fakeConversationRepo
	msgs       *fakeChatMessageRepo
	snapshots  contract.AnalyticsSnapshotRepository
	began      bool
	committed  bool
	rolledBack bool
}

func (f *fakeUow) Begin(context.Context) error { f.began = true; return nil }
func (f *fakeUow) Commit() error               { f.committed = true; return nil }
func (f *fakeUow) Rollback() error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

func (f *fakeUow) DocumentRepository() contract.DocumentRepository           { return nil }
func (f *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository { return nil }
func (f *fakeUow) ConversationRepository() contract.ConversationRepository   { return f.convs }
func (f *fakeUow) ChatMessageRepository() contract.ChatMessageRepository     { return f.msgs }
func (f *fakeUow) ProjectRepository() contract.ProjectRepository             { return nil }
func (f *fakeUow) AnalyticsSnapshotRepository() contract.AnalyticsSnapshotRepository {
	return f.snapshots
}

type fakeUowFactory struct{ uow *fakeUow }

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

// ---- snapshot repo for the real aggregator ----

type memSnapshots struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.AnalyticsSnapshot
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{rows: make(map[uuid.UUID]*entity.AnalyticsSnapshot)}
}

func (m *memSnapshots) Ensure(_ context.Context, tenantId uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[tenantId]; !ok {
		m.rows[tenantId] = &entity.AnalyticsSnapshot{Id: uuid.New(), TenantId: tenantId, CreatedAt: time.Now()}
	}
	return nil
}

func (m *memSnapshots) FindByTenant(_ context.Context, tenantId uuid.UUID) (*entity.AnalyticsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[tenantId]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *row
	return &cp, nil
}

func (m *memSnapshots) Save(_ context.Context, snapshot *entity.AnalyticsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snapshot
	m.rows[snapshot.TenantId] = &cp
	return nil
}

// ---- llm and retrieval stubs ----

type stubLLM struct {
	deltas    []string
	failAfter int // emit this many deltas then fail; -1 = never
}

func (s *stubLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return strings.Join(s.deltas, ""), nil
}

func (s *stubLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return strings.Join(s.deltas, ""), nil
}

func (s *stubLLM) ChatStream(ctx context.Context, _ []llm.Message, onDelta llm.StreamHandler, _ ...llm.Option) error {
	for i, d := range s.deltas {
		if s.failAfter >= 0 && i >= s.failAfter {
			return fmt.Errorf("completion backend dropped the stream")
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

type stubContextBuilder struct {
	block   string
	lastTop int
}

func (s *stubContextBuilder) BuildContext(_ context.Context, _ string, _ uuid.UUID, topK int) (string, error) {
	s.lastTop = topK
	return s.block, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// ---- helpers ----

type capturedStream struct {
	mu     sync.Mutex
	events []dto.StreamEvent
}

func (c *capturedStream) emit(e dto.StreamEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capturedStream) contents() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	for _, e := range c.events {
		b.WriteString(e.Content)
	}
	return b.String()
}

func newChatFixture(existing *entity.Conversation, history []*entity.ChatMessage, model *stubLLM) (IChatService, *fakeUow, *memSnapshots) {
	uow := &fakeUow{
		convs:     &fakeConversationRepo{existing: existing},
		msgs:      &fakeChatMessageRepo{history: history},
		snapshots: newMemSnapshots(),
	}
	snapshots := newMemSnapshots()
	agg := analytics.NewAggregator(snapshots, nopLogger{}, nil)
	svc := NewChatService(
		&fakeUowFactory{uow: uow},
		&stubContextBuilder{block: "grounding"},
		model,
		agg,
		nil,
		metrics.Nop(),
		nopLogger{},
		3,
	)
	return svc, uow, snapshots
}

// ---- tests ----

func TestStreamChatEmitsFragmentsInOrder(t *testing.T) {
	model := &stubLLM{deltas: []string{"The ", "answer ", "is 42."}, failAfter: -1}
	svc, uow, _ := newChatFixture(nil, nil, model)

	stream := &capturedStream{}
	err := svc.StreamChat(context.Background(), uuid.New(), uuid.New(), &dto.SendChatRequest{Message: "question"}, stream.emit)
	assert.NoError(t, err)

	assert.Equal(t, "The answer is 42.", stream.contents())
	assert.True(t, uow.committed)

	// Fragments first, conversation id as the final distinct event.
	last := stream.events[len(stream.events)-1]
	assert.Equal(t, dto.StreamEventConversationId, last.Type)
	assert.NotNil(t, last.ConversationId)
	assert.Empty(t, last.Content)
}

func TestStreamChatPersistsBothMessagesOnSuccess(t *testing.T) {
	model := &stubLLM{deltas: []string{"hello"}, failAfter: -1}
	svc, uow, _ := newChatFixture(nil, nil, model)

	err := svc.StreamChat(context.Background(), uuid.New(), uuid.New(), &dto.SendChatRequest{Message: "hi there"}, (&capturedStream{}).emit)
	assert.NoError(t, err)

	assert.Len(t, uow.convs.created, 1)
	assert.Equal(t, "hi there", uow.convs.created[0].Title)
	assert.Len(t, uow.msgs.stored, 2)
	assert.Equal(t, entity.MessageRoleUser, uow.msgs.stored[0].Role)
	assert.Equal(t, "hi there", uow.msgs.stored[0].Content)
	assert.Equal(t, entity.MessageRoleAssistant, uow.msgs.stored[1].Role)
	assert.Equal(t, "hello", uow.msgs.stored[1].Content)
}

func TestStreamChatFailurePersistsNothing(t *testing.T) {
	model := &stubLLM{deltas: []string{"partial ", "answer"}, failAfter: 1}
	svc, uow, _ := newChatFixture(nil, nil, model)

	stream := &capturedStream{}
	err := svc.StreamChat(context.Background(), uuid.New(), uuid.New(), &dto.SendChatRequest{Message: "question"}, stream.emit)
	assert.NoError(t, err, "stream failures are reported in-band, not as a handler error")

	assert.Empty(t, uow.convs.created, "no conversation on a failed turn")
	assert.Empty(t, uow.msgs.stored, "no messages on a failed turn")

	last := stream.events[len(stream.events)-1]
	assert.Equal(t, dto.StreamEventError, last.Type)
	assert.NotEmpty(t, last.Error)
}

func TestStreamChatCancellationIsSilent(t *testing.T) {
	model := &stubLLM{deltas: []string{"a", "b", "c"}, failAfter: -1}
	svc, uow, _ := newChatFixture(nil, nil, model)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &capturedStream{}
	err := svc.StreamChat(ctx, uuid.New(), uuid.New(), &dto.SendChatRequest{Message: "question"}, stream.emit)
	assert.NoError(t, err)

	assert.Empty(t, uow.msgs.stored, "cancelled turn persists nothing")
	for _, e := range stream.events {
		assert.Empty(t, e.Error, "cancellation must not emit an error event")
	}
}

func TestStreamChatExistingConversationSkipsIdEvent(t *testing.T) {
	convId := uuid.New()
	tenantId := uuid.New()
	existing := &entity.Conversation{Id: convId, TenantId: tenantId, Title: "Older chat", CreatedAt: time.Now()}
	history := []*entity.ChatMessage{
		{Id: uuid.New(), ConversationId: convId, Role: entity.MessageRoleUser, Content: "earlier question"},
		{Id: uuid.New(), ConversationId: convId, Role: entity.MessageRoleAssistant, Content: "earlier answer"},
	}
	model := &stubLLM{deltas: []string{"followup answer"}, failAfter: -1}
	svc, uow, _ := newChatFixture(existing, history, model)

	stream := &capturedStream{}
	err := svc.StreamChat(context.Background(), tenantId, uuid.New(), &dto.SendChatRequest{
		ConversationId: &convId,
		Message:        "and then?",
	}, stream.emit)
	assert.NoError(t, err)

	assert.Empty(t, uow.convs.created)
	assert.Len(t, uow.convs.updated, 1)
	for _, e := range stream.events {
		assert.Nil(t, e.ConversationId, "existing conversations never re-announce their id")
	}
}

func TestStreamChatRecordsAnalytics(t *testing.T) {
	tenantId := uuid.New()
	model := &stubLLM{deltas: []string{"done"}, failAfter: -1}
	svc, _, snapshots := newChatFixture(nil, nil, model)

	err := svc.StreamChat(context.Background(), tenantId, uuid.New(), &dto.SendChatRequest{Message: "question"}, (&capturedStream{}).emit)
	assert.NoError(t, err)

	snap, err := snapshots.FindByTenant(context.Background(), tenantId)
	assert.NoError(t, err)
	assert.Equal(t, 1, snap.TotalConversations)
	assert.Equal(t, 2, snap.TotalMessages)
}

func TestDeriveTitleTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 500)
	title := deriveTitle(long)
	assert.Len(t, []rune(title), conversationTitleMax)

	assert.Equal(t, "short question", deriveTitle("  short question  "))
}
