package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"docpilot-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "analytics_events"

// Hub fans analytics pings out to dashboard connections, keyed by tenant.
// With redis configured, pings also travel through pub/sub so every instance
// reaches its own connections.
type Hub struct {
	// tenant -> open connections (several dashboards per tenant)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.TenantID] = append(h.clients[client.TenantID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Dashboard connected", map[string]interface{}{"tenant_id": client.TenantID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.TenantID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.TenantID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.TenantID]) == 0 {
					delete(h.clients, client.TenantID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyTenant pushes an event to every dashboard of one tenant. Satisfies
// the analytics notifier contract; must not block, so slow clients are
// dropped rather than waited on.
func (h *Hub) NotifyTenant(tenantId uuid.UUID, event string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":      event,
		"tenant_id": tenantId,
		"at":        time.Now().UTC(),
	})

	// With redis configured the ping comes back through the subscription,
	// which also covers this instance's own connections. Delivering locally
	// as well would ping every dashboard twice.
	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_tenant_id": tenantId.String(),
			"message":          json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), redisChannel, payload)
		return
	}

	h.deliverLocal(tenantId, data)
}

func (h *Hub) deliverLocal(tenantId uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[tenantId]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Send buffer full, dropping dashboard client", map[string]interface{}{
				"tenant_id": tenantId,
			})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// subscribeToRedis delivers pings published by other instances to this
// instance's local connections.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetTenantID string          `json:"target_tenant_id"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Unreadable cluster event", map[string]interface{}{"error": err.Error()})
			continue
		}

		tenantId, err := uuid.Parse(payload.TargetTenantID)
		if err != nil {
			continue
		}
		h.deliverLocal(tenantId, payload.Message)
	}
}
