package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches one upgraded connection to the hub.
func ServeWs(hub *Hub, c *websocket.Conn, tenantId uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, TenantID: tenantId, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
