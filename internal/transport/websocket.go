package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/arung-agamani/denpa-radio/internal/show"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	clientSendBuf  = 32
)

// wsMessage is the envelope every client receives. Kind is one of
// "log" or "action"; exactly one of Log/Action is populated.
type wsMessage struct {
	Kind   string                  `json:"kind"`
	Log    *show.PlaybackLogDetail `json:"log,omitempty"`
	Action *show.PlayAction        `json:"action,omitempty"`
}

type wsClient struct {
	id       string
	conn     *websocket.Conn
	sendChan chan wsMessage
	closeOnce sync.Once
}

func (c *wsClient) send(msg wsMessage) {
	select {
	case c.sendChan <- msg:
	default:
		// client is backed up; drop rather than block the broadcaster
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.sendChan)
		c.conn.Close()
	})
}

// WSBroadcaster fans out scheduler output to every connected websocket
// client. It is the only component that knows the wire shape of events;
// internal/show never imports it.
type WSBroadcaster struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*wsClient
}

func NewWSBroadcaster() *WSBroadcaster {
	return &WSBroadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*wsClient),
	}
}

// ServeWS upgrades the request and registers the connection as a
// broadcast recipient. It never blocks the caller beyond the upgrade.
func (b *WSBroadcaster) ServeWS(c *gin.Context) {
	conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan wsMessage, clientSendBuf),
	}

	b.mu.Lock()
	b.clients[client.id] = client
	b.mu.Unlock()

	go b.readPump(client)
	go b.writePump(client)
}

// readPump discards inbound frames but keeps the connection alive so
// that gorilla's pong handling and close detection both fire.
func (b *WSBroadcaster) readPump(client *wsClient) {
	defer b.unregister(client)
	client.conn.SetReadDeadline(time.Now().Add(pingInterval * 2))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pingInterval * 2))
		return nil
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *WSBroadcaster) writePump(client *wsClient) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer client.conn.Close()

	for {
		select {
		case msg, ok := <-client.sendChan:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				slog.Warn("failed to marshal client message", "error", err)
				continue
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (b *WSBroadcaster) unregister(client *wsClient) {
	b.mu.Lock()
	_, ok := b.clients[client.id]
	delete(b.clients, client.id)
	b.mu.Unlock()
	if ok {
		client.close()
	}
}

func (b *WSBroadcaster) BroadcastLog(entries []show.PlaybackLogDetail) {
	if len(entries) == 0 {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range entries {
		msg := wsMessage{Kind: "log", Log: &entries[i]}
		for _, c := range b.clients {
			c.send(msg)
		}
	}
}

func (b *WSBroadcaster) BroadcastActions(actions []show.PlayAction) {
	if len(actions) == 0 {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range actions {
		msg := wsMessage{Kind: "action", Action: &actions[i]}
		for _, c := range b.clients {
			c.send(msg)
		}
	}
}

func (b *WSBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.clients {
		c.close()
		delete(b.clients, id)
	}
}
