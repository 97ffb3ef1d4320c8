package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	sendBufferSize = 256
)

type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	accountID string
	onlyOwn   bool
}

func (c *Client) wants(e domain.Event) bool {
	return !c.onlyOwn || e.AccountID == c.accountID
}

// EventHub fans marketplace events out to websocket subscribers. Run must be
// started before events are published; events published while the hub is
// saturated are dropped.
type EventHub struct {
	sessions   SessionService
	upgrader   websocket.Upgrader
	clients    map[*Client]bool
	mu         sync.RWMutex
	broadcast  chan domain.Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewEventHub(sessions SessionService, allowedOrigins []string) *EventHub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &EventHub{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
		clients:    make(map[*Client]bool),
		broadcast:  make(chan domain.Event, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *EventHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				zap.L().Error("encoding event failed", zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(event) {
					continue
				}
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *EventHub) Publish(event domain.Event) {
	select {
	case h.broadcast <- event:
	default:
		zap.L().Warn("event hub is full, dropping event", zap.String("type", string(event.Type)), zap.String("token_id", event.TokenID))
	}
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// HandleEvents godoc
// @Summary      Marketplace event feed
// @Description  Upgrades to a websocket that receives minted, bought, cart_added and cart_removed events as JSON. Browsers pass the token as ?token= since they cannot set headers on websocket requests.
// @Tags         events
// @Param        mine  query     bool  false  "only the current user's events"
// @Success      101   {string}  string  "Switching Protocols"
// @Failure      401   {object}  response.Err
// @Router       /events [get]
// @Security BearerAuth
func (h *EventHub) HandleEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.sessions)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	onlyOwn, _ := strconv.ParseBool(ctx.Query("mine"))

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		accountID: user.AccountID,
		onlyOwn:   onlyOwn,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; the feed is one-way.
func (c *Client) readPump(h *EventHub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("websocket closed", zap.String("account_id", c.accountID), zap.Error(err))
			}
			return
		}
	}
}
