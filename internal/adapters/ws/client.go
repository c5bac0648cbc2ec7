package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// Controller upgrades HTTP requests and pumps hub events to each client.
type Controller struct {
	hub        *Hub
	readLimit  int64
	pingPeriod time.Duration
}

func NewController(hub *Hub, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		hub:        hub,
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	id   string
	conn WSConn
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		_ = c.conn.Close()
	})
}

// HandleEvents subscribes the caller to the event stream until the socket
// closes or ctx is cancelled.
func (ctl *Controller) HandleEvents(ctx context.Context, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}

	client := &wsClient{id: uuid.NewString(), conn: conn}
	events, unsub := ctl.hub.Subscribe()
	log.Info().Str("module", "ws").Str("client", client.id).Int("subs", ctl.hub.Len()).Msg("client subscribed")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		defer client.close()
		ctl.writePump(ctx, client, events)
	}()
	go func() {
		defer cancel()
		defer unsub()
		defer client.close()
		ctl.readPump(ctx, client)
	}()
}

func (ctl *Controller) writePump(ctx context.Context, c *wsClient, events <-chan Event) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("marshal event")
				continue
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Warn().Err(err).Str("module", "ws").Str("client", c.id).Msg("write")
				return
			}
		}
	}
}

// readPump only watches for the peer closing; inbound payloads are ignored,
// control flows through the REST API.
func (ctl *Controller) readPump(ctx context.Context, c *wsClient) {
	c.conn.SetReadLimit(ctl.readLimit)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if _, _, err := c.conn.ReadMessage(); err != nil {
				log.Info().Str("module", "ws").Str("client", c.id).Msg("client disconnected")
				return
			}
		}
	}
}
