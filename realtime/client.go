package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBufferSize = 256
)

// Client is one authenticated realtime connection.
type Client struct {
	id        string
	accountID string
	role      accounts.Role
	gateway   *Gateway
	conn      *websocket.Conn
	send      chan []byte
	rooms     map[string]bool
}

func NewClient(gateway *Gateway, conn *websocket.Conn, accountID string, role accounts.Role) *Client {
	return &Client{
		id:        uuid.New().String(),
		accountID: accountID,
		role:      role,
		gateway:   gateway,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		rooms:     make(map[string]bool),
	}
}

// deliver queues data for the write pump, dropping when the client cannot
// keep up. Broadcasts are best-effort.
func (c *Client) deliver(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("account_id", c.accountID).Msg("client send buffer full, dropping message")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.gateway.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("account_id", c.accountID).Msg("websocket read error")
			}
			break
		}
		c.gateway.handleMessage(c, data)
	}
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
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("account_id", c.accountID).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
