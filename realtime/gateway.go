package realtime

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/rs/zerolog/log"
)

// Events emitted by the gateway itself. Everything else passing through the
// broadcast primitives is payload-transparent.
const (
	EventUserOnline  = "user:online"
	EventUserOffline = "user:offline"
	EventGetOnline   = "users:getOnline"
	EventOnlineList  = "users:online"
)

// Envelope is the wire format for every gateway message. ID carries the
// request id on request/response exchanges such as users:getOnline.
type Envelope struct {
	Event string `json:"event"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Gateway owns the connected clients, their room membership, and the
// presence registry. Each connection joins exactly two rooms: its role and
// its identity room (user_<id>).
type Gateway struct {
	presence PresenceStore

	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

func NewGateway(presence PresenceStore) *Gateway {
	return &Gateway{
		presence: presence,
		clients:  make(map[*Client]bool),
		rooms:    make(map[string]map[*Client]bool),
	}
}

// Register wires a freshly authenticated client into the gateway and starts
// its pumps. The caller has already verified the handshake token.
func (g *Gateway) Register(c *Client) {
	g.add(c)
	go c.writePump()
	go c.readPump()
}

func (g *Gateway) add(c *Client) {
	g.mu.Lock()
	g.clients[c] = true
	g.joinRoom(c, string(c.role))
	g.joinRoom(c, identityRoom(c.accountID))
	g.mu.Unlock()

	if err := g.presence.Add(context.Background(), c.accountID, Entry{Role: c.role, ConnID: c.id}); err != nil {
		log.Error().Err(err).Str("account_id", c.accountID).Msg("presence add failed")
	}

	// Presence goes to everyone except the connection that just arrived.
	g.broadcastExcept(c, Envelope{
		Event: EventUserOnline,
		Data:  map[string]any{"userId": c.accountID, "role": c.role},
	})
	log.Info().Str("account_id", c.accountID).Str("role", string(c.role)).Msg("user connected")
}

func (g *Gateway) remove(c *Client) {
	g.mu.Lock()
	if !g.clients[c] {
		g.mu.Unlock()
		return
	}
	delete(g.clients, c)
	for room := range c.rooms {
		g.leaveRoom(c, room)
	}
	close(c.send)
	g.mu.Unlock()

	if err := g.presence.Remove(context.Background(), c.accountID); err != nil {
		log.Error().Err(err).Str("account_id", c.accountID).Msg("presence remove failed")
	}

	g.BroadcastAll(EventUserOffline, map[string]any{"userId": c.accountID})
	log.Info().Str("account_id", c.accountID).Msg("user disconnected")
}

// BroadcastAll delivers to every connected session.
func (g *Gateway) BroadcastAll(event string, payload any) {
	g.broadcastExcept(nil, Envelope{Event: event, Data: payload})
}

// BroadcastToRoles delivers only to sessions whose role room matches.
func (g *Gateway) BroadcastToRoles(roles []accounts.Role, event string, payload any) {
	data, ok := marshalEnvelope(Envelope{Event: event, Data: payload})
	if !ok {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, role := range roles {
		for client := range g.rooms[string(role)] {
			client.deliver(data)
		}
	}
}

// BroadcastToAccount delivers to the identity room for one account, e.g.
// account-scoped security notices.
func (g *Gateway) BroadcastToAccount(accountID, event string, payload any) {
	data, ok := marshalEnvelope(Envelope{Event: event, Data: payload})
	if !ok {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for client := range g.rooms[identityRoom(accountID)] {
		client.deliver(data)
	}
}

// ListOnline returns the account ids currently in the presence registry.
func (g *Gateway) ListOnline() []string {
	ids, err := g.presence.List(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("presence list failed")
		return []string{}
	}
	sort.Strings(ids)
	return ids
}

// handleMessage processes one inbound client message.
func (g *Gateway) handleMessage(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Str("account_id", c.accountID).Err(err).Msg("invalid realtime message")
		return
	}

	switch env.Event {
	case EventGetOnline:
		reply, ok := marshalEnvelope(Envelope{
			Event: EventOnlineList,
			ID:    env.ID,
			Data:  g.ListOnline(),
		})
		if ok {
			c.deliver(reply)
		}
	default:
		// Clients only consume; unknown events are dropped.
		log.Debug().Str("event", env.Event).Str("account_id", c.accountID).Msg("unhandled realtime event")
	}
}

func (g *Gateway) broadcastExcept(skip *Client, env Envelope) {
	data, ok := marshalEnvelope(env)
	if !ok {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for client := range g.clients {
		if client == skip {
			continue
		}
		client.deliver(data)
	}
}

// joinRoom and leaveRoom require g.mu held for writing.
func (g *Gateway) joinRoom(c *Client, room string) {
	if g.rooms[room] == nil {
		g.rooms[room] = make(map[*Client]bool)
	}
	g.rooms[room][c] = true
	c.rooms[room] = true
}

func (g *Gateway) leaveRoom(c *Client, room string) {
	if clients, ok := g.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(g.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func identityRoom(accountID string) string {
	return "user_" + accountID
}

func marshalEnvelope(env Envelope) ([]byte, bool) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("event", env.Event).Msg("failed to marshal realtime envelope")
		return nil, false
	}
	return data, true
}
