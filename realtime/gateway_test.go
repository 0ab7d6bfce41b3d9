package realtime

import (
	"encoding/json"
	"testing"

	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/stretchr/testify/require"
)

// testClient builds a client without a network connection; the tests drive
// the gateway's add/remove and broadcast paths directly and read delivered
// frames off the send channel.
func testClient(g *Gateway, accountID string, role accounts.Role) *Client {
	return NewClient(g, nil, accountID, role)
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	default:
		t.Fatal("no message delivered")
		return Envelope{}
	}
}

func requireNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected message delivered: %s", data)
	default:
	}
}

func TestConnectJoinsRoleAndIdentityRooms(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	c := testClient(g, "acc-1", accounts.RoleAdmin)

	g.add(c)

	require.True(t, c.rooms["ADMIN"])
	require.True(t, c.rooms["user_acc-1"])
	require.Len(t, c.rooms, 2)
	require.Equal(t, []string{"acc-1"}, g.ListOnline())
}

func TestConnectBroadcastsOnlineToOthersOnly(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	first := testClient(g, "acc-1", accounts.RoleUser)
	g.add(first)
	requireNoMessage(t, first) // no self-echo for own arrival

	second := testClient(g, "acc-2", accounts.RoleAdmin)
	g.add(second)

	env := receive(t, first)
	require.Equal(t, EventUserOnline, env.Event)
	payload := env.Data.(map[string]any)
	require.Equal(t, "acc-2", payload["userId"])
	require.Equal(t, "ADMIN", payload["role"])

	requireNoMessage(t, second)
}

func TestDisconnectBroadcastsOfflineAndClearsPresence(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	first := testClient(g, "acc-1", accounts.RoleUser)
	second := testClient(g, "acc-2", accounts.RoleUser)
	g.add(first)
	g.add(second)
	receive(t, first) // drain acc-2's online event

	g.remove(second)

	env := receive(t, first)
	require.Equal(t, EventUserOffline, env.Event)
	require.Equal(t, "acc-1", g.ListOnline()[0])
	require.Len(t, g.ListOnline(), 1)

	// Removing twice is a no-op.
	g.remove(second)
	requireNoMessage(t, first)
}

func TestBroadcastToRoles(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	admin := testClient(g, "acc-1", accounts.RoleAdmin)
	user := testClient(g, "acc-2", accounts.RoleUser)
	g.add(admin)
	g.add(user)
	receive(t, admin) // drain presence event

	g.BroadcastToRoles([]accounts.Role{accounts.RoleAdmin}, "product:created", map[string]any{"id": "p-1"})

	env := receive(t, admin)
	require.Equal(t, "product:created", env.Event)
	requireNoMessage(t, user)
}

func TestBroadcastToAccount(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	first := testClient(g, "acc-1", accounts.RoleUser)
	second := testClient(g, "acc-2", accounts.RoleUser)
	g.add(first)
	g.add(second)
	receive(t, first) // drain presence event

	g.BroadcastToAccount("acc-2", "notification:new", map[string]any{"message": "Your password was changed"})

	env := receive(t, second)
	require.Equal(t, "notification:new", env.Event)
	requireNoMessage(t, first)
}

func TestBroadcastAll(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	first := testClient(g, "acc-1", accounts.RoleUser)
	second := testClient(g, "acc-2", accounts.RoleAdmin)
	g.add(first)
	g.add(second)
	receive(t, first) // drain presence event

	g.BroadcastAll("order:updated", map[string]any{"id": "o-1"})

	require.Equal(t, "order:updated", receive(t, first).Event)
	require.Equal(t, "order:updated", receive(t, second).Event)
}

func TestHandleGetOnline(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	first := testClient(g, "acc-1", accounts.RoleUser)
	second := testClient(g, "acc-2", accounts.RoleUser)
	g.add(first)
	g.add(second)
	receive(t, first) // drain presence event

	g.handleMessage(first, []byte(`{"event":"users:getOnline","id":"req-7"}`))

	env := receive(t, first)
	require.Equal(t, EventOnlineList, env.Event)
	require.Equal(t, "req-7", env.ID)

	ids := env.Data.([]any)
	require.ElementsMatch(t, []any{"acc-1", "acc-2"}, ids)
	requireNoMessage(t, second)
}

func TestHandleMalformedMessageIgnored(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	c := testClient(g, "acc-1", accounts.RoleUser)
	g.add(c)

	g.handleMessage(c, []byte("{not json"))
	g.handleMessage(c, []byte(`{"event":"users:typing"}`))
	requireNoMessage(t, c)
}

func TestRoomsEmptiedAfterLastMember(t *testing.T) {
	g := NewGateway(NewMemoryPresence())
	c := testClient(g, "acc-1", accounts.RoleModerator)
	g.add(c)
	g.remove(c)

	g.mu.RLock()
	defer g.mu.RUnlock()
	require.Empty(t, g.rooms)
	require.Empty(t, g.clients)
}
