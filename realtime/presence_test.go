package realtime

import (
	"context"
	"testing"

	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/stretchr/testify/require"
)

func TestMemoryPresence(t *testing.T) {
	p := NewMemoryPresence()
	ctx := context.Background()

	ids, err := p.List(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, p.Add(ctx, "acc-1", Entry{Role: accounts.RoleUser, ConnID: "conn-1"}))
	require.NoError(t, p.Add(ctx, "acc-2", Entry{Role: accounts.RoleAdmin, ConnID: "conn-2"}))

	ids, err = p.List(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"acc-1", "acc-2"}, ids)

	require.NoError(t, p.Remove(ctx, "acc-1"))
	ids, err = p.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"acc-2"}, ids)

	// Removing an absent id is not an error.
	require.NoError(t, p.Remove(ctx, "acc-1"))
}

func TestMemoryPresenceReconnectOverwrites(t *testing.T) {
	p := NewMemoryPresence()
	ctx := context.Background()

	require.NoError(t, p.Add(ctx, "acc-1", Entry{Role: accounts.RoleUser, ConnID: "conn-1"}))
	require.NoError(t, p.Add(ctx, "acc-1", Entry{Role: accounts.RoleUser, ConnID: "conn-2"}))

	ids, err := p.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"acc-1"}, ids)
}
