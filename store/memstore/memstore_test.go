package memstore_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/ttb-portal/store"
	"github.com/jrsteele09/ttb-portal/store/memstore"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()

	_, ok, err := m.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, store.KeyToken, "abc"))
	v, ok, err := m.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", v)

	require.NoError(t, m.Remove(ctx, store.KeyToken))
	require.NoError(t, m.Remove(ctx, store.KeyToken))
	require.Equal(t, 0, m.Len())
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()
	ts := store.NewTokenSource(m)

	tok, err := ts.Token()
	require.NoError(t, err)
	require.False(t, tok.Valid())

	require.NoError(t, m.Set(ctx, store.KeyToken, "abc"))
	tok, err = ts.Token()
	require.NoError(t, err)
	require.True(t, tok.Valid())
	require.Equal(t, "abc", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}
