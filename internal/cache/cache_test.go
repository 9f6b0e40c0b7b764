package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func TestBoltStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenBolt(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	var got verdict
	found, err := store.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := verdict{Label: "joy", Confidence: 0.75}
	require.NoError(t, store.Set(ctx, Key("vader", "add tests"), want))

	found, err = store.Get(ctx, Key("vader", "add tests"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestBoltStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", verdict{Label: "anger"}))
	require.NoError(t, store.Close())

	store, err = OpenBolt(path)
	require.NoError(t, err)
	defer store.Close()

	var got verdict
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "anger", got.Label)
}

func TestKey(t *testing.T) {
	a := Key("openai", "fix bug")
	assert.Equal(t, a, Key("openai", "fix bug"))
	assert.NotEqual(t, a, Key("gemini", "fix bug"))
	assert.Len(t, a, len("openai:")+64)
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "", 0)
	assert.Error(t, err)

	_, err = NewRedisStore(context.Background(), "not-a-url://x", 0)
	assert.Error(t, err)
}
