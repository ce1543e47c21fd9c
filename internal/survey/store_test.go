package survey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutAssignsID(t *testing.T) {
	store := NewStore(time.Minute)

	s := buildFixture(t)
	id := store.Put(s)

	assert.NotEmpty(t, id)
	assert.Equal(t, id, s.ID)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestStorePutKeepsExistingID(t *testing.T) {
	store := NewStore(time.Minute)

	s := buildFixture(t)
	s.ID = "fixed-id"

	assert.Equal(t, "fixed-id", store.Put(s))
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore(time.Minute)

	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(10 * time.Millisecond)

	id := store.Put(buildFixture(t))
	time.Sleep(30 * time.Millisecond)

	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(time.Minute)

	id := store.Put(buildFixture(t))
	store.Delete(id)

	_, ok := store.Get(id)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestStoreReplaceOnMutate(t *testing.T) {
	store := NewStore(time.Minute)

	s := buildFixture(t)
	id := store.Put(s)

	out, err := s.ChangeColumnType(3, "open")
	require.NoError(t, err)
	store.Put(out)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, out, got)
}
