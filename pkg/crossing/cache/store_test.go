package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemory(),
		"badger": b,
	}
}

func TestStore(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			_, ok, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Put("k", []byte("v1")))
			require.NoError(t, s.Put("k", []byte("v2")))
			v, ok, err := s.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v2"), v)
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemory()
	value := []byte("abc")
	require.NoError(t, s.Put("k", value))
	value[0] = 'x'

	got, _, err := s.Get("k")
	require.NoError(t, err)
	got[1] = 'y'

	again, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Put("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestOpenBadgerRequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.EqualError(t, err, "badger store requires a path")
}
