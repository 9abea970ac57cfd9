package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	s := Static{0x1234, 7, 0, 0xFFB6}

	assert.Equal(t, uint16(0x1234), s.ReadUserKey(0))
	assert.Equal(t, uint16(7), s.ReadUserKey(1))
	assert.Equal(t, uint16(0), s.ReadUserKey(2))
	assert.Equal(t, uint16(0xFFB6), s.ReadUserKey(3))
	assert.Equal(t, uint16(0), s.ReadUserKey(4), "beyond list reads as 0")
	assert.Equal(t, uint16(0), s.ReadUserKey(-1))
	assert.Equal(t, uint16(0), Static(nil).ReadUserKey(0))
}

func TestMap(t *testing.T) {
	var m Map
	assert.Equal(t, uint16(0), m.ReadUserKey(0), "zero value reads as 0")

	require.NoError(t, m.WriteUserKey(1, 500))
	assert.Equal(t, uint16(500), m.ReadUserKey(1))

	require.Error(t, m.WriteUserKey(MaxUserKeys, 1))
	require.Error(t, m.WriteUserKey(-1, 1))

	m2 := NewMap(map[int]uint16{0: 0xCAFE, 3: 4})
	assert.Equal(t, uint16(0xCAFE), m2.ReadUserKey(0))
	assert.Equal(t, uint16(4), m2.ReadUserKey(3))
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keys.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, uint16(0), s.ReadUserKey(0), "absent key reads as 0")

	require.NoError(t, s.WriteUserKey(0, 0x1234))
	require.NoError(t, s.WriteUserKey(3, 0xFFC5))
	require.NoError(t, s.WriteUserKey(3, 0x00C4), "overwrite")

	assert.Equal(t, uint16(0x1234), s.ReadUserKey(0))
	assert.Equal(t, uint16(0x00C4), s.ReadUserKey(3))
	assert.Equal(t, uint16(0), s.ReadUserKey(MaxUserKeys), "out of range reads as 0")

	all, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, [MaxUserKeys]uint16{0x1234, 0, 0, 0x00C4}, all)

	require.Error(t, s.WriteUserKey(8, 1))
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteUserKey(1, 0xFFFF))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, uint16(0xFFFF), s.ReadUserKey(1))
}

func TestSQLiteCloseNil(t *testing.T) {
	var s *SQLite
	assert.NoError(t, s.Close())
}
