// Package keystore provides the persisted 16-bit user keys the beacon reads
// its identity from. Reads never fail: an absent key, an out-of-range index
// and a backend read error all read as 0.
package keystore

import (
	"fmt"
	"sync"
)

// MaxUserKeys is the number of user key slots.
const MaxUserKeys = 8

// Reader reads one user key.
type Reader interface {
	ReadUserKey(index int) uint16
}

// Writer stores one user key.
type Writer interface {
	WriteUserKey(index int, value uint16) error
}

func checkIndex(index int) error {
	if index < 0 || index >= MaxUserKeys {
		return fmt.Errorf("keystore: index %d out of range [0,%d)", index, MaxUserKeys)
	}
	return nil
}

// Static is a fixed list of user keys, e.g. from the config file.
type Static []uint16

func (s Static) ReadUserKey(index int) uint16 {
	if index < 0 || index >= len(s) || index >= MaxUserKeys {
		return 0
	}
	return s[index]
}

// Map is an in-memory, mutable key store. The zero value is ready to use.
type Map struct {
	mu   sync.RWMutex
	keys map[int]uint16
}

// NewMap creates a Map holding the given values.
func NewMap(values map[int]uint16) *Map {
	m := &Map{}
	for i, v := range values {
		_ = m.WriteUserKey(i, v)
	}
	return m
}

func (m *Map) ReadUserKey(index int) uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys[index]
}

func (m *Map) WriteUserKey(index int, value uint16) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = make(map[int]uint16)
	}
	m.keys[index] = value
	return nil
}

// Compile-time interface checks.
var (
	_ Reader = Static(nil)
	_ Reader = (*Map)(nil)
	_ Writer = (*Map)(nil)
)
