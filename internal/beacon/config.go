// Package beacon resolves the beacon identity from persisted user keys,
// encodes it into the manufacturer-specific advertising payload and drives
// the radio through bring-up.
package beacon

import (
	"fmt"

	"github.com/google/uuid"
)

// User key indices read at bring-up.
const (
	KeyUUIDMSW = 0
	KeyMajor   = 1
	KeyMinor   = 2
	KeyTxPower = 3
)

// keyUnset is the sentinel user key value meaning "use the built-in default".
const keyUnset = 0

// Built-in identity used when a user key is unset.
const (
	DefaultMajor   uint16 = 0
	DefaultMinor   uint16 = 0
	DefaultTxPower int8   = -74
)

// DefaultUUID is the built-in beacon UUID. Only bytes 0-1 can be overridden
// by KeyUUIDMSW; bytes 2-15 are fixed.
var DefaultUUID = [16]byte{
	0x00, 0x00, 0xBE, 0xAC, 0xD1, 0x02, 0x11, 0xE1,
	0x9B, 0x23, 0x00, 0x02, 0x5B, 0x00, 0xA5, 0xA5,
}

// KeyReader reads a persisted 16-bit user key. Absent keys read as 0.
type KeyReader interface {
	ReadUserKey(index int) uint16
}

// Config is the resolved beacon identity.
type Config struct {
	UUID    [16]byte
	Major   uint16
	Minor   uint16
	TxPower int8 // measured power at 1 m, dBm
}

// DefaultConfig returns the identity used when every user key is unset.
func DefaultConfig() Config {
	return Config{
		UUID:    DefaultUUID,
		Major:   DefaultMajor,
		Minor:   DefaultMinor,
		TxPower: DefaultTxPower,
	}
}

// Resolve builds a Config from user keys 0-3, substituting the built-in
// default for any key that reads as 0. An explicit 0 cannot be told apart
// from an unset key.
func Resolve(keys KeyReader) Config {
	cfg := DefaultConfig()

	if msw := keys.ReadUserKey(KeyUUIDMSW); msw != keyUnset {
		cfg.UUID[0] = byte(msw >> 8)
		cfg.UUID[1] = byte(msw)
	}
	if major := keys.ReadUserKey(KeyMajor); major != keyUnset {
		cfg.Major = major
	}
	if minor := keys.ReadUserKey(KeyMinor); minor != keyUnset {
		cfg.Minor = minor
	}
	if tx := keys.ReadUserKey(KeyTxPower); tx != keyUnset {
		// Negative dBm values are stored as the two's complement low byte.
		cfg.TxPower = int8(uint8(tx))
	}
	return cfg
}

// UUIDString returns the UUID in canonical 8-4-4-4-12 form.
func (c Config) UUIDString() string {
	return uuid.UUID(c.UUID).String()
}

func (c Config) String() string {
	return fmt.Sprintf("uuid=%s major=%d minor=%d tx_power=%ddBm", c.UUIDString(), c.Major, c.Minor, c.TxPower)
}
