// Package ble provides the broadcast-side radio boundary for the beacon:
// GAP mode selection, advertising data storage and advertising control.
// Every call is fallible so callers can report and test failures.
package ble

import (
	"errors"
	"fmt"
	"time"
)

// Advertising interval limits accepted by the link layer.
const (
	MinAdvertisingInterval = 20 * time.Millisecond
	MaxAdvertisingInterval = 10240 * time.Millisecond
)

// MaxStoredDataLen is the largest AD structure (type + value, no length
// byte) that fits legacy advertising data once prefixed.
const MaxStoredDataLen = 30

var (
	ErrInvalidInterval = errors.New("ble: invalid advertising interval")
	ErrDataTooLong     = errors.New("ble: advertising data too long")
	ErrUnsupported     = errors.New("ble: unsupported by radio")
)

// Role is the GAP role.
type Role int

const (
	RoleBroadcaster Role = iota
	RoleObserver
	RolePeripheral
	RoleCentral
)

func (r Role) String() string {
	switch r {
	case RoleBroadcaster:
		return "broadcaster"
	case RoleObserver:
		return "observer"
	case RolePeripheral:
		return "peripheral"
	case RoleCentral:
		return "central"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Mode bundles the GAP role with discoverability, connectability, bonding
// and security settings.
type Mode struct {
	Role         Role
	Discoverable bool
	Connectable  bool
	Bondable     bool
	Security     bool
}

// BroadcasterMode is a non-discoverable, non-connectable, non-bondable
// broadcaster without security.
var BroadcasterMode = Mode{Role: RoleBroadcaster}

// Source selects which data set a store call targets.
type Source int

const (
	SourceAdvertise Source = iota
	SourceScanResponse
)

func (s Source) String() string {
	if s == SourceScanResponse {
		return "scan-response"
	}
	return "advertise"
}

// WhitelistMode controls the controller's device whitelist.
type WhitelistMode int

const (
	WhitelistDisabled WhitelistMode = iota
	WhitelistEnabled
)

// AddressType is the own-address type used while advertising.
type AddressType int

const (
	AddressPublic AddressType = iota
	AddressRandom
)

func (a AddressType) String() string {
	if a == AddressRandom {
		return "random"
	}
	return "public"
}

// Radio abstracts the link-layer stack for testing.
type Radio interface {
	// Enable initializes the protocol stack.
	Enable() error
	// SetMode sets the GAP role and its discover/connect/bond/security modes.
	SetMode(mode Mode) error
	// ClearAdvertisingData drops every AD structure stored for src.
	ClearAdvertisingData(src Source) error
	// SetAdvertisingInterval sets the advertising interval window.
	SetAdvertisingInterval(min, max time.Duration) error
	// StoreAdvertisingData appends one AD structure (type + value, without
	// its length byte) to src.
	StoreAdvertisingData(src Source, data []byte) error
	// StartAdvertising starts or stops advertising.
	StartAdvertising(enable bool, whitelist WhitelistMode, addr AddressType) error
}

// ValidateInterval checks an interval window against the link-layer limits.
func ValidateInterval(min, max time.Duration) error {
	if min < MinAdvertisingInterval || max > MaxAdvertisingInterval || min > max {
		return fmt.Errorf("%w: min=%s max=%s", ErrInvalidInterval, min, max)
	}
	return nil
}

// LinkEvent is a link-manager notification raised by a radio backend.
type LinkEvent struct {
	Code    uint8
	Address string
}

// Link-manager event codes (HCI event numbering).
const (
	LinkEventDisconnectComplete uint8 = 0x05
	LinkEventConnectionComplete uint8 = 0x3E
)

// LinkEventSource is implemented by radios that surface link-manager events.
type LinkEventSource interface {
	SetLinkEventHandler(handler func(LinkEvent))
}
