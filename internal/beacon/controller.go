package beacon

import (
	"errors"
	"fmt"
	"time"

	"github.com/chaz8081/gobeacon/internal/ble"
	"github.com/chaz8081/gobeacon/internal/debuglog"
)

// Advertising interval window for the beacon profile.
const (
	AdvertisingIntervalMin = 60 * time.Millisecond
	AdvertisingIntervalMax = 60 * time.Millisecond
)

// ErrAlreadyStarted is returned by Start on a controller that has left
// StateUninitialized.
var ErrAlreadyStarted = errors.New("beacon: controller already started")

// State is the controller lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateConfiguring
	// StateAdvertising is terminal; only a reset leaves it.
	StateAdvertising
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfiguring:
		return "configuring"
	case StateAdvertising:
		return "advertising"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Bring-up steps, reported as the code of a sink error message.
const (
	stepSetMode uint16 = iota + 1
	stepClearData
	stepSetInterval
	stepStoreData
	stepStartAdvertising
)

// Controller owns the resolved Config and brings the radio up as a
// non-connectable broadcaster. It is not safe for concurrent use; the host
// calls it from one goroutine.
type Controller struct {
	radio ble.Radio
	sink  debuglog.Sink

	state   State
	cfg     Config
	payload Payload
}

// NewController creates a controller in StateUninitialized.
func NewController(radio ble.Radio, sink debuglog.Sink) *Controller {
	if sink == nil {
		sink = debuglog.NoOp{}
	}
	return &Controller{radio: radio, sink: sink}
}

// Start takes ownership of cfg and runs the bring-up sequence. On a radio
// failure the sequence stops, the controller stays in StateConfiguring and
// the wrapped error is returned.
func (c *Controller) Start(cfg Config) error {
	if c.state != StateUninitialized {
		return fmt.Errorf("%w (state %s)", ErrAlreadyStarted, c.state)
	}
	c.state = StateConfiguring
	c.cfg = cfg
	c.payload = Encode(cfg)

	if err := c.radio.SetMode(ble.BroadcasterMode); err != nil {
		return c.fail(stepSetMode, "set broadcaster mode", err)
	}
	if err := c.radio.ClearAdvertisingData(ble.SourceAdvertise); err != nil {
		return c.fail(stepClearData, "clear advertising data", err)
	}
	if err := c.radio.SetAdvertisingInterval(AdvertisingIntervalMin, AdvertisingIntervalMax); err != nil {
		return c.fail(stepSetInterval, "set advertising interval", err)
	}
	if err := c.radio.StoreAdvertisingData(ble.SourceAdvertise, c.payload[:]); err != nil {
		return c.fail(stepStoreData, "store advertising data", err)
	}
	if err := c.radio.StartAdvertising(true, ble.WhitelistDisabled, ble.AddressRandom); err != nil {
		return c.fail(stepStartAdvertising, "start advertising", err)
	}

	c.state = StateAdvertising
	return nil
}

func (c *Controller) fail(step uint16, what string, err error) error {
	c.sink.WriteErrorMessage(what+" failed", step)
	return fmt.Errorf("beacon: %s: %w", what, err)
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Config returns the owned configuration (zero before Start).
func (c *Controller) Config() Config { return c.cfg }

// Payload returns the encoded advertising payload (zero before Start).
func (c *Controller) Payload() Payload { return c.payload }
