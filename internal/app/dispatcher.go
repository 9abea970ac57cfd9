// Package app holds the beacon's lifecycle entry points and the host loop
// that invokes them one at a time.
package app

import (
	"fmt"
	"log/slog"

	"github.com/chaz8081/gobeacon/internal/beacon"
	"github.com/chaz8081/gobeacon/internal/ble"
	"github.com/chaz8081/gobeacon/internal/debuglog"
)

// SleepState is the power state the device woke from.
type SleepState int

const (
	SleepStateColdPowerup SleepState = iota
	SleepStateWarmPowerup
	SleepStateDormant
	SleepStateHibernate
)

func (s SleepState) String() string {
	switch s {
	case SleepStateColdPowerup:
		return "cold-powerup"
	case SleepStateWarmPowerup:
		return "warm-powerup"
	case SleepStateDormant:
		return "dormant"
	case SleepStateHibernate:
		return "hibernate"
	default:
		return fmt.Sprintf("sleep-state(%d)", int(s))
	}
}

// SystemEventID identifies a generic system notification.
type SystemEventID int

const (
	SystemEventBatteryLow SystemEventID = iota
	SystemEventPIOChanged
)

// LMEventCode is a link-manager event code (HCI event numbering).
type LMEventCode uint8

const (
	LMEventDisconnectComplete LMEventCode = LMEventCode(ble.LinkEventDisconnectComplete)
	LMEventAdvertisingReport  LMEventCode = 0x3D
	LMEventConnectionComplete LMEventCode = LMEventCode(ble.LinkEventConnectionComplete)
)

// Dispatcher implements the lifecycle entry points. Entry points must not
// be called concurrently; Host serializes them.
type Dispatcher struct {
	keys  beacon.KeyReader
	radio ble.Radio
	sink  debuglog.Sink
	ctrl  *beacon.Controller
}

// NewDispatcher creates a Dispatcher. A nil sink disables diagnostics.
func NewDispatcher(keys beacon.KeyReader, radio ble.Radio, sink debuglog.Sink) *Dispatcher {
	if sink == nil {
		sink = debuglog.NoOp{}
	}
	return &Dispatcher{keys: keys, radio: radio, sink: sink}
}

// OnPowerOnReset runs once after a cold boot, before OnInit. Nothing needs
// cold-boot-only setup yet.
func (d *Dispatcher) OnPowerOnReset() {}

// OnInit runs after every reset: it initializes diagnostics and the stack,
// resolves the identity and brings the beacon up on a fresh controller.
func (d *Dispatcher) OnInit(last SleepState) error {
	d.sink.Init()
	d.sink.WriteString("\r\n\r\n*****************\r\n")
	d.sink.WriteString("Beacon example\r\n")

	if err := d.radio.Enable(); err != nil {
		d.sink.WriteErrorMessage("stack init failed", 0)
		return fmt.Errorf("app: init stack: %w", err)
	}

	cfg := beacon.Resolve(d.keys)
	d.writeConfig(cfg)
	slog.Info("[BEACON] identity resolved",
		"uuid", cfg.UUIDString(),
		"major", cfg.Major,
		"minor", cfg.Minor,
		"tx_power", cfg.TxPower,
		"wake", last.String(),
	)

	d.ctrl = beacon.NewController(d.radio, d.sink)
	if err := d.ctrl.Start(cfg); err != nil {
		return err
	}

	payload := d.ctrl.Payload()
	slog.Info("[BEACON] advertising", "payload", fmt.Sprintf("% X", payload[:]))
	return nil
}

// OnSystemEvent receives generic system notifications such as battery low.
func (d *Dispatcher) OnSystemEvent(id SystemEventID, data any) {
	slog.Debug("[BEACON] system event ignored", "id", int(id))
}

// OnLinkManagerEvent always returns true: the beacon never accepts
// connections, so every event gets the stack's default handling.
func (d *Dispatcher) OnLinkManagerEvent(code LMEventCode, data any) bool {
	return true
}

// Controller returns the controller created by the last OnInit, or nil.
func (d *Dispatcher) Controller() *beacon.Controller {
	return d.ctrl
}

func (d *Dispatcher) writeConfig(cfg beacon.Config) {
	d.sink.WriteString("UUID: ")
	d.sink.WriteUUID128(cfg.UUID)
	d.sink.WriteString("\r\nMajor: ")
	d.sink.WriteUint16(cfg.Major)
	d.sink.WriteString("\r\nMinor: ")
	d.sink.WriteUint16(cfg.Minor)
	d.sink.WriteString("\r\nTX power: ")
	d.sink.WriteInt(int(cfg.TxPower))
	d.sink.WriteString("\r\n")
}
