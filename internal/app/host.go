package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chaz8081/gobeacon/internal/ble"
)

// EventKind distinguishes posted events.
type EventKind int

const (
	EventSystem EventKind = iota
	EventLinkManager
)

// Event is a notification queued for the dispatcher.
type Event struct {
	Kind     EventKind
	SystemID SystemEventID
	LMCode   LMEventCode
	Data     any
}

// eventQueueSize bounds posted events; the beacon has nothing to do with
// them, so overflow is dropped rather than blocking a stack callback.
const eventQueueSize = 32

// Host plays the role of an embedded scheduler: it calls the reset and
// init entry points, then delivers posted events to the dispatcher one at
// a time on the goroutine running Run.
type Host struct {
	d      *Dispatcher
	events chan Event
	logger *slog.Logger
}

// NewHost creates a Host for d. A nil logger uses slog.Default().
func NewHost(d *Dispatcher, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		d:      d,
		events: make(chan Event, eventQueueSize),
		logger: logger,
	}
}

// Post queues ev without blocking. It reports false if the queue is full.
func (h *Host) Post(ev Event) bool {
	select {
	case h.events <- ev:
		return true
	default:
		h.logger.Warn("[HOST] event queue full, dropping event", "kind", int(ev.Kind))
		return false
	}
}

// AttachLinkEvents routes a radio's link-manager events into the queue.
func (h *Host) AttachLinkEvents(src ble.LinkEventSource) {
	src.SetLinkEventHandler(func(ev ble.LinkEvent) {
		h.Post(Event{Kind: EventLinkManager, LMCode: LMEventCode(ev.Code), Data: ev})
	})
}

// Run performs power-on reset and init, then dispatches events until ctx
// is done. An init failure is returned; a canceled ctx returns nil.
func (h *Host) Run(ctx context.Context) error {
	h.d.OnPowerOnReset()
	if err := h.d.OnInit(SleepStateColdPowerup); err != nil {
		h.logger.Error("[HOST] init failed", "error", err)
		return fmt.Errorf("app: init: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-h.events:
			h.dispatch(ev)
		}
	}
}

func (h *Host) dispatch(ev Event) {
	switch ev.Kind {
	case EventSystem:
		h.d.OnSystemEvent(ev.SystemID, ev.Data)
	case EventLinkManager:
		if !h.d.OnLinkManagerEvent(ev.LMCode, ev.Data) {
			h.logger.Debug("[HOST] link event consumed by application", "code", uint8(ev.LMCode))
		}
	default:
		h.logger.Warn("[HOST] unknown event kind", "kind", int(ev.Kind))
	}
}
