package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaz8081/gobeacon/internal/beacon"
	"github.com/chaz8081/gobeacon/internal/ble"
	"github.com/chaz8081/gobeacon/internal/ble/bletest"
	"github.com/chaz8081/gobeacon/internal/keystore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHostRunInitsThenStopsOnCancel(t *testing.T) {
	radio := bletest.NewRecorder()
	d := NewDispatcher(keystore.Static(nil), radio, nil)
	h := NewHost(d, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(radio.Calls()) == 6
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	assert.Equal(t, beacon.StateAdvertising, d.Controller().State())
}

func TestHostRunReturnsInitError(t *testing.T) {
	radio := bletest.NewRecorder()
	boom := errors.New("radio fault")
	radio.FailOn(bletest.MethodSetMode, boom)
	h := NewHost(NewDispatcher(keystore.Static(nil), radio, nil), discardLogger())

	err := h.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestHostDispatchesPostedEvents(t *testing.T) {
	radio := bletest.NewRecorder()
	d := NewDispatcher(keystore.Static(nil), radio, nil)
	h := NewHost(d, discardLogger())
	h.AttachLinkEvents(radio)

	require.True(t, h.Post(Event{Kind: EventSystem, SystemID: SystemEventBatteryLow}))
	radio.Emit(ble.LinkEvent{Code: ble.LinkEventConnectionComplete, Address: "AA:BB:CC:DD:EE:FF"})
	require.Len(t, h.events, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	require.Eventually(t, func() bool { return len(h.events) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	// Events never reach the radio.
	assert.Len(t, radio.Calls(), 6)
}

func TestHostPostDropsWhenFull(t *testing.T) {
	h := NewHost(NewDispatcher(keystore.Static(nil), bletest.NewRecorder(), nil), discardLogger())
	for i := 0; i < eventQueueSize; i++ {
		require.True(t, h.Post(Event{Kind: EventSystem}))
	}
	assert.False(t, h.Post(Event{Kind: EventSystem}))
}

func TestAttachLinkEventsMapsCode(t *testing.T) {
	radio := bletest.NewRecorder()
	h := NewHost(NewDispatcher(keystore.Static(nil), radio, nil), discardLogger())
	h.AttachLinkEvents(radio)

	radio.Emit(ble.LinkEvent{Code: ble.LinkEventDisconnectComplete})
	ev := <-h.events
	assert.Equal(t, EventLinkManager, ev.Kind)
	assert.Equal(t, LMEventDisconnectComplete, ev.LMCode)
}
