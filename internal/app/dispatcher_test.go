package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaz8081/gobeacon/internal/beacon"
	"github.com/chaz8081/gobeacon/internal/ble/bletest"
	"github.com/chaz8081/gobeacon/internal/debuglog"
	"github.com/chaz8081/gobeacon/internal/keystore"
)

func TestOnInitBringsBeaconUp(t *testing.T) {
	radio := bletest.NewRecorder()
	var out bytes.Buffer
	keys := keystore.Static{0x1234, 5, 6, 0xC5}
	d := NewDispatcher(keys, radio, debuglog.NewActive(&out))

	d.OnPowerOnReset()
	require.Empty(t, radio.Calls(), "power-on reset must not touch the radio")

	require.NoError(t, d.OnInit(SleepStateColdPowerup))

	assert.Equal(t, []string{
		bletest.MethodEnable,
		bletest.MethodSetMode,
		bletest.MethodClearAdvertisingData,
		bletest.MethodSetAdvertisingInterval,
		bletest.MethodStoreAdvertisingData,
		bletest.MethodStartAdvertising,
	}, radio.Methods())

	ctrl := d.Controller()
	require.NotNil(t, ctrl)
	assert.Equal(t, beacon.StateAdvertising, ctrl.State())

	cfg := ctrl.Config()
	assert.Equal(t, byte(0x12), cfg.UUID[0])
	assert.Equal(t, byte(0x34), cfg.UUID[1])
	assert.Equal(t, uint16(5), cfg.Major)
	assert.Equal(t, uint16(6), cfg.Minor)
	assert.Equal(t, int8(-59), cfg.TxPower)

	console := out.String()
	assert.Contains(t, console, "Beacon example")
	assert.Contains(t, console, "UUID: 1234beac-d102-11e1-9b23-00025b00a5a5")
	assert.Contains(t, console, "Major: 0005")
	assert.Contains(t, console, "TX power: -59")
}

func TestOnInitDefaultsWithNoOpSink(t *testing.T) {
	radio := bletest.NewRecorder()
	d := NewDispatcher(keystore.Static(nil), radio, nil)

	require.NoError(t, d.OnInit(SleepStateWarmPowerup))
	assert.Equal(t, beacon.DefaultConfig(), d.Controller().Config())
	assert.Equal(t, beacon.Encode(beacon.DefaultConfig()), d.Controller().Payload())
}

func TestOnInitStackFailure(t *testing.T) {
	radio := bletest.NewRecorder()
	boom := errors.New("no adapter")
	radio.FailOn(bletest.MethodEnable, boom)
	var out bytes.Buffer
	d := NewDispatcher(keystore.Static(nil), radio, debuglog.NewActive(&out))

	err := d.OnInit(SleepStateColdPowerup)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, d.Controller())
	assert.Equal(t, []string{bletest.MethodEnable}, radio.Methods())
	assert.Contains(t, out.String(), "stack init failed")
}

func TestOnInitAdvertisingFailure(t *testing.T) {
	radio := bletest.NewRecorder()
	boom := errors.New("controller busy")
	radio.FailOn(bletest.MethodStartAdvertising, boom)
	d := NewDispatcher(keystore.Static(nil), radio, nil)

	err := d.OnInit(SleepStateColdPowerup)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, beacon.StateConfiguring, d.Controller().State())
}

func TestOnInitAfterResetUsesFreshController(t *testing.T) {
	radio := bletest.NewRecorder()
	keys := keystore.NewMap(map[int]uint16{beacon.KeyMajor: 1})
	d := NewDispatcher(keys, radio, nil)

	require.NoError(t, d.OnInit(SleepStateColdPowerup))
	first := d.Controller()

	require.NoError(t, keys.WriteUserKey(beacon.KeyMajor, 2))
	require.NoError(t, d.OnInit(SleepStateWarmPowerup))

	assert.NotSame(t, first, d.Controller())
	assert.Equal(t, uint16(1), first.Config().Major)
	assert.Equal(t, uint16(2), d.Controller().Config().Major)
}

func TestOnLinkManagerEventAlwaysDefers(t *testing.T) {
	d := NewDispatcher(keystore.Static(nil), bletest.NewRecorder(), nil)
	for code := 0; code <= 0xFF; code++ {
		if !d.OnLinkManagerEvent(LMEventCode(code), nil) {
			t.Fatalf("OnLinkManagerEvent(0x%02X) = false, want true", code)
		}
	}
	assert.True(t, d.OnLinkManagerEvent(LMEventConnectionComplete, struct{}{}))
}

func TestOnSystemEventIsPassthrough(t *testing.T) {
	radio := bletest.NewRecorder()
	d := NewDispatcher(keystore.Static(nil), radio, nil)
	d.OnSystemEvent(SystemEventBatteryLow, nil)
	d.OnSystemEvent(SystemEventPIOChanged, 42)
	assert.Empty(t, radio.Calls())
	assert.Nil(t, d.Controller())
}

func TestSleepStateString(t *testing.T) {
	assert.Equal(t, "cold-powerup", SleepStateColdPowerup.String())
	assert.Equal(t, "hibernate", SleepStateHibernate.String())
	assert.True(t, strings.HasPrefix(SleepState(7).String(), "sleep-state("))
}
