// Package bletest provides a recording fake of ble.Radio for tests.
package bletest

import (
	"sync"
	"time"

	"github.com/chaz8081/gobeacon/internal/ble"
)

// Method names as recorded in Call.Method.
const (
	MethodEnable                 = "Enable"
	MethodSetMode                = "SetMode"
	MethodClearAdvertisingData   = "ClearAdvertisingData"
	MethodSetAdvertisingInterval = "SetAdvertisingInterval"
	MethodStoreAdvertisingData   = "StoreAdvertisingData"
	MethodStartAdvertising       = "StartAdvertising"
)

// Call is one recorded radio call.
type Call struct {
	Method string
	Args   []any
}

// Recorder records every call in order and fails the methods set with FailOn.
type Recorder struct {
	mu          sync.Mutex
	calls       []Call
	fail        map[string]error
	linkHandler func(ble.LinkEvent)
}

// NewRecorder creates a Recorder that succeeds on every call.
func NewRecorder() *Recorder {
	return &Recorder{fail: make(map[string]error)}
}

// Compile-time interface checks.
var (
	_ ble.Radio           = (*Recorder)(nil)
	_ ble.LinkEventSource = (*Recorder)(nil)
)

// FailOn makes method return err from now on.
func (r *Recorder) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[method] = err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Methods returns the recorded method names in call order.
func (r *Recorder) Methods() []string {
	calls := r.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Method
	}
	return names
}

// Emit delivers a link event to the registered handler, if any.
func (r *Recorder) Emit(ev ble.LinkEvent) {
	r.mu.Lock()
	h := r.linkHandler
	r.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (r *Recorder) record(method string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
	return r.fail[method]
}

func (r *Recorder) Enable() error { return r.record(MethodEnable) }

func (r *Recorder) SetMode(mode ble.Mode) error { return r.record(MethodSetMode, mode) }

func (r *Recorder) ClearAdvertisingData(src ble.Source) error {
	return r.record(MethodClearAdvertisingData, src)
}

func (r *Recorder) SetAdvertisingInterval(min, max time.Duration) error {
	return r.record(MethodSetAdvertisingInterval, min, max)
}

func (r *Recorder) StoreAdvertisingData(src ble.Source, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	return r.record(MethodStoreAdvertisingData, src, cp)
}

func (r *Recorder) StartAdvertising(enable bool, whitelist ble.WhitelistMode, addr ble.AddressType) error {
	return r.record(MethodStartAdvertising, enable, whitelist, addr)
}

func (r *Recorder) SetLinkEventHandler(handler func(ble.LinkEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkHandler = handler
}
