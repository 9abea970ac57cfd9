// Package debuglog provides the beacon's diagnostic text sink, the
// equivalent of a device debug UART. Core code always calls a Sink; the
// NoOp variant makes every call free when diagnostics are disabled.
package debuglog

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// BdAddress is a 48-bit Bluetooth device address, most significant byte first.
type BdAddress [6]byte

func (a BdAddress) String() string {
	return net.HardwareAddr(a[:]).String()
}

// Sink is the diagnostic output capability.
type Sink interface {
	Init()
	WriteString(s string)
	WriteUint8(v uint8)
	WriteUint16(v uint16)
	WriteUint32(v uint32)
	WriteBdAddress(addr BdAddress)
	WriteInt(v int)
	WriteUUID128(u [16]byte)
	WriteErrorMessage(msg string, code uint16)
}

// New returns an Active sink writing to w when enabled, NoOp otherwise.
func New(enabled bool, w io.Writer) Sink {
	if !enabled || w == nil {
		return NoOp{}
	}
	return NewActive(w)
}

// NoOp discards everything.
type NoOp struct{}

func (NoOp) Init()                            {}
func (NoOp) WriteString(string)               {}
func (NoOp) WriteUint8(uint8)                 {}
func (NoOp) WriteUint16(uint16)               {}
func (NoOp) WriteUint32(uint32)               {}
func (NoOp) WriteBdAddress(BdAddress)         {}
func (NoOp) WriteInt(int)                     {}
func (NoOp) WriteUUID128([16]byte)            {}
func (NoOp) WriteErrorMessage(string, uint16) {}

// Active writes unsigned values as fixed-width lowercase hex and signed
// values as decimal, like an embedded debug console.
type Active struct {
	mu sync.Mutex
	w  io.Writer
}

// NewActive creates an Active sink on w.
func NewActive(w io.Writer) *Active {
	return &Active{w: w}
}

// Compile-time interface checks.
var (
	_ Sink = NoOp{}
	_ Sink = (*Active)(nil)
)

// Init emits a line break so output starts on a clean line.
func (a *Active) Init() {
	a.write("\r\n")
}

func (a *Active) WriteString(s string) { a.write(s) }

func (a *Active) WriteUint8(v uint8) { a.write(fmt.Sprintf("%02x", v)) }

func (a *Active) WriteUint16(v uint16) { a.write(fmt.Sprintf("%04x", v)) }

func (a *Active) WriteUint32(v uint32) { a.write(fmt.Sprintf("%08x", v)) }

func (a *Active) WriteBdAddress(addr BdAddress) { a.write(addr.String()) }

func (a *Active) WriteInt(v int) { a.write(strconv.Itoa(v)) }

func (a *Active) WriteUUID128(u [16]byte) { a.write(uuid.UUID(u).String()) }

// WriteErrorMessage writes "msg (0xCODE)" followed by CRLF.
func (a *Active) WriteErrorMessage(msg string, code uint16) {
	a.write(fmt.Sprintf("%s (0x%04x)\r\n", msg, code))
}

// write ignores output errors: a broken console must not stop the beacon.
func (a *Active) write(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = io.WriteString(a.w, s)
}
