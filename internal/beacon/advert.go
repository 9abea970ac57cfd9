package beacon

import (
	"encoding/binary"
	"fmt"

	"github.com/chaz8081/gobeacon/internal/ble/protocol"
)

// PayloadSize is the length of the encoded advertising payload: one
// manufacturer-specific AD structure without its length byte.
const PayloadSize = 26

// Payload layout constants.
const (
	CompanyID     uint16 = 0x004C // sent little-endian
	beaconMagic          = 0x02
	beaconDataLen        = 0x15 // uuid + major + minor + tx power

	offType    = 0
	offCompany = 1
	offMagic   = 3
	offLength  = 4
	offUUID    = 5
	offMajor   = 21
	offMinor   = 23
	offTxPower = 25
)

// Payload is the encoded advertising data handed to the radio.
type Payload [PayloadSize]byte

// Encode lays out cfg as a manufacturer-specific AD structure:
//
//	[0]      AD type 0xFF
//	[1:3]    company id, little-endian
//	[3]      magic 0x02
//	[4]      beacon data length 0x15
//	[5:21]   uuid
//	[21:23]  major, big-endian
//	[23:25]  minor, big-endian
//	[25]     tx power, signed
func Encode(cfg Config) Payload {
	var p Payload
	p[offType] = protocol.ADTypeManufacturerSpecificData
	binary.LittleEndian.PutUint16(p[offCompany:offMagic], CompanyID)
	p[offMagic] = beaconMagic
	p[offLength] = beaconDataLen
	copy(p[offUUID:offMajor], cfg.UUID[:])
	binary.BigEndian.PutUint16(p[offMajor:offMinor], cfg.Major)
	binary.BigEndian.PutUint16(p[offMinor:offTxPower], cfg.Minor)
	p[offTxPower] = byte(cfg.TxPower)
	return p
}

// DecodePayload parses a payload produced by Encode. It returns an error if
// b is not exactly PayloadSize bytes or any fixed header byte is wrong.
func DecodePayload(b []byte) (Config, error) {
	if len(b) != PayloadSize {
		return Config{}, fmt.Errorf("beacon: payload must be %d bytes, got %d", PayloadSize, len(b))
	}
	if b[offType] != protocol.ADTypeManufacturerSpecificData {
		return Config{}, fmt.Errorf("beacon: invalid AD type 0x%02X", b[offType])
	}
	if id := binary.LittleEndian.Uint16(b[offCompany:offMagic]); id != CompanyID {
		return Config{}, fmt.Errorf("beacon: invalid company id 0x%04X", id)
	}
	if b[offMagic] != beaconMagic || b[offLength] != beaconDataLen {
		return Config{}, fmt.Errorf("beacon: invalid magic %02X %02X", b[offMagic], b[offLength])
	}

	var cfg Config
	copy(cfg.UUID[:], b[offUUID:offMajor])
	cfg.Major = binary.BigEndian.Uint16(b[offMajor:offMinor])
	cfg.Minor = binary.BigEndian.Uint16(b[offMinor:offTxPower])
	cfg.TxPower = int8(b[offTxPower])
	return cfg, nil
}

// AD returns the payload as an AD structure, e.g. for protocol.Marshal.
func (p Payload) AD() protocol.ADStructure {
	data := make([]byte, PayloadSize-1)
	copy(data, p[1:])
	return protocol.ADStructure{Type: p[offType], Data: data}
}
