// Package protocol implements the Advertising Data (AD) structure encoding
// used in BLE advertising and scan response packets.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// AD types used by the beacon and its tooling.
const (
	ADTypeFlags                    = 0x01
	ADTypeCompleteLocalName        = 0x09
	ADTypeTxPowerLevel             = 0x0A
	ADTypeAppearance               = 0x19
	ADTypeManufacturerSpecificData = 0xFF
)

// MaxAdvertisingDataLen is the legacy (BLE 4.x) advertising data limit,
// length bytes included.
const MaxAdvertisingDataLen = 31

// ADStructure is a single length-type-value element of advertising data.
// On air the length byte counts the type byte plus Data.
type ADStructure struct {
	Type byte
	Data []byte
}

// ParseUnprefixed builds an ADStructure from type+value bytes as handed to the
// radio store call, i.e. without the leading length byte.
func ParseUnprefixed(raw []byte) (ADStructure, error) {
	if len(raw) == 0 {
		return ADStructure{}, errors.New("protocol: empty AD structure")
	}
	if len(raw) > MaxAdvertisingDataLen-1 {
		return ADStructure{}, fmt.Errorf("protocol: AD structure of %d bytes exceeds %d", len(raw), MaxAdvertisingDataLen-1)
	}
	data := make([]byte, len(raw)-1)
	copy(data, raw[1:])
	return ADStructure{Type: raw[0], Data: data}, nil
}

// Marshal encodes the structures back to back, each with its length prefix.
func Marshal(ads []ADStructure) ([]byte, error) {
	var buf []byte
	for _, ad := range ads {
		if len(ad.Data)+1 > 0xFF {
			return nil, fmt.Errorf("protocol: AD type 0x%02X data too long: %d", ad.Type, len(ad.Data))
		}
		buf = append(buf, byte(len(ad.Data)+1), ad.Type)
		buf = append(buf, ad.Data...)
	}
	if len(buf) > MaxAdvertisingDataLen {
		return nil, fmt.Errorf("protocol: advertising data %d bytes exceeds %d", len(buf), MaxAdvertisingDataLen)
	}
	return buf, nil
}

// Parse decodes length-prefixed advertising data. A zero length byte marks
// early termination (remaining bytes are padding).
func Parse(data []byte) ([]ADStructure, error) {
	var ads []ADStructure
	for len(data) > 0 {
		length := int(data[0])
		if length == 0 {
			break
		}
		if len(data) < 1+length {
			return nil, fmt.Errorf("protocol: AD length %d exceeds remaining %d bytes", length, len(data)-1)
		}
		value := make([]byte, length-1)
		copy(value, data[2:1+length])
		ads = append(ads, ADStructure{Type: data[1], Data: value})
		data = data[1+length:]
	}
	return ads, nil
}

// ManufacturerData splits a manufacturer-specific AD structure into its
// little-endian company identifier and the vendor payload.
func ManufacturerData(ad ADStructure) (companyID uint16, payload []byte, err error) {
	if ad.Type != ADTypeManufacturerSpecificData {
		return 0, nil, fmt.Errorf("protocol: AD type 0x%02X is not manufacturer data", ad.Type)
	}
	if len(ad.Data) < 2 {
		return 0, nil, fmt.Errorf("protocol: manufacturer data too short: %d", len(ad.Data))
	}
	return binary.LittleEndian.Uint16(ad.Data[:2]), ad.Data[2:], nil
}
