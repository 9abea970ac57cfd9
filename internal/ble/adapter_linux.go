//go:build linux && !baremetal

package ble

import "tinygo.org/x/bluetooth"

// newAdapter returns the BlueZ adapter with the given id (e.g. "hci0").
func newAdapter(id string) *bluetooth.Adapter {
	return bluetooth.NewAdapter(id)
}
