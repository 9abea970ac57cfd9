//go:build !linux || baremetal

package ble

import "tinygo.org/x/bluetooth"

// newAdapter returns the platform default adapter; the id is ignored.
func newAdapter(_ string) *bluetooth.Adapter {
	return bluetooth.DefaultAdapter
}
