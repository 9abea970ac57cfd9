package ble

import (
	"errors"
	"testing"
	"time"
)

func TestValidateInterval(t *testing.T) {
	tests := []struct {
		name    string
		min     time.Duration
		max     time.Duration
		wantErr bool
	}{
		{"beacon window", 60 * time.Millisecond, 60 * time.Millisecond, false},
		{"lower bound", 20 * time.Millisecond, 20 * time.Millisecond, false},
		{"upper bound", 1280 * time.Millisecond, 10240 * time.Millisecond, false},
		{"below minimum", 10 * time.Millisecond, 60 * time.Millisecond, true},
		{"above maximum", 60 * time.Millisecond, 11 * time.Second, true},
		{"min greater than max", 100 * time.Millisecond, 60 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterval(tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterval() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("ValidateInterval() error = %v, want ErrInvalidInterval", err)
			}
		})
	}
}

func TestBroadcasterMode(t *testing.T) {
	m := BroadcasterMode
	if m.Role != RoleBroadcaster {
		t.Errorf("Role = %s, want broadcaster", m.Role)
	}
	if m.Discoverable || m.Connectable || m.Bondable || m.Security {
		t.Errorf("BroadcasterMode = %+v, want all capabilities off", m)
	}
}

func TestStringers(t *testing.T) {
	if got := RolePeripheral.String(); got != "peripheral" {
		t.Errorf("RolePeripheral.String() = %q", got)
	}
	if got := Role(42).String(); got != "role(42)" {
		t.Errorf("Role(42).String() = %q", got)
	}
	if got := AddressRandom.String(); got != "random" {
		t.Errorf("AddressRandom.String() = %q", got)
	}
	if got := SourceScanResponse.String(); got != "scan-response" {
		t.Errorf("SourceScanResponse.String() = %q", got)
	}
}
