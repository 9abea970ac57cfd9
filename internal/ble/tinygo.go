package ble

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/chaz8081/gobeacon/internal/ble/protocol"
)

// TinyGoRadio wraps tinygo-org/bluetooth as a broadcaster.
// On Linux it drives BlueZ through the adapter named at construction; on
// macOS and TinyGo targets the default adapter is used.
type TinyGoRadio struct {
	adapter   *bluetooth.Adapter
	adapterID string

	// mu protects everything below; link events arrive on a stack goroutine.
	mu          sync.Mutex
	adv         *bluetooth.Advertisement
	mode        Mode
	interval    time.Duration
	advData     []protocol.ADStructure
	advertising bool
	linkHandler func(LinkEvent)
}

// NewTinyGoRadio creates a radio on the given adapter ("hci0" if empty).
func NewTinyGoRadio(adapterID string) *TinyGoRadio {
	if adapterID == "" {
		adapterID = "hci0"
	}
	return &TinyGoRadio{
		adapter:   newAdapter(adapterID),
		adapterID: adapterID,
		mode:      BroadcasterMode,
		interval:  100 * time.Millisecond,
	}
}

// Compile-time interface checks.
var (
	_ Radio           = (*TinyGoRadio)(nil)
	_ LinkEventSource = (*TinyGoRadio)(nil)
)

func (r *TinyGoRadio) Enable() error {
	if err := r.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter %s: %w", r.adapterID, err)
	}

	// A broadcaster never accepts connections, but the stack still reports
	// link activity; forward it as link-manager events.
	r.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		code := LinkEventDisconnectComplete
		if connected {
			code = LinkEventConnectionComplete
		}
		r.mu.Lock()
		h := r.linkHandler
		r.mu.Unlock()
		if h != nil {
			h(LinkEvent{Code: code, Address: device.Address.String()})
		}
	})

	r.mu.Lock()
	r.adv = r.adapter.DefaultAdvertisement()
	r.mu.Unlock()

	slog.Info("[BLE] adapter enabled", "adapter", r.adapterID)
	return nil
}

func (r *TinyGoRadio) SetLinkEventHandler(handler func(LinkEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkHandler = handler
}

func (r *TinyGoRadio) SetMode(mode Mode) error {
	if mode.Role != RoleBroadcaster || mode.Connectable || mode.Bondable || mode.Security {
		return fmt.Errorf("%w: mode %+v", ErrUnsupported, mode)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
	return nil
}

func (r *TinyGoRadio) ClearAdvertisingData(src Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if src == SourceAdvertise {
		r.advData = nil
	}
	return nil
}

func (r *TinyGoRadio) SetAdvertisingInterval(min, max time.Duration) error {
	if err := ValidateInterval(min, max); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// tinygo takes a single interval; the low end of the window is used.
	r.interval = min
	return nil
}

func (r *TinyGoRadio) StoreAdvertisingData(src Source, data []byte) error {
	if src != SourceAdvertise {
		return fmt.Errorf("%w: %s data", ErrUnsupported, src)
	}
	if len(data) > MaxStoredDataLen {
		return fmt.Errorf("%w: %d bytes", ErrDataTooLong, len(data))
	}
	ad, err := protocol.ParseUnprefixed(data)
	if err != nil {
		return fmt.Errorf("ble: store advertising data: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := append(append([]protocol.ADStructure(nil), r.advData...), ad)
	if _, err := protocol.Marshal(next); err != nil {
		return fmt.Errorf("%w: %v", ErrDataTooLong, err)
	}
	r.advData = next
	return nil
}

func (r *TinyGoRadio) StartAdvertising(enable bool, whitelist WhitelistMode, addr AddressType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adv == nil {
		return fmt.Errorf("ble: adapter %s not enabled", r.adapterID)
	}

	if !enable {
		if !r.advertising {
			return nil
		}
		if err := r.adv.Stop(); err != nil {
			return fmt.Errorf("ble: stop advertising: %w", err)
		}
		r.advertising = false
		return nil
	}

	if whitelist != WhitelistDisabled {
		return fmt.Errorf("%w: whitelist filtering", ErrUnsupported)
	}
	// The own-address type is owned by the host stack (BlueZ privacy
	// setting, CoreBluetooth always randomizes).
	slog.Debug("[BLE] address type delegated to host stack", "requested", addr)

	opts, err := advertisementOptions(r.mode, r.interval, r.advData)
	if err != nil {
		return err
	}
	if err := r.adv.Configure(opts); err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	if err := r.adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertising: %w", err)
	}
	r.advertising = true

	slog.Info("[BLE] advertising", "interval", r.interval, "structures", len(r.advData))
	return nil
}

// advertisementOptions maps stored AD structures onto tinygo's options.
func advertisementOptions(mode Mode, interval time.Duration, ads []protocol.ADStructure) (bluetooth.AdvertisementOptions, error) {
	opts := bluetooth.AdvertisementOptions{
		AdvertisementType: bluetooth.AdvertisingTypeNonConnInd,
		Interval:          bluetooth.NewDuration(interval),
	}
	if mode.Connectable {
		return opts, fmt.Errorf("%w: connectable advertising", ErrUnsupported)
	}

	for _, ad := range ads {
		switch ad.Type {
		case protocol.ADTypeManufacturerSpecificData:
			companyID, payload, err := protocol.ManufacturerData(ad)
			if err != nil {
				return opts, fmt.Errorf("ble: %w", err)
			}
			opts.ManufacturerData = append(opts.ManufacturerData, bluetooth.ManufacturerDataElement{
				CompanyID: companyID,
				Data:      payload,
			})
		case protocol.ADTypeCompleteLocalName:
			opts.LocalName = string(ad.Data)
		default:
			return opts, fmt.Errorf("%w: AD type 0x%02X", ErrUnsupported, ad.Type)
		}
	}
	return opts, nil
}
