package climate

import (
	"context"
	"fmt"
	"sync"

	"github.com/home-easy/easybridge/internal/homeeasy"
	"github.com/home-easy/easybridge/internal/ports"
)

// Capability flags advertised to the host.
const (
	SupportTargetTemperature = 1 << iota
	SupportFanMode
	SupportSwingMode
)

// Temperature units as reported to the host.
const (
	UnitCelsius    = "°C"
	UnitFahrenheit = "°F"
)

// Advertised target temperature bounds.
const (
	MinTemp               = 16.0
	MaxTemp               = 31.0
	TargetTemperatureStep = 1.0
)

// Thermostat exposes one Home Easy device as a climate entity. It keeps a
// snapshot of the last device state; property reads serve the snapshot,
// commands mutate it and forward the whole record to the device. The
// snapshot is replaced wholesale on every push, never merged.
type Thermostat struct {
	mac  string
	pull bool
	lib  ports.DeviceLib

	mu    sync.RWMutex
	state homeeasy.DeviceState

	updates chan struct{}
}

// New connects the device library, registers for status pushes and returns
// the entity with a zeroed placeholder state, so property reads are
// well-defined before the first real update arrives.
func New(mac string, pull bool, lib ports.DeviceLib) (*Thermostat, error) {
	t := &Thermostat{
		mac:     mac,
		pull:    pull,
		lib:     lib,
		updates: make(chan struct{}, 1),
	}
	if err := lib.Connect(); err != nil {
		return nil, fmt.Errorf("climate %s: %w", mac, err)
	}
	if err := lib.RequestStatus(mac, t.statusUpdate); err != nil {
		return nil, fmt.Errorf("climate %s: %w", mac, err)
	}
	return t, nil
}

// Close releases the owned device library handle.
func (t *Thermostat) Close() {
	t.lib.Disconnect()
}

func (t *Thermostat) UniqueID() string { return t.mac }

func (t *Thermostat) Name() string {
	return fmt.Sprintf("Home Easy HVAC(%s)", t.mac)
}

// ShouldPoll reports whether the host must poll via Update, fixed at
// construction from configuration.
func (t *Thermostat) ShouldPoll() bool { return t.pull }

func (t *Thermostat) SupportedFeatures() int {
	return SupportTargetTemperature | SupportFanMode | SupportSwingMode
}

func (t *Thermostat) TemperatureUnit() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state.TemperatureScale {
		return UnitFahrenheit
	}
	return UnitCelsius
}

func (t *Thermostat) CurrentTemperature() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.IndoorTemperature
}

func (t *Thermostat) TargetTemperature() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.DesiredTemperature
}

// HVACMode returns "off" whenever the power flag is clear, regardless of
// the cached mode field.
func (t *Thermostat) HVACMode() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.state.Power {
		return HVACOff
	}
	return modeToHVAC[t.state.Mode]
}

func (t *Thermostat) HVACModes() []string { return HVACModes() }

func (t *Thermostat) FanMode() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fanModes[int(t.state.FanMode)]
}

func (t *Thermostat) FanModes() []string { return FanModes() }

func (t *Thermostat) SwingMode() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range swingModes {
		if e.h == t.state.FlowHorizontalMode && e.v == t.state.FlowVerticalMode {
			return e.name
		}
	}
	return swingModes[len(swingModes)-1].name
}

func (t *Thermostat) SwingModes() []string { return SwingModes() }

// SetTemperature writes the desired temperature and sends the updated
// state. A nil temperature is ignored: no mutation, no send.
func (t *Thermostat) SetTemperature(temperature *float64) error {
	if temperature == nil {
		return nil
	}
	t.mu.Lock()
	t.state.DesiredTemperature = *temperature
	state := t.state
	t.mu.Unlock()

	return t.lib.Send(t.mac, state)
}

// SetHVACMode maps the host mode onto the power flag and device mode.
// "off" clears power and leaves the mode field untouched.
func (t *Thermostat) SetHVACMode(mode string) error {
	var (
		devMode homeeasy.Mode
		ok      bool
	)
	if mode != HVACOff {
		if devMode, ok = hvacToMode[mode]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownHVACMode, mode)
		}
	}

	t.mu.Lock()
	if mode == HVACOff {
		t.state.Power = false
	} else {
		t.state.Power = true
		t.state.Mode = devMode
	}
	state := t.state
	t.mu.Unlock()

	return t.lib.Send(t.mac, state)
}

// SetFanMode resolves the name by position in the fan table.
func (t *Thermostat) SetFanMode(mode string) error {
	idx := -1
	for i, name := range fanModes {
		if name == mode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownFanMode, mode)
	}

	t.mu.Lock()
	t.state.FanMode = homeeasy.FanMode(idx)
	state := t.state
	t.mu.Unlock()

	return t.lib.Send(t.mac, state)
}

// SetSwingMode writes both louver fields from the named table entry.
func (t *Thermostat) SetSwingMode(mode string) error {
	var entry *swingEntry
	for i := range swingModes {
		if swingModes[i].name == mode {
			entry = &swingModes[i]
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("%w: %q", ErrUnknownSwingMode, mode)
	}

	t.mu.Lock()
	t.state.FlowHorizontalMode = entry.h
	t.state.FlowVerticalMode = entry.v
	state := t.state
	t.mu.Unlock()

	return t.lib.Send(t.mac, state)
}

// Update requests fresh state from the device. The reply comes back
// through the push path, not as a return value.
func (t *Thermostat) Update(ctx context.Context) error {
	return t.lib.RequestStatusAsync(ctx, t.mac)
}

// Updates signals that the cached state was replaced and the entity should
// be re-rendered. Signals coalesce; the channel never blocks the pusher.
func (t *Thermostat) Updates() <-chan struct{} {
	return t.updates
}

func (t *Thermostat) statusUpdate(_ string, state homeeasy.DeviceState) {
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	select {
	case t.updates <- struct{}{}:
	default:
	}
}
