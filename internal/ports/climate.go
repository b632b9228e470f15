package ports

import "context"

// Climate is the entity surface consumed by controllers (HTTP/MQTT/Modbus).
// SetTemperature takes a pointer so a command without a temperature can be
// expressed; a nil value is a no-op.
type Climate interface {
	UniqueID() string
	Name() string
	ShouldPoll() bool

	TemperatureUnit() string
	CurrentTemperature() float64
	TargetTemperature() float64
	HVACMode() string
	FanMode() string
	SwingMode() string

	SetTemperature(temperature *float64) error
	SetHVACMode(mode string) error
	SetFanMode(mode string) error
	SetSwingMode(mode string) error

	// Update asks the device for fresh state; the result arrives through
	// the push path and is signalled on Updates.
	Update(ctx context.Context) error
	Updates() <-chan struct{}
}
