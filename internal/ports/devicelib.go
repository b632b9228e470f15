package ports

import (
	"context"

	"github.com/home-easy/easybridge/internal/homeeasy"
)

// DeviceLib is the device-communication port: transport, pairing and state
// encoding live behind it. The climate adapter owns exactly one instance.
type DeviceLib interface {
	Connect() error
	Disconnect()
	RequestStatus(mac string, h homeeasy.StatusHandler) error
	RequestStatusAsync(ctx context.Context, mac string) error
	Send(mac string, state homeeasy.DeviceState) error
}
