package climate

import "errors"

var (
	ErrUnknownHVACMode  = errors.New("unknown hvac mode")
	ErrUnknownFanMode   = errors.New("unknown fan mode")
	ErrUnknownSwingMode = errors.New("unknown swing mode")
)
