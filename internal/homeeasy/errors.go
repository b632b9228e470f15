package homeeasy

import "errors"

var (
	ErrFrameLength   = errors.New("state frame has wrong length")
	ErrFrameChecksum = errors.New("state frame checksum mismatch")
	ErrFrameField    = errors.New("state frame field out of range")
	ErrNotConnected  = errors.New("not connected to gateway broker")
)
