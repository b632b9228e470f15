package homeeasy

import "math"

// FrameLength is the size of the device state record on the wire. The
// gateway always sends the full record; commands echo it back in full.
const FrameLength = 21

const (
	offPower       = 4
	offMode        = 5
	offFanMode     = 6
	offDesiredTemp = 7
	offIndoorTemp  = 8
	offTempScale   = 9
	offFlowH       = 10
	offFlowV       = 11
	offChecksum    = FrameLength - 1
)

// DeviceState is the decoded view of the vendor state record.
//
// The zero value corresponds to an all-zero frame: power off, auto mode,
// temperatures at 0. Bytes outside the known fields are carried through
// decode/encode untouched so a read-modify-write cycle never clobbers
// vendor fields we do not understand.
type DeviceState struct {
	Power              bool
	Mode               Mode
	FanMode            FanMode
	DesiredTemperature float64
	IndoorTemperature  float64
	// TemperatureScale is false for Celsius, true for Fahrenheit.
	TemperatureScale   bool
	FlowHorizontalMode HorizontalFlowMode
	FlowVerticalMode   VerticalFlowMode

	raw [FrameLength]byte
}

// ParseState decodes a raw frame. Frames with a bad length, bad checksum
// or out-of-range field values are rejected here; the rest of the bridge
// only ever sees valid states.
func ParseState(data []byte) (DeviceState, error) {
	var s DeviceState
	if len(data) != FrameLength {
		return s, ErrFrameLength
	}
	copy(s.raw[:], data)
	if s.raw[offChecksum] != checksum(s.raw[:]) {
		return s, ErrFrameChecksum
	}

	s.Power = s.raw[offPower] != 0
	s.Mode = Mode(s.raw[offMode])
	s.FanMode = FanMode(s.raw[offFanMode])
	s.DesiredTemperature = float64(s.raw[offDesiredTemp])
	s.IndoorTemperature = float64(s.raw[offIndoorTemp])
	s.TemperatureScale = s.raw[offTempScale] != 0
	s.FlowHorizontalMode = HorizontalFlowMode(s.raw[offFlowH])
	s.FlowVerticalMode = VerticalFlowMode(s.raw[offFlowV])

	if !s.Mode.Valid() || !s.FanMode.Valid() ||
		!s.FlowHorizontalMode.Valid() || !s.FlowVerticalMode.Valid() {
		return DeviceState{}, ErrFrameField
	}
	return s, nil
}

// Encode serializes the state back into a frame, preserving the reserved
// bytes captured at decode time and recomputing the checksum.
func (s DeviceState) Encode() []byte {
	buf := make([]byte, FrameLength)
	copy(buf, s.raw[:])

	buf[offPower] = boolByte(s.Power)
	buf[offMode] = byte(s.Mode)
	buf[offFanMode] = byte(s.FanMode)
	buf[offDesiredTemp] = tempByte(s.DesiredTemperature)
	buf[offIndoorTemp] = tempByte(s.IndoorTemperature)
	buf[offTempScale] = boolByte(s.TemperatureScale)
	buf[offFlowH] = byte(s.FlowHorizontalMode)
	buf[offFlowV] = byte(s.FlowVerticalMode)
	buf[offChecksum] = checksum(buf)

	return buf
}

func checksum(frame []byte) byte {
	var sum byte
	for _, b := range frame[:offChecksum] {
		sum += b
	}
	return sum
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func tempByte(v float64) byte {
	r := int(math.Round(v))
	if r < 0 {
		r = 0
	}
	if r > 255 {
		r = 255
	}
	return byte(r)
}
