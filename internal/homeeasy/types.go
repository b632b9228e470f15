package homeeasy

// Mode is the device operating mode as encoded on the wire.
type Mode int

const (
	ModeAuto Mode = iota
	ModeCool
	ModeDry
	ModeFan
	ModeHeat
)

func (m Mode) Valid() bool {
	return m >= ModeAuto && m <= ModeHeat
}

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeCool:
		return "cool"
	case ModeDry:
		return "dry"
	case ModeFan:
		return "fan"
	case ModeHeat:
		return "heat"
	default:
		return "unknown"
	}
}

// FanMode is the fan speed as encoded on the wire. The device knows nine
// levels; level 0 means the unit picks the speed itself.
type FanMode int

const (
	FanAuto FanMode = iota
	FanLowest
	FanLow
	FanMidLow
	FanMidHigh
	FanHigh
	FanHighest
	FanQuite
	FanTurbo
)

func (f FanMode) Valid() bool {
	return f >= FanAuto && f <= FanTurbo
}

func (f FanMode) String() string {
	switch f {
	case FanAuto:
		return "auto"
	case FanLowest:
		return "lowest"
	case FanLow:
		return "low"
	case FanMidLow:
		return "mid-low"
	case FanMidHigh:
		return "mid-high"
	case FanHigh:
		return "high"
	case FanHighest:
		return "highest"
	case FanQuite:
		return "quite"
	case FanTurbo:
		return "turbo"
	default:
		return "unknown"
	}
}

// HorizontalFlowMode controls the left/right louver.
type HorizontalFlowMode int

const (
	HorizontalStop HorizontalFlowMode = iota
	HorizontalSwing
)

func (h HorizontalFlowMode) Valid() bool {
	return h == HorizontalStop || h == HorizontalSwing
}

func (h HorizontalFlowMode) String() string {
	switch h {
	case HorizontalStop:
		return "stop"
	case HorizontalSwing:
		return "swing"
	default:
		return "unknown"
	}
}

// VerticalFlowMode controls the up/down louver.
type VerticalFlowMode int

const (
	VerticalStop VerticalFlowMode = iota
	VerticalSwing
)

func (v VerticalFlowMode) Valid() bool {
	return v == VerticalStop || v == VerticalSwing
}

func (v VerticalFlowMode) String() string {
	switch v {
	case VerticalStop:
		return "stop"
	case VerticalSwing:
		return "swing"
	default:
		return "unknown"
	}
}
