package climate

import "github.com/home-easy/easybridge/internal/homeeasy"

// Host-facing HVAC mode names.
const (
	HVACOff     = "off"
	HVACAuto    = "auto"
	HVACCool    = "cool"
	HVACDry     = "dry"
	HVACFanOnly = "fan_only"
	HVACHeat    = "heat"
)

var hvacModes = []string{HVACOff, HVACAuto, HVACCool, HVACDry, HVACFanOnly, HVACHeat}

// Paired forward/reverse mode tables. "off" is not a device mode; it is
// the power flag and never appears here.
var hvacToMode = map[string]homeeasy.Mode{
	HVACAuto:    homeeasy.ModeAuto,
	HVACCool:    homeeasy.ModeCool,
	HVACDry:     homeeasy.ModeDry,
	HVACFanOnly: homeeasy.ModeFan,
	HVACHeat:    homeeasy.ModeHeat,
}

var modeToHVAC = func() map[homeeasy.Mode]string {
	m := make(map[homeeasy.Mode]string, len(hvacToMode))
	for k, v := range hvacToMode {
		m[v] = k
	}
	return m
}()

// fanModes is indexed by homeeasy.FanMode.
var fanModes = []string{
	"Auto", "Lowest", "Low", "Mid-low", "Mid-high", "High", "Highest", "Quite", "Turbo",
}

type swingEntry struct {
	name string
	h    homeeasy.HorizontalFlowMode
	v    homeeasy.VerticalFlowMode
}

// swingModes is ordered: reads take the first entry matching the louver
// pair and fall back to the last entry when nothing matches. "Custom"
// writes the same pair as "Stop" and therefore reads back as "Stop".
var swingModes = []swingEntry{
	{"Stop", homeeasy.HorizontalStop, homeeasy.VerticalStop},
	{"Horizontal", homeeasy.HorizontalSwing, homeeasy.VerticalStop},
	{"Vertical", homeeasy.HorizontalStop, homeeasy.VerticalSwing},
	{"Both", homeeasy.HorizontalSwing, homeeasy.VerticalSwing},
	{"Custom", homeeasy.HorizontalStop, homeeasy.VerticalStop},
}

// HVACModes lists the selectable operation modes, "off" included.
func HVACModes() []string { return append([]string(nil), hvacModes...) }

// FanModes lists the nine fan level names in device order.
func FanModes() []string { return append([]string(nil), fanModes...) }

// SwingModes lists the selectable swing mode names.
func SwingModes() []string {
	out := make([]string, len(swingModes))
	for i, e := range swingModes {
		out[i] = e.name
	}
	return out
}
