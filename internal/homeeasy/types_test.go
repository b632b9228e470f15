package homeeasy

import "testing"

func TestModeValid(t *testing.T) {
	cases := []struct {
		m    Mode
		want bool
	}{
		{ModeAuto, true},
		{ModeCool, true},
		{ModeDry, true},
		{ModeFan, true},
		{ModeHeat, true},
		{Mode(5), false},
		{Mode(-1), false},
	}

	for _, tc := range cases {
		if got := tc.m.Valid(); got != tc.want {
			t.Fatalf("Mode(%d).Valid()=%v want %v", tc.m, got, tc.want)
		}
	}
}

func TestModeString_Table(t *testing.T) {
	cases := []struct {
		name string
		in   Mode
		want string
	}{
		{"auto (zero)", ModeAuto, "auto"},
		{"cool", ModeCool, "cool"},
		{"dry", ModeDry, "dry"},
		{"fan", ModeFan, "fan"},
		{"heat", ModeHeat, "heat"},
		{"unknown (out of range)", Mode(999), "unknown"},
		{"unknown (negative)", Mode(-1), "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.String(); got != tc.want {
				t.Fatalf("Mode(%d).String()=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFanModeValid(t *testing.T) {
	for f := FanAuto; f <= FanTurbo; f++ {
		if !f.Valid() {
			t.Fatalf("FanMode(%d).Valid()=false want true", f)
		}
	}
	if FanMode(9).Valid() {
		t.Fatal("FanMode(9).Valid()=true want false")
	}
	if FanMode(-1).Valid() {
		t.Fatal("FanMode(-1).Valid()=true want false")
	}
}

func TestFanModeString_Table(t *testing.T) {
	cases := []struct {
		name string
		in   FanMode
		want string
	}{
		{"auto (zero)", FanAuto, "auto"},
		{"lowest", FanLowest, "lowest"},
		{"low", FanLow, "low"},
		{"mid-low", FanMidLow, "mid-low"},
		{"mid-high", FanMidHigh, "mid-high"},
		{"high", FanHigh, "high"},
		{"highest", FanHighest, "highest"},
		{"quite", FanQuite, "quite"},
		{"turbo", FanTurbo, "turbo"},
		{"unknown (out of range)", FanMode(999), "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.String(); got != tc.want {
				t.Fatalf("FanMode(%d).String()=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFlowModes(t *testing.T) {
	if !HorizontalStop.Valid() || !HorizontalSwing.Valid() || HorizontalFlowMode(2).Valid() {
		t.Fatal("HorizontalFlowMode.Valid broken")
	}
	if !VerticalStop.Valid() || !VerticalSwing.Valid() || VerticalFlowMode(2).Valid() {
		t.Fatal("VerticalFlowMode.Valid broken")
	}
	if HorizontalStop.String() != "stop" || HorizontalSwing.String() != "swing" {
		t.Fatal("HorizontalFlowMode.String broken")
	}
	if VerticalStop.String() != "stop" || VerticalSwing.String() != "swing" {
		t.Fatal("VerticalFlowMode.String broken")
	}
	if HorizontalFlowMode(7).String() != "unknown" || VerticalFlowMode(7).String() != "unknown" {
		t.Fatal("expected unknown for out of range flow modes")
	}
}
