package testutil

import "context"

// FakeClimateService is a reusable fake implementing ports.Climate.
// Put ONLY what multiple test packages need here.
type FakeClimateService struct {
	ID         string
	EntityName string
	Poll       bool

	Unit    string
	Current float64
	Target  float64
	HVAC    string
	Fan     string
	Swing   string

	SetTemperatureCalled bool
	SetTemperatureArg    *float64
	SetTemperatureErr    error

	SetHVACModeCalled bool
	SetHVACModeArg    string
	SetHVACModeErr    error

	SetFanModeCalled bool
	SetFanModeArg    string
	SetFanModeErr    error

	SetSwingModeCalled bool
	SetSwingModeArg    string
	SetSwingModeErr    error

	UpdateCalled bool
	UpdateErr    error

	UpdatesCh chan struct{}
}

func NewFakeClimateService() *FakeClimateService {
	return &FakeClimateService{
		ID:         "AA:BB:CC",
		EntityName: "Home Easy HVAC(AA:BB:CC)",
		Unit:       "°C",
		Current:    21,
		Target:     22,
		HVAC:       "auto",
		Fan:        "Auto",
		Swing:      "Stop",
		UpdatesCh:  make(chan struct{}, 1),
	}
}

func (f *FakeClimateService) UniqueID() string            { return f.ID }
func (f *FakeClimateService) Name() string                { return f.EntityName }
func (f *FakeClimateService) ShouldPoll() bool            { return f.Poll }
func (f *FakeClimateService) TemperatureUnit() string     { return f.Unit }
func (f *FakeClimateService) CurrentTemperature() float64 { return f.Current }
func (f *FakeClimateService) TargetTemperature() float64  { return f.Target }
func (f *FakeClimateService) HVACMode() string            { return f.HVAC }
func (f *FakeClimateService) FanMode() string             { return f.Fan }
func (f *FakeClimateService) SwingMode() string           { return f.Swing }

func (f *FakeClimateService) SetTemperature(temperature *float64) error {
	f.SetTemperatureCalled = true
	f.SetTemperatureArg = temperature
	if f.SetTemperatureErr != nil {
		return f.SetTemperatureErr
	}
	if temperature != nil {
		f.Target = *temperature
	}
	return nil
}

func (f *FakeClimateService) SetHVACMode(mode string) error {
	f.SetHVACModeCalled = true
	f.SetHVACModeArg = mode
	if f.SetHVACModeErr != nil {
		return f.SetHVACModeErr
	}
	f.HVAC = mode
	return nil
}

func (f *FakeClimateService) SetFanMode(mode string) error {
	f.SetFanModeCalled = true
	f.SetFanModeArg = mode
	if f.SetFanModeErr != nil {
		return f.SetFanModeErr
	}
	f.Fan = mode
	return nil
}

func (f *FakeClimateService) SetSwingMode(mode string) error {
	f.SetSwingModeCalled = true
	f.SetSwingModeArg = mode
	if f.SetSwingModeErr != nil {
		return f.SetSwingModeErr
	}
	f.Swing = mode
	return nil
}

func (f *FakeClimateService) Update(_ context.Context) error {
	f.UpdateCalled = true
	return f.UpdateErr
}

func (f *FakeClimateService) Updates() <-chan struct{} { return f.UpdatesCh }
