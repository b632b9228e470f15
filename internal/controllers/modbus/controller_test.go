package modbusctrl

import (
	"context"
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/goburrow/modbus"
)

// spy service for tests
type spyClimate struct {
	mu sync.Mutex

	current float64
	target  float64
	hvac    string
	fan     string
	swing   string

	// record calls
	setTempCalls  []float64
	setHVACCalls  []string
	setFanCalls   []string
	setSwingCalls []string
}

func (f *spyClimate) UniqueID() string        { return "AA:BB:CC" }
func (f *spyClimate) Name() string            { return "Home Easy HVAC(AA:BB:CC)" }
func (f *spyClimate) ShouldPoll() bool        { return false }
func (f *spyClimate) TemperatureUnit() string { return "°C" }

func (f *spyClimate) CurrentTemperature() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}
func (f *spyClimate) TargetTemperature() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}
func (f *spyClimate) HVACMode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hvac
}
func (f *spyClimate) FanMode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fan
}
func (f *spyClimate) SwingMode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.swing
}

func (f *spyClimate) SetTemperature(v *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v != nil {
		f.target = *v
		f.setTempCalls = append(f.setTempCalls, *v)
	}
	return nil
}
func (f *spyClimate) SetHVACMode(mode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hvac = mode
	f.setHVACCalls = append(f.setHVACCalls, mode)
	return nil
}
func (f *spyClimate) SetFanMode(mode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fan = mode
	f.setFanCalls = append(f.setFanCalls, mode)
	return nil
}
func (f *spyClimate) SetSwingMode(mode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swing = mode
	f.setSwingCalls = append(f.setSwingCalls, mode)
	return nil
}

func (f *spyClimate) Update(_ context.Context) error { return nil }
func (f *spyClimate) Updates() <-chan struct{}       { return nil }

func findFreeTCPAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("free port: %v", err)
	}
	a := l.Addr().String()
	_ = l.Close()
	return a
}

func startController(t *testing.T, fs *spyClimate) modbus.Client {
	t.Helper()

	addr := findFreeTCPAddr(t)
	ctrl, err := New(fs, Config{MAC: "AA:BB:CC", Addr: addr, UnitID: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := t.Context()
	go func() {
		_ = ctrl.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	handler := modbus.NewTCPClientHandler(addr)
	if err := handler.Connect(); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = handler.Close() })
	return modbus.NewClient(handler)
}

func TestNewValidation(t *testing.T) {
	if _, err := New(&spyClimate{}, Config{MAC: "AA:BB:CC"}); err == nil {
		t.Fatal("expected error for zero UnitID")
	}
}

func TestReadRegisters(t *testing.T) {
	fs := &spyClimate{
		current: 21.25,
		target:  22.5,
		hvac:    "cool",
		fan:     "Mid-high",
		swing:   "Both",
	}
	client := startController(t, fs)

	res, err := client.ReadHoldingRegisters(0, 4)
	if err != nil {
		t.Fatalf("read holding: %v", err)
	}
	if len(res) != 8 {
		t.Fatalf("expected 8 bytes got %d", len(res))
	}
	get := func(i int) uint16 { return binary.BigEndian.Uint16(res[i*2 : i*2+2]) }
	if get(0) != encodeTemp(22.5) {
		t.Fatalf("target register mismatch: %d", get(0))
	}
	if get(1) != 2 { // HVACModes()[2] == "cool"
		t.Fatalf("hvac register mismatch: %d", get(1))
	}
	if get(2) != 4 { // FanModes()[4] == "Mid-high"
		t.Fatalf("fan register mismatch: %d", get(2))
	}
	if get(3) != 3 { // SwingModes()[3] == "Both"
		t.Fatalf("swing register mismatch: %d", get(3))
	}

	ir, err := client.ReadInputRegisters(0, 1)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	if binary.BigEndian.Uint16(ir) != encodeTemp(21.25) {
		t.Fatalf("indoor register mismatch: %d", binary.BigEndian.Uint16(ir))
	}
}

func TestReadCoil_PowerState(t *testing.T) {
	fs := &spyClimate{hvac: "heat"}
	client := startController(t, fs)

	res, err := client.ReadCoils(0, 1)
	if err != nil {
		t.Fatalf("read coils: %v", err)
	}
	if res[0]&0x01 == 0 {
		t.Fatal("expected power coil set while heating")
	}

	fs.mu.Lock()
	fs.hvac = "off"
	fs.mu.Unlock()

	res, err = client.ReadCoils(0, 1)
	if err != nil {
		t.Fatalf("read coils: %v", err)
	}
	if res[0]&0x01 != 0 {
		t.Fatal("expected power coil clear while off")
	}
}

func TestWriteSingleRegister(t *testing.T) {
	fs := &spyClimate{hvac: "auto", fan: "Auto", swing: "Stop"}
	client := startController(t, fs)

	if _, err := client.WriteSingleRegister(0, encodeTemp(25.75)); err != nil {
		t.Fatalf("write target: %v", err)
	}
	if _, err := client.WriteSingleRegister(1, 5); err != nil {
		t.Fatalf("write hvac: %v", err)
	}
	if _, err := client.WriteSingleRegister(2, 8); err != nil {
		t.Fatalf("write fan: %v", err)
	}
	if _, err := client.WriteSingleRegister(3, 2); err != nil {
		t.Fatalf("write swing: %v", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.setTempCalls) != 1 || fs.setTempCalls[0] != decodeTemp(encodeTemp(25.75)) {
		t.Fatalf("SetTemperature calls: %v", fs.setTempCalls)
	}
	if len(fs.setHVACCalls) != 1 || fs.setHVACCalls[0] != "heat" {
		t.Fatalf("SetHVACMode calls: %v", fs.setHVACCalls)
	}
	if len(fs.setFanCalls) != 1 || fs.setFanCalls[0] != "Turbo" {
		t.Fatalf("SetFanMode calls: %v", fs.setFanCalls)
	}
	if len(fs.setSwingCalls) != 1 || fs.setSwingCalls[0] != "Vertical" {
		t.Fatalf("SetSwingMode calls: %v", fs.setSwingCalls)
	}
}

func TestWriteSingleRegister_Rejections(t *testing.T) {
	fs := &spyClimate{hvac: "auto", fan: "Auto", swing: "Stop"}
	client := startController(t, fs)

	// index past the mode list
	if _, err := client.WriteSingleRegister(1, 99); err == nil {
		t.Fatal("expected exception for out-of-range hvac index")
	}
	// unmapped register
	if _, err := client.WriteSingleRegister(9, 1); err == nil {
		t.Fatal("expected exception for unmapped register")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.setHVACCalls) != 0 {
		t.Fatalf("rejected writes must not reach the service: %v", fs.setHVACCalls)
	}
}

func TestWriteMultipleRegisters(t *testing.T) {
	fs := &spyClimate{hvac: "auto", fan: "Auto", swing: "Stop"}
	client := startController(t, fs)

	// target + hvac + fan + swing in one transaction
	buf := make([]byte, 8)
	binary.BigEndian.PutUint16(buf[0:2], encodeTemp(24))
	binary.BigEndian.PutUint16(buf[2:4], 2) // cool
	binary.BigEndian.PutUint16(buf[4:6], 3) // Mid-low
	binary.BigEndian.PutUint16(buf[6:8], 1) // Horizontal
	if _, err := client.WriteMultipleRegisters(0, 4, buf); err != nil {
		t.Fatalf("write multiple: %v", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.setTempCalls) != 1 || fs.setTempCalls[0] != 24 {
		t.Fatalf("SetTemperature calls: %v", fs.setTempCalls)
	}
	if len(fs.setHVACCalls) != 1 || fs.setHVACCalls[0] != "cool" {
		t.Fatalf("SetHVACMode calls: %v", fs.setHVACCalls)
	}
	if len(fs.setFanCalls) != 1 || fs.setFanCalls[0] != "Mid-low" {
		t.Fatalf("SetFanMode calls: %v", fs.setFanCalls)
	}
	if len(fs.setSwingCalls) != 1 || fs.setSwingCalls[0] != "Horizontal" {
		t.Fatalf("SetSwingMode calls: %v", fs.setSwingCalls)
	}
}

func TestTempCodec(t *testing.T) {
	for _, v := range []float64{0, 16, 21.25, 31, -5.5} {
		if got := decodeTemp(encodeTemp(v)); got != v {
			t.Fatalf("codec round trip %v -> %v", v, got)
		}
	}
}
