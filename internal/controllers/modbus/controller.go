package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	mbserver "github.com/tbrandon/mbserver"

	"github.com/home-easy/easybridge/internal/climate"
	"github.com/home-easy/easybridge/internal/ports"
)

// Register map exposed to Modbus masters:
//
//	coil 0              power (read-only; turn off via HR 1)
//	holding register 0  target temperature x100
//	holding register 1  hvac mode index into climate.HVACModes
//	holding register 2  fan mode index into climate.FanModes
//	holding register 3  swing mode index into climate.SwingModes
//	input register 0    indoor temperature x100
const holdingRegisterCount = 4

// Config for the Modbus controller.
type Config struct {
	MAC    string
	Addr   string
	UnitID byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.
}

type Controller struct {
	svc ports.Climate
	cfg Config

	serv *mbserver.Server
}

func New(svc ports.Climate, cfg Config) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	return &Controller{svc: svc, cfg: cfg}, nil
}

// Run starts the Modbus server and registers handlers that read and write
// the climate entity directly. It blocks until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside
	// mbserver between handler registration and the server's goroutines.

	// Read Coils (function 1) - coil 0 is the power state.
	serv.RegisterFunctionHandler(1, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := binary.BigEndian.Uint16(data[0:2])
		qty := binary.BigEndian.Uint16(data[2:4])
		if start != 0 || qty != 1 {
			return []byte{}, &mbserver.IllegalDataAddress
		}
		coilByte := byte(0)
		if c.svc.HVACMode() != climate.HVACOff {
			coilByte = 0x01
		}
		// response: byte count (1) + coil bytes
		return []byte{1, coilByte}, &mbserver.Success
	})

	// Read Holding Registers (function 3) - HR 0..3 from the entity.
	serv.RegisterFunctionHandler(3, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := int(binary.BigEndian.Uint16(data[0:2]))
		qty := int(binary.BigEndian.Uint16(data[2:4]))
		if qty == 0 || qty > 125 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		if start < 0 || start+qty > holdingRegisterCount {
			return []byte{}, &mbserver.IllegalDataAddress
		}
		regs := make([]uint16, 0, qty)
		for i := 0; i < qty; i++ {
			switch start + i {
			case 0:
				regs = append(regs, encodeTemp(c.svc.TargetTemperature()))
			case 1:
				regs = append(regs, uint16(indexOf(climate.HVACModes(), c.svc.HVACMode())))
			case 2:
				regs = append(regs, uint16(indexOf(climate.FanModes(), c.svc.FanMode())))
			case 3:
				regs = append(regs, uint16(indexOf(climate.SwingModes(), c.svc.SwingMode())))
			default:
				return []byte{}, &mbserver.IllegalDataAddress
			}
		}
		byteCount := len(regs) * 2
		resp := make([]byte, 1+byteCount)
		resp[0] = byte(byteCount)
		for i, r := range regs {
			binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
		}
		return resp, &mbserver.Success
	})

	// Read Input Registers (function 4) - IR 0 (indoor temperature).
	serv.RegisterFunctionHandler(4, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := int(binary.BigEndian.Uint16(data[0:2]))
		qty := int(binary.BigEndian.Uint16(data[2:4]))
		if start != 0 || qty != 1 {
			return []byte{}, &mbserver.IllegalDataAddress
		}
		val := encodeTemp(c.svc.CurrentTemperature())
		resp := make([]byte, 1+2)
		resp[0] = 2
		binary.BigEndian.PutUint16(resp[1:3], val)
		return resp, &mbserver.Success
	})

	// Write Single Register (function 6)
	serv.RegisterFunctionHandler(6, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		addr := binary.BigEndian.Uint16(data[0:2])
		value := binary.BigEndian.Uint16(data[2:4])

		if ex := c.writeRegister(int(addr), value); ex != nil {
			return []byte{}, ex
		}

		// echo request (address + value)
		resp := make([]byte, 4)
		copy(resp, data[0:4])
		return resp, &mbserver.Success
	})

	// Write Multiple Registers (function 16)
	serv.RegisterFunctionHandler(16, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		d := frame.GetData()
		if len(d) < 5 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := binary.BigEndian.Uint16(d[0:2])
		quantity := binary.BigEndian.Uint16(d[2:4])
		byteCount := int(d[4])
		if byteCount != int(quantity)*2 || len(d) < 5+byteCount {
			return []byte{}, &mbserver.IllegalDataValue
		}
		for i := 0; i < int(quantity); i++ {
			val := binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
			if ex := c.writeRegister(int(start)+i, val); ex != nil {
				return []byte{}, ex
			}
		}

		resp := make([]byte, 4)
		binary.BigEndian.PutUint16(resp[0:2], start)
		binary.BigEndian.PutUint16(resp[2:4], quantity)
		return resp, &mbserver.Success
	})

	// Now start listening after all handlers are registered.
	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}

	// Block until ctx.Done()
	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

func (c *Controller) writeRegister(addr int, value uint16) *mbserver.Exception {
	switch addr {
	case 0:
		v := decodeTemp(value)
		if err := c.svc.SetTemperature(&v); err != nil {
			return &mbserver.IllegalDataValue
		}
	case 1:
		modes := climate.HVACModes()
		if int(value) >= len(modes) {
			return &mbserver.IllegalDataValue
		}
		if err := c.svc.SetHVACMode(modes[value]); err != nil {
			return &mbserver.IllegalDataValue
		}
	case 2:
		modes := climate.FanModes()
		if int(value) >= len(modes) {
			return &mbserver.IllegalDataValue
		}
		if err := c.svc.SetFanMode(modes[value]); err != nil {
			return &mbserver.IllegalDataValue
		}
	case 3:
		modes := climate.SwingModes()
		if int(value) >= len(modes) {
			return &mbserver.IllegalDataValue
		}
		if err := c.svc.SetSwingMode(modes[value]); err != nil {
			return &mbserver.IllegalDataValue
		}
	default:
		return &mbserver.IllegalDataAddress
	}
	return nil
}

const TemperatureScale int = 100

func encodeTemp(v float64) uint16 {
	r := min(max(int(math.Round(v*float64(TemperatureScale))), math.MinInt16), math.MaxInt16)
	return uint16(int16(r))
}

func decodeTemp(u uint16) float64 {
	i := int16(u)
	return float64(i) / float64(TemperatureScale)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	// unmatched reads report the last entry, mirroring the swing fallback
	return len(names) - 1
}
