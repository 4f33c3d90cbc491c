//go:build tinygo

package max11300

import (
	"machine"

	"tinygo.org/x/drivers"
)

// tinygoPin wraps a machine.Pin to satisfy the Pin interface.
type tinygoPin struct {
	pin machine.Pin
}

func (p *tinygoPin) Out(l Level) error {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.pin.Set(bool(l))
	return nil
}

func (p *tinygoPin) In(pull Pull) error {
	mode := machine.PinInput
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	}
	p.pin.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (p *tinygoPin) Read() Level {
	return Level(p.pin.Get())
}

// Watch installs handler as the pin interrupt. It runs in interrupt context
// and must not block.
func (p *tinygoPin) Watch(edge Edge, handler func()) error {
	var change machine.PinChange
	switch edge {
	case RisingEdge:
		change = machine.PinRising
	case FallingEdge:
		change = machine.PinFalling
	case BothEdges:
		change = machine.PinToggle
	default:
		return nil
	}
	return p.pin.SetInterrupt(change, func(machine.Pin) { handler() })
}

func (p *tinygoPin) Unwatch() error {
	return p.pin.SetInterrupt(0, nil)
}

// tinygoSPI frames each transaction with the chip-select line.
type tinygoSPI struct {
	bus drivers.SPI
	cs  machine.Pin
}

func (s *tinygoSPI) Tx(w, r []byte) error {
	s.cs.Low()
	err := s.bus.Tx(w, r)
	s.cs.High()
	return err
}

// NewTinyGo creates a MAX11300 driver for TinyGo systems. bus is usually a
// configured *machine.SPI. cnvtPin and irqPin may be machine.NoPin.
func NewTinyGo(c DeviceConfig, bus drivers.SPI, csPin, cnvtPin, irqPin machine.Pin) (*Device, error) {
	csPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	csPin.High()

	hw := HardwareConfig{DeviceConfig: c}
	if cnvtPin != machine.NoPin {
		hw.CNVT = &tinygoPin{pin: cnvtPin}
	}
	if irqPin != machine.NoPin {
		hw.IRQ = &tinygoPin{pin: irqPin}
	}
	return NewWithHardware(hw, &tinygoSPI{bus: bus, cs: csPin})
}
