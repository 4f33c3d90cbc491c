//go:build !tinygo

package max11300

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// edgePollTimeout bounds WaitForEdge so Unwatch is observed promptly.
const edgePollTimeout = 100 * time.Millisecond

var (
	periphPull = map[Pull]gpio.Pull{
		PullNoChange: gpio.PullNoChange,
		PullFloat:    gpio.Float,
		PullDown:     gpio.PullDown,
		PullUp:       gpio.PullUp,
	}
	periphEdge = map[Edge]gpio.Edge{
		NoEdge:      gpio.NoEdge,
		RisingEdge:  gpio.RisingEdge,
		FallingEdge: gpio.FallingEdge,
		BothEdges:   gpio.BothEdges,
	}
)

// realPin adapts a periph.io gpio.PinIO to the Pin interface.
type realPin struct {
	gpio.PinIO
	stopWatch chan struct{}
	done      chan struct{}
}

func (p *realPin) Out(l Level) error {
	return p.PinIO.Out(gpio.Level(l))
}

func (p *realPin) In(pull Pull) error {
	return p.PinIO.In(periphPull[pull], gpio.NoEdge)
}

func (p *realPin) Read() Level {
	return Level(p.PinIO.Read())
}

// Watch calls handler from a goroutine on every matching edge until Unwatch.
// INT is open drain, so the pin keeps its pull-up.
func (p *realPin) Watch(edge Edge, handler func()) error {
	if p.stopWatch != nil {
		return fmt.Errorf("pin %s is already watched", p.Name())
	}
	if err := p.PinIO.In(gpio.PullUp, periphEdge[edge]); err != nil {
		return err
	}
	stop, done := make(chan struct{}), make(chan struct{})
	p.stopWatch, p.done = stop, done

	go func() {
		defer close(done)
		for {
			got := p.PinIO.WaitForEdge(edgePollTimeout)
			select {
			case <-stop:
				return
			default:
			}
			if got {
				handler()
			}
		}
	}()
	return nil
}

func (p *realPin) Unwatch() error {
	if p.stopWatch == nil {
		return nil
	}
	close(p.stopWatch)
	<-p.done
	p.stopWatch, p.done = nil, nil
	return p.PinIO.In(gpio.PullUp, gpio.NoEdge)
}

// Config holds the configuration for the Linux/periph.io driver.
type Config struct {
	DeviceConfig
	// ConvertPin is the GPIO pin number (BCM numbering) wired to CNVT.
	// Optional. Without it conversions run only in continuous sweep mode.
	// 0 means not wired, so GPIO0 cannot be used.
	ConvertPin int
	// IRQPin is the GPIO pin number (BCM numbering) wired to INT.
	// Optional. If not provided, polling is used.
	// 0 means not wired, so GPIO0 cannot be used.
	IRQPin int
	// SpiBusPath is the path to the SPI bus (e.g., "/dev/spidev0.0").
	// Defaults to "/dev/spidev0.0" if not provided.
	SpiBusPath string
	// SpiClockHz is the SPI clock frequency in Hz. The chip accepts up to 20MHz.
	// Defaults to 5000000 (5MHz) if not provided.
	SpiClockHz int
}

func openPin(n int) (Pin, error) {
	name := fmt.Sprintf("GPIO%d", n)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("failed to open pin %s", name)
	}
	return &realPin{PinIO: p}, nil
}

// New creates and initializes a MAX11300 driver for Linux systems.
// It applies configuration defaults, opens the SPI port and GPIO lines through
// periph.io, and resets the chip.
// It returns the initialized driver or an error if hardware initialization fails.
func New(c Config) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io host: %w", err)
	}

	if c.SpiBusPath == "" {
		c.SpiBusPath = "/dev/spidev0.0"
	}
	p, err := spireg.Open(c.SpiBusPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port: %w", err)
	}

	if c.SpiClockHz == 0 {
		c.SpiClockHz = 5000000
	}
	// Mode 0, 8 bits; spidev frames chip select around each Tx.
	conn, err := p.Connect(physic.Frequency(c.SpiClockHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create SPI connection: %w", err)
	}

	hw := HardwareConfig{DeviceConfig: c.DeviceConfig}
	if c.ConvertPin != 0 {
		if hw.CNVT, err = openPin(c.ConvertPin); err != nil {
			p.Close()
			return nil, err
		}
	}
	if c.IRQPin != 0 {
		if hw.IRQ, err = openPin(c.IRQPin); err != nil {
			p.Close()
			return nil, err
		}
	}

	dev, err := NewWithHardware(hw, conn)
	if err != nil {
		p.Close()
		return nil, err
	}
	dev.port = p
	return dev, nil
}
