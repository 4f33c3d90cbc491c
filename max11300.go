// Package max11300 drives the MAX11300 PIXI, a 20-port mixed-signal I/O chip
// on SPI. Every port can be a digital input or output, a single-ended or
// differential ADC input, or a DAC output with optional ADC readback.
//
// A Device keeps the configuration of each port in memory, validates mode
// changes against the chip's rules, and turns pin-level operations into
// register accesses. Interrupts are decoded into an Event naming the pins
// responsible for data-ready and data-missed conditions.
package max11300

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// DeviceConfig holds the chip-wide settings applied at initialization.
type DeviceConfig struct {
	// ADCMode is the conversion mode.
	// Defaults to ContinuousSweep if not provided.
	ADCMode ADCMode
	// ConversionRate is the ADC sample rate shared by all analog ports.
	// Defaults to Rate200ksps if not provided.
	ConversionRate ConversionRate
	// DACReference selects the reference of every DAC port.
	// Defaults to DACInternal if not provided.
	DACReference DACReference
	// TempSensors enables the internal and external temperature sensors.
	// Defaults to none.
	TempSensors TempSensors
	// InterruptMask masks interrupt sources; a set bit silences the source.
	// Defaults to 0, every source enabled.
	InterruptMask uint16
	// PollInterval is the status polling period of WaitForEvent when no
	// interrupt pin is wired.
	// Defaults to 5ms if not provided.
	PollInterval time.Duration
}

type HardwareConfig struct {
	DeviceConfig
	// CNVT is the conversion trigger pin.
	// Optional. Without it StartConversion has no effect.
	CNVT Pin
	// IRQ is the active-low INT pin.
	// Optional. If not provided, polling is used.
	IRQ Pin
}

// pinState is the configuration of one port. Fields that do not apply to
// mode hold their "none" value.
type pinState struct {
	mode      PinMode
	partner   int
	dacRange  DACRange
	adcRange  ADCRange
	averaging uint8
	adcRef    ADCReference
	// gpiMode mirrors the GPI IRQ mode register, which survives mode changes.
	gpiMode GPIMode
}

type Device struct {
	config    HardwareConfig
	transport Transport
	port      io.Closer
	irqChan   chan struct{}
	now       func() time.Time
	mu        sync.Mutex

	pins           [NumPins]pinState
	adcMode        ADCMode
	conversionRate ConversionRate
	dacRef         DACReference
	control        uint16

	// The interrupt and ADC status registers clear on read; bits seen
	// outside ServiceInterrupt are kept here until it consumes them.
	intSticky    uint16
	analogSticky uint32
	lastEvent    Event
}

// NewWithHardware creates and initializes a MAX11300 driver on the provided
// SPI connection and pins.
func NewWithHardware(c HardwareConfig, conn SPI) (*Device, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: SPI connection not configured", ErrPkg)
	}
	return newDevice(c, newSPITransport(conn, c.CNVT))
}

func newDevice(c HardwareConfig, t Transport) (*Device, error) {
	if c.ADCMode == ADCModeNone {
		c.ADCMode = ContinuousSweep
	}
	if c.ConversionRate == RateNone {
		c.ConversionRate = Rate200ksps
	}
	if c.DACReference == DACReferenceNone {
		c.DACReference = DACInternal
	}
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Millisecond
	}
	if c.ADCMode > ContinuousSweep || c.ConversionRate > Rate400ksps || c.DACReference > DACExternal {
		return nil, outOfRange("invalid device configuration")
	}
	if c.TempSensors&^TempAll != 0 {
		return nil, outOfRange("invalid temperature sensor set %#x", uint8(c.TempSensors))
	}

	dev := &Device{
		config:    c,
		transport: t,
		now:       time.Now,
	}
	dev.resetPins()

	globalLogger.Info("Initializing MAX11300 SPI communication...")

	var id [1]uint16
	if err := t.ReadRegisters(_REG_DEV_ID, id[:]); err != nil {
		return nil, fmt.Errorf("failed to read MAX11300 device id: %w", err)
	}
	if id[0] != _DEVICE_ID {
		return nil, fmt.Errorf("%w: %w: got %#04x, check wiring/power", ErrPkg, ErrDeviceID, id[0])
	}

	// Reset brings every port to high impedance, matching the Unconfigured model.
	if err := t.WriteRegisters(_REG_DEVICE_CTRL, []uint16{1 << _DCTL_RESET}); err != nil {
		return nil, err
	}
	t.InitDelay(time.Millisecond)

	ctrl := packDeviceControl(c.ADCMode, c.ConversionRate, c.DACReference, c.TempSensors)
	if err := t.WriteRegisters(_REG_DEVICE_CTRL, []uint16{ctrl}); err != nil {
		return nil, err
	}
	t.InitDelay(200 * time.Microsecond)
	if err := t.WriteRegisters(_REG_INTERRUPT_MSK, []uint16{c.InterruptMask}); err != nil {
		return nil, err
	}
	dev.control = ctrl
	dev.adcMode = c.ADCMode
	dev.conversionRate = c.ConversionRate
	dev.dacRef = c.DACReference

	if c.CNVT != nil {
		if err := c.CNVT.Out(High); err != nil {
			return nil, fmt.Errorf("failed to drive CNVT pin: %w", err)
		}
	}

	if c.IRQ != nil {
		if err := c.IRQ.In(PullUp); err != nil {
			return nil, fmt.Errorf("failed to configure IRQ pin: %w", err)
		}
		dev.irqChan = make(chan struct{}, 1)
		// The handler runs outside the device lock and never touches the bus.
		err := c.IRQ.Watch(FallingEdge, func() {
			select {
			case dev.irqChan <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to watch IRQ pin: %w", err)
		}
	}

	globalLogger.Info("MAX11300 initialized. All ports unconfigured.")
	return dev, nil
}

func (d *Device) resetPins() {
	for i := range d.pins {
		d.pins[i] = pinState{mode: Unconfigured, partner: NoPin, gpiMode: GPINeither}
	}
}

func (d *Device) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "MAX11300(ADCMode=%s, Rate=%s, DACRef=%s, Pins=[", d.adcMode, d.conversionRate, d.dacRef)
	for i, p := range d.pins {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d:%s", i, p.mode)
	}
	b.WriteString("])")
	return b.String()
}

// writeControl updates the cached device control word and writes it.
// Call with lock held.
func (d *Device) writeControl(mask, value uint16) error {
	next := d.control&^mask | value&mask
	if err := d.transport.WriteRegisters(_REG_DEVICE_CTRL, []uint16{next}); err != nil {
		return err
	}
	d.control = next
	return nil
}

// Close stops conversions, releases the IRQ pin and closes the SPI port.
// This method is concurrent safe.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.writeControl(_DCTL_ADCCTL_MASK, field(Idle)<<_DCTL_ADCCTL)
	if err != nil {
		logErr("stopping ADC", err)
	} else {
		d.adcMode = Idle
		globalLogger.Info("MAX11300 ADC idle.")
	}

	if d.config.IRQ != nil {
		if uerr := d.config.IRQ.Unwatch(); uerr != nil {
			globalLogger.Warn("Failed to release IRQ pin")
		}
	}

	if d.port != nil {
		if cerr := d.port.Close(); cerr != nil {
			globalLogger.Warn("Failed to close SPI port")
		}
		globalLogger.Info("SPI bus closed.")
	}
	return err
}
