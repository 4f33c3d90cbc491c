package max11300

import (
	"periph.io/x/conn/v3/physic"
)

// analogSource reports whether the pin's ADC data register holds samples.
func (p pinState) analogSource() bool {
	return p.mode.isAnalogInput() || p.mode == AnalogOutMonitoring
}

// ReadAnalogPin returns the latest 12-bit code of pin. Analog inputs and
// monitored outputs return the ADC result; plain analog outputs return the
// code the DAC is driving.
// This method is concurrent safe.
func (d *Device) ReadAnalogPin(pin int) (uint16, error) {
	if err := pinRange(pin); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readAnalog(pin)
}

// readAnalog reads the data register selected by the pin mode.
// Call with lock held.
func (d *Device) readAnalog(pin int) (uint16, error) {
	var addr byte
	switch p := d.pins[pin]; {
	case p.analogSource():
		addr = adcDataAddr(pin)
	case p.mode == AnalogOut:
		addr = dacDataAddr(pin)
	default:
		return 0, misuse("pin %d is %s, not an analog pin", pin, p.mode)
	}
	var w [1]uint16
	if err := d.transport.ReadRegisters(addr, w[:]); err != nil {
		return 0, err
	}
	return w[0] & _CODE_MASK, nil
}

// ReadAnalogPotential reads pin like ReadAnalogPin and scales the code by
// the pin's configured range.
// This method is concurrent safe.
func (d *Device) ReadAnalogPotential(pin int) (physic.ElectricPotential, error) {
	if err := pinRange(pin); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	code, err := d.readAnalog(pin)
	if err != nil {
		return 0, err
	}
	p := d.pins[pin]
	if p.mode.isAnalogInput() {
		return p.adcRange.Potential(code), nil
	}
	return p.dacRange.Potential(code), nil
}

// WriteAnalogPin sets the DAC code of an analog output.
// This method is concurrent safe.
func (d *Device) WriteAnalogPin(pin int, code uint16) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if code > _CODE_MASK {
		return outOfRange("code %#x exceeds 12 bits", code)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pins[pin].mode.isAnalogOutput() {
		return misuse("pin %d is %s, not an analog output", pin, d.pins[pin].mode)
	}
	return d.transport.WriteRegisters(dacDataAddr(pin), []uint16{code})
}

// WriteAnalogPotential drives an analog output to v, clamped to its range.
// This method is concurrent safe.
func (d *Device) WriteAnalogPotential(pin int, v physic.ElectricPotential) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.pins[pin]
	if !p.mode.isAnalogOutput() {
		return misuse("pin %d is %s, not an analog output", pin, p.mode)
	}
	return d.transport.WriteRegisters(dacDataAddr(pin), []uint16{p.dacRange.Code(v)})
}

// ReadDigitalPin returns the input level of a digital input, or the level a
// digital output is driving.
// This method is concurrent safe.
func (d *Device) ReadDigitalPin(pin int) (bool, error) {
	if err := pinRange(pin); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var base byte
	switch d.pins[pin].mode {
	case DigitalIn:
		base = _REG_GPI_DATA_L
	case DigitalOut:
		base = _REG_GPO_DATA_L
	default:
		return false, misuse("pin %d is %s, not a digital pin", pin, d.pins[pin].mode)
	}
	offset, bit := splitPin(pin)
	var w [1]uint16
	if err := d.transport.ReadRegisters(base+offset, w[:]); err != nil {
		return false, err
	}
	return w[0]&bit != 0, nil
}

// WriteDigitalPin sets the level of a digital output.
// This method is concurrent safe.
func (d *Device) WriteDigitalPin(pin int, value bool) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pins[pin].mode != DigitalOut {
		return misuse("pin %d is %s, not %s", pin, d.pins[pin].mode, DigitalOut)
	}
	offset, bit := splitPin(pin)
	var v uint16
	if value {
		v = bit
	}
	return d.transport.ReadModifyWrite(_REG_GPO_DATA_L+offset, bit, v)
}

func burstRange(start, size int) error {
	if size == 0 {
		return outOfRange("empty burst")
	}
	if start < 0 || start+size > NumPins {
		return outOfRange("burst of %d words from pin %d runs past pin %d", size, start, NumPins-1)
	}
	return nil
}

// BurstAnalogRead fills samples with the ADC data registers of pins
// start..start+len(samples)-1 in one transaction. Pin modes are not checked.
// This method is concurrent safe.
func (d *Device) BurstAnalogRead(start int, samples []uint16) error {
	if err := burstRange(start, len(samples)); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.transport.ReadRegisters(adcDataAddr(start), samples); err != nil {
		return err
	}
	for i := range samples {
		samples[i] &= _CODE_MASK
	}
	return nil
}

// BurstAnalogWrite writes samples to the DAC data registers of pins
// start..start+len(samples)-1 in one transaction. Pin modes are not checked.
// This method is concurrent safe.
func (d *Device) BurstAnalogWrite(start int, samples []uint16) error {
	if err := burstRange(start, len(samples)); err != nil {
		return err
	}
	for i, s := range samples {
		if s > _CODE_MASK {
			return outOfRange("sample %d: code %#x exceeds 12 bits", i, s)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transport.WriteRegisters(dacDataAddr(start), samples)
}

// IsAnalogDataReady reports whether the ADC has a new result for pin.
// The flag stays set until ServiceInterrupt consumes it.
// This method is concurrent safe.
func (d *Device) IsAnalogDataReady(pin int) (bool, error) {
	if err := pinRange(pin); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var st [2]uint16
	if err := d.transport.ReadRegisters(_REG_ADC_ST_L, st[:]); err != nil {
		return false, err
	}
	d.analogSticky |= joinPins(st[0], st[1])
	return d.analogSticky&(1<<uint(pin)) != 0, nil
}

// IsAnalogConversionComplete reports whether a conversion sweep finished.
// Reading the interrupt register clears it on the chip, so every flag seen
// here is kept for the next ServiceInterrupt.
// This method is concurrent safe.
func (d *Device) IsAnalogConversionComplete() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var w [1]uint16
	if err := d.transport.ReadRegisters(_REG_INTERRUPT, w[:]); err != nil {
		return false, err
	}
	d.intSticky |= w[0]
	return d.intSticky&_INT_ADCFLAG != 0, nil
}

// StartConversion pulses CNVT. Completion is reported later through
// IsAnalogConversionComplete or an AnalogConversionComplete event.
// This method is concurrent safe.
func (d *Device) StartConversion() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transport.TriggerConversion()
}
