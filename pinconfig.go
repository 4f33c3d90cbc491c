package max11300

import "strconv"

// configure returns the state of a pin entering mode, keeping range,
// averaging and reference settings the pin already had and applying the
// defaults otherwise.
func (p pinState) configure(mode PinMode, partner int) pinState {
	next := pinState{mode: mode, partner: NoPin, gpiMode: p.gpiMode}
	if mode.isDifferential() {
		next.partner = partner
	}
	if mode.isAnalogOutput() {
		next.dacRange = p.dacRange
		if next.dacRange == DACRangeNone {
			next.dacRange = DACZeroTo10
		}
	}
	if mode.isAnalogInput() {
		next.adcRange, next.averaging, next.adcRef = p.adcRange, p.averaging, p.adcRef
		if next.adcRange == ADCRangeNone {
			next.adcRange = ADCZeroTo10
		}
		if next.averaging == AveragingNone {
			next.averaging = 1
		}
		if next.adcRef == ADCReferenceNone {
			next.adcRef = ADCInternal
		}
	}
	return next
}

// word packs the pin state into its port configuration register.
func (p pinState) word() uint16 {
	var rng uint16
	switch {
	case p.mode.isAnalogOutput():
		rng = uint16(p.dacRange)
	case p.mode.isAnalogInput():
		rng = uint16(p.adcRange)
	case p.mode == DigitalIn || p.mode == DigitalOut:
		rng = _RANGE_0_10
	}
	var nsamples uint8
	if p.mode.isAnalogInput() {
		nsamples, _ = averagingCode(p.averaging)
	}
	assoc := NoPin
	if p.mode == AnalogDifferentialPositive {
		assoc = p.partner
	}
	return packPortConfig(p.mode.funcID(), rng, p.adcRef == ADCExternal, nsamples, assoc)
}

// SetPinMode configures pin for mode.
//
// The differential modes need the other half of the pair in partner; every
// other mode takes NoPin. The partner is switched to the complementary role.
// It must be unconfigured, high impedance, or already paired with pin.
// A pin leaving a pairing releases its former partner to HighImpedance.
// Nothing changes in memory unless every register write succeeds.
// This method is concurrent safe.
func (d *Device) SetPinMode(pin int, mode PinMode, partner int) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if !mode.valid() || mode == Unconfigured {
		return outOfRange("invalid pin mode %d", uint8(mode))
	}
	if mode.isDifferential() {
		if partner == NoPin {
			return misuse("%s on pin %d requires a partner pin", mode, pin)
		}
		if err := pinRange(partner); err != nil {
			return err
		}
		if partner == pin {
			return conflict("pin %d cannot pair with itself", pin)
		}
	} else if partner != NoPin {
		return misuse("%s on pin %d takes no partner pin", mode, pin)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.pins
	var order []int

	if mode.isDifferential() {
		q := d.pins[partner]
		compatible := q.mode == Unconfigured || q.mode == HighImpedance ||
			(q.mode.isDifferential() && q.partner == pin)
		if !compatible {
			return conflict("pin %d is %s and cannot pair with pin %d", partner, q.mode, pin)
		}
	}

	// Release a pairing that the new configuration breaks.
	if cur := d.pins[pin]; cur.mode.isDifferential() && cur.partner != partner {
		old := cur.partner
		next[old] = next[old].configure(HighImpedance, NoPin)
		order = append(order, old)
		globalLogger.Warn("Releasing pin " + strconv.Itoa(old) + " from differential pair with pin " + strconv.Itoa(pin))
	}

	next[pin] = next[pin].configure(mode, partner)
	order = append(order, pin)
	if mode.isDifferential() {
		next[partner] = next[partner].configure(mode.complement(), pin)
		order = append(order, partner)
	}

	for _, p := range order {
		if err := d.transport.WriteRegisters(portConfigAddr(p), []uint16{next[p].word()}); err != nil {
			logErr("configuring pin "+strconv.Itoa(p), err)
			return err
		}
	}
	d.pins = next
	globalLogger.Debug("Pin " + strconv.Itoa(pin) + " set to " + mode.String())
	return nil
}

// PinMode returns the configured mode of pin, or PinModeNone for an invalid
// pin. It does not access the chip.
// This method is concurrent safe.
func (d *Device) PinMode(pin int) PinMode {
	if !validPin(pin) {
		return PinModeNone
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pins[pin].mode
}

// DifferentialPartner returns the other half of pin's differential pair,
// or NoPin if pin is not in a differential mode.
// This method is concurrent safe.
func (d *Device) DifferentialPartner(pin int) int {
	if !validPin(pin) {
		return NoPin
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pins[pin].mode.isDifferential() {
		return NoPin
	}
	return d.pins[pin].partner
}

// updatePin applies fn to a copy of pin's state, writes the resulting port
// configuration and commits it. Call with lock held.
func (d *Device) updatePin(pin int, fn func(*pinState)) error {
	next := d.pins[pin]
	fn(&next)
	if err := d.transport.WriteRegisters(portConfigAddr(pin), []uint16{next.word()}); err != nil {
		logErr("configuring pin "+strconv.Itoa(pin), err)
		return err
	}
	d.pins[pin] = next
	return nil
}

// SetPinThreshold writes the 12-bit code of pin's DAC data register. For
// digital inputs it is the logic threshold, for digital and analog outputs
// the output level.
// This method is concurrent safe.
func (d *Device) SetPinThreshold(pin int, code uint16) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if code > _CODE_MASK {
		return outOfRange("code %#x exceeds 12 bits", code)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pins[pin].mode == Unconfigured {
		return misuse("pin %d is unconfigured", pin)
	}
	return d.transport.WriteRegisters(dacDataAddr(pin), []uint16{code})
}

// PinThreshold reads back pin's DAC data register.
// This method is concurrent safe.
func (d *Device) PinThreshold(pin int) (uint16, error) {
	if err := pinRange(pin); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pins[pin].mode == Unconfigured {
		return 0, misuse("pin %d is unconfigured", pin)
	}
	var w [1]uint16
	if err := d.transport.ReadRegisters(dacDataAddr(pin), w[:]); err != nil {
		return 0, err
	}
	return w[0] & _CODE_MASK, nil
}

// SetDigitalInputMode selects the edges on which a digital input raises
// the GPI data-ready interrupt.
// This method is concurrent safe.
func (d *Device) SetDigitalInputMode(pin int, mode GPIMode) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if mode == GPINone || mode > GPIBoth {
		return outOfRange("invalid digital input mode %d", uint8(mode))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pins[pin].mode != DigitalIn {
		return misuse("pin %d is %s, not %s", pin, d.pins[pin].mode, DigitalIn)
	}
	addr, shift := gpiIRQModeAddr(pin)
	if err := d.transport.ReadModifyWrite(addr, 0x3<<shift, field(mode)<<shift); err != nil {
		return err
	}
	d.pins[pin].gpiMode = mode
	return nil
}

// DigitalInputMode returns the edge selection of a digital input, or GPINone
// if pin is not a digital input.
// This method is concurrent safe.
func (d *Device) DigitalInputMode(pin int) GPIMode {
	if !validPin(pin) {
		return GPINone
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pins[pin].mode != DigitalIn {
		return GPINone
	}
	return d.pins[pin].gpiMode
}

// SetPinAveraging sets how many samples the ADC averages per result on an
// analog input. samples must be a power of two up to MaxAveraging.
// This method is concurrent safe.
func (d *Device) SetPinAveraging(pin int, samples uint8) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if _, ok := averagingCode(samples); !ok {
		return outOfRange("averaging %d is not a power of two up to %d", samples, MaxAveraging)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pins[pin].mode.isAnalogInput() {
		return misuse("pin %d is %s, averaging needs an analog input", pin, d.pins[pin].mode)
	}
	return d.updatePin(pin, func(p *pinState) { p.averaging = samples })
}

// PinAveraging returns the averaging depth of an analog input, or
// AveragingNone for other pins.
// This method is concurrent safe.
func (d *Device) PinAveraging(pin int) uint8 {
	if !validPin(pin) {
		return AveragingNone
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pins[pin].mode.isAnalogInput() {
		return AveragingNone
	}
	return d.pins[pin].averaging
}

// SetPinADCReference selects the ADC reference of an analog input.
// This method is concurrent safe.
func (d *Device) SetPinADCReference(pin int, ref ADCReference) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if ref != ADCInternal && ref != ADCExternal {
		return outOfRange("invalid ADC reference %d", uint8(ref))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pins[pin].mode.isAnalogInput() {
		return misuse("pin %d is %s, reference needs an analog input", pin, d.pins[pin].mode)
	}
	return d.updatePin(pin, func(p *pinState) { p.adcRef = ref })
}

// PinADCReference returns the ADC reference of an analog input, or
// ADCReferenceNone for other pins.
// This method is concurrent safe.
func (d *Device) PinADCReference(pin int) ADCReference {
	if !validPin(pin) {
		return ADCReferenceNone
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pins[pin].mode.isAnalogInput() {
		return ADCReferenceNone
	}
	return d.pins[pin].adcRef
}

// SetADCRange selects the input span of an analog input.
// This method is concurrent safe.
func (d *Device) SetADCRange(pin int, r ADCRange) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if r == ADCRangeNone || r > ADCZeroTo2_5 {
		return outOfRange("invalid ADC range %d", uint8(r))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pins[pin].mode.isAnalogInput() {
		return misuse("pin %d is %s, ADC range needs an analog input", pin, d.pins[pin].mode)
	}
	return d.updatePin(pin, func(p *pinState) { p.adcRange = r })
}

// ADCRange returns the input span of an analog input, or ADCRangeNone.
// This method is concurrent safe.
func (d *Device) ADCRange(pin int) ADCRange {
	if !validPin(pin) {
		return ADCRangeNone
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pins[pin].mode.isAnalogInput() {
		return ADCRangeNone
	}
	return d.pins[pin].adcRange
}

// SetDACRange selects the output span of an analog output.
// This method is concurrent safe.
func (d *Device) SetDACRange(pin int, r DACRange) error {
	if err := pinRange(pin); err != nil {
		return err
	}
	if r == DACRangeNone || r > DACNegative10To0 {
		return outOfRange("invalid DAC range %d", uint8(r))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pins[pin].mode.isAnalogOutput() {
		return misuse("pin %d is %s, DAC range needs an analog output", pin, d.pins[pin].mode)
	}
	return d.updatePin(pin, func(p *pinState) { p.dacRange = r })
}

// DACRange returns the output span of an analog output, or DACRangeNone.
// This method is concurrent safe.
func (d *Device) DACRange(pin int) DACRange {
	if !validPin(pin) {
		return DACRangeNone
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pins[pin].mode.isAnalogOutput() {
		return DACRangeNone
	}
	return d.pins[pin].dacRange
}

// SetDACReference selects the reference shared by all DAC ports.
// This method is concurrent safe.
func (d *Device) SetDACReference(ref DACReference) error {
	if ref != DACInternal && ref != DACExternal {
		return outOfRange("invalid DAC reference %d", uint8(ref))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var v uint16
	if ref == DACExternal {
		v = 1 << _DCTL_DACREF
	}
	if err := d.writeControl(_DCTL_DACREF_MASK, v); err != nil {
		return err
	}
	d.dacRef = ref
	return nil
}

// DACReference returns the DAC reference last written.
// This method is concurrent safe.
func (d *Device) DACReference() DACReference {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dacRef
}

// SetConversionRate sets the ADC sample rate of every analog port.
// This method is concurrent safe.
func (d *Device) SetConversionRate(rate ConversionRate) error {
	if rate == RateNone || rate > Rate400ksps {
		return outOfRange("invalid conversion rate %d", uint8(rate))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writeControl(_DCTL_ADCCONV_MSK, field(rate)<<_DCTL_ADCCONV); err != nil {
		return err
	}
	d.conversionRate = rate
	return nil
}

// ConversionRate returns the ADC sample rate last written.
// This method is concurrent safe.
func (d *Device) ConversionRate() ConversionRate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conversionRate
}

// SetADCMode sets the conversion mode. ContinuousSweep is the mode the
// interrupt-driven flow is designed around.
// This method is concurrent safe.
func (d *Device) SetADCMode(mode ADCMode) error {
	if mode == ADCModeNone || mode > ContinuousSweep {
		return outOfRange("invalid ADC mode %d", uint8(mode))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writeControl(_DCTL_ADCCTL_MASK, field(mode)<<_DCTL_ADCCTL); err != nil {
		return err
	}
	d.adcMode = mode
	return nil
}

// ADCMode returns the conversion mode last written.
// This method is concurrent safe.
func (d *Device) ADCMode() ADCMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adcMode
}

// SetTempSensors enables exactly the given temperature sensors.
// This method is concurrent safe.
func (d *Device) SetTempSensors(sensors TempSensors) error {
	if sensors&^TempAll != 0 {
		return outOfRange("invalid temperature sensor set %#x", uint8(sensors))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeControl(_DCTL_TMPCTL_MASK, uint16(sensors)<<_DCTL_TMPCTL)
}
