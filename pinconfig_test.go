package max11300

import (
	"errors"
	"testing"
)

func TestSetPinModeWritesPortConfig(t *testing.T) {
	tests := []struct {
		pin  int
		mode PinMode
		want uint16
	}{
		{0, AnalogOut, 0x5100},
		{1, AnalogOutMonitoring, 0x6100},
		{2, AnalogIn, 0x7100},
		{7, DigitalIn, 0x1100},
		{8, DigitalOut, 0x3100},
		{19, HighImpedance, 0x0000},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			dev, chip := newTestDevice(t, HardwareConfig{})
			chip.regs[portConfigAddr(tt.pin)] = 0xFFFF

			mustMode(t, dev, tt.pin, tt.mode, NoPin)

			if got := chip.regs[portConfigAddr(tt.pin)]; got != tt.want {
				t.Errorf("Expected port config %#04x, got %#04x", tt.want, got)
			}
			if got := dev.PinMode(tt.pin); got != tt.mode {
				t.Errorf("Expected mode %s, got %s", tt.mode, got)
			}
			if len(chip.frames) != 1 {
				t.Errorf("Expected a single bus transaction, got %d", len(chip.frames))
			}
		})
	}
}

func TestSetPinModeRejectsBadArguments(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})

	if err := dev.SetPinMode(NumPins, AnalogIn, NoPin); !errors.Is(err, ErrRange) {
		t.Errorf("pin %d: expected ErrRange, got %v", NumPins, err)
	}
	if err := dev.SetPinMode(-1, AnalogIn, NoPin); !errors.Is(err, ErrRange) {
		t.Errorf("pin -1: expected ErrRange, got %v", err)
	}
	if err := dev.SetPinMode(0, Unconfigured, NoPin); !errors.Is(err, ErrRange) {
		t.Errorf("Unconfigured: expected ErrRange, got %v", err)
	}
	if err := dev.SetPinMode(1, AnalogIn, 2); !errors.Is(err, ErrMisuse) {
		t.Errorf("partner on AnalogIn: expected ErrMisuse, got %v", err)
	}
	if err := dev.SetPinMode(1, AnalogDifferentialPositive, NumPins); !errors.Is(err, ErrRange) {
		t.Errorf("partner out of range: expected ErrRange, got %v", err)
	}
	if len(chip.frames) != 0 {
		t.Errorf("Expected no bus traffic, got %d frames", len(chip.frames))
	}
	if dev.PinMode(NumPins) != PinModeNone {
		t.Errorf("Expected PinModeNone for invalid pin")
	}
}

func TestDifferentialPairing(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})

	mustMode(t, dev, 3, AnalogDifferentialPositive, 4)

	if got := dev.DifferentialPartner(3); got != 4 {
		t.Errorf("Expected partner of 3 to be 4, got %d", got)
	}
	if got := dev.DifferentialPartner(4); got != 3 {
		t.Errorf("Expected partner of 4 to be 3, got %d", got)
	}
	if got := dev.PinMode(4); got != AnalogDifferentialNegative {
		t.Errorf("Expected pin 4 negative, got %s", got)
	}
	// Positive port names the negative one in ASSOCIATED PORT.
	if got := chip.regs[portConfigAddr(3)]; got != 0x8104 {
		t.Errorf("Expected pin 3 config 0x8104, got %#04x", got)
	}
	if got := chip.regs[portConfigAddr(4)]; got != 0x9100 {
		t.Errorf("Expected pin 4 config 0x9100, got %#04x", got)
	}

	// Negative first works the same way.
	mustMode(t, dev, 10, AnalogDifferentialNegative, 11)
	if dev.PinMode(11) != AnalogDifferentialPositive || dev.DifferentialPartner(11) != 10 {
		t.Errorf("Expected pin 11 positive paired with 10, got %s/%d", dev.PinMode(11), dev.DifferentialPartner(11))
	}
	if got := chip.regs[portConfigAddr(11)]; got != 0x810A {
		t.Errorf("Expected pin 11 config 0x810A, got %#04x", got)
	}

	if got := dev.DifferentialPartner(0); got != NoPin {
		t.Errorf("Expected NoPin for unpaired pin, got %d", got)
	}
}

func TestDifferentialPairingAllPairs(t *testing.T) {
	for p := 0; p < NumPins; p++ {
		for q := 0; q < NumPins; q++ {
			if p == q {
				continue
			}
			dev, _ := newTestDevice(t, HardwareConfig{})
			mustMode(t, dev, p, AnalogDifferentialPositive, q)
			if dev.DifferentialPartner(p) != q || dev.DifferentialPartner(q) != p {
				t.Fatalf("(%d,%d): partners %d/%d", p, q, dev.DifferentialPartner(p), dev.DifferentialPartner(q))
			}
			if dev.PinMode(q) != AnalogDifferentialNegative {
				t.Fatalf("(%d,%d): pin %d is %s", p, q, q, dev.PinMode(q))
			}
		}
	}
}

func TestDifferentialRequiresPartner(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	mustMode(t, dev, 5, AnalogIn, NoPin)
	chip.frames = nil

	for pin := 0; pin < NumPins; pin++ {
		before := dev.PinMode(pin)
		err := dev.SetPinMode(pin, AnalogDifferentialPositive, NoPin)
		if !errors.Is(err, ErrMisuse) {
			t.Errorf("pin %d: expected ErrMisuse, got %v", pin, err)
		}
		if after := dev.PinMode(pin); after != before {
			t.Errorf("pin %d: mode changed from %s to %s", pin, before, after)
		}
	}
	if len(chip.frames) != 0 {
		t.Errorf("Expected no bus traffic, got %d frames", len(chip.frames))
	}
}

func TestDifferentialConflict(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	mustMode(t, dev, 4, DigitalOut, NoPin)
	mustMode(t, dev, 5, AnalogDifferentialPositive, 6)
	chip.frames = nil

	if err := dev.SetPinMode(3, AnalogDifferentialPositive, 4); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict pairing with a digital output, got %v", err)
	}
	if err := dev.SetPinMode(7, AnalogDifferentialPositive, 6); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict pairing with a taken pin, got %v", err)
	}
	if err := dev.SetPinMode(8, AnalogDifferentialNegative, 8); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict pairing a pin with itself, got %v", err)
	}

	if dev.PinMode(3) != Unconfigured || dev.PinMode(4) != DigitalOut || dev.PinMode(7) != Unconfigured {
		t.Errorf("Conflicting pairing mutated state: 3=%s 4=%s 7=%s", dev.PinMode(3), dev.PinMode(4), dev.PinMode(7))
	}
	if dev.DifferentialPartner(6) != 5 {
		t.Errorf("Expected pin 6 to stay paired with 5, got %d", dev.DifferentialPartner(6))
	}
	if len(chip.frames) != 0 {
		t.Errorf("Expected no bus traffic, got %d frames", len(chip.frames))
	}
}

func TestLeavingPairReleasesPartner(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	mustMode(t, dev, 3, AnalogDifferentialPositive, 4)

	mustMode(t, dev, 3, AnalogIn, NoPin)

	if dev.PinMode(4) != HighImpedance {
		t.Errorf("Expected released partner to be high impedance, got %s", dev.PinMode(4))
	}
	if dev.DifferentialPartner(4) != NoPin || dev.DifferentialPartner(3) != NoPin {
		t.Errorf("Expected no partners after release")
	}
	if chip.regs[portConfigAddr(4)] != 0 {
		t.Errorf("Expected pin 4 config cleared, got %#04x", chip.regs[portConfigAddr(4)])
	}

	// Re-pairing with a new partner releases the old one too.
	mustMode(t, dev, 10, AnalogDifferentialPositive, 11)
	mustMode(t, dev, 10, AnalogDifferentialPositive, 12)
	if dev.PinMode(11) != HighImpedance || dev.DifferentialPartner(12) != 10 {
		t.Errorf("Expected 11 released and 12 paired, got %s/%d", dev.PinMode(11), dev.DifferentialPartner(12))
	}

	// Swapping roles within an existing pair is allowed.
	mustMode(t, dev, 12, AnalogDifferentialPositive, 10)
	if dev.PinMode(10) != AnalogDifferentialNegative || dev.DifferentialPartner(10) != 12 {
		t.Errorf("Expected 10 negative of 12, got %s/%d", dev.PinMode(10), dev.DifferentialPartner(10))
	}
}

func TestSetPinModeTransportFailure(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	busErr := errors.New("bus down")
	chip.err = busErr

	err := dev.SetPinMode(3, AnalogDifferentialPositive, 4)
	if !errors.Is(err, ErrTransport) || !errors.Is(err, busErr) {
		t.Fatalf("Expected wrapped transport error, got %v", err)
	}
	if dev.PinMode(3) != Unconfigured || dev.PinMode(4) != Unconfigured {
		t.Errorf("Failed write mutated state: 3=%s 4=%s", dev.PinMode(3), dev.PinMode(4))
	}
}

func TestThresholdRoundTrip(t *testing.T) {
	dev, _ := newTestDevice(t, HardwareConfig{})

	for pin := 0; pin < NumPins; pin++ {
		mustMode(t, dev, pin, AnalogIn, NoPin)
		for _, code := range []uint16{0, 1, 0x0555, 2048, 0x0FFF} {
			if err := dev.SetPinThreshold(pin, code); err != nil {
				t.Fatalf("pin %d: SetPinThreshold(%#x) failed: %v", pin, code, err)
			}
			got, err := dev.PinThreshold(pin)
			if err != nil {
				t.Fatalf("pin %d: PinThreshold failed: %v", pin, err)
			}
			if got != code {
				t.Errorf("pin %d: expected %#x, got %#x", pin, code, got)
			}
		}
	}

	if err := dev.SetPinThreshold(0, 0x1000); !errors.Is(err, ErrRange) {
		t.Errorf("Expected ErrRange for 13-bit code, got %v", err)
	}
	if got, _ := dev.PinThreshold(0); got != 0x0FFF {
		t.Errorf("Rejected write changed the threshold to %#x", got)
	}
}

func TestThresholdUnconfigured(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})

	if err := dev.SetPinThreshold(0, 100); !errors.Is(err, ErrMisuse) {
		t.Errorf("Expected ErrMisuse, got %v", err)
	}
	if _, err := dev.PinThreshold(0); !errors.Is(err, ErrMisuse) {
		t.Errorf("Expected ErrMisuse, got %v", err)
	}
	if len(chip.frames) != 0 {
		t.Errorf("Expected no bus traffic, got %d frames", len(chip.frames))
	}
}

func TestPinAveraging(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	mustMode(t, dev, 2, AnalogIn, NoPin)
	mustMode(t, dev, 5, DigitalIn, NoPin)

	if got := dev.PinAveraging(2); got != 1 {
		t.Errorf("Expected default averaging 1, got %d", got)
	}
	if err := dev.SetPinAveraging(2, 8); err != nil {
		t.Fatalf("SetPinAveraging failed: %v", err)
	}
	if got := chip.regs[portConfigAddr(2)]; got != 0x7160 {
		t.Errorf("Expected port config 0x7160, got %#04x", got)
	}
	if got := dev.PinAveraging(2); got != 8 {
		t.Errorf("Expected averaging 8, got %d", got)
	}
	if err := dev.SetPinAveraging(2, MaxAveraging); err != nil {
		t.Fatalf("SetPinAveraging(128) failed: %v", err)
	}
	if got := chip.regs[portConfigAddr(2)] & 0x00E0; got != 0x00E0 {
		t.Errorf("Expected NSAMPLES=7, got field %#04x", got)
	}

	for _, bad := range []uint8{0, 3, 100} {
		if err := dev.SetPinAveraging(2, bad); !errors.Is(err, ErrRange) {
			t.Errorf("samples %d: expected ErrRange, got %v", bad, err)
		}
	}
	if err := dev.SetPinAveraging(5, 4); !errors.Is(err, ErrMisuse) {
		t.Errorf("Expected ErrMisuse on digital input, got %v", err)
	}
	if got := dev.PinAveraging(5); got != AveragingNone {
		t.Errorf("Expected AveragingNone, got %d", got)
	}
	if got := dev.PinAveraging(2); got != MaxAveraging {
		t.Errorf("Rejected calls changed averaging to %d", got)
	}

	// Settings survive a reconfiguration into the same family.
	mustMode(t, dev, 2, AnalogDifferentialPositive, 6)
	if got := dev.PinAveraging(2); got != MaxAveraging {
		t.Errorf("Expected averaging kept across analog modes, got %d", got)
	}
}

func TestPinADCReference(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	mustMode(t, dev, 2, AnalogIn, NoPin)
	mustMode(t, dev, 0, AnalogOut, NoPin)

	if got := dev.PinADCReference(2); got != ADCInternal {
		t.Errorf("Expected default internal reference, got %s", got)
	}
	if err := dev.SetPinADCReference(2, ADCExternal); err != nil {
		t.Fatalf("SetPinADCReference failed: %v", err)
	}
	if chip.regs[portConfigAddr(2)]&(1<<_PCFG_AVR) == 0 {
		t.Errorf("Expected AVR bit set, got %#04x", chip.regs[portConfigAddr(2)])
	}
	if got := dev.PinADCReference(2); got != ADCExternal {
		t.Errorf("Expected external reference, got %s", got)
	}

	if err := dev.SetPinADCReference(0, ADCExternal); !errors.Is(err, ErrMisuse) {
		t.Errorf("Expected ErrMisuse on analog output, got %v", err)
	}
	if got := dev.PinADCReference(0); got != ADCReferenceNone {
		t.Errorf("Expected ADCReferenceNone, got %s", got)
	}
	if err := dev.SetPinADCReference(2, ADCReferenceNone); !errors.Is(err, ErrRange) {
		t.Errorf("Expected ErrRange, got %v", err)
	}
}

func TestPinRanges(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	mustMode(t, dev, 0, AnalogOut, NoPin)
	mustMode(t, dev, 2, AnalogIn, NoPin)

	if err := dev.SetDACRange(0, DACNegative5To5); err != nil {
		t.Fatalf("SetDACRange failed: %v", err)
	}
	if got := chip.regs[portConfigAddr(0)]; got != 0x5200 {
		t.Errorf("Expected port config 0x5200, got %#04x", got)
	}
	if err := dev.SetADCRange(2, ADCZeroTo2_5); err != nil {
		t.Fatalf("SetADCRange failed: %v", err)
	}
	if got := chip.regs[portConfigAddr(2)]; got != 0x7400 {
		t.Errorf("Expected port config 0x7400, got %#04x", got)
	}

	if err := dev.SetADCRange(0, ADCZeroTo10); !errors.Is(err, ErrMisuse) {
		t.Errorf("Expected ErrMisuse for ADC range on output, got %v", err)
	}
	if err := dev.SetDACRange(2, DACZeroTo10); !errors.Is(err, ErrMisuse) {
		t.Errorf("Expected ErrMisuse for DAC range on input, got %v", err)
	}
	if dev.ADCRange(0) != ADCRangeNone || dev.DACRange(2) != DACRangeNone {
		t.Errorf("Expected sentinels for inapplicable ranges")
	}
	if dev.DACRange(0) != DACNegative5To5 || dev.ADCRange(2) != ADCZeroTo2_5 {
		t.Errorf("Unexpected ranges %s/%s", dev.DACRange(0), dev.ADCRange(2))
	}

	// Monitoring keeps the DAC range picked in plain output mode.
	mustMode(t, dev, 0, AnalogOutMonitoring, NoPin)
	if dev.DACRange(0) != DACNegative5To5 {
		t.Errorf("Expected DAC range kept, got %s", dev.DACRange(0))
	}
}

func TestDigitalInputMode(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})
	mustMode(t, dev, 9, DigitalIn, NoPin)
	mustMode(t, dev, 1, DigitalOut, NoPin)
	chip.regs[_REG_GPI_IRQ_MODE+1] = 0xFFF0

	if got := dev.DigitalInputMode(9); got != GPINeither {
		t.Errorf("Expected GPINeither after reset, got %s", got)
	}
	if err := dev.SetDigitalInputMode(9, GPIRising); err != nil {
		t.Fatalf("SetDigitalInputMode failed: %v", err)
	}
	// Pin 9 lives in the second register at bits 3:2; other fields are kept.
	if got := chip.regs[_REG_GPI_IRQ_MODE+1]; got != 0xFFF4 {
		t.Errorf("Expected GPI IRQ mode 0xFFF4, got %#04x", got)
	}
	if got := dev.DigitalInputMode(9); got != GPIRising {
		t.Errorf("Expected GPIRising, got %s", got)
	}

	if err := dev.SetDigitalInputMode(1, GPIBoth); !errors.Is(err, ErrMisuse) {
		t.Errorf("Expected ErrMisuse on digital output, got %v", err)
	}
	if err := dev.SetDigitalInputMode(9, GPINone); !errors.Is(err, ErrRange) {
		t.Errorf("Expected ErrRange, got %v", err)
	}

	mustMode(t, dev, 9, AnalogIn, NoPin)
	if got := dev.DigitalInputMode(9); got != GPINone {
		t.Errorf("Expected GPINone off digital input, got %s", got)
	}
	mustMode(t, dev, 9, DigitalIn, NoPin)
	if got := dev.DigitalInputMode(9); got != GPIRising {
		t.Errorf("Expected edge selection to follow the register, got %s", got)
	}
}

func TestDeviceGlobals(t *testing.T) {
	dev, chip := newTestDevice(t, HardwareConfig{})

	if err := dev.SetConversionRate(Rate400ksps); err != nil {
		t.Fatalf("SetConversionRate failed: %v", err)
	}
	if got := chip.regs[_REG_DEVICE_CTRL]; got != 0x0033 {
		t.Errorf("Expected control 0x0033, got %#04x", got)
	}
	if err := dev.SetADCMode(Idle); err != nil {
		t.Fatalf("SetADCMode failed: %v", err)
	}
	if got := chip.regs[_REG_DEVICE_CTRL]; got != 0x0030 {
		t.Errorf("Expected control 0x0030, got %#04x", got)
	}
	if err := dev.SetDACReference(DACExternal); err != nil {
		t.Fatalf("SetDACReference failed: %v", err)
	}
	if got := chip.regs[_REG_DEVICE_CTRL]; got != 0x0070 {
		t.Errorf("Expected control 0x0070, got %#04x", got)
	}
	if err := dev.SetTempSensors(TempAll); err != nil {
		t.Fatalf("SetTempSensors failed: %v", err)
	}
	if got := chip.regs[_REG_DEVICE_CTRL]; got != 0x0770 {
		t.Errorf("Expected control 0x0770, got %#04x", got)
	}
	if len(chip.frames) != 4 {
		t.Errorf("Expected one transaction per setting, got %d", len(chip.frames))
	}

	if dev.ConversionRate() != Rate400ksps || dev.ADCMode() != Idle || dev.DACReference() != DACExternal {
		t.Errorf("Unexpected globals: %s %s %s", dev.ConversionRate(), dev.ADCMode(), dev.DACReference())
	}

	if err := dev.SetConversionRate(RateNone); !errors.Is(err, ErrRange) {
		t.Errorf("Expected ErrRange, got %v", err)
	}
	if err := dev.SetADCMode(ADCModeNone); !errors.Is(err, ErrRange) {
		t.Errorf("Expected ErrRange, got %v", err)
	}
	if err := dev.SetDACReference(DACReferenceNone); !errors.Is(err, ErrRange) {
		t.Errorf("Expected ErrRange, got %v", err)
	}

	chip.err = errors.New("bus down")
	if err := dev.SetADCMode(SingleSweep); !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
	if dev.ADCMode() != Idle {
		t.Errorf("Failed write changed ADC mode to %s", dev.ADCMode())
	}
}
