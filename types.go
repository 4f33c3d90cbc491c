package max11300

import (
	"periph.io/x/conn/v3/physic"
)

// PinMode is the function a port is configured for.
type PinMode uint8

const (
	// Unconfigured is the state of every pin after initialization.
	Unconfigured PinMode = iota
	DigitalIn
	DigitalOut
	AnalogIn
	AnalogOut
	// AnalogOutMonitoring drives the DAC and samples the port with the ADC.
	AnalogOutMonitoring
	AnalogDifferentialPositive
	AnalogDifferentialNegative
	HighImpedance
	// PinModeNone is returned for pins outside 0..NumPins-1.
	PinModeNone PinMode = 0xFF
)

func (m PinMode) String() string {
	switch m {
	case Unconfigured:
		return "unconfigured"
	case DigitalIn:
		return "digital-in"
	case DigitalOut:
		return "digital-out"
	case AnalogIn:
		return "analog-in"
	case AnalogOut:
		return "analog-out"
	case AnalogOutMonitoring:
		return "analog-out-monitoring"
	case AnalogDifferentialPositive:
		return "analog-diff-positive"
	case AnalogDifferentialNegative:
		return "analog-diff-negative"
	case HighImpedance:
		return "high-impedance"
	default:
		return "unknown"
	}
}

// funcID is the FUNCID field value for the mode.
func (m PinMode) funcID() uint16 {
	switch m {
	case DigitalIn:
		return _FUNCID_GPI
	case DigitalOut:
		return _FUNCID_GPO
	case AnalogIn:
		return _FUNCID_ADC
	case AnalogOut:
		return _FUNCID_DAC
	case AnalogOutMonitoring:
		return _FUNCID_DAC_ADCMON
	case AnalogDifferentialPositive:
		return _FUNCID_ADC_DIFF_POS
	case AnalogDifferentialNegative:
		return _FUNCID_ADC_DIFF_NEG
	default:
		return _FUNCID_HI_Z
	}
}

func (m PinMode) valid() bool { return m <= HighImpedance }

func (m PinMode) isDifferential() bool {
	return m == AnalogDifferentialPositive || m == AnalogDifferentialNegative
}

// isAnalogInput reports whether the port runs the ADC as its primary function.
func (m PinMode) isAnalogInput() bool {
	return m == AnalogIn || m.isDifferential()
}

func (m PinMode) isAnalogOutput() bool {
	return m == AnalogOut || m == AnalogOutMonitoring
}

// complement returns the other half of a differential pair.
func (m PinMode) complement() PinMode {
	switch m {
	case AnalogDifferentialPositive:
		return AnalogDifferentialNegative
	case AnalogDifferentialNegative:
		return AnalogDifferentialPositive
	default:
		return m
	}
}

// DACRange selects the output span of a DAC port.
type DACRange uint8

const (
	DACRangeNone DACRange = iota
	DACZeroTo10
	DACNegative5To5
	DACNegative10To0
)

func (r DACRange) String() string {
	switch r {
	case DACZeroTo10:
		return "0V..10V"
	case DACNegative5To5:
		return "-5V..5V"
	case DACNegative10To0:
		return "-10V..0V"
	default:
		return "none"
	}
}

// Span returns the voltages of codes 0 and 0x0FFF.
func (r DACRange) Span() (lo, hi physic.ElectricPotential) {
	switch r {
	case DACZeroTo10:
		return 0, 10 * physic.Volt
	case DACNegative5To5:
		return -5 * physic.Volt, 5 * physic.Volt
	case DACNegative10To0:
		return -10 * physic.Volt, 0
	default:
		return 0, 0
	}
}

// Code converts v to the nearest DAC code, clamped to the range.
func (r DACRange) Code(v physic.ElectricPotential) uint16 {
	lo, hi := r.Span()
	return potentialToCode(v, lo, hi)
}

// ADCRange selects the input span of an ADC port.
type ADCRange uint8

const (
	ADCRangeNone ADCRange = iota
	ADCZeroTo10
	ADCNegative5To5
	ADCNegative10To0
	ADCZeroTo2_5
)

func (r ADCRange) String() string {
	switch r {
	case ADCZeroTo10:
		return "0V..10V"
	case ADCNegative5To5:
		return "-5V..5V"
	case ADCNegative10To0:
		return "-10V..0V"
	case ADCZeroTo2_5:
		return "0V..2.5V"
	default:
		return "none"
	}
}

// Span returns the voltages of codes 0 and 0x0FFF.
func (r ADCRange) Span() (lo, hi physic.ElectricPotential) {
	switch r {
	case ADCZeroTo10:
		return 0, 10 * physic.Volt
	case ADCNegative5To5:
		return -5 * physic.Volt, 5 * physic.Volt
	case ADCNegative10To0:
		return -10 * physic.Volt, 0
	case ADCZeroTo2_5:
		return 0, 2500 * physic.MilliVolt
	default:
		return 0, 0
	}
}

// Potential converts a 12-bit ADC code to a voltage.
func (r ADCRange) Potential(code uint16) physic.ElectricPotential {
	lo, hi := r.Span()
	return codeToPotential(code, lo, hi)
}

// Potential converts a 12-bit DAC code to the voltage it drives.
func (r DACRange) Potential(code uint16) physic.ElectricPotential {
	lo, hi := r.Span()
	return codeToPotential(code, lo, hi)
}

func codeToPotential(code uint16, lo, hi physic.ElectricPotential) physic.ElectricPotential {
	code &= _CODE_MASK
	return lo + physic.ElectricPotential(int64(hi-lo)*int64(code)/_CODE_MASK)
}

func potentialToCode(v, lo, hi physic.ElectricPotential) uint16 {
	if hi <= lo || v <= lo {
		return 0
	}
	if v >= hi {
		return _CODE_MASK
	}
	span := int64(hi - lo)
	return uint16((int64(v-lo)*_CODE_MASK + span/2) / span)
}

// ADCReference selects the reference of an ADC port.
type ADCReference uint8

const (
	ADCReferenceNone ADCReference = iota
	ADCInternal
	ADCExternal
)

func (r ADCReference) String() string {
	switch r {
	case ADCInternal:
		return "internal"
	case ADCExternal:
		return "external"
	default:
		return "none"
	}
}

// DACReference selects the reference shared by every DAC port.
type DACReference uint8

const (
	DACReferenceNone DACReference = iota
	DACInternal
	DACExternal
)

func (r DACReference) String() string {
	switch r {
	case DACInternal:
		return "internal"
	case DACExternal:
		return "external"
	default:
		return "none"
	}
}

// ADCMode is the device-wide conversion mode (ADCCTL).
type ADCMode uint8

const (
	ADCModeNone ADCMode = iota
	Idle
	SingleSweep
	SingleSample
	ContinuousSweep
)

func (m ADCMode) String() string {
	switch m {
	case Idle:
		return "idle"
	case SingleSweep:
		return "single-sweep"
	case SingleSample:
		return "single-sample"
	case ContinuousSweep:
		return "continuous-sweep"
	default:
		return "none"
	}
}

// ConversionRate is the device-wide ADC sample rate (ADCCONV).
type ConversionRate uint8

const (
	RateNone ConversionRate = iota
	Rate200ksps
	Rate250ksps
	Rate333ksps
	Rate400ksps
)

// Frequency returns the sample rate.
func (r ConversionRate) Frequency() physic.Frequency {
	switch r {
	case Rate200ksps:
		return 200 * physic.KiloHertz
	case Rate250ksps:
		return 250 * physic.KiloHertz
	case Rate333ksps:
		return 333 * physic.KiloHertz
	case Rate400ksps:
		return 400 * physic.KiloHertz
	default:
		return 0
	}
}

func (r ConversionRate) String() string {
	if r == RateNone {
		return "none"
	}
	return r.Frequency().String()
}

// GPIMode selects which edges of a digital input raise GPIDR.
type GPIMode uint8

const (
	GPINone GPIMode = iota
	GPINeither
	GPIRising
	GPIFalling
	GPIBoth
)

func (m GPIMode) String() string {
	switch m {
	case GPINeither:
		return "neither"
	case GPIRising:
		return "rising"
	case GPIFalling:
		return "falling"
	case GPIBoth:
		return "both"
	default:
		return "none"
	}
}

// TempSensors is a set of temperature sensors to enable (TMPCTL).
type TempSensors uint8

const (
	TempInternal TempSensors = 1 << iota
	TempExternal1
	TempExternal2
	TempAll = TempInternal | TempExternal1 | TempExternal2
)

// AveragingNone is reported by PinAveraging for pins that do not sample.
const AveragingNone uint8 = 0

// MaxAveraging is the deepest ADC averaging the chip supports.
const MaxAveraging uint8 = 128

// averagingCode encodes a power-of-two sample count into NSAMPLES.
func averagingCode(samples uint8) (uint8, bool) {
	if samples == 0 || samples&(samples-1) != 0 {
		return 0, false
	}
	var n uint8
	for s := samples; s > 1; s >>= 1 {
		n++
	}
	return n, true
}

// field returns the register encoding of an enum whose zero value is "none".
func field[T ~uint8](v T) uint16 {
	if v == 0 {
		return 0
	}
	return uint16(v - 1)
}
