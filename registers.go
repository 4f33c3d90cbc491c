package max11300

// NumPins is the number of mixed-signal ports on the chip.
const NumPins = 20

// NoPin stands for "no pin": the absent partner argument of SetPinMode and
// the answer of DifferentialPartner for pins that are not paired.
const NoPin = -1

const _DEVICE_ID = 0x0424

// MAX11300 Register Addresses
const (
	_REG_DEV_ID        = 0x00
	_REG_INTERRUPT     = 0x01
	_REG_ADC_ST_L      = 0x02 // ADC data ready, pins 0-15
	_REG_ADC_ST_H      = 0x03 // ADC data ready, pins 16-19
	_REG_DAC_OC_L      = 0x04
	_REG_DAC_OC_H      = 0x05
	_REG_GPI_ST_L      = 0x06
	_REG_GPI_ST_H      = 0x07
	_REG_TMP_INT_DATA  = 0x08
	_REG_TMP_EXT1_DATA = 0x09
	_REG_TMP_EXT2_DATA = 0x0A
	_REG_GPI_DATA_L    = 0x0B
	_REG_GPI_DATA_H    = 0x0C
	_REG_GPO_DATA_L    = 0x0D
	_REG_GPO_DATA_H    = 0x0E
	_REG_DEVICE_CTRL   = 0x10
	_REG_INTERRUPT_MSK = 0x11
	_REG_GPI_IRQ_MODE  = 0x12 // 0x12..0x14, 2 bits per pin
	_REG_PORT_CFG      = 0x20 // 0x20..0x33
	_REG_ADC_DATA      = 0x40 // 0x40..0x53
	_REG_DAC_DATA      = 0x60 // 0x60..0x73
)

// Interrupt register bits
const (
	_INT_ADCFLAG  = 1 << 0
	_INT_ADCDR    = 1 << 1
	_INT_ADCDM    = 1 << 2
	_INT_GPIDR    = 1 << 3
	_INT_GPIDM    = 1 << 4
	_INT_DACOI    = 1 << 5
	_INT_TMPINT   = 6  // 3-bit field: hi, lo, ready
	_INT_TMPEXT1  = 9  // 3-bit field: hi, lo, ready
	_INT_TMPEXT2  = 12 // 3-bit field: hi, lo, ready
	_INT_VMON     = 1 << 15
	_TMP_HI       = 1 << 0
	_TMP_LO       = 1 << 1
	_TMP_READY    = 1 << 2
	_intStatusLen = _REG_GPI_ST_H - _REG_INTERRUPT + 1
)

// Device control register fields
const (
	_DCTL_ADCCTL      = 0  // [1:0]
	_DCTL_DACCTL      = 2  // [3:2]
	_DCTL_ADCCONV     = 4  // [5:4]
	_DCTL_DACREF      = 6  // [6]
	_DCTL_TMPCTL      = 8  // [10:8]
	_DCTL_RESET       = 15 // [15]
	_DCTL_ADCCTL_MASK = 0x3 << _DCTL_ADCCTL
	_DCTL_ADCCONV_MSK = 0x3 << _DCTL_ADCCONV
	_DCTL_DACREF_MASK = 0x1 << _DCTL_DACREF
	_DCTL_TMPCTL_MASK = 0x7 << _DCTL_TMPCTL
)

// Port configuration register fields
const (
	_PCFG_FUNCID   = 12 // [15:12]
	_PCFG_AVR      = 11 // [11]
	_PCFG_RANGE    = 8  // [10:8]
	_PCFG_NSAMPLES = 5  // [7:5]
	_PCFG_ASSOC    = 0  // [4:0]
)

// Function IDs written to FUNCID.
const (
	_FUNCID_HI_Z         = 0x0
	_FUNCID_GPI          = 0x1
	_FUNCID_GPO          = 0x3
	_FUNCID_DAC          = 0x5
	_FUNCID_DAC_ADCMON   = 0x6
	_FUNCID_ADC          = 0x7
	_FUNCID_ADC_DIFF_POS = 0x8
	_FUNCID_ADC_DIFF_NEG = 0x9
)

const (
	_CODE_MASK  = 0x0FFF // 12-bit ADC/DAC/threshold codes
	_RANGE_0_10 = 0x1    // range field value for digital ports
)

func validPin(pin int) bool {
	return pin >= 0 && pin < NumPins
}

func portConfigAddr(pin int) byte { return byte(_REG_PORT_CFG + pin) }
func adcDataAddr(pin int) byte    { return byte(_REG_ADC_DATA + pin) }
func dacDataAddr(pin int) byte    { return byte(_REG_DAC_DATA + pin) }

// splitPin maps a pin onto the low (0-15) or high (16-19) half of a paired
// status/data register. It returns the offset to add to the low register and
// the bit within the selected register.
func splitPin(pin int) (offset byte, bit uint16) {
	if pin < 16 {
		return 0, 1 << uint(pin)
	}
	return 1, 1 << uint(pin-16)
}

// joinPins combines a low/high register pair into a 20-bit pin mask.
func joinPins(lo, hi uint16) uint32 {
	return uint32(lo) | uint32(hi&0x000F)<<16
}

// gpiIRQModeAddr returns the register and shift of a pin's 2-bit GPI edge field.
func gpiIRQModeAddr(pin int) (addr byte, shift uint) {
	return byte(_REG_GPI_IRQ_MODE + pin/8), uint(pin%8) * 2
}

// packPortConfig builds a port configuration word.
func packPortConfig(funcID, rng uint16, avr bool, nsamples uint8, assoc int) uint16 {
	v := (funcID&0xF)<<_PCFG_FUNCID |
		(rng&0x7)<<_PCFG_RANGE |
		uint16(nsamples&0x7)<<_PCFG_NSAMPLES
	if avr {
		v |= 1 << _PCFG_AVR
	}
	if assoc >= 0 {
		v |= (uint16(assoc) & 0x1F) << _PCFG_ASSOC
	}
	return v
}

// packDeviceControl builds the device control word from the global settings.
// DACCTL is left at sequential update mode.
func packDeviceControl(mode ADCMode, rate ConversionRate, ref DACReference, sensors TempSensors) uint16 {
	v := field(mode)<<_DCTL_ADCCTL | field(rate)<<_DCTL_ADCCONV
	if ref == DACExternal {
		v |= 1 << _DCTL_DACREF
	}
	v |= uint16(sensors&TempAll) << _DCTL_TMPCTL
	return v
}
