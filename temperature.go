package max11300

import "math"

// Temperature data is 12-bit two's complement at 0.125°C per LSB.
const (
	tempLSB     = 0.125
	tempCodeMin = -2048
	tempCodeMax = 2047
)

// ConvertTemp converts a temperature register code to degrees Celsius.
func ConvertTemp(code uint16) float64 {
	v := int16(code<<4) >> 4 // sign-extend bit 11
	return float64(v) * tempLSB
}

// TempCode converts degrees Celsius to the nearest temperature register
// code, as used by the temperature threshold registers.
func TempCode(celsius float64) uint16 {
	n := math.Round(celsius / tempLSB)
	if n < tempCodeMin {
		n = tempCodeMin
	} else if n > tempCodeMax {
		n = tempCodeMax
	}
	return uint16(int16(n)) & _CODE_MASK
}

func (d *Device) readTemp(addr byte) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var w [1]uint16
	if err := d.transport.ReadRegisters(addr, w[:]); err != nil {
		return 0, err
	}
	return ConvertTemp(w[0]), nil
}

// ReadInternalTemp returns the die temperature in degrees Celsius.
// The internal sensor must be enabled through TempSensors.
// This method is concurrent safe.
func (d *Device) ReadInternalTemp() (float64, error) {
	return d.readTemp(_REG_TMP_INT_DATA)
}

// ReadExternalTemp1 returns the temperature of the first external diode.
// This method is concurrent safe.
func (d *Device) ReadExternalTemp1() (float64, error) {
	return d.readTemp(_REG_TMP_EXT1_DATA)
}

// ReadExternalTemp2 returns the temperature of the second external diode.
// This method is concurrent safe.
func (d *Device) ReadExternalTemp2() (float64, error) {
	return d.readTemp(_REG_TMP_EXT2_DATA)
}
