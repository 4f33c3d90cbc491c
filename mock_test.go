package max11300

import (
	"testing"
	"time"
)

// --- Mocks ---

type mockPin struct {
	mode    string
	level   Level
	pull    Pull
	edge    Edge
	handler func()
	history []Level
}

func (m *mockPin) Out(l Level) error {
	m.mode = "output"
	m.level = l
	m.history = append(m.history, l)
	return nil
}

func (m *mockPin) In(pull Pull) error {
	m.mode = "input"
	m.pull = pull
	return nil
}

func (m *mockPin) Read() Level { return m.level }

func (m *mockPin) Watch(edge Edge, handler func()) error {
	m.edge = edge
	m.handler = handler
	return nil
}

func (m *mockPin) Unwatch() error {
	m.edge = NoEdge
	m.handler = nil
	return nil
}

// mockChip is a register file that speaks the MAX11300 SPI frame format.
type mockChip struct {
	regs   [0x80]uint16
	frames [][]byte
	err    error
	// clearOnRead lists registers the chip zeroes after they are read.
	clearOnRead map[byte]bool
}

func newMockChip() *mockChip {
	m := &mockChip{clearOnRead: map[byte]bool{
		_REG_INTERRUPT: true,
		_REG_ADC_ST_L:  true,
		_REG_ADC_ST_H:  true,
		_REG_DAC_OC_L:  true,
		_REG_DAC_OC_H:  true,
		_REG_GPI_ST_L:  true,
		_REG_GPI_ST_H:  true,
	}}
	m.regs[_REG_DEV_ID] = _DEVICE_ID
	return m
}

func (m *mockChip) Tx(w, r []byte) error {
	m.frames = append(m.frames, append([]byte(nil), w...))
	if m.err != nil {
		return m.err
	}
	addr := w[0] >> 1
	n := (len(w) - 1) / 2
	if w[0]&_SPI_READ != 0 {
		r[0] = 0
		for i := 0; i < n; i++ {
			a := addr + byte(i)
			r[1+2*i] = byte(m.regs[a] >> 8)
			r[2+2*i] = byte(m.regs[a])
			if m.clearOnRead[a] {
				m.regs[a] = 0
			}
		}
		return nil
	}
	for i := 0; i < n; i++ {
		m.regs[addr+byte(i)] = uint16(w[1+2*i])<<8 | uint16(w[2+2*i])
	}
	return nil
}

// writes returns the addresses written since the last reset of frames.
func (m *mockChip) writes() []byte {
	var out []byte
	for _, f := range m.frames {
		if f[0]&_SPI_READ == 0 {
			out = append(out, f[0]>>1)
		}
	}
	return out
}

var testClock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestDevice(t *testing.T, c HardwareConfig) (*Device, *mockChip) {
	t.Helper()
	SetLogger(nil)
	chip := newMockChip()
	dev, err := NewWithHardware(c, chip)
	if err != nil {
		t.Fatalf("NewWithHardware failed: %v", err)
	}
	dev.now = func() time.Time { return testClock }
	chip.frames = nil
	return dev, chip
}

func mustMode(t *testing.T, dev *Device, pin int, mode PinMode, partner int) {
	t.Helper()
	if err := dev.SetPinMode(pin, mode, partner); err != nil {
		t.Fatalf("SetPinMode(%d, %s, %d) failed: %v", pin, mode, partner, err)
	}
}
