package max11300

import (
	"fmt"
	"time"
)

const (
	_SPI_READ  = 0x01
	_SPI_WRITE = 0x00
)

// spiTransport frames register accesses on an SPI connection.
// The first byte carries the 7-bit address and the read flag; register
// words follow MSB first and the chip auto-increments the address.
type spiTransport struct {
	conn    SPI
	cnvt    Pin
	scratch [1 + 2*NumPins]byte
}

func newSPITransport(conn SPI, cnvt Pin) *spiTransport {
	return &spiTransport{conn: conn, cnvt: cnvt}
}

func (t *spiTransport) transfer(n int) ([]byte, error) {
	slice := t.scratch[:n]
	if err := t.conn.Tx(slice, slice); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrPkg, ErrTransport, err)
	}
	return slice[1:], nil
}

func (t *spiTransport) checkLen(n int) error {
	if n == 0 || n > NumPins {
		return outOfRange("transfer of %d words, limit is %d", n, NumPins)
	}
	return nil
}

func (t *spiTransport) WriteRegisters(addr byte, words []uint16) error {
	if err := t.checkLen(len(words)); err != nil {
		return err
	}
	t.scratch[0] = addr<<1 | _SPI_WRITE
	for i, w := range words {
		t.scratch[1+2*i] = byte(w >> 8)
		t.scratch[2+2*i] = byte(w)
	}
	_, err := t.transfer(1 + 2*len(words))
	return err
}

func (t *spiTransport) ReadRegisters(addr byte, words []uint16) error {
	if err := t.checkLen(len(words)); err != nil {
		return err
	}
	n := 1 + 2*len(words)
	t.scratch[0] = addr<<1 | _SPI_READ
	clear(t.scratch[1:n])
	data, err := t.transfer(n)
	if err != nil {
		return err
	}
	for i := range words {
		words[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return nil
}

func (t *spiTransport) ReadModifyWrite(addr byte, mask, value uint16) error {
	var w [1]uint16
	if err := t.ReadRegisters(addr, w[:]); err != nil {
		return err
	}
	w[0] = w[0]&^mask | value&mask
	return t.WriteRegisters(addr, w[:])
}

// TriggerConversion drives CNVT low for one pulse. Without a CNVT pin the
// chip only converts in continuous sweep mode.
func (t *spiTransport) TriggerConversion() {
	if t.cnvt == nil {
		globalLogger.Warn("conversion requested but no CNVT pin configured")
		return
	}
	if err := t.cnvt.Out(Low); err != nil {
		logErr("CNVT pulse", err)
		return
	}
	time.Sleep(time.Microsecond)
	logErr("CNVT release", t.cnvt.Out(High))
}

func (t *spiTransport) InitDelay(d time.Duration) {
	time.Sleep(d)
}
