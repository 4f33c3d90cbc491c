package max11300

import "time"

// Level represents the logical level of a pin (Low or High).
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Pull represents the internal pull-up/down resistor state.
type Pull uint8

const (
	PullNoChange Pull = iota
	PullFloat
	PullDown
	PullUp
)

// Edge represents the signal edge to trigger an interrupt.
type Edge uint8

const (
	NoEdge Edge = iota
	RisingEdge
	FallingEdge
	BothEdges
)

// SPI represents a generic SPI connection.
// Chip-select framing is the responsibility of the implementation:
// one Tx call is one MAX11300 frame.
type SPI interface {
	// Tx sends w and reads into r.
	// len(r) must be >= len(w).
	Tx(w, r []byte) error
}

// Pin represents a generic GPIO pin.
type Pin interface {
	// Out sets the pin as output with the given level.
	Out(l Level) error
	// In sets the pin as input with the given pull mode.
	In(pull Pull) error
	// Read returns the current level of the pin.
	Read() Level
	// Watch configures an interrupt/callback on the specified edge.
	// The handler should be called when the edge is detected.
	Watch(edge Edge, handler func()) error
	// Unwatch removes the interrupt/callback.
	Unwatch() error
}

// Transport moves 16-bit register words to and from the chip.
// Every call is a single bus transaction; no retries are attempted.
type Transport interface {
	// WriteRegisters writes words to consecutive registers starting at addr.
	WriteRegisters(addr byte, words []uint16) error
	// ReadRegisters fills words from consecutive registers starting at addr.
	ReadRegisters(addr byte, words []uint16) error
	// ReadModifyWrite replaces the bits selected by mask with value.
	ReadModifyWrite(addr byte, mask, value uint16) error
	// TriggerConversion pulses the CNVT line.
	TriggerConversion()
	// InitDelay blocks for d. Used only while sequencing startup.
	InitDelay(d time.Duration)
}
