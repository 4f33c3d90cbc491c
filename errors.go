package max11300

import (
	"errors"
	"fmt"
)

var (
	ErrPkg = errors.New("max11300")
	// ErrMisuse reports an operation the pin's current mode does not support.
	ErrMisuse = errors.New("operation not supported by pin mode")
	// ErrRange reports a pin index, code or buffer outside its bounds.
	ErrRange = errors.New("value out of range")
	// ErrConflict reports a differential pairing against an incompatible pin.
	ErrConflict = errors.New("differential pairing conflict")
	// ErrTransport wraps failures of the register transport.
	ErrTransport = errors.New("register transport failed")
	ErrDeviceID  = errors.New("unexpected device id")
)

func misuse(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrPkg, ErrMisuse, fmt.Sprintf(format, args...))
}

func outOfRange(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrPkg, ErrRange, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrPkg, ErrConflict, fmt.Sprintf(format, args...))
}

func pinRange(pin int) error {
	if !validPin(pin) {
		return outOfRange("pin %d must be between 0 and %d", pin, NumPins-1)
	}
	return nil
}
