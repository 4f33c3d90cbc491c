package max11300

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// EventType classifies a decoded interrupt. The kinds are declared in
// classification priority order.
type EventType uint8

const (
	EventNone EventType = iota
	VoltageMonitor
	InternalTempMonitorHigh
	ExternalTemp1MonitorHigh
	ExternalTemp2MonitorHigh
	InternalTempMonitorLow
	ExternalTemp1MonitorLow
	ExternalTemp2MonitorLow
	InternalTempAvailable
	ExternalTemp1Available
	ExternalTemp2Available
	DACOvercurrent
	DigitalDataReady
	DigitalDataMissed
	AnalogDataReady
	AnalogDataMissed
	AnalogConversionComplete
)

func (e EventType) String() string {
	switch e {
	case VoltageMonitor:
		return "voltage-monitor"
	case InternalTempMonitorHigh:
		return "internal-temp-high"
	case ExternalTemp1MonitorHigh:
		return "external-temp1-high"
	case ExternalTemp2MonitorHigh:
		return "external-temp2-high"
	case InternalTempMonitorLow:
		return "internal-temp-low"
	case ExternalTemp1MonitorLow:
		return "external-temp1-low"
	case ExternalTemp2MonitorLow:
		return "external-temp2-low"
	case InternalTempAvailable:
		return "internal-temp-available"
	case ExternalTemp1Available:
		return "external-temp1-available"
	case ExternalTemp2Available:
		return "external-temp2-available"
	case DACOvercurrent:
		return "dac-overcurrent"
	case DigitalDataReady:
		return "digital-data-ready"
	case DigitalDataMissed:
		return "digital-data-missed"
	case AnalogDataReady:
		return "analog-data-ready"
	case AnalogDataMissed:
		return "analog-data-missed"
	case AnalogConversionComplete:
		return "analog-conversion-complete"
	default:
		return "none"
	}
}

// eventPriority maps interrupt register bits to event kinds. The first
// match wins when several conditions are pending.
var eventPriority = [...]struct {
	mask uint16
	kind EventType
}{
	{_INT_VMON, VoltageMonitor},
	{_TMP_HI << _INT_TMPINT, InternalTempMonitorHigh},
	{_TMP_HI << _INT_TMPEXT1, ExternalTemp1MonitorHigh},
	{_TMP_HI << _INT_TMPEXT2, ExternalTemp2MonitorHigh},
	{_TMP_LO << _INT_TMPINT, InternalTempMonitorLow},
	{_TMP_LO << _INT_TMPEXT1, ExternalTemp1MonitorLow},
	{_TMP_LO << _INT_TMPEXT2, ExternalTemp2MonitorLow},
	{_TMP_READY << _INT_TMPINT, InternalTempAvailable},
	{_TMP_READY << _INT_TMPEXT1, ExternalTemp1Available},
	{_TMP_READY << _INT_TMPEXT2, ExternalTemp2Available},
	{_INT_DACOI, DACOvercurrent},
	{_INT_GPIDR, DigitalDataReady},
	{_INT_GPIDM, DigitalDataMissed},
	{_INT_ADCDR, AnalogDataReady},
	{_INT_ADCDM, AnalogDataMissed},
	{_INT_ADCFLAG, AnalogConversionComplete},
}

func classify(vector uint16) EventType {
	for _, p := range eventPriority {
		if vector&p.mask != 0 {
			return p.kind
		}
	}
	return EventNone
}

// Event is a decoded interrupt.
type Event struct {
	// Time is when the event was decoded.
	Time time.Time
	// Vector is the raw interrupt register, including flags seen by earlier
	// status polls.
	Vector uint16
	Type   EventType
	// Pins has bit n set when pin n caused a data-ready or data-missed event.
	// It is zero for every other kind.
	Pins uint32
}

// HasPin reports whether pin is flagged in e.Pins.
func (e Event) HasPin(pin int) bool {
	return validPin(pin) && e.Pins&(1<<uint(pin)) != 0
}

// pinMask returns the pins whose state satisfies fn.
// Call with lock held.
func (d *Device) pinMask(fn func(pinState) bool) uint32 {
	var m uint32
	for i, p := range d.pins {
		if fn(p) {
			m |= 1 << uint(i)
		}
	}
	return m
}

// ServiceInterrupt reads and decodes the pending interrupt, stores it as the
// last event and returns it. When nothing is pending the last event is
// returned unchanged, so repeated calls between interrupts agree.
// Call it from the INT handler or a polling loop, never concurrently with a
// bus operation outside this Device.
// This method is concurrent safe.
func (d *Device) ServiceInterrupt() (Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ev, _, err := d.service()
	return ev, err
}

// service performs one status read and returns the last event and whether
// it is new. Call with lock held.
func (d *Device) service() (Event, bool, error) {
	var regs [_intStatusLen]uint16
	if err := d.transport.ReadRegisters(_REG_INTERRUPT, regs[:]); err != nil {
		logErr("reading interrupt status", err)
		return d.lastEvent, false, err
	}
	if d.irqChan != nil {
		select {
		case <-d.irqChan:
		default:
		}
	}

	vector := regs[0] | d.intSticky
	analog := joinPins(regs[_REG_ADC_ST_L-_REG_INTERRUPT], regs[_REG_ADC_ST_H-_REG_INTERRUPT]) | d.analogSticky
	digital := joinPins(regs[_REG_GPI_ST_L-_REG_INTERRUPT], regs[_REG_GPI_ST_H-_REG_INTERRUPT])
	if vector == 0 {
		// The status read cleared the ADC flags; hold them for the next event.
		d.analogSticky = analog
		return d.lastEvent, false, nil
	}
	d.intSticky, d.analogSticky = 0, 0

	ev := Event{Time: d.now(), Vector: vector, Type: classify(vector)}
	switch ev.Type {
	case AnalogDataReady, AnalogDataMissed:
		// Only the positive half of a differential pair carries the sample.
		ev.Pins = analog & d.pinMask(func(p pinState) bool {
			return p.analogSource() && p.mode != AnalogDifferentialNegative
		})
	case DigitalDataReady, DigitalDataMissed:
		ev.Pins = digital & d.pinMask(func(p pinState) bool { return p.mode == DigitalIn })
	case DACOvercurrent:
		oc := joinPins(regs[_REG_DAC_OC_L-_REG_INTERRUPT], regs[_REG_DAC_OC_H-_REG_INTERRUPT])
		globalLogger.Warn("DAC overcurrent on pins " + pinList(oc))
	}
	d.lastEvent = ev
	globalLogger.Debug("Interrupt: " + ev.Type.String())
	return ev, true, nil
}

// LastEvent returns the most recently decoded event without touching the chip.
// This method is concurrent safe.
func (d *Device) LastEvent() Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastEvent
}

// Pending reports whether an event is waiting to be serviced: INT is
// asserted or signalled, or a status poll saw flags that are not yet decoded.
// This method is concurrent safe.
func (d *Device) Pending() bool {
	d.mu.Lock()
	sticky := d.intSticky != 0 || d.analogSticky != 0
	d.mu.Unlock()
	if sticky {
		return true
	}
	if d.config.IRQ == nil {
		return false
	}
	return len(d.irqChan) > 0 || d.config.IRQ.Read() == Low
}

// WaitForEvent blocks until a new event is decoded or ctx is cancelled.
// It sleeps on the INT pin if configured, or polls the status registers
// every PollInterval.
// This method is concurrent safe.
func (d *Device) WaitForEvent(ctx context.Context) (Event, error) {
	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		default:
		}

		if d.config.IRQ != nil && !d.Pending() {
			select {
			case <-d.irqChan:
			case <-ctx.Done():
				return Event{}, ctx.Err()
			}
		}

		d.mu.Lock()
		ev, fresh, err := d.service()
		d.mu.Unlock()
		if err != nil {
			return Event{}, err
		}
		if fresh {
			return ev, nil
		}

		if d.config.IRQ == nil {
			select {
			case <-ctx.Done():
				return Event{}, ctx.Err()
			case <-time.After(d.config.PollInterval):
			}
		}
	}
}

func pinList(mask uint32) string {
	var b strings.Builder
	for i := 0; i < NumPins; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}
