// Package button implements a sampling-based, edge-detecting, debouncing
// button state machine. It turns a polled boolean level into a stream of
// PRESSED / RELEASED / HOLDING / CLICK events.
//
// The core never touches hardware, never blocks, and never allocates after
// New: the host supplies a LevelReader closure and drives Step on whatever
// cadence it likes. Step shifts in the elapsed sampling pulses, classifies
// the waveform, and invokes the bound EventCallback synchronously before
// returning.
package button

import "time"

// Millis is an opaque monotonic millisecond tick supplied by the host. It
// is a distinct type, rather than a bare uint32, so a host cannot pass a
// wall-clock delta or a time.Duration to Step without an explicit
// conversion. Successive calls to Step for a given instance must pass a
// non-decreasing Millis; subtraction between ticks is unsigned modular, so
// correctness only requires that true elapsed time between steps never
// exceeds half of uint32's range.
type Millis uint32

// Event is one of the four outcomes a Step can report through the bound
// EventCallback.
type Event uint8

const (
	EventNone Event = iota
	EventPressed
	EventReleased
	EventHolding
	EventClick
)

func (e Event) String() string {
	switch e {
	case EventPressed:
		return "PRESSED"
	case EventReleased:
		return "RELEASED"
	case EventHolding:
		return "HOLDING"
	case EventClick:
		return "CLICK"
	default:
		return "NONE"
	}
}

// LevelReader samples the current level of a button's pin. It must be pure
// with respect to the debounce logic in this package; any side effects are
// the host's concern. Go closures capture their own context, so there is
// no separate ctx parameter the way the original C callback took one.
type LevelReader func() Level

// EventCallback receives events emitted by Step. data carries the running
// click count for EventClick and is zero otherwise. A RELEASED event is
// always immediately followed by exactly one CLICK callback with the
// just-incremented count, before Step returns.
type EventCallback func(btn *Button, event Event, data uint8)

// Button is one physical button's debounce/repeat/click state. Obtain one
// from New; the zero value is not usable (allocated is false).
type Button struct {
	waveform uint32

	timePressed  Millis
	timeReleased Millis
	timeRepeat   Millis // 0 sentinel: no HOLDING issued yet this press
	clicks       uint8
	timestamp    Millis

	param Param

	getState LevelReader
	callback EventCallback

	allocated bool
	active    bool
	pressed   bool
}

// Pressed reports the latched logical press state: true iff the most
// recent qualified transition was a press.
func (b *Button) Pressed() bool {
	return b.pressed
}

// Clicks returns the running click count within the current click window.
func (b *Button) Clicks() uint8 {
	return b.clicks
}

// Waveform returns the raw sample shift register, most recent sample in
// the low bit. Intended for diagnostics and status displays; the engine's
// own decisions are all made through Pressed, Clicks, and the event stream.
func (b *Button) Waveform() uint32 {
	if b == nil {
		return 0
	}
	return b.waveform
}

// Busy reports whether the waveform is not in the steady-up state. Hosts
// can use this to decide whether it is safe to sleep until the next
// external event.
func (b *Button) Busy() bool {
	if b == nil {
		return false
	}
	n := b.param.pulseCount()
	return classify(b.waveform, n, b.pressed) != stateUp
}

// Enable marks the instance active so that Step processes it.
func (b *Button) Enable() error {
	if b == nil {
		return ErrInvalidParam
	}
	b.active = true
	return nil
}

// Disable marks the instance inactive; Step will return ErrDisabled until
// Enable is called again.
func (b *Button) Disable() error {
	if b == nil {
		return ErrInvalidParam
	}
	b.active = false
	return nil
}

// SetParam validates and installs new timings. On failure the instance is
// left unchanged and ErrIncorrectParam is returned.
func (b *Button) SetParam(p Param) error {
	if b == nil {
		return ErrInvalidParam
	}
	if !p.valid() {
		return ErrIncorrectParam
	}
	b.param = p
	return nil
}

// GetParam copies out the instance's current timings.
func (b *Button) GetParam() (Param, error) {
	if b == nil {
		return Param{}, ErrInvalidParam
	}
	return b.param, nil
}

// Step advances the state machine to now and emits zero or more events
// through the bound EventCallback before returning.
//
// Step is a no-op, returning nil without touching any state, when fewer
// than one full sampling interval has elapsed since the previous Step. If
// the host is late by more than one interval, the most recent level is
// resampled once per skipped interval: this correctly models "the level
// has been this way across the skipped interval" rather than silently
// dropping history.
func (b *Button) Step(now Millis) error {
	if b == nil {
		return ErrInvalidParam
	}
	if !b.active {
		return ErrDisabled
	}

	event := b.process(now)

	if event != EventNone && b.callback != nil {
		b.callback(b, event, 0)
		if event == EventReleased {
			b.callback(b, EventClick, b.clicks)
		}
	}

	return nil
}

// process implements button.c's process_button: it advances the waveform
// by the elapsed pulses, classifies the result, applies the matching
// bookkeeping update, and applies the click-window reset rule. It returns
// the single event the step produced, if any.
func (b *Button) process(now Millis) Event {
	intervalMs := uint32(b.param.SamplingInterval / time.Millisecond)
	elapsed := uint32(now - b.timestamp)
	pulses := elapsed / intervalMs

	if pulses == 0 {
		return EventNone
	}

	for i := uint32(0); i < pulses; i++ {
		b.waveform = shiftIn(b.waveform, b.getState())
	}

	n := b.param.pulseCount()
	s := classify(b.waveform, n, b.pressed)
	event := EventNone

	switch s {
	case statePressed:
		event = EventPressed
		b.timePressed = now
		b.pressed = true
	case stateReleased:
		event = EventReleased
		b.timeReleased = now
		b.pressed = false
		b.clicks++
		b.timeRepeat = 0
	case stateDown:
		if b.fireRepeat(now) {
			event = EventHolding
		}
	}

	if !s.activity() && uint32(now-b.timeReleased) >= uint32(b.param.ClickWindow/time.Millisecond) {
		b.clicks = 0
	}

	b.timestamp = now
	return event
}

// fireRepeat implements process_holding: an initial repeat_delay hesitation
// followed by a steady repeat_rate cadence, matching keyboard auto-repeat.
func (b *Button) fireRepeat(now Millis) bool {
	var fire bool
	if b.timeRepeat != 0 {
		fire = uint32(now-b.timeRepeat) >= uint32(b.param.RepeatRate/time.Millisecond)
	} else {
		fire = uint32(now-b.timePressed) >= uint32(b.param.RepeatDelay/time.Millisecond)
	}
	if fire {
		b.timeRepeat = now
	}
	return fire
}
