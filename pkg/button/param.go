package button

import "time"

// Param holds the five debounce/repeat/click timings for a Button. All
// fields must be positive; MinPressTime must be at least SamplingInterval.
// See Valid for the full rule set.
type Param struct {
	// SamplingInterval is the nominal spacing between level reads.
	SamplingInterval time.Duration
	// MinPressTime is the debounce/qualify time. N = MinPressTime /
	// SamplingInterval consecutive same-level samples are required to
	// recognize a press or release.
	MinPressTime time.Duration
	// RepeatDelay is how long a button must be held before the first
	// HOLDING event fires.
	RepeatDelay time.Duration
	// RepeatRate is the spacing between subsequent HOLDING events.
	RepeatRate time.Duration
	// ClickWindow is the gap from the last release after which the
	// running click count resets to zero.
	ClickWindow time.Duration
}

// Compile-time tunables, mirrored from the original C defaults
// (BUTTON_SAMPLING_INTERVAL_MS=10, BUTTON_MIN_PRESS_TIME_MS=60,
// BUTTON_REPEAT_DELAY_MS=300, BUTTON_REPEAT_RATE_MS=200,
// BUTTON_CLICK_WINDOW_MS=500).
const (
	DefaultSamplingInterval = 10 * time.Millisecond
	DefaultMinPressTime     = 60 * time.Millisecond
	DefaultRepeatDelay      = 300 * time.Millisecond
	DefaultRepeatRate       = 200 * time.Millisecond
	DefaultClickWindow      = 500 * time.Millisecond
)

// ButtonMax is the size of the fixed instance pool (BUTTON_MAX).
const ButtonMax = 8

// waveformBits is the width, in bits, of the sample shift register.
const waveformBits = 32

func defaultParam() Param {
	return Param{
		SamplingInterval: DefaultSamplingInterval,
		MinPressTime:     DefaultMinPressTime,
		RepeatDelay:      DefaultRepeatDelay,
		RepeatRate:       DefaultRepeatRate,
		ClickWindow:      DefaultClickWindow,
	}
}

// pulseCount returns N, the number of consecutive same-level samples
// required to qualify a press or release transition.
func (p Param) pulseCount() uint32 {
	return uint32(p.MinPressTime / p.SamplingInterval)
}

// Valid reports whether p would be accepted by SetParam. Hosts assembling a
// Param from configuration can use this to fail fast with a clear error
// instead of discovering the rejection only once wired to a live instance.
func (p Param) Valid() bool {
	return p.valid()
}

// valid reports whether p satisfies every parameter-validation rule from
// the original is_param_ok: all five durations nonzero, MinPressTime at
// least SamplingInterval, and enough head-room left in the waveform for
// the release-sentinel bit plus one guard bit.
func (p Param) valid() bool {
	if p.SamplingInterval <= 0 || p.MinPressTime <= 0 ||
		p.RepeatDelay <= 0 || p.RepeatRate <= 0 || p.ClickWindow <= 0 {
		return false
	}
	if p.MinPressTime < p.SamplingInterval {
		return false
	}
	if p.pulseCount() >= waveformBits-2 {
		return false
	}
	return true
}
