package button

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedEvent captures one EventCallback invocation for assertions.
type recordedEvent struct {
	event Event
	data  uint8
	step  int
}

// harness wires a Button to a mutable level and an event recorder, driving
// Step on an exact multiple of the default sampling interval so that every
// call advances the waveform by precisely one pulse.
type harness struct {
	t       *testing.T
	btn     *Button
	level   Level
	now     Millis
	step    int
	events  []recordedEvent
}

func newHarness(t *testing.T) *harness {
	h := &harness{t: t, level: Up}
	btn, err := New(func() Level { return h.level }, func(_ *Button, event Event, data uint8) {
		h.events = append(h.events, recordedEvent{event: event, data: data, step: h.step})
	})
	require.NoError(t, err)
	require.NoError(t, btn.Enable())
	h.btn = btn
	return h
}

// tick advances now by one SamplingInterval and steps the button, after
// first setting the level sampled for that pulse.
func (h *harness) tick(level Level) {
	h.level = level
	h.step++
	h.now += Millis(h.btn.param.SamplingInterval.Milliseconds())
	require.NoError(h.t, h.btn.Step(h.now))
}

func (h *harness) ticks(level Level, n int) {
	for i := 0; i < n; i++ {
		h.tick(level)
	}
}

func (h *harness) eventsOfType(e Event) []recordedEvent {
	var out []recordedEvent
	for _, r := range h.events {
		if r.event == e {
			out = append(out, r)
		}
	}
	return out
}

func TestButtonCleanSingleClick(t *testing.T) {
	h := newHarness(t)
	defer Delete(h.btn)

	h.ticks(Down, 8)
	h.ticks(Up, 6)

	require.Len(t, h.events, 3)
	assert.Equal(t, EventPressed, h.events[0].event)
	assert.Equal(t, EventReleased, h.events[1].event)
	assert.Equal(t, EventClick, h.events[2].event)
	assert.EqualValues(t, 1, h.events[2].data)
	assert.EqualValues(t, 1, h.btn.Clicks())
	assert.False(t, h.btn.Pressed())
}

func TestButtonDebounceRejectsShortPulse(t *testing.T) {
	h := newHarness(t)
	defer Delete(h.btn)

	// Three Down samples is short of the six-pulse qualification window;
	// releasing back to Up before it completes must never register a
	// press, a release, or a click.
	h.ticks(Down, 3)
	h.ticks(Up, 10)

	assert.Empty(t, h.events)
	assert.EqualValues(t, 0, h.btn.Clicks())
	assert.False(t, h.btn.Pressed())
}

func TestButtonDoubleClickThenWindowReset(t *testing.T) {
	h := newHarness(t)
	defer Delete(h.btn)

	// First click.
	h.ticks(Down, 8)
	h.ticks(Up, 6)
	// Second click, started immediately: well inside the 500ms click
	// window, so the running count must continue to 2 rather than reset.
	h.ticks(Down, 8)
	h.ticks(Up, 6)

	clicks := h.eventsOfType(EventClick)
	require.Len(t, clicks, 2)
	assert.EqualValues(t, 1, clicks[0].data)
	assert.EqualValues(t, 2, clicks[1].data)

	// Idle long enough to clear the click window (>= 500ms == 50 steps at
	// the default 10ms sampling interval) before a third, independent
	// click.
	h.ticks(Up, 60)
	h.ticks(Down, 8)
	h.ticks(Up, 6)

	clicks = h.eventsOfType(EventClick)
	require.Len(t, clicks, 3)
	assert.EqualValues(t, 1, clicks[2].data, "click count must restart at 1 after the window closes, not continue to 3")
}

func TestButtonHoldingAutoRepeat(t *testing.T) {
	h := newHarness(t)
	defer Delete(h.btn)

	// Six pulses to qualify the press, then hold long enough for four
	// auto-repeat cycles: first HOLDING at RepeatDelay (300ms) after the
	// press, then every RepeatRate (200ms) after that. 100 pulses @ 10ms
	// covers steps 6 (press), 36, 56, 76, 96 (four HOLDING) and stops
	// short of the fifth at step 116.
	h.ticks(Down, 100)

	holding := h.eventsOfType(EventHolding)
	require.Len(t, holding, 4)
	for _, r := range holding {
		assert.EqualValues(t, 0, r.data)
	}

	pressed := h.eventsOfType(EventPressed)
	require.Len(t, pressed, 1)
	assert.True(t, h.btn.Pressed())
}

func TestButtonLateStepSingleHolding(t *testing.T) {
	h := newHarness(t)
	defer Delete(h.btn)

	h.ticks(Down, 6)
	require.Len(t, h.eventsOfType(EventPressed), 1)

	// A host that only gets around to calling Step once a second still
	// resamples the missed pulses, but classifies and fires auto-repeat
	// exactly once for the whole gap.
	h.level = Down
	h.now += 1000
	require.NoError(t, h.btn.Step(h.now))

	holding := h.eventsOfType(EventHolding)
	require.Len(t, holding, 1)
}

func TestButtonSetParamRejectsInvalid(t *testing.T) {
	h := newHarness(t)
	defer Delete(h.btn)

	before, err := h.btn.GetParam()
	require.NoError(t, err)

	bad := before
	bad.SamplingInterval = 0
	assert.ErrorIs(t, h.btn.SetParam(bad), ErrIncorrectParam)

	after, _ := h.btn.GetParam()
	assert.Equal(t, before, after, "a rejected SetParam must not mutate the instance")
}

func TestButtonDisabledStepReturnsErrDisabled(t *testing.T) {
	h := newHarness(t)
	defer Delete(h.btn)

	require.NoError(t, h.btn.Disable())
	assert.ErrorIs(t, h.btn.Step(10), ErrDisabled)
}

func TestButtonNilReceiverIsSafe(t *testing.T) {
	var btn *Button
	assert.False(t, btn.Busy())
	assert.ErrorIs(t, btn.Enable(), ErrInvalidParam)
	assert.ErrorIs(t, btn.Disable(), ErrInvalidParam)
	assert.ErrorIs(t, btn.Step(0), ErrInvalidParam)
	_, err := btn.GetParam()
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestNewRejectsNilLevelReader(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestPoolExhaustion(t *testing.T) {
	var allocated []*Button
	defer func() {
		for _, b := range allocated {
			Delete(b)
		}
	}()

	for i := 0; i < ButtonMax; i++ {
		b, err := New(func() Level { return Up }, nil)
		require.NoError(t, err)
		allocated = append(allocated, b)
	}

	_, err := New(func() Level { return Up }, nil)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}
