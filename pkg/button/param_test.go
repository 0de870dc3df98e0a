package button

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParamValidateDefaults(t *testing.T) {
	assert.True(t, defaultParam().valid())
}

func TestParamValidateZeroDurations(t *testing.T) {
	base := defaultParam()

	cases := []Param{
		{SamplingInterval: 0, MinPressTime: base.MinPressTime, RepeatDelay: base.RepeatDelay, RepeatRate: base.RepeatRate, ClickWindow: base.ClickWindow},
		{SamplingInterval: base.SamplingInterval, MinPressTime: base.MinPressTime, RepeatDelay: 0, RepeatRate: base.RepeatRate, ClickWindow: base.ClickWindow},
		{SamplingInterval: base.SamplingInterval, MinPressTime: base.MinPressTime, RepeatDelay: base.RepeatDelay, RepeatRate: 0, ClickWindow: base.ClickWindow},
		{SamplingInterval: base.SamplingInterval, MinPressTime: base.MinPressTime, RepeatDelay: base.RepeatDelay, RepeatRate: base.RepeatRate, ClickWindow: 0},
	}
	for _, c := range cases {
		assert.False(t, c.valid())
	}
}

func TestParamValidateMinPressBelowSampling(t *testing.T) {
	p := Param{
		SamplingInterval: 10 * time.Millisecond,
		MinPressTime:     5 * time.Millisecond,
		RepeatDelay:      300 * time.Millisecond,
		RepeatRate:       200 * time.Millisecond,
		ClickWindow:      500 * time.Millisecond,
	}
	assert.False(t, p.valid())
}

func TestParamValidatePulseCountHeadroom(t *testing.T) {
	// N = 30 must be rejected (no head-room left for the release sentinel
	// bit plus the guard bit); N = 29 must be accepted.
	tooWide := Param{
		SamplingInterval: time.Millisecond,
		MinPressTime:     30 * time.Millisecond,
		RepeatDelay:      300 * time.Millisecond,
		RepeatRate:       200 * time.Millisecond,
		ClickWindow:      500 * time.Millisecond,
	}
	assert.False(t, tooWide.valid())

	justRight := tooWide
	justRight.MinPressTime = 29 * time.Millisecond
	assert.True(t, justRight.valid())
}

func TestParamPulseCount(t *testing.T) {
	p := Param{SamplingInterval: 10 * time.Millisecond, MinPressTime: 60 * time.Millisecond}
	assert.EqualValues(t, 6, p.pulseCount())
}
