package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mononn/buttond/pkg/button"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buttond.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFromMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.conf")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	require.Len(t, cfg.Buttons, 1)
	bc := cfg.Buttons[0]
	assert.Equal(t, defaultButtonName, bc.Name)
	assert.Equal(t, "gpiochip0", bc.GPIO.Chip)
	assert.Equal(t, "17", bc.GPIO.Line)
	assert.True(t, bc.Timing.Valid())
	assert.False(t, cfg.Display.Enabled)
}

func TestLoadConfigFlatSectionsOverlaySingleButton(t *testing.T) {
	path := writeConfig(t, `
[gpio]
chip = gpiochip4
line = 27

[timing]
sampling_interval_ms = 5
min_press_time_ms = 40
repeat_delay_ms = 250
repeat_rate_ms = 150
click_window_ms = 400

[keys]
click = vol-down
twice = vol-mute
press = power-menu
holding = power-off

[display]
enabled = true
rotate = true
`)

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	require.Len(t, cfg.Buttons, 1)
	bc := cfg.Buttons[0]
	assert.Equal(t, defaultButtonName, bc.Name)
	assert.Equal(t, "gpiochip4", bc.GPIO.Chip)
	assert.Equal(t, "27", bc.GPIO.Line)
	assert.Equal(t, "vol-down", bc.Keys.Click)
	assert.Equal(t, "vol-mute", bc.Keys.Twice)
	assert.Equal(t, "power-menu", bc.Keys.Press)
	assert.Equal(t, "power-off", bc.Keys.Holding)
	assert.True(t, bc.Timing.Valid())

	assert.True(t, cfg.Display.Enabled)
	assert.True(t, cfg.Display.Rotate)
}

func TestLoadConfigNamedButtonSections(t *testing.T) {
	path := writeConfig(t, `
[button "volume-up"]
chip = gpiochip0
line = 22
click = vol-up

[button "volume-down"]
chip = gpiochip0
line = 23
click = vol-down
sampling_interval_ms = 20
min_press_time_ms = 100
`)

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	require.Len(t, cfg.Buttons, 2)

	byName := map[string]ButtonConfig{}
	for _, bc := range cfg.Buttons {
		byName[bc.Name] = bc
	}

	up, ok := byName["volume-up"]
	require.True(t, ok)
	assert.Equal(t, "22", up.GPIO.Line)
	assert.Equal(t, "vol-up", up.Keys.Click)
	// Unspecified timing fields keep the button's own defaults.
	assert.Equal(t, button.DefaultSamplingInterval, up.Timing.SamplingInterval)

	down, ok := byName["volume-down"]
	require.True(t, ok)
	assert.Equal(t, "23", down.GPIO.Line)
	assert.Equal(t, "vol-down", down.Keys.Click)
	assert.NotEqual(t, up.Timing.SamplingInterval, down.Timing.SamplingInterval)
	assert.True(t, down.Timing.Valid())
}

func TestLoadConfigRejectsInvalidNamedButtonTiming(t *testing.T) {
	path := writeConfig(t, `
[button "broken"]
chip = gpiochip0
line = 17
sampling_interval_ms = 0
`)

	_, err := LoadConfigFrom(path)
	assert.Error(t, err)
}

func TestDefaultButtonConfigIsValid(t *testing.T) {
	bc := defaultButtonConfig()
	assert.True(t, bc.Timing.Valid())
	assert.NotEmpty(t, bc.GPIO.Chip)
	assert.NotEmpty(t, bc.GPIO.Line)
}
