// Package config loads buttond's on-disk configuration: one or more GPIO
// buttons, each with its own debounce/repeat/click timings and action-key
// mapping, plus an optional status display.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mononn/buttond/pkg/button"
	"gopkg.in/ini.v1"
)

// ButtonConfig is one physical button's wiring, timing, and key mapping.
type ButtonConfig struct {
	Name string
	GPIO struct {
		Chip string // GPIO chip/alias, e.g. "GPIO17" or periph.io pin name
		Line string // Line name, kept separate for chips addressed by offset
	}
	Timing button.Param
	Keys   struct {
		Click   string // Action run on a CLICK event whose running count is 1
		Twice   string // Action run on a CLICK event whose running count is 2 or more
		Press   string // Action run on every HOLDING event while Clicks() == 0
		Holding string // Action run on every HOLDING event while Clicks() > 0
	}
}

// Config holds buttond's full runtime configuration: one or more buttons
// and the shared display settings.
type Config struct {
	Buttons []ButtonConfig
	Display struct {
		Enabled  bool
		Rotate   bool
		FontPath string // optional TTF path; falls back to a builtin face
	}
	// Active reflects whether the daemon currently dispatches button
	// actions; toggled at runtime by cmd/buttond on SIGUSR1, not read from
	// disk. Sampling runs regardless of its value.
	Active AtomicBool
}

const defaultConfigPath = "/etc/buttond.conf"
const defaultButtonName = "default"

func defaultButtonConfig() ButtonConfig {
	bc := ButtonConfig{Name: defaultButtonName}
	bc.GPIO.Chip = "gpiochip0"
	bc.GPIO.Line = "17"
	bc.Timing = button.Param{
		SamplingInterval: button.DefaultSamplingInterval,
		MinPressTime:     button.DefaultMinPressTime,
		RepeatDelay:      button.DefaultRepeatDelay,
		RepeatRate:       button.DefaultRepeatRate,
		ClickWindow:      button.DefaultClickWindow,
	}
	bc.Keys.Click = "click"
	bc.Keys.Twice = "twice"
	bc.Keys.Press = "press"
	bc.Keys.Holding = "holding"
	return bc
}

func loadDefaults() *Config {
	conf := &Config{Buttons: []ButtonConfig{defaultButtonConfig()}}
	conf.Display.Enabled = false
	conf.Display.Rotate = false
	conf.Active = *NewAtomicBool(true)
	return conf
}

// durationField loads a millisecond integer key into dst, leaving dst
// unchanged if the key is absent.
func durationField(section *ini.Section, key string, dst *time.Duration) error {
	k, err := section.GetKey(key)
	if err != nil {
		return nil // key absent, keep default
	}
	ms, err := k.Int()
	if err != nil {
		return fmt.Errorf("config: %s.%s: %w", section.Name(), key, err)
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

// buttonSectionName reports the button name carried by a section header of
// the form `[button "name"]`, and whether sec is such a section at all.
func buttonSectionName(sec *ini.Section) (string, bool) {
	const prefix = "button "
	name := sec.Name()
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(name, prefix), `"`), true
}

// applyButtonSection overlays sec's keys onto bc, leaving fields whose key
// is absent from the file untouched.
func applyButtonSection(sec *ini.Section, bc *ButtonConfig) error {
	bc.GPIO.Chip = sec.Key("chip").MustString(bc.GPIO.Chip)
	bc.GPIO.Line = sec.Key("line").MustString(bc.GPIO.Line)

	for key, dst := range map[string]*time.Duration{
		"sampling_interval_ms": &bc.Timing.SamplingInterval,
		"min_press_time_ms":    &bc.Timing.MinPressTime,
		"repeat_delay_ms":      &bc.Timing.RepeatDelay,
		"repeat_rate_ms":       &bc.Timing.RepeatRate,
		"click_window_ms":      &bc.Timing.ClickWindow,
	} {
		if err := durationField(sec, key, dst); err != nil {
			return err
		}
	}

	bc.Keys.Click = sec.Key("click").MustString(bc.Keys.Click)
	bc.Keys.Twice = sec.Key("twice").MustString(bc.Keys.Twice)
	bc.Keys.Press = sec.Key("press").MustString(bc.Keys.Press)
	bc.Keys.Holding = sec.Key("holding").MustString(bc.Keys.Holding)

	if !bc.Timing.Valid() {
		return fmt.Errorf("config: button %q: timing fails validation", bc.Name)
	}
	return nil
}

// parseConfig reads an INI file at path into a Config seeded with defaults.
// Each `[button "name"]` section overlays its own ButtonConfig; a file with
// no such sections still configures exactly one button, named "default",
// via flat `[gpio]`/`[timing]`/`[keys]` sections — the common single-button
// case doesn't need the subsection ceremony. Keys and sections absent from
// the file keep their default value, mirroring the original hand-rolled
// loader's "file is an overlay, not a replacement" behavior.
func parseConfig(path string) (*Config, error) {
	conf := loadDefaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Config file %s not found, using defaults.\n", path)
		return conf, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}

	var namedButtons []ButtonConfig
	for _, sec := range cfg.Sections() {
		name, ok := buttonSectionName(sec)
		if !ok {
			continue
		}
		bc := defaultButtonConfig()
		bc.Name = name
		if err := applyButtonSection(sec, &bc); err != nil {
			return nil, err
		}
		namedButtons = append(namedButtons, bc)
	}

	if len(namedButtons) > 0 {
		conf.Buttons = namedButtons
	} else {
		bc := conf.Buttons[0]
		if s, err := cfg.GetSection("gpio"); err == nil {
			bc.GPIO.Chip = s.Key("chip").MustString(bc.GPIO.Chip)
			bc.GPIO.Line = s.Key("line").MustString(bc.GPIO.Line)
		}
		if s, err := cfg.GetSection("timing"); err == nil {
			if err := applyButtonSection(s, &bc); err != nil {
				return nil, err
			}
		}
		if s, err := cfg.GetSection("keys"); err == nil {
			bc.Keys.Click = s.Key("click").MustString(bc.Keys.Click)
			bc.Keys.Twice = s.Key("twice").MustString(bc.Keys.Twice)
			bc.Keys.Press = s.Key("press").MustString(bc.Keys.Press)
			bc.Keys.Holding = s.Key("holding").MustString(bc.Keys.Holding)
		}
		conf.Buttons[0] = bc
	}

	if s, err := cfg.GetSection("display"); err == nil {
		conf.Display.Enabled = s.Key("enabled").MustBool(conf.Display.Enabled)
		conf.Display.Rotate = s.Key("rotate").MustBool(conf.Display.Rotate)
		conf.Display.FontPath = s.Key("font_path").MustString(conf.Display.FontPath)
	}

	fmt.Printf("Configuration loaded successfully from %s (%d button(s))\n", path, len(conf.Buttons))
	return conf, nil
}

// LoadConfig loads configuration from the default system path, falling back
// to built-in defaults if the file does not exist.
func LoadConfig() (*Config, error) {
	return parseConfig(defaultConfigPath)
}

// LoadConfigFrom loads configuration from an explicit path, for callers
// (such as cmd/buttonctl) that accept a -config flag.
func LoadConfigFrom(path string) (*Config, error) {
	return parseConfig(path)
}
