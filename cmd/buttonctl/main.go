// Command buttonctl is a diagnostic CLI for the configured button GPIO
// line: it can print the effective timing parameters, sample the raw pin
// level, or run the debounce engine live and print each dispatched action
// along with a status line while the button is busy.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mononn/buttond/pkg/config"
	hwbutton "github.com/mononn/buttond/pkg/hardware/button"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to an alternate config file (default: built-in system path)")
		buttonName = flag.String("button", "", "name of the configured button to act on (default: the first configured button)")
		showParam  = flag.Bool("param", false, "print the effective timing parameters and exit")
		raw        = flag.Bool("raw", false, "continuously print the raw pin level")
		watch      = flag.Duration("watch", 0, "run the debounce engine for the given duration, printing dispatched actions")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("buttonctl: %v", err)
	}

	bc, err := selectButton(cfg, *buttonName)
	if err != nil {
		log.Fatalf("buttonctl: %v", err)
	}

	if *showParam {
		printParam(bc)
		return
	}

	ctl, err := hwbutton.NewController(bc)
	if err != nil {
		log.Fatalf("buttonctl: opening controller: %v", err)
	}
	defer ctl.Stop()

	switch {
	case *raw:
		runRaw(ctl)
	case *watch > 0:
		runWatch(ctl, *watch)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadConfig()
	}
	return config.LoadConfigFrom(path)
}

// selectButton picks the named ButtonConfig out of cfg.Buttons, or the
// first configured button if name is empty. Most boards only configure
// one button, so -button is rarely needed in practice.
func selectButton(cfg *config.Config, name string) (config.ButtonConfig, error) {
	if len(cfg.Buttons) == 0 {
		return config.ButtonConfig{}, fmt.Errorf("no buttons configured")
	}
	if name == "" {
		return cfg.Buttons[0], nil
	}
	for _, bc := range cfg.Buttons {
		if bc.Name == name {
			return bc, nil
		}
	}
	return config.ButtonConfig{}, fmt.Errorf("no configured button named %q", name)
}

func printParam(bc config.ButtonConfig) {
	fmt.Printf("Button:  %s\n", bc.Name)
	fmt.Printf("GPIO:    %s/%s\n", bc.GPIO.Chip, bc.GPIO.Line)
	fmt.Printf("Timing:\n")
	fmt.Printf("  sampling_interval = %v\n", bc.Timing.SamplingInterval)
	fmt.Printf("  min_press_time    = %v\n", bc.Timing.MinPressTime)
	fmt.Printf("  repeat_delay      = %v\n", bc.Timing.RepeatDelay)
	fmt.Printf("  repeat_rate       = %v\n", bc.Timing.RepeatRate)
	fmt.Printf("  click_window      = %v\n", bc.Timing.ClickWindow)
	fmt.Printf("  valid             = %t\n", bc.Timing.Valid())
	fmt.Printf("Keys: click=%q twice=%q press=%q holding=%q\n",
		bc.Keys.Click, bc.Keys.Twice, bc.Keys.Press, bc.Keys.Holding)
}

// runRaw prints the sampled level once per configured sampling interval,
// bypassing the debounce engine entirely, for wiring a new board.
func runRaw(ctl *hwbutton.Controller) {
	engine := ctl.Engine()
	interval, err := engine.GetParam()
	if err != nil {
		log.Fatalf("buttonctl: %v", err)
	}

	ticker := time.NewTicker(interval.SamplingInterval)
	defer ticker.Stop()
	for range ticker.C {
		fmt.Println(ctl.ReadLevel())
	}
}

func runWatch(ctl *hwbutton.Controller, d time.Duration) {
	ctl.Dispatch = func(action string) {
		fmt.Printf("action: %s\n", action)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	ctl.Start(ctx)

	e := ctl.Engine()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.Busy() {
				fmt.Printf("\rpressed=%v clicks=%d total=%d      ", e.Pressed(), e.Clicks(), ctl.TotalClicks())
			}
		}
	}
}
