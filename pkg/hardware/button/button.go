// Package button wires the periph.io GPIO stack to the debounce engine in
// pkg/button and dispatches its events to the action strings configured in
// pkg/config.
package button

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/mononn/buttond/pkg/button"
	"github.com/mononn/buttond/pkg/config"
)

// MutexLocker adapts a sync.Mutex to button.Locker, for hosts that allocate
// or free Button instances from more than one goroutine.
type MutexLocker struct {
	mu sync.Mutex
}

func (l *MutexLocker) Lock()   { l.mu.Lock() }
func (l *MutexLocker) Unlock() { l.mu.Unlock() }

// openPin initializes periph.io's host drivers and resolves the configured
// GPIO line, mirroring the original watcher's chip/line lookup and its
// PullUp-with-Output-fallback configuration strategy.
func openPin(conf config.ButtonConfig) (gpio.PinIO, error) {
	if conf.GPIO.Chip == "" || conf.GPIO.Line == "" {
		return nil, fmt.Errorf("hardware/button: GPIO chip and line must be configured")
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hardware/button: initializing periph host: %w", err)
	}

	pinName := fmt.Sprintf("%s/%s", conf.GPIO.Chip, conf.GPIO.Line)
	p := gpioreg.ByName(pinName)
	if p == nil {
		p = gpioreg.ByName(conf.GPIO.Line)
		if p == nil {
			return nil, fmt.Errorf("hardware/button: GPIO pin not found: %s or %s", pinName, conf.GPIO.Line)
		}
	}

	log.Printf("hardware/button: using pin %s (%s)", p.Name(), p.Function())

	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		log.Printf("hardware/button: Input/PullUp failed (%v), trying Output/High fallback", err)
		if errOut := p.Out(gpio.High); errOut != nil {
			return nil, fmt.Errorf("hardware/button: configuring pin %s as InputPullUp (%v) or OutputHigh (%w)", p.Name(), err, errOut)
		}
	}

	return p, nil
}

// Controller drives a single button.Button against a live GPIO pin on a
// fixed sampling tick, translating engine events into the action strings
// from config.ButtonConfig.Keys.
type Controller struct {
	pin    gpio.PinIO
	btn    *button.Button
	conf   config.ButtonConfig
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup

	// totalClicks is a lifetime counter, incremented on every settled
	// click regardless of its position in a multi-click run. It is read
	// from cmd/buttonctl's watch loop concurrently with the sampling
	// goroutine that writes it, hence the atomic wrapper.
	totalClicks config.AtomicInt

	// Dispatch receives the resolved action string for every emitted
	// event; nil events (no configured action) are not sent. Hosts that
	// don't care which action fired can leave this nil.
	Dispatch func(action string)
}

// NewController opens the configured GPIO pin, allocates a button.Button
// from the shared pool, and returns a Controller ready for Start.
func NewController(conf config.ButtonConfig) (*Controller, error) {
	if !conf.Timing.Valid() {
		return nil, fmt.Errorf("hardware/button: configured timing for %q is invalid", conf.Name)
	}

	pin, err := openPin(conf)
	if err != nil {
		return nil, err
	}

	c := &Controller{pin: pin, conf: conf, done: make(chan struct{})}

	btn, err := button.New(c.readLevel, c.handleEvent)
	if err != nil {
		return nil, fmt.Errorf("hardware/button: allocating engine instance: %w", err)
	}
	if err := btn.SetParam(conf.Timing); err != nil {
		button.Delete(btn)
		return nil, fmt.Errorf("hardware/button: applying configured timing: %w", err)
	}
	if err := btn.Enable(); err != nil {
		button.Delete(btn)
		return nil, err
	}
	c.btn = btn

	return c, nil
}

// Name returns the configured button's name, for hosts driving more than
// one Controller at once.
func (c *Controller) Name() string {
	return c.conf.Name
}

// Engine exposes the underlying debounce engine instance for hosts that
// want to read its live state (Pressed, Clicks, Waveform) between events,
// such as a status display refreshed on a slower tick than the sampling
// loop.
func (c *Controller) Engine() *button.Button {
	return c.btn
}

// readLevel samples the pin and translates periph.io's active-low PullUp
// convention (Low == pressed) into the engine's Level.
func (c *Controller) readLevel() button.Level {
	if c.pin.Read() == gpio.Low {
		return button.Down
	}
	return button.Up
}

// ReadLevel samples the pin directly, bypassing the debounce engine. It is
// meant for diagnostic tooling that wants to see the raw signal.
func (c *Controller) ReadLevel() button.Level {
	return c.readLevel()
}

// TotalClicks returns the lifetime count of settled clicks, independent of
// Engine().Clicks() which resets when the click window closes.
func (c *Controller) TotalClicks() int {
	return c.totalClicks.Load()
}

// handleEvent resolves an engine event to a configured action string and
// forwards it to Dispatch.
func (c *Controller) handleEvent(_ *button.Button, event button.Event, data uint8) {
	var action string
	switch event {
	case button.EventClick:
		c.totalClicks.Add(1)
		if data >= 2 {
			action = c.conf.Keys.Twice
		} else {
			action = c.conf.Keys.Click
		}
	case button.EventPressed:
		return
	case button.EventHolding:
		if c.btn.Clicks() == 0 {
			action = c.conf.Keys.Press
		} else {
			action = c.conf.Keys.Holding
		}
	default:
		return
	}

	if action == "" || action == "none" {
		return
	}
	log.Printf("hardware/button: event %s -> action %q", event, action)
	if c.Dispatch != nil {
		c.Dispatch(action)
	}
}

// Start begins stepping the engine on conf.Timing.SamplingInterval until the
// context is cancelled or Stop is called. It returns immediately; the
// sampling loop runs on its own goroutine.
func (c *Controller) Start(ctx context.Context) {
	c.ticker = time.NewTicker(c.conf.Timing.SamplingInterval)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		defer c.ticker.Stop()

		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case now := <-c.ticker.C:
				elapsed := button.Millis(now.Sub(start).Milliseconds())
				if err := c.btn.Step(elapsed); err != nil {
					log.Printf("hardware/button: step error: %v", err)
				}
			}
		}
	}()
}

// Stop halts the sampling loop and releases the engine instance. Stop must
// not be called more than once.
func (c *Controller) Stop() {
	close(c.done)
	c.wg.Wait()
	button.Delete(c.btn)
}
