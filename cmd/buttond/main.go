// Command buttond samples one or more GPIO buttons, runs each level through
// the debounce/repeat/click engine in pkg/button, and dispatches the
// resulting gestures to configured system actions.
package main

import (
	"context"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mononn/buttond/pkg/button"
	"github.com/mononn/buttond/pkg/config"
	"github.com/mononn/buttond/pkg/display"
	hwbutton "github.com/mononn/buttond/pkg/hardware/button"
)

// Application owns the daemon's hardware controllers and their lifecycle:
// initialize, start, and shutdown run in that order, mirroring how a host
// that composes several independent subsystems typically structures main.
type Application struct {
	conf              *config.Config
	buttons           []*hwbutton.Controller
	displayController *display.Controller
	hasDisplay        bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func main() {
	log.Println("Starting buttond...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app := &Application{conf: cfg}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	if err := app.initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	app.start()
	log.Printf("buttond started successfully with %d button(s)", len(app.buttons))

	select {
	case sig := <-signalCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case <-app.ctx.Done():
		log.Println("Context cancelled, shutting down...")
	}

	app.shutdown()
	log.Println("buttond stopped")
}

// initialize opens a Controller for every configured button. A button that
// fails to open (missing hardware, bad GPIO line) is logged and skipped
// rather than aborting the whole daemon, so one misconfigured button on a
// multi-button board doesn't take the others down with it.
func (app *Application) initialize() error {
	if len(app.conf.Buttons) > 1 {
		// Multiple buttons share the engine's instance pool, so a mutex-backed
		// Locker guards New and Delete. Here New (via NewController) and
		// Delete (via Stop) both run on the main goroutine; the sampling
		// goroutines started by Start only call Step.
		button.SetPoolLocker(&hwbutton.MutexLocker{})
	}

	for _, bc := range app.conf.Buttons {
		ctl, err := hwbutton.NewController(bc)
		if err != nil {
			log.Printf("buttond: button %q not available: %v", bc.Name, err)
			continue
		}
		ctl.Dispatch = app.handleAction
		app.buttons = append(app.buttons, ctl)
	}
	if len(app.buttons) == 0 {
		return nil // nothing to sample, but not a fatal condition
	}

	if app.conf.Display.Enabled {
		disp, err := display.NewController(app.conf)
		if err != nil {
			log.Printf("Display not available, running without it: %v", err)
		} else {
			app.displayController = disp
			app.hasDisplay = true
		}
	}

	return nil
}

func (app *Application) start() {
	for _, ctl := range app.buttons {
		ctl.Start(app.ctx)
	}

	app.toggleOnSIGUSR1()

	if app.hasDisplay {
		app.wg.Add(1)
		go app.displayUpdater()
	}
}

// displayUpdater refreshes the status panel on a slower cadence than the
// sampling loops; it is cosmetic and never participates in debounce
// decisions. With more than one button configured it shows whichever one
// is currently mid-gesture, falling back to the first button when all are
// idle.
func (app *Application) displayUpdater() {
	defer app.wg.Done()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			app.displayController.Render(app.currentStatus())
		}
	}
}

func (app *Application) currentStatus() display.Status {
	active := app.buttons[0]
	for _, ctl := range app.buttons {
		if ctl.Engine().Busy() {
			active = ctl
			break
		}
	}

	engine := active.Engine()
	state := "IDLE"
	if engine.Pressed() {
		state = "HELD"
	}
	return display.Status{
		State:    active.Name() + ":" + state,
		Clicks:   engine.Clicks(),
		Waveform: engine.Waveform(),
	}
}

// handleAction executes the system action bound to a gesture. "none" and
// the empty string are already filtered out by the caller; anything else
// unrecognized is just logged, leaving room for hosts to wire custom
// actions without a recompile of this switch.
func (app *Application) handleAction(action string) {
	if !app.conf.Active.Load() {
		log.Printf("buttond: action %q suppressed, daemon is disabled", action)
		return
	}
	switch action {
	case "reboot":
		app.runPrivileged("reboot")
	case "poweroff":
		app.runPrivileged("poweroff")
	default:
		log.Printf("buttond: action %q has no built-in handler", action)
	}
}

// toggleOnSIGUSR1 flips conf.Active every time the process receives
// SIGUSR1, letting an operator silence button actions (e.g. before a
// maintenance window) without restarting the daemon. Sampling keeps
// running either way; only handleAction checks the flag.
func (app *Application) toggleOnSIGUSR1() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		for {
			select {
			case <-app.ctx.Done():
				return
			case <-ch:
				enabled := app.conf.Active.Toggle()
				log.Printf("buttond: daemon %s via SIGUSR1", map[bool]string{true: "enabled", false: "disabled"}[enabled])
			}
		}
	}()
}

func (app *Application) runPrivileged(cmd string) {
	go func() {
		log.Printf("buttond: executing %s", cmd)
		time.Sleep(time.Second) // let the log line above reach disk/syslog first
		if err := exec.Command("sudo", cmd).Run(); err != nil {
			log.Printf("buttond: %s failed: %v", cmd, err)
		}
	}()
}

func (app *Application) shutdown() {
	log.Println("buttond: shutting down")
	app.cancel()

	for _, ctl := range app.buttons {
		ctl.Stop()
	}
	if app.hasDisplay {
		app.displayController.Close()
	}

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("buttond: all goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Println("buttond: shutdown timeout, forcing exit")
	}
}
