// Package display drives an optional SSD1306 OLED panel showing the live
// state of a button.Button: its current gesture state, running click count,
// and a small bar-graph of the raw waveform register.
package display

import (
	"fmt"
	"image"
	"log"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/mononn/buttond/pkg/button"
	"github.com/mononn/buttond/pkg/config"
)

// Controller renders button status to an SSD1306 panel over I2C. Unlike the
// board-health dashboard it is adapted from, it has a single page: there is
// nothing to slide between.
type Controller struct {
	device *ssd1306.Dev
	width  int
	height int
	ctx    *gg.Context
	face   font.Face
	rotate bool

	mutex   sync.Mutex
	running bool
}

// NewController builds a display Controller from the given Config, loading
// a font from Display.FontPath if set, falling back to a builtin face when
// unset or unreadable.
func NewController(conf *config.Config) (*Controller, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: initializing periph.io: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("display: opening I2C bus: %w", err)
	}

	opts := ssd1306.DefaultOpts
	opts.W = 128
	opts.H = 32

	device, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("display: initializing SSD1306: %w", err)
	}

	c := &Controller{
		device: device,
		width:  opts.W,
		height: opts.H,
		ctx:    gg.NewContext(opts.W, opts.H),
		rotate: conf.Display.Rotate,
	}
	c.face = loadFont(conf.Display.FontPath)
	c.clear()

	log.Println("display: controller initialized")
	return c, nil
}

// loadFont tries to parse a TrueType font from path, falling back to a
// builtin 7x13 bitmap face (golang.org/x/image/font/basicfont) that needs
// no asset file on disk, matching the try-then-fallback shape of the
// dashboard this package is adapted from.
func loadFont(path string) font.Face {
	if path == "" {
		return basicfont.Face7x13
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("display: could not read font %s, using builtin face: %v", path, err)
		return basicfont.Face7x13
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		log.Printf("display: could not parse font %s, using builtin face: %v", path, err)
		return basicfont.Face7x13
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: 12, DPI: 72})
}

func (c *Controller) clear() {
	c.ctx.SetRGB(0, 0, 0)
	c.ctx.Clear()
	img := image.NewGray(image.Rect(0, 0, c.width, c.height))
	c.device.Draw(c.device.Bounds(), img, image.Point{})
}

func (c *Controller) flush() {
	img := c.ctx.Image()
	var out image.Image = img
	if c.rotate {
		out = rotate180(img)
	}
	if err := c.device.Draw(c.device.Bounds(), out, image.Point{}); err != nil {
		log.Printf("display: draw failed: %v", err)
	}
}

func rotate180(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(bounds.Max.X-1-x, bounds.Max.Y-1-y, img.At(x, y))
		}
	}
	return out
}

// Status is a snapshot of the values rendered to the panel.
type Status struct {
	State    string // free-form label; cmd/buttond sends "<name>:IDLE" or "<name>:HELD"
	Clicks   uint8
	Waveform uint32
}

// Render draws one status snapshot to the panel.
func (c *Controller) Render(s Status) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.clear()
	c.ctx.SetRGB(1, 1, 1)
	c.ctx.SetFontFace(c.face)

	c.ctx.DrawString(fmt.Sprintf("state: %-8s", s.State), 0, 11)
	c.ctx.DrawString(fmt.Sprintf("clicks: %d", s.Clicks), 0, 23)
	c.drawWaveformBar(s.Waveform)

	c.flush()
}

// drawWaveformBar renders the low 16 bits of the waveform register as a
// strip of filled/empty cells, newest sample on the right.
func (c *Controller) drawWaveformBar(waveform uint32) {
	const bits = 16
	cellW := float64(c.width) / bits
	y0 := float64(c.height) - 6

	for i := 0; i < bits; i++ {
		bit := (waveform >> uint(bits-1-i)) & 1
		x := float64(i) * cellW
		if bit == uint32(button.Down) {
			c.ctx.DrawRectangle(x, y0, cellW-1, 5)
			c.ctx.Fill()
		} else {
			c.ctx.DrawRectangle(x, y0, cellW-1, 5)
			c.ctx.Stroke()
		}
	}
}

// EventFeed renders one status snapshot built from the given values; it is
// a thin wrapper around Render for callers that hold the fields separately.
func (c *Controller) EventFeed(state string, clicks uint8, waveform uint32) {
	c.Render(Status{State: state, Clicks: clicks, Waveform: waveform})
}

// Close blanks the panel. It does not close the underlying I2C bus, which
// periph.io leaves open for the process lifetime.
func (c *Controller) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.clear()
	c.flush()
}
