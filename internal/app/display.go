package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	periphhost "periph.io/x/host/v3"

	"github.com/relabs-tech/deviceinfo/internal/config"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
	"github.com/relabs-tech/deviceinfo/internal/render"
)

const (
	oledWidth  = 128
	oledHeight = 64
)

// iconSize is the outline drawn for each icon, upright. Landscape swaps
// width and height.
var iconSize = map[render.Icon]image.Point{
	render.PhoneIcon:   {X: 12, Y: 22},
	render.TabletIcon:  {X: 18, Y: 24},
	render.DesktopIcon: {X: 26, Y: 16},
}

func newFrame() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawRect(img *image1bit.VerticalLSB, r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetBit(x, r.Min.Y, image1bit.On)
		img.SetBit(x, r.Max.Y-1, image1bit.On)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetBit(r.Min.X, y, image1bit.On)
		img.SetBit(r.Max.X-1, y, image1bit.On)
	}
}

// drawIcon draws the device outline centred in a 28x28 box at the top left.
func drawIcon(img *image1bit.VerticalLSB, s orientation.State) {
	icon := render.IconFor(s.Device)
	size := iconSize[icon]
	if s.Coarse == orientation.CoarseLandscape && icon != render.DesktopIcon {
		size = image.Point{X: size.Y, Y: size.X}
	}

	origin := image.Point{X: (28 - size.X) / 2, Y: (28 - size.Y) / 2}
	drawRect(img, image.Rectangle{Min: origin, Max: origin.Add(size)})

	if icon == render.DesktopIcon {
		// Stand.
		for x := origin.X + 4; x < origin.X+size.X-4; x++ {
			img.SetBit(x, origin.Y+size.Y+2, image1bit.On)
		}
	}
}

// renderFrame lays out one screen: icon and device class on top, the coarse
// orientation and its detail below.
func renderFrame(s orientation.State) *image1bit.VerticalLSB {
	img, drawer := newFrame()
	drawIcon(img, s)

	drawer.Dot = fixed.P(34, 18)
	drawer.DrawString(render.Humanize(s.Device.String()))

	drawer.Dot = fixed.P(0, 44)
	drawer.DrawString(render.Humanize(s.Coarse.String()))

	drawer.Dot = fixed.P(0, 60)
	drawer.DrawString(s.Detail.String())

	return img
}

func showSplash(dev *ssd1306.Dev) error {
	img, drawer := newFrame()

	drawer.Dot = fixed.P(20, 26)
	drawer.DrawString("Device Info")

	drawer.Dot = fixed.P(20, 43)
	drawer.DrawString("Starting...")

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// RunDisplay shows the device state on an SSD1306 OLED until ctx is done.
// The screen is redrawn only when the state changes.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	// Initialize periph
	if _, err := periphhost.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Printf("display: initialized on I2C bus %q", cfg.DisplayI2CBus)

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	m, err := startManager(cfg)
	if err != nil {
		return err
	}
	defer m.Stop()

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	var (
		shown orientation.State
		drawn bool
	)
	for {
		select {
		case <-ctx.Done():
			log.Println("display: shutting down")
			return nil
		case <-ticker.C:
		}

		s := m.State()
		if drawn && s == shown {
			continue
		}
		if err := dev.Draw(dev.Bounds(), renderFrame(s), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
			continue
		}
		shown, drawn = s, true
	}
}
