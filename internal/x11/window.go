package x11

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/disintegration/imaging"
)

// SpriteSize is the edge length of the sprite window.
const SpriteSize = 32

// SpriteWindow is the always-on-top overlay that shows the companion. It is
// override-redirect so the window manager never decorates, focuses or lists
// it.
type SpriteWindow struct {
	conn       *Connection
	win        *xwindow.Window
	background *image.NRGBA

	mu     sync.Mutex
	canvas *xgraphics.Image
	mapped bool
}

// NewSpriteWindow creates the overlay window. Sprite alpha is blended onto
// background before painting.
func (c *Connection) NewSpriteWindow(background color.NRGBA) (*SpriteWindow, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sprite window: %w", err)
	}

	pixel := uint32(background.R)<<16 | uint32(background.G)<<8 | uint32(background.B)
	eventMask := uint32(xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskButton1Motion |
		xproto.EventMaskExposure)

	err = win.CreateChecked(
		c.Root,
		0, 0, SpriteSize, SpriteSize,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		pixel, 1, eventMask,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sprite window: %w", err)
	}

	icccm.WmClassSet(c.XUtil, win.Id, &icccm.WmClass{Instance: "oneko", Class: "Oneko"})
	icccm.WmNameSet(c.XUtil, win.Id, "oneko")
	ewmh.WmNameSet(c.XUtil, win.Id, "oneko")
	ewmh.WmWindowTypeSet(c.XUtil, win.Id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"})
	ewmh.WmStateSet(c.XUtil, win.Id, []string{"_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER", "_NET_WM_STATE_ABOVE"})

	canvas := xgraphics.New(c.XUtil, image.Rect(0, 0, SpriteSize, SpriteSize))
	if err := canvas.XSurfaceSet(win.Id); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to create sprite surface: %w", err)
	}

	return &SpriteWindow{
		conn:       c,
		win:        win,
		background: imaging.New(SpriteSize, SpriteSize, background),
		canvas:     canvas,
	}, nil
}

// ID returns the X window id.
func (w *SpriteWindow) ID() xproto.Window {
	return w.win.Id
}

// Move places the window's top-left corner at x, y and raises it above
// every other window.
func (w *SpriteWindow) Move(x, y int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := xproto.ConfigureWindowChecked(
		w.conn.XUtil.Conn(),
		w.win.Id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowStackMode,
		[]uint32{uint32(int32(x)), uint32(int32(y)), xproto.StackModeAbove},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to move sprite window: %w", err)
	}

	if !w.mapped {
		w.win.Map()
		w.mapped = true
	}
	return nil
}

// Paint draws img into the window, blending its alpha onto the background.
func (w *SpriteWindow) Paint(img image.Image) {
	composed := imaging.Overlay(w.background, img, image.Point{}, 1.0)

	w.mu.Lock()
	defer w.mu.Unlock()

	draw.Draw(w.canvas, w.canvas.Bounds(), composed, image.Point{}, draw.Src)
	w.canvas.XDraw()
	w.canvas.XPaint(w.win.Id)
}

// Repaint re-sends the last painted frame, used on Expose.
func (w *SpriteWindow) Repaint() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvas.XPaint(w.win.Id)
}

// Destroy releases the window and its surface.
func (w *SpriteWindow) Destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvas.Destroy()
	w.win.Destroy()
}
