//go:build linux

package platform

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
	"github.com/1broseidon/oneko/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxOptions configures the X11 backend.
type LinuxOptions struct {
	Display     string
	XAuthority  string
	Background  color.NRGBA
	DoubleClick time.Duration
	Sprites     *sprite.Sheet
}

type shownFrame struct {
	frame      sprite.Frame
	appearance engine.Appearance
}

// LinuxBackend implements Backend on X11.
type LinuxBackend struct {
	conn        *x11.Connection
	window      *x11.SpriteWindow
	sprites     *sprite.Sheet
	doubleClick time.Duration

	mu    sync.Mutex
	shown *shownFrame
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend connects to the X server and creates the sprite window.
func NewLinuxBackend(opts LinuxOptions) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(opts.Display, opts.XAuthority)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	win, err := conn.NewSpriteWindow(opts.Background)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &LinuxBackend{
		conn:        conn,
		window:      win,
		sprites:     opts.Sprites,
		doubleClick: opts.DoubleClick,
	}, nil
}

// Disconnect destroys the sprite window and closes the X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b == nil || b.conn == nil {
		return
	}
	if b.window != nil {
		b.window.Destroy()
	}
	b.conn.Close()
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops the X11 event loop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Topology returns all active displays with their work areas.
func (b *LinuxBackend) Topology() (geometry.Topology, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Topology{}, err
	}
	return conn.Topology()
}

// Pointer returns the global pointer position.
func (b *LinuxBackend) Pointer() (geometry.Point, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Point{}, err
	}
	return conn.Pointer()
}

// SleepTarget queries a fresh topology and returns the sleep spot nearest p.
func (b *LinuxBackend) SleepTarget(p geometry.Point) (geometry.Point, error) {
	topo, err := b.Topology()
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.SleepTargetNear(topo, p)
}

// TaskbarRoamBand queries a fresh topology and returns the roam band nearest p.
func (b *LinuxBackend) TaskbarRoamBand(p geometry.Point) (geometry.RoamBand, error) {
	topo, err := b.Topology()
	if err != nil {
		return geometry.RoamBand{}, err
	}
	return geometry.RoamBandNear(topo, p)
}

// SetWindowPosition moves and raises the sprite window.
func (b *LinuxBackend) SetWindowPosition(x, y int) error {
	if b.window == nil {
		return fmt.Errorf("sprite window is not created")
	}
	return b.window.Move(x, y)
}

// ShowSprite paints frame f. Repeating the frame already on screen is a
// no-op.
func (b *LinuxBackend) ShowSprite(f sprite.Frame, a engine.Appearance) error {
	if b.window == nil || b.sprites == nil {
		return fmt.Errorf("sprite window is not created")
	}

	next := shownFrame{frame: f, appearance: a}
	b.mu.Lock()
	if b.shown != nil && *b.shown == next {
		b.mu.Unlock()
		return nil
	}
	b.shown = &next
	b.mu.Unlock()

	b.window.Paint(b.sprites.Image(a.Variant, f, a.Inverted))
	return nil
}

// Bind routes sprite-window input and root topology changes to sink.
func (b *LinuxBackend) Bind(sink EventSink) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	b.window.BindPointer(sink, b.doubleClick)
	if err := conn.WatchTopology(sink.TopologyChanged); err != nil {
		return fmt.Errorf("failed to watch root properties: %w", err)
	}
	return nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
