package x11

import (
	"time"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// PointerHandler receives pointer input from the sprite window.
type PointerHandler interface {
	DragStart(p geometry.Point)
	DragMotion(p geometry.Point)
	DragEnd()
	DoubleClick()
	SecondaryClick()
}

// topologyAtoms are the root properties whose changes can move a taskbar or
// a display.
var topologyAtoms = map[string]bool{
	"_NET_WORKAREA":         true,
	"_NET_DESKTOP_GEOMETRY": true,
	"_NET_CLIENT_LIST":      true,
}

// ClickTracker detects double clicks from primary button press timestamps.
type ClickTracker struct {
	interval time.Duration
	last     xproto.Timestamp
	armed    bool
}

// NewClickTracker creates a tracker with the given double-click interval.
func NewClickTracker(interval time.Duration) *ClickTracker {
	return &ClickTracker{interval: interval}
}

// Press records a press at t and reports whether it completes a double
// click. A completed double click disarms the tracker so a third press
// starts over.
func (ct *ClickTracker) Press(t xproto.Timestamp) bool {
	if ct.armed && time.Duration(t-ct.last)*time.Millisecond <= ct.interval {
		ct.armed = false
		return true
	}
	ct.last = t
	ct.armed = true
	return false
}

// pointerRouter turns sprite window button events into handler calls.
// Button 1 drags and double clicks; button 3 is the secondary click. The
// double click is delivered after the release that ends its drag, so the
// mode change it triggers is the last thing applied.
type pointerRouter struct {
	h        PointerHandler
	clicks   *ClickTracker
	dragging bool
	double   bool
}

func newPointerRouter(h PointerHandler, doubleClick time.Duration) *pointerRouter {
	return &pointerRouter{h: h, clicks: NewClickTracker(doubleClick)}
}

func (r *pointerRouter) press(button xproto.Button, t xproto.Timestamp, p geometry.Point) {
	switch button {
	case xproto.ButtonIndex1:
		if r.clicks.Press(t) {
			r.double = true
		}
		r.dragging = true
		r.h.DragStart(p)
	case xproto.ButtonIndex3:
		r.h.SecondaryClick()
	}
}

func (r *pointerRouter) motion(p geometry.Point) {
	if r.dragging {
		r.h.DragMotion(p)
	}
}

func (r *pointerRouter) release(button xproto.Button) {
	if button != xproto.ButtonIndex1 {
		return
	}
	if r.dragging {
		r.dragging = false
		r.h.DragEnd()
	}
	if r.double {
		r.double = false
		r.h.DoubleClick()
	}
}

// BindPointer routes button and motion events on the sprite window to h.
func (w *SpriteWindow) BindPointer(h PointerHandler, doubleClick time.Duration) {
	xu := w.conn.XUtil
	router := newPointerRouter(h, doubleClick)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		router.press(ev.Detail, ev.Time, geometry.Point{X: float64(ev.RootX), Y: float64(ev.RootY)})
	}).Connect(xu, w.win.Id)

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		router.motion(geometry.Point{X: float64(ev.RootX), Y: float64(ev.RootY)})
	}).Connect(xu, w.win.Id)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		router.release(ev.Detail)
	}).Connect(xu, w.win.Id)

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		w.Repaint()
	}).Connect(xu, w.win.Id)
}

// WatchTopology calls onChange whenever a root property that affects display
// or work-area geometry changes.
func (c *Connection) WatchTopology(onChange func()) error {
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
		return err
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		if topologyAtoms[name] {
			onChange()
		}
	}).Connect(c.XUtil, c.Root)

	return nil
}
