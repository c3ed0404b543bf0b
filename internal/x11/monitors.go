package x11

import (
	"fmt"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Output randr.Output
	X      int
	Y      int
	Width  int
	Height int
}

// Bounds returns the monitor geometry as a rect.
func (m Monitor) Bounds() geometry.Rect {
	return geometry.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			Output: crtcInfo.Outputs[0],
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// Topology returns every active monitor with its work area. The work area is
// derived from dock struts, falling back to the _NET_WORKAREA intersection
// and finally to the full monitor bounds.
func (c *Connection) Topology() (geometry.Topology, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return geometry.Topology{}, err
	}
	if len(monitors) == 0 {
		return geometry.Topology{}, fmt.Errorf("no monitors found")
	}

	rootWidth, rootHeight, struts := c.dockStruts()
	workarea, hasWorkarea := c.currentWorkarea()

	primaryOutput := randr.Output(0)
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	topo := geometry.Topology{PrimaryID: monitors[0].ID}
	for _, mon := range monitors {
		bounds := mon.Bounds()
		wa, ok := WorkAreaFromStruts(bounds, rootWidth, rootHeight, struts)
		if !ok {
			wa = bounds
			if hasWorkarea {
				if isect, ok := geometry.Intersect(bounds, workarea); ok {
					wa = isect
				}
			}
		}

		if primaryOutput != 0 && mon.Output == primaryOutput {
			topo.PrimaryID = mon.ID
		}
		topo.Displays = append(topo.Displays, geometry.Display{
			ID:       mon.ID,
			Name:     mon.Name,
			Bounds:   bounds,
			WorkArea: wa,
		})
	}

	return topo, nil
}

// currentWorkarea returns _NET_WORKAREA for the current desktop.
func (c *Connection) currentWorkarea() (geometry.Rect, bool) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return geometry.Rect{}, false
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}

	wa := workArea[desktopIndex]
	return geometry.Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}, true
}

// dockStruts collects the struts of every dock window on the root.
func (c *Connection) dockStruts() (rootWidth, rootHeight int, struts []ewmh.WmStrutPartial) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, nil
	}
	rootWidth = int(rootGeom.Width)
	rootHeight = int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return rootWidth, rootHeight, nil
	}

	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			struts = append(struts, *sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			struts = append(struts, FullStrut(s, rootWidth, rootHeight))
		}
	}

	return rootWidth, rootHeight, struts
}

// FullStrut widens a plain _NET_WM_STRUT to span the whole root window.
func FullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:         s.Left,
		Right:        s.Right,
		Top:          s.Top,
		Bottom:       s.Bottom,
		LeftStartY:   0,
		LeftEndY:     uint(rootHeight - 1),
		RightStartY:  0,
		RightEndY:    uint(rootHeight - 1),
		TopStartX:    0,
		TopEndX:      uint(rootWidth - 1),
		BottomStartX: 0,
		BottomEndX:   uint(rootWidth - 1),
	}
}

type dockInsets struct {
	left   int
	right  int
	top    int
	bottom int
}

// WorkAreaFromStruts shrinks bounds by the struts that overlap it. It
// reports false when no strut touches the monitor.
func WorkAreaFromStruts(bounds geometry.Rect, rootWidth, rootHeight int, struts []ewmh.WmStrutPartial) (geometry.Rect, bool) {
	var acc dockInsets
	for i := range struts {
		updateStrutsForMonitor(bounds, rootWidth, rootHeight, &struts[i], &acc)
	}

	if acc.left == 0 && acc.right == 0 && acc.top == 0 && acc.bottom == 0 {
		return bounds, false
	}

	wa := geometry.Rect{
		X:      bounds.X + acc.left,
		Y:      bounds.Y + acc.top,
		Width:  bounds.Width - (acc.left + acc.right),
		Height: bounds.Height - (acc.top + acc.bottom),
	}
	if wa.Width < 1 {
		wa.Width = 1
	}
	if wa.Height < 1 {
		wa.Height = 1
	}
	return wa, true
}

func updateStrutsForMonitor(mon geometry.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockInsets) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		strut := spanRect(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		if isect, ok := geometry.Intersect(mon, strut); ok {
			acc.top = max(acc.top, isect.Height)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		strut := spanRect(int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		if isect, ok := geometry.Intersect(mon, strut); ok {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		strut := spanRect(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		if isect, ok := geometry.Intersect(mon, strut); ok {
			acc.left = max(acc.left, isect.Width)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		strut := spanRect(rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		if isect, ok := geometry.Intersect(mon, strut); ok {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

func spanRect(x1, y1, x2, y2 int) geometry.Rect {
	return geometry.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
