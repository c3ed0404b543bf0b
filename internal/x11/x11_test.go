package x11

import (
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestWorkAreaFromStruts(t *testing.T) {
	left := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := geometry.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	rootW, rootH := 3200, 1080

	// A 40px bottom panel spanning only the left monitor.
	bottomPanel := ewmh.WmStrutPartial{Bottom: 40, BottomStartX: 0, BottomEndX: 1919}
	// A 30px top panel spanning only the right monitor.
	topPanel := ewmh.WmStrutPartial{Top: 30, TopStartX: 1920, TopEndX: 3199}

	tests := []struct {
		name   string
		bounds geometry.Rect
		struts []ewmh.WmStrutPartial
		want   geometry.Rect
		ok     bool
	}{
		{
			name:   "no struts",
			bounds: left,
			want:   left,
		},
		{
			name:   "bottom panel on left monitor",
			bounds: left,
			struts: []ewmh.WmStrutPartial{bottomPanel, topPanel},
			want:   geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1040},
			ok:     true,
		},
		{
			name:   "top panel on right monitor",
			bounds: right,
			struts: []ewmh.WmStrutPartial{bottomPanel, topPanel},
			want:   geometry.Rect{X: 1920, Y: 30, Width: 1280, Height: 994},
			ok:     true,
		},
		{
			name:   "left dock",
			bounds: left,
			struts: []ewmh.WmStrutPartial{{Left: 64, LeftStartY: 0, LeftEndY: 1079}},
			want:   geometry.Rect{X: 64, Y: 0, Width: 1856, Height: 1080},
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WorkAreaFromStruts(tt.bounds, rootW, rootH, tt.struts)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("WorkAreaFromStruts() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFullStrutCoversRoot(t *testing.T) {
	sp := FullStrut(&ewmh.WmStrut{Bottom: 48}, 1920, 1080)
	wa, ok := WorkAreaFromStruts(geometry.Rect{Width: 1920, Height: 1080}, 1920, 1080, []ewmh.WmStrutPartial{sp})
	if !ok || wa.Height != 1032 || wa.Width != 1920 {
		t.Fatalf("unexpected work area %+v (ok=%v)", wa, ok)
	}
}

func TestClickTracker(t *testing.T) {
	ct := NewClickTracker(400 * time.Millisecond)

	if ct.Press(1000) {
		t.Fatalf("first press reported double click")
	}
	if !ct.Press(1300) {
		t.Fatalf("second press within interval not reported")
	}
	if ct.Press(1500) {
		t.Fatalf("third press should start a new sequence")
	}
	if ct.Press(2000) {
		t.Fatalf("press after interval reported double click")
	}
}

type callLog struct{ calls []string }

func (c *callLog) DragStart(geometry.Point)  { c.calls = append(c.calls, "start") }
func (c *callLog) DragMotion(geometry.Point) { c.calls = append(c.calls, "motion") }
func (c *callLog) DragEnd()                  { c.calls = append(c.calls, "end") }
func (c *callLog) DoubleClick()              { c.calls = append(c.calls, "double") }
func (c *callLog) SecondaryClick()           { c.calls = append(c.calls, "secondary") }

func TestPointerRouterDeliversDoubleClickAfterRelease(t *testing.T) {
	p := geometry.Point{X: 100, Y: 100}
	tests := []struct {
		name   string
		replay func(r *pointerRouter)
		want   []string
	}{
		{
			name: "double click",
			replay: func(r *pointerRouter) {
				r.press(xproto.ButtonIndex1, 1000, p)
				r.release(xproto.ButtonIndex1)
				r.press(xproto.ButtonIndex1, 1200, p)
				r.release(xproto.ButtonIndex1)
			},
			want: []string{"start", "end", "start", "end", "double"},
		},
		{
			name: "slow clicks",
			replay: func(r *pointerRouter) {
				r.press(xproto.ButtonIndex1, 1000, p)
				r.release(xproto.ButtonIndex1)
				r.press(xproto.ButtonIndex1, 2000, p)
				r.release(xproto.ButtonIndex1)
			},
			want: []string{"start", "end", "start", "end"},
		},
		{
			name: "drag",
			replay: func(r *pointerRouter) {
				r.motion(p)
				r.press(xproto.ButtonIndex1, 1000, p)
				r.motion(geometry.Point{X: 150, Y: 120})
				r.release(xproto.ButtonIndex1)
				r.motion(p)
			},
			want: []string{"start", "motion", "end"},
		},
		{
			name: "secondary",
			replay: func(r *pointerRouter) {
				r.press(xproto.ButtonIndex3, 1000, p)
				r.release(xproto.ButtonIndex3)
			},
			want: []string{"secondary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &callLog{}
			tt.replay(newPointerRouter(log, 400*time.Millisecond))
			if !reflect.DeepEqual(log.calls, tt.want) {
				t.Fatalf("calls = %v, want %v", log.calls, tt.want)
			}
		})
	}
}
