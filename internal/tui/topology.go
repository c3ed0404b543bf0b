package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/ipc"
)

// summarizeDisplay returns a one-line description of a display and its taskbar.
func summarizeDisplay(d ipc.DisplayInfo) string {
	edge := d.TaskbarEdge
	if edge == "" {
		edge = "none"
	}
	return fmt.Sprintf("%d×%d at %d,%d • taskbar:%s • sleeps at %.0f,%.0f",
		d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y,
		edge, d.SleepTarget.X, d.SleepTarget.Y)
}

// renderTopology draws the displays scaled into a width×height character
// canvas. Each display is boxed and numbered, its work area is left blank
// while the reserved taskbar strip is shaded, and the sleep target is marked
// with 'z'. The selected display gets a heavy border.
func renderTopology(displays []ipc.DisplayInfo, selected, width, height int) []string {
	if len(displays) == 0 || width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	rects := make([]geometry.Rect, len(displays))
	for i, d := range displays {
		rects[i] = d.Bounds
	}
	virtual, _ := geometry.Union(rects)
	if virtual.Width <= 0 || virtual.Height <= 0 {
		return emptyCanvas(width, height)
	}

	m := canvasMap{virtual: virtual, w: width, h: height}
	for i, d := range displays {
		shadeTaskbar(canvas, m, d)
		label := fmt.Sprintf("%d", d.ID)
		if d.Primary {
			label += "*"
		}
		drawBox(canvas, m.rect(d.Bounds), label, i == selected)
	}
	for _, d := range displays {
		x, y := m.point(d.SleepTarget)
		if y > 0 && y < height-1 && x > 0 && x < width-1 {
			canvas[y][x] = 'z'
		}
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// canvasMap scales virtual-desktop coordinates onto the canvas.
type canvasMap struct {
	virtual geometry.Rect
	w, h    int
}

func (m canvasMap) x(v int) int {
	return (v - m.virtual.X) * (m.w - 1) / m.virtual.Width
}

func (m canvasMap) y(v int) int {
	return (v - m.virtual.Y) * (m.h - 1) / m.virtual.Height
}

func (m canvasMap) rect(r geometry.Rect) [4]int {
	return [4]int{m.x(r.X), m.y(r.Y), m.x(r.Right()), m.y(r.Bottom())}
}

func (m canvasMap) point(p geometry.Point) (int, int) {
	return m.x(int(p.X)), m.y(int(p.Y))
}

func shadeTaskbar(canvas [][]rune, m canvasMap, d ipc.DisplayInfo) {
	if d.WorkArea.Width <= 0 || d.WorkArea.Height <= 0 {
		return
	}
	bx := m.rect(d.Bounds)
	wa := m.rect(d.WorkArea)
	for y := bx[1] + 1; y < bx[3]; y++ {
		for x := bx[0] + 1; x < bx[2]; x++ {
			if x < wa[0] || x >= wa[2] || y < wa[1] || y >= wa[3] {
				canvas[y][x] = '░'
			}
		}
	}
}

func drawBox(canvas [][]rune, r [4]int, label string, heavy bool) {
	x1, y1, x2, y2 := r[0], r[1], r[2], r[3]
	canvasH := len(canvas)
	canvasW := len(canvas[0])
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 >= canvasW {
		x2 = canvasW - 1
	}
	if y2 >= canvasH {
		y2 = canvasH - 1
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}

	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if heavy {
		h, v, tl, tr, bl, br = '═', '║', '╔', '╗', '╚', '╝'
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = h
		canvas[y2][x] = h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = v
		canvas[y][x2] = v
	}
	canvas[y1][x1] = tl
	canvas[y1][x2] = tr
	canvas[y2][x1] = bl
	canvas[y2][x2] = br

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		startX := centerX - len(label)/2
		for i, ch := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = ch
			}
		}
	}
}

func emptyCanvas(width, height int) []string {
	if height < 0 {
		height = 0
	}
	if width < 0 {
		width = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
