package sprite

import (
	"image"
	"image/color"
	"log"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// placeholderColor fills frames when a sheet cannot be loaded.
var placeholderColor = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}

type frameKey struct {
	variant  Variant
	inverted bool
	cell     Cell
}

// Sheet loads sprite sheets from a directory and hands out cropped frames.
// Frames are cached per variant, inversion and cell.
type Sheet struct {
	dir string

	mu     sync.Mutex
	sheets map[Variant]image.Image
	failed map[Variant]bool
	frames map[frameKey]image.Image
}

// NewSheet creates a sheet loader reading oneko-<variant>.gif files from dir.
func NewSheet(dir string) *Sheet {
	return &Sheet{
		dir:    dir,
		sheets: make(map[Variant]image.Image),
		failed: make(map[Variant]bool),
		frames: make(map[frameKey]image.Image),
	}
}

// Image returns the 32x32 image for frame f of variant v. A missing or
// unreadable sheet yields a placeholder square instead of an error.
func (s *Sheet) Image(v Variant, f Frame, inverted bool) image.Image {
	cell, err := Lookup(f)
	if err != nil {
		cell = Cell{3, 3}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := frameKey{variant: v, inverted: inverted, cell: cell}
	if img, ok := s.frames[key]; ok {
		return img
	}

	sheet := s.sheetLocked(v)
	var img image.Image
	if sheet == nil {
		img = imaging.New(CellSize, CellSize, placeholderColor)
	} else {
		b := sheet.Bounds()
		rect := image.Rect(
			b.Min.X+cell.Col*CellSize,
			b.Min.Y+cell.Row*CellSize,
			b.Min.X+(cell.Col+1)*CellSize,
			b.Min.Y+(cell.Row+1)*CellSize,
		)
		img = imaging.Crop(sheet, rect)
	}
	if inverted {
		img = imaging.Invert(img)
	}

	s.frames[key] = img
	return img
}

func (s *Sheet) sheetLocked(v Variant) image.Image {
	if img, ok := s.sheets[v]; ok {
		return img
	}
	if s.failed[v] {
		return nil
	}

	path := filepath.Join(s.dir, v.FileName())
	img, err := imaging.Open(path)
	if err != nil {
		log.Printf("Sprite: failed to load %s: %v", path, err)
		s.failed[v] = true
		return nil
	}
	s.sheets[v] = img
	return img
}
