package sprite

import (
	"errors"
	"fmt"
	"strings"
)

// CellSize is the edge length of one sprite cell in pixels.
const CellSize = 32

// Name identifies a sprite set in the sheet.
type Name string

const (
	Idle         Name = "idle"
	Alert        Name = "alert"
	ScratchSelf  Name = "scratchSelf"
	ScratchWallN Name = "scratchWallN"
	ScratchWallS Name = "scratchWallS"
	ScratchWallE Name = "scratchWallE"
	ScratchWallW Name = "scratchWallW"
	Tired        Name = "tired"
	Sleeping     Name = "sleeping"
	N            Name = "N"
	NE           Name = "NE"
	E            Name = "E"
	SE           Name = "SE"
	S            Name = "S"
	SW           Name = "SW"
	W            Name = "W"
	NW           Name = "NW"
)

// Cell is a column/row position in the 8x4 sprite sheet.
type Cell struct {
	Col int
	Row int
}

// Frame selects one frame of a sprite set.
type Frame struct {
	Name  Name `json:"name"`
	Index int  `json:"index"`
}

// sets maps every sprite set to its frames in sheet order.
var sets = map[Name][]Cell{
	Idle:         {{3, 3}},
	Alert:        {{7, 3}},
	ScratchSelf:  {{5, 0}, {6, 0}, {7, 0}},
	ScratchWallN: {{0, 0}, {0, 1}},
	ScratchWallS: {{7, 1}, {6, 2}},
	ScratchWallE: {{2, 2}, {2, 3}},
	ScratchWallW: {{4, 0}, {4, 1}},
	Tired:        {{3, 2}},
	Sleeping:     {{2, 0}, {2, 1}},
	N:            {{1, 2}, {1, 3}},
	NE:           {{0, 2}, {0, 3}},
	E:            {{3, 0}, {3, 1}},
	SE:           {{5, 1}, {5, 2}},
	S:            {{6, 3}, {7, 2}},
	SW:           {{5, 3}, {6, 1}},
	W:            {{4, 2}, {4, 3}},
	NW:           {{1, 0}, {1, 1}},
}

// Lookup returns the sheet cell for a frame. Frame indexes wrap around the
// length of the set.
func Lookup(f Frame) (Cell, error) {
	cells, ok := sets[f.Name]
	if !ok {
		return Cell{}, fmt.Errorf("unknown sprite %q", f.Name)
	}
	idx := f.Index % len(cells)
	if idx < 0 {
		idx += len(cells)
	}
	return cells[idx], nil
}

// Variant is a sprite sheet skin.
type Variant string

const (
	VariantClassic   Variant = "classic"
	VariantDog       Variant = "dog"
	VariantTora      Variant = "tora"
	VariantMaia      Variant = "maia"
	VariantVaporwave Variant = "vaporwave"
)

// DefaultVariant is used when no skin has been chosen.
const DefaultVariant = VariantClassic

// ErrUnknownVariant is returned by ParseVariant for names outside the closed set.
var ErrUnknownVariant = errors.New("unknown variant")

// Variants lists the available skins in menu order.
func Variants() []Variant {
	return []Variant{VariantClassic, VariantDog, VariantTora, VariantMaia, VariantVaporwave}
}

// ParseVariant validates a skin name.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// FileName returns the sprite sheet file name for the variant.
func (v Variant) FileName() string {
	return "oneko-" + string(v) + ".gif"
}
