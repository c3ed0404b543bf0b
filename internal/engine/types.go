package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/sprite"
)

// Mode is the user-selected behavior. Values match the persisted settings.
type Mode string

const (
	ModeFollow      Mode = "follow"
	ModeSleep       Mode = "sleep"
	ModeTaskbarRoam Mode = "taskbar"
)

// ErrUnknownMode is returned by ParseMode for names outside the closed set.
var ErrUnknownMode = errors.New("unknown mode")

// Modes lists every mode in menu order.
func Modes() []Mode {
	return []Mode{ModeFollow, ModeSleep, ModeTaskbarRoam}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Next returns the mode after m when cycling follow -> taskbar -> sleep.
func (m Mode) Next() Mode {
	switch m {
	case ModeFollow:
		return ModeTaskbarRoam
	case ModeTaskbarRoam:
		return ModeSleep
	default:
		return ModeFollow
	}
}

// Animation is a self-expiring idle animation.
type Animation int

const (
	AnimNone Animation = iota
	AnimSleeping
	AnimScratchSelf
	AnimScratchWallN
	AnimScratchWallS
	AnimScratchWallE
	AnimScratchWallW
	AnimTired
	AnimAlert
)

// String returns the string representation of the animation
func (a Animation) String() string {
	switch a {
	case AnimNone:
		return "none"
	case AnimSleeping:
		return "sleeping"
	case AnimScratchSelf:
		return "scratchSelf"
	case AnimScratchWallN:
		return "scratchWallN"
	case AnimScratchWallS:
		return "scratchWallS"
	case AnimScratchWallE:
		return "scratchWallE"
	case AnimScratchWallW:
		return "scratchWallW"
	case AnimTired:
		return "tired"
	case AnimAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// Sprite returns the sprite set drawn for the animation.
func (a Animation) Sprite() sprite.Name {
	switch a {
	case AnimSleeping:
		return sprite.Sleeping
	case AnimScratchSelf:
		return sprite.ScratchSelf
	case AnimScratchWallN:
		return sprite.ScratchWallN
	case AnimScratchWallS:
		return sprite.ScratchWallS
	case AnimScratchWallE:
		return sprite.ScratchWallE
	case AnimScratchWallW:
		return sprite.ScratchWallW
	case AnimTired:
		return sprite.Tired
	case AnimAlert:
		return sprite.Alert
	default:
		return sprite.Idle
	}
}

// wallScratch maps a taskbar edge to the scratch animation facing it.
func wallScratch(edge geometry.Edge) Animation {
	switch edge {
	case geometry.EdgeTop:
		return AnimScratchWallN
	case geometry.EdgeBottom:
		return AnimScratchWallS
	case geometry.EdgeLeft:
		return AnimScratchWallW
	case geometry.EdgeRight:
		return AnimScratchWallE
	default:
		return AnimNone
	}
}

// frameBudgets is the number of frames an idle animation plays before it
// falls back to plain idle. Sleeping only expires outside Sleep mode.
var frameBudgets = map[Animation]int{
	AnimScratchSelf:  10,
	AnimScratchWallN: 10,
	AnimScratchWallS: 10,
	AnimScratchWallE: 10,
	AnimScratchWallW: 10,
	AnimTired:        13,
	AnimAlert:        7,
	AnimSleeping:     192,
}

// FrameBudget returns the frame budget of a, and false for animations that
// never expire on their own.
func FrameBudget(a Animation) (int, bool) {
	n, ok := frameBudgets[a]
	return n, ok
}

// Appearance is the cosmetic skin. It never affects movement.
type Appearance struct {
	Variant  sprite.Variant `json:"variant"`
	Inverted bool           `json:"inverted"`
}

// State is the companion's mutable state. It is owned by the Engine and only
// handed out as a copy.
type State struct {
	Position     geometry.Point
	Target       geometry.Point
	Mode         Mode
	LastNonSleep Mode

	IdleAnimation Animation
	IdleFrame     int
	IdleTime      int
	FrameCount    int
	Shown         sprite.Frame

	Grabbing bool
	Settled  bool
	Nudge    bool

	Roam       *geometry.RoamBand
	RoamTarget *geometry.Point
	RoamDwell  int

	Appearance Appearance
}

func (s State) clone() State {
	if s.Roam != nil {
		band := *s.Roam
		s.Roam = &band
	}
	if s.RoamTarget != nil {
		target := *s.RoamTarget
		s.RoamTarget = &target
	}
	return s
}
