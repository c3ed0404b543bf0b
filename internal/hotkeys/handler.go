package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/oneko/internal/ipc"
	"github.com/1broseidon/oneko/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Companion is the part of the daemon the hotkeys drive.
type Companion interface {
	ToggleSleep() (ipc.StatusData, error)
	CycleMode() (ipc.StatusData, error)
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu        *xgbutil.XUtil
	root      xproto.Window
	companion Companion
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, companion Companion) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:        xu,
		root:      root,
		companion: companion,
	}
}

// RegisterSleep registers the hotkey that toggles Sleep mode, the keyboard
// equivalent of double-clicking the sprite.
func (h *Handler) RegisterSleep(keySequence string) error {
	return h.RegisterFunc(keySequence, func() {
		status, err := h.companion.ToggleSleep()
		if err != nil {
			log.Printf("Sleep hotkey failed: %v", err)
			return
		}
		log.Printf("Sleep hotkey: mode is now %s", status.Mode)
	})
}

// RegisterModeCycle registers the hotkey that cycles follow, taskbar and
// sleep.
func (h *Handler) RegisterModeCycle(keySequence string) error {
	if err := h.RegisterFunc(keySequence, func() {
		status, err := h.companion.CycleMode()
		if err != nil {
			log.Printf("Mode hotkey failed: %v", err)
			return
		}
		log.Printf("Mode hotkey: switched to %s", status.Mode)
	}); err != nil {
		return fmt.Errorf("failed to register mode hotkey: %w", err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 backend")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
