package daemon

import (
	"log/slog"

	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/platform"
	"github.com/1broseidon/oneko/internal/sprite"
)

// spriteWindow adapts a platform.Backend to the engine's Window. Backend
// failures are logged and otherwise ignored.
type spriteWindow struct {
	backend    platform.Backend
	logger     *slog.Logger
	appearance engine.Appearance
	frame      sprite.Frame
	hasFrame   bool
}

func (w *spriteWindow) Place(p geometry.Point) {
	x, y := platform.WindowOrigin(p)
	if err := w.backend.SetWindowPosition(x, y); err != nil {
		w.logger.Debug("failed to move sprite window", "x", x, "y", y, "error", err)
	}
}

func (w *spriteWindow) Show(f sprite.Frame) {
	w.frame = f
	w.hasFrame = true
	w.paint()
}

func (w *spriteWindow) Restyle(a engine.Appearance) {
	w.appearance = a
	if w.hasFrame {
		w.paint()
	}
}

func (w *spriteWindow) paint() {
	if err := w.backend.ShowSprite(w.frame, w.appearance); err != nil {
		w.logger.Debug("failed to paint sprite", "sprite", w.frame.Name, "error", err)
	}
}
