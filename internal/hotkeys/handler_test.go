package hotkeys

import (
	"strings"
	"testing"

	"github.com/1broseidon/oneko/internal/ipc"
)

type fakeCompanion struct{}

func (fakeCompanion) ToggleSleep() (ipc.StatusData, error) { return ipc.StatusData{Mode: "sleep"}, nil }
func (fakeCompanion) CycleMode() (ipc.StatusData, error)   { return ipc.StatusData{Mode: "taskbar"}, nil }

func TestHandlerWithoutX11Backend(t *testing.T) {
	h := NewHandler(nil, fakeCompanion{})

	if err := h.RegisterSleep("Mod4-Mod1-z"); err == nil || !strings.Contains(err.Error(), "X11 backend") {
		t.Fatalf("RegisterSleep err = %v", err)
	}
	if err := h.RegisterModeCycle("Mod4-Mod1-m"); err == nil || !strings.Contains(err.Error(), "mode hotkey") {
		t.Fatalf("RegisterModeCycle err = %v", err)
	}
}
