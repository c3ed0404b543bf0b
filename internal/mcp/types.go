package mcp

import "github.com/1broseidon/oneko/internal/geometry"

// StatusInput is the input for get_companion_status and toggle_companion_sleep.
type StatusInput struct{}

// CompanionStatus is the companion state reported by every tool that changes
// or reads it.
type CompanionStatus struct {
	Mode          string         `json:"mode"`
	LastNonSleep  string         `json:"last_non_sleep_mode"`
	Variant       string         `json:"variant"`
	Inverted      bool           `json:"inverted"`
	Position      geometry.Point `json:"position"`
	Target        geometry.Point `json:"target"`
	Animation     string         `json:"animation"`
	Sprite        string         `json:"sprite"`
	Grabbing      bool           `json:"grabbing"`
	RoamEdge      string         `json:"roam_edge,omitempty"`
	DisplayID     int            `json:"display_id"`
	UptimeSeconds int64          `json:"uptime_seconds"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayInfo describes one display and where the companion would sleep on it.
type DisplayInfo struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Primary     bool           `json:"primary"`
	Bounds      geometry.Rect  `json:"bounds"`
	WorkArea    geometry.Rect  `json:"work_area"`
	TaskbarEdge string         `json:"taskbar_edge"`
	SleepTarget geometry.Point `json:"sleep_target"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays"`
}

// SetModeInput is the input for the set_companion_mode tool.
type SetModeInput struct {
	Mode string `json:"mode" jsonschema:"required,Behavior mode: follow (chase the pointer), taskbar (roam along the taskbar) or sleep (curl up next to the taskbar)"`
}

// SetVariantInput is the input for the set_companion_variant tool.
type SetVariantInput struct {
	Variant string `json:"variant" jsonschema:"required,Sprite skin: classic, dog, tora, maia or vaporwave"`
}

// SetInvertedInput is the input for the set_companion_inverted tool.
type SetInvertedInput struct {
	Inverted *bool `json:"inverted,omitempty" jsonschema:"Color inversion on or off. Omit to toggle."`
}
