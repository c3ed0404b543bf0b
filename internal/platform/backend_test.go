package platform

import (
	"testing"

	"github.com/1broseidon/oneko/internal/geometry"
)

func TestWindowOrigin(t *testing.T) {
	tests := []struct {
		center geometry.Point
		x, y   int
	}{
		{geometry.Point{X: 100, Y: 100}, 84, 84},
		{geometry.Point{X: 100.4, Y: 99.6}, 84, 84},
		{geometry.Point{X: 100.5, Y: 16}, 85, 0},
		{geometry.Point{X: -1920 + 48, Y: 48}, -1888, 32},
	}
	for _, tt := range tests {
		x, y := WindowOrigin(tt.center)
		if x != tt.x || y != tt.y {
			t.Fatalf("WindowOrigin(%+v) = %d,%d; want %d,%d", tt.center, x, y, tt.x, tt.y)
		}
	}
}
