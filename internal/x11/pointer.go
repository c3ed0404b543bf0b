package x11

import (
	"fmt"

	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/BurntSushi/xgb/xproto"
)

// Pointer returns the pointer position in root coordinates.
func (c *Connection) Pointer() (geometry.Point, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return geometry.Point{X: float64(reply.RootX), Y: float64(reply.RootY)}, nil
}
