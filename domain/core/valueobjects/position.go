package valueobjects

import "math"

// Position is the 2D placement of an artifact on the canvas, together
// with the velocity and pin fields the force simulation works with.
// While a node is gripped its position is pinned (FX/FY set) and the
// simulation must exclude it from velocity integration; releasing the
// grip clears the pin. Only persisted coordinates are authoritative,
// never the simulation's transient state.
type Position struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx,omitempty"`
	VY float64 `json:"vy,omitempty"`

	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

// NewPosition creates a position at the given coordinates
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Pin fixes the position at the given coordinates for the duration of a drag
func (p Position) Pin(x, y float64) Position {
	fx, fy := x, y
	p.X = x
	p.Y = y
	p.FX = &fx
	p.FY = &fy
	p.VX = 0
	p.VY = 0
	return p
}

// Unpin releases a drag pin, letting the simulation move the node again
func (p Position) Unpin() Position {
	p.FX = nil
	p.FY = nil
	return p
}

// IsPinned reports whether the position is fixed for the simulation
func (p Position) IsPinned() bool {
	return p.FX != nil && p.FY != nil
}

// DistanceTo returns the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Hypot(dx, dy)
}

// Equals checks two positions for coordinate equality
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}
