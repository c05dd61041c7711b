package room

// Hitbox is an axis-aligned region in a room's local pixel space.
// A zero-sized hitbox is inactive and never intersects anything.
type Hitbox struct {
	X, Y, W, H int
}

func (h Hitbox) Active() bool {
	return h.W > 0 && h.H > 0
}

func (h Hitbox) Intersects(o Hitbox) bool {
	if !h.Active() || !o.Active() {
		return false
	}
	return h.X < o.X+o.W && o.X < h.X+h.W &&
		h.Y < o.Y+o.H && o.Y < h.Y+h.H
}

// DoorHitbox returns the door region on side d of a room of the given size,
// centered on that edge.
func DoorHitbox(d Direction, width, height int) Hitbox {
	switch d {
	case North:
		return Hitbox{X: width/2 - DoorLength/2, Y: 0, W: DoorLength, H: DoorThickness}
	case South:
		return Hitbox{X: width/2 - DoorLength/2, Y: height - DoorThickness, W: DoorLength, H: DoorThickness}
	case East:
		return Hitbox{X: width - DoorThickness, Y: height/2 - DoorLength/2, W: DoorThickness, H: DoorLength}
	case West:
		return Hitbox{X: 0, Y: height/2 - DoorLength/2, W: DoorThickness, H: DoorLength}
	}
	return Hitbox{}
}
