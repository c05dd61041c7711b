// state/interfaces.go
package state

import "github.com/wfunc/dungeonfloor/room"

// Actor is the player as far as room transitions are concerned.
type Actor interface {
	Hitbox() room.Hitbox
	Position() (x, y int)
	SetPosition(x, y int)
}

// Collider decides whether an actor's region touches a door region.
type Collider interface {
	Intersects(actor, door room.Hitbox) bool
}

// CollisionFunc adapts a function to Collider.
type CollisionFunc func(actor, door room.Hitbox) bool

func (f CollisionFunc) Intersects(actor, door room.Hitbox) bool {
	return f(actor, door)
}

// AABB is the default collider: plain axis-aligned overlap.
var AABB Collider = CollisionFunc(func(actor, door room.Hitbox) bool {
	return actor.Intersects(door)
})
