package state

import "github.com/wfunc/dungeonfloor/room"

// Player is a rectangular actor positioned by its top-left corner.
type Player struct {
	X, Y          int
	Width, Height int
}

func NewPlayer(width, height int) *Player {
	return &Player{Width: width, Height: height}
}

func (p *Player) Hitbox() room.Hitbox {
	return room.Hitbox{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

func (p *Player) Position() (int, int) {
	return p.X, p.Y
}

func (p *Player) SetPosition(x, y int) {
	p.X, p.Y = x, y
}

// Center places the player in the middle of r.
func (p *Player) Center(r *room.Room) {
	p.SetPosition(r.Width/2-p.Width/2, r.Height/2-p.Height/2)
}

// StandOn places the player on the door of r facing d.
func (p *Player) StandOn(r *room.Room, d room.Direction) {
	door := r.Doors[d]
	p.SetPosition(door.X+door.W/2-p.Width/2, door.Y+door.H/2-p.Height/2)
}
