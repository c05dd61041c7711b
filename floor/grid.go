package floor

import "github.com/wfunc/dungeonfloor/room"

// Grid is a fixed rows×cols arena of room slots stored row-major.
// Slots are never reallocated, so pointers returned by At stay valid for
// the grid's lifetime.
type Grid struct {
	rows, cols int
	slots      []room.Room
}

func NewGrid(rows, cols int) *Grid {
	g := &Grid{
		rows:  rows,
		cols:  cols,
		slots: make([]room.Room, rows*cols),
	}
	g.Reset()
	return g
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Reset empties every slot.
func (g *Grid) Reset() {
	for i := range g.slots {
		g.slots[i] = room.Default()
	}
}

func (g *Grid) InBounds(c room.Coord) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// At returns the slot at c, or nil when c is outside the grid.
func (g *Grid) At(c room.Coord) *room.Room {
	if !g.InBounds(c) {
		return nil
	}
	return &g.slots[c.Row*g.cols+c.Col]
}

// Initialized reports whether c is inside the grid and holds a room.
func (g *Grid) Initialized(c room.Coord) bool {
	r := g.At(c)
	return r != nil && r.Initialized
}

// Each visits every slot in row-major order.
func (g *Grid) Each(fn func(c room.Coord, r *room.Room)) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			fn(room.Coord{Row: row, Col: col}, &g.slots[row*g.cols+col])
		}
	}
}

// CountRoles tallies initialized rooms by role.
func (g *Grid) CountRoles() map[room.Role]int {
	counts := make(map[room.Role]int)
	g.Each(func(_ room.Coord, r *room.Room) {
		if r.Initialized {
			counts[r.Role]++
		}
	})
	return counts
}
