package floor

import (
	"fmt"

	"github.com/wfunc/dungeonfloor/rng"
	"github.com/wfunc/dungeonfloor/room"
)

// CarvePath walks from one coordinate to the other, filling every empty
// slot it passes with a hallway room.
//
// Each step moves along the row with probability p (0.5 at first), along
// the column otherwise. Once the column matches the target p becomes 1 and
// the rest of the walk is vertical.
func CarvePath(g *Grid, from, to room.Coord, src *rng.Source) error {
	if !g.InBounds(from) || !g.InBounds(to) {
		return fmt.Errorf("carve %v -> %v: %w", from, to, ErrOutOfBounds)
	}
	if !g.At(from).Initialized && !g.At(to).Initialized {
		return fmt.Errorf("carve %v -> %v: %w", from, to, ErrEndpointsUninitialized)
	}

	carve(g, from, src)
	cur := from
	chance := 0.5
	for cur != to {
		if cur.Col == to.Col {
			chance = 1
		}
		if src.Chance(chance) && cur.Row != to.Row {
			cur.Row += sign(to.Row - cur.Row)
		} else if cur.Col != to.Col {
			cur.Col += sign(to.Col - cur.Col)
		}
		carve(g, cur, src)
	}
	return nil
}

func carve(g *Grid, c room.Coord, src *rng.Source) {
	if slot := g.At(c); !slot.Initialized {
		*slot = room.Generate(c.Row, c.Col, room.RoleHallway, src)
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
