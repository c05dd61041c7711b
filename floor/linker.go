package floor

import "github.com/wfunc/dungeonfloor/room"

// Link opens a door on both sides of every edge shared by two initialized
// rooms. It must run once the grid is fully populated; running it again
// changes nothing.
func Link(g *Grid) {
	g.Each(func(c room.Coord, r *room.Room) {
		if !r.Initialized {
			return
		}
		for _, d := range room.Directions {
			n := g.At(c.Step(d))
			if n == nil || !n.Initialized {
				continue
			}
			r.OpenDoor(d)
			n.OpenDoor(d.Opposite())
		}
	})
}
