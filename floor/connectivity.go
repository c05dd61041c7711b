package floor

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/wfunc/dungeonfloor/room"
)

// Reachable returns every room reachable from start through active doors.
func Reachable(g *Grid, start room.Coord) mapset.Set[room.Coord] {
	reachable := mapset.New[room.Coord]()
	queue := []room.Coord{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		r := g.At(current)
		if r == nil || !r.Initialized || reachable.Has(current) {
			continue
		}
		reachable.Put(current)

		for _, d := range room.Directions {
			if !r.HasDoor(d) {
				continue
			}
			if next := current.Step(d); g.Initialized(next) && !reachable.Has(next) {
				queue = append(queue, next)
			}
		}
	}
	return reachable
}

// CheckConnectivity fails with ErrDisconnected naming the first room that
// cannot be reached from start.
func CheckConnectivity(g *Grid, start room.Coord) error {
	reachable := Reachable(g, start)

	var err error
	g.Each(func(c room.Coord, r *room.Room) {
		if err == nil && r.Initialized && !reachable.Has(c) {
			err = fmt.Errorf("room %s: %w", r.ID, ErrDisconnected)
		}
	})
	return err
}
