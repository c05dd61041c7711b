package floor

import (
	"fmt"

	"github.com/wfunc/dungeonfloor/rng"
	"github.com/wfunc/dungeonfloor/room"
)

// DistributeRole hands role to count randomly chosen basic or hallway rooms,
// each picked at most once. When fewer rooms are eligible every one of them
// is reassigned and ErrRoleOverRequest is returned alongside the number
// actually assigned.
func DistributeRole(g *Grid, src *rng.Source, count int, role room.Role) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	var eligible []room.Coord
	g.Each(func(c room.Coord, r *room.Room) {
		if r.Initialized && (r.Role == room.RoleBasic || r.Role == room.RoleHallway) {
			eligible = append(eligible, c)
		}
	})

	var err error
	if count > len(eligible) {
		err = fmt.Errorf("%w: %d %s rooms requested, %d eligible", ErrRoleOverRequest, count, role, len(eligible))
		count = len(eligible)
	}

	for i := 0; i < count; i++ {
		pos := src.Between(0, len(eligible)-1)
		g.At(eligible[pos]).Role = role
		eligible = append(eligible[:pos], eligible[pos+1:]...)
	}
	return count, err
}
