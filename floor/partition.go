package floor

import (
	"fmt"

	"github.com/wfunc/dungeonfloor/rng"
	"github.com/wfunc/dungeonfloor/room"
)

// Region is an inclusive rectangle of grid slots.
type Region struct {
	StartRow, StopRow int
	StartCol, StopCol int
}

func (r Region) Contains(c room.Coord) bool {
	return c.Row >= r.StartRow && c.Row <= r.StopRow &&
		c.Col >= r.StartCol && c.Col <= r.StopCol
}

func (r Region) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", r.StartRow, r.StopRow, r.StartCol, r.StopCol)
}

// split bisects r at its midpoint, across rows when vertical is set.
func (r Region) split(vertical bool) (Region, Region) {
	a, b := r, r
	if vertical {
		half := (r.StopRow - r.StartRow) / 2
		a.StopRow = r.StartRow + half
		b.StartRow = r.StartRow + half + 1
	} else {
		half := (r.StopCol - r.StartCol) / 2
		a.StopCol = r.StartCol + half
		b.StartCol = r.StartCol + half + 1
	}
	return a, b
}

// Partition recursively splits region, places one room in every leaf and
// carves a path between the representatives of each pair of siblings. It
// returns the representative of the whole region, which is connected to
// every room placed beneath it.
//
// The leaf containing start always uses start itself and tags it RoleStart,
// so start must lie inside region for the floor to get a start room.
func Partition(g *Grid, src *rng.Source, start room.Coord, region Region, minSize int) (room.Coord, error) {
	p := partitioner{grid: g, src: src, start: start, minSize: minSize}
	return p.step(region)
}

type partitioner struct {
	grid    *Grid
	src     *rng.Source
	start   room.Coord
	minSize int
}

func (p *partitioner) step(region Region) (room.Coord, error) {
	if region.StopRow-region.StartRow <= p.minSize || region.StopCol-region.StartCol <= p.minSize {
		return p.leaf(region)
	}

	a, b := region.split(p.src.Chance(0.5))
	r1, err := p.step(a)
	if err != nil {
		return room.Coord{}, err
	}
	r2, err := p.step(b)
	if err != nil {
		return room.Coord{}, err
	}

	if err := CarvePath(p.grid, r1, r2, p.src); err != nil {
		return room.Coord{}, fmt.Errorf("partition %v: %w", region, err)
	}

	if p.src.Chance(0.5) {
		return r1, nil
	}
	return r2, nil
}

func (p *partitioner) leaf(region Region) (room.Coord, error) {
	isStart := region.Contains(p.start)

	pos := p.start
	if !isStart {
		pos = room.Coord{
			Row: p.src.Between(region.StartRow, region.StopRow),
			Col: p.src.Between(region.StartCol, region.StopCol),
		}
	}

	slot := p.grid.At(pos)
	if slot == nil {
		return room.Coord{}, fmt.Errorf("leaf %v at %v: %w", region, pos, ErrOutOfBounds)
	}
	if !slot.Initialized {
		role := room.RoleBasic
		if isStart {
			role = room.RoleStart
		}
		*slot = room.Generate(pos.Row, pos.Col, role, p.src)
	}
	if isStart {
		slot.Role = room.RoleStart
	}
	return pos, nil
}
