package room

import "fmt"

// Direction indexes the four doors of a room, in the fixed order N, S, E, W.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions lists every side in door-check order.
var Directions = [4]Direction{North, South, East, West}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// ParseDirection accepts the names produced by String.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Coord addresses a grid slot.
type Coord struct {
	Row, Col int
}

// Step returns the neighbouring coordinate in direction d. It may fall
// outside the grid.
func (c Coord) Step(d Direction) Coord {
	switch d {
	case North:
		return Coord{c.Row - 1, c.Col}
	case South:
		return Coord{c.Row + 1, c.Col}
	case East:
		return Coord{c.Row, c.Col + 1}
	case West:
		return Coord{c.Row, c.Col - 1}
	}
	return c
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
