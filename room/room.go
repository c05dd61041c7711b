// room/room.go
package room

import (
	"errors"
	"fmt"

	"github.com/wfunc/dungeonfloor/rng"
)

// Role is the gameplay category of a room. RoleDefault marks an unused slot.
type Role int

const (
	RoleDefault Role = iota
	RoleBasic
	RoleHallway
	RoleStart
	RoleKey
	RoleExit
	RoleShop
	RoleChallenge
)

var roleNames = map[Role]string{
	RoleDefault:   "default",
	RoleBasic:     "basic",
	RoleHallway:   "hallway",
	RoleStart:     "start",
	RoleKey:       "key",
	RoleExit:      "exit",
	RoleShop:      "shop",
	RoleChallenge: "challenge",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Roles lists every role in declaration order.
var Roles = []Role{RoleDefault, RoleBasic, RoleHallway, RoleStart, RoleKey, RoleExit, RoleShop, RoleChallenge}

// Room geometry. Every room has the same pixel size in this design.
const (
	Width  = 1280
	Height = 960

	DoorLength    = 128
	DoorThickness = 32

	TileCols = 20
	TileRows = 15

	// DefaultCapacity is the occupant manager size for rooms that hold occupants.
	DefaultCapacity = 100
)

// Tile indices of the decorative tile map.
const (
	TilePlain       = 3
	TileLeftEdge    = 4
	TileRightEdge   = 5
	TileTopEdge     = 6
	TileBottomEdge  = 7
	TileTopLeft     = 8
	TileTopRight    = 9
	TileBottomLeft  = 10
	TileBottomRight = 11

	plainTileChance = 0.75
)

var (
	ErrNotInitialized = errors.New("room is not initialized")
	ErrAlreadyLoaded  = errors.New("room is already loaded")
	ErrNotLoaded      = errors.New("room is not loaded")
)

// Room is the content of one grid slot.
type Room struct {
	Row, Col      int
	Width, Height int
	ID            string
	Role          Role

	Initialized bool
	Loaded      bool
	Spawnable   bool
	Locked      bool

	// Doors and Configuration are indexed by Direction.
	Doors         [4]Hitbox
	Configuration [4]int

	// Tiles is indexed [column][row].
	Tiles [TileCols][TileRows]int

	occupants Occupants
}

// Default returns an empty grid slot.
func Default() Room {
	return Room{
		Row:    -1,
		Col:    -1,
		Width:  -1,
		Height: -1,
		Role:   RoleDefault,
	}
}

// Generate builds an initialized room at (row, col). The tile map is drawn
// from src here, once, so the room looks the same every time it is shown.
func Generate(row, col int, role Role, src *rng.Source) Room {
	r := Room{
		Row:         row,
		Col:         col,
		Width:       Width,
		Height:      Height,
		ID:          FormatID(row, col),
		Role:        role,
		Initialized: true,
		Spawnable:   true,
		Locked:      true,
	}

	for i := 0; i < TileCols; i++ {
		for j := 0; j < TileRows; j++ {
			r.Tiles[i][j] = pickTile(i, j, src)
		}
	}
	return r
}

func pickTile(i, j int, src *rng.Source) int {
	lastCol, lastRow := TileCols-1, TileRows-1
	switch {
	case i == 0:
		switch j {
		case 0:
			return TileTopLeft
		case lastRow:
			return TileBottomLeft
		}
		return TileLeftEdge
	case i == lastCol:
		switch j {
		case 0:
			return TileTopRight
		case lastRow:
			return TileBottomRight
		}
		return TileRightEdge
	case j == 0:
		return TileTopEdge
	case j == lastRow:
		return TileBottomEdge
	}
	if src.Chance(plainTileChance) {
		return TilePlain
	}
	return src.Between(0, 2)
}

// FormatID renders the textual id of a slot, zero padded to three digits
// on each side.
func FormatID(row, col int) string {
	return fmt.Sprintf("%03d-%03d", row, col)
}

func (r *Room) Coord() Coord {
	return Coord{Row: r.Row, Col: r.Col}
}

// OpenDoor activates the door on side d and records it in Configuration.
func (r *Room) OpenDoor(d Direction) {
	r.Doors[d] = DoorHitbox(d, r.Width, r.Height)
	r.Configuration[d] = 1
}

// HasDoor reports whether the door on side d is active.
func (r *Room) HasDoor(d Direction) bool {
	return r.Configuration[d] == 1
}

// Occupants returns the room's occupant manager, nil when the room is not
// loaded or holds no occupants.
func (r *Room) Occupants() Occupants {
	return r.occupants
}

// Load makes the room the active one. Basic and challenge rooms get their
// own occupant manager and, while still spawnable, one occupant.
func (r *Room) Load(newOccupants OccupantFactory, capacity int) error {
	if !r.Initialized {
		return fmt.Errorf("load %s: %w", r.describe(), ErrNotInitialized)
	}
	if r.Loaded {
		return fmt.Errorf("load %s: %w", r.ID, ErrAlreadyLoaded)
	}

	r.occupants = nil
	switch r.Role {
	case RoleBasic, RoleChallenge:
		if newOccupants != nil {
			r.occupants = newOccupants(capacity)
		}
	}

	if r.Spawnable && r.occupants != nil {
		r.occupants.Spawn(r.Width, r.Height, 1)
	}

	r.Loaded = true
	return nil
}

// Unload releases the occupant manager. A room that is not loaded has none.
func (r *Room) Unload() error {
	if !r.Loaded {
		return fmt.Errorf("unload %s: %w", r.describe(), ErrNotLoaded)
	}
	r.occupants = nil
	r.Loaded = false
	return nil
}

// Entry returns where an actor of the given size lands in r after walking
// through a door heading in direction travel. The position on the other
// axis is kept, so the actor appears just past the matching door.
func (r *Room) Entry(travel Direction, x, y, actorWidth, actorHeight int) (int, int) {
	switch travel {
	case North:
		return x, r.Height - actorHeight - DoorThickness - 1
	case South:
		return x, DoorThickness + 1
	case East:
		return DoorThickness + 1, y
	case West:
		return r.Width - DoorThickness - actorWidth - 1, y
	}
	return x, y
}

func (r *Room) describe() string {
	if r.ID == "" {
		return "empty slot"
	}
	return r.ID
}
