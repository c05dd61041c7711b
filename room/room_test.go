package room

import (
	"errors"
	"testing"

	"github.com/wfunc/dungeonfloor/rng"
)

// MockOccupants is a test double for the Occupants interface.
type MockOccupants struct {
	Capacity    int
	Spawned     int
	UpdateCalls int
	RenderCalls int
	Active      int
}

func (m *MockOccupants) Spawn(areaWidth, areaHeight, count int) {
	m.Spawned += count
	m.Active += count
}

func (m *MockOccupants) Update(areaWidth, areaHeight int) { m.UpdateCalls++ }
func (m *MockOccupants) Count() int                       { return m.Active }
func (m *MockOccupants) Render(deltaTime float64)         { m.RenderCalls++ }

// newMockFactory returns a factory and a pointer to the last manager it built.
func newMockFactory() (OccupantFactory, **MockOccupants) {
	var last *MockOccupants
	factory := func(capacity int) Occupants {
		last = &MockOccupants{Capacity: capacity}
		return last
	}
	return factory, &last
}

func TestDefault(t *testing.T) {
	r := Default()

	if r.Initialized || r.Loaded || r.Spawnable || r.Locked {
		t.Error("Default room should have every flag cleared")
	}
	if r.Role != RoleDefault {
		t.Errorf("Expected role %v, got %v", RoleDefault, r.Role)
	}
	for _, d := range Directions {
		if r.Doors[d].Active() || r.HasDoor(d) {
			t.Errorf("Default room should have no %s door", d)
		}
	}
}

func TestGenerate(t *testing.T) {
	r := Generate(5, 12, RoleHallway, rng.New(1))

	if !r.Initialized || !r.Spawnable || !r.Locked || r.Loaded {
		t.Errorf("Unexpected flags on generated room: %+v", r)
	}
	if r.Width != Width || r.Height != Height {
		t.Errorf("Expected %dx%d, got %dx%d", Width, Height, r.Width, r.Height)
	}
	if r.ID != "005-012" {
		t.Errorf("Expected id 005-012, got %s", r.ID)
	}
	if r.Coord() != (Coord{5, 12}) {
		t.Errorf("Unexpected coord %v", r.Coord())
	}
}

func TestGenerate_TileBorders(t *testing.T) {
	r := Generate(0, 0, RoleBasic, rng.New(3))
	last := [2]int{TileCols - 1, TileRows - 1}

	corners := map[[2]int]int{
		{0, 0}:             TileTopLeft,
		{last[0], 0}:       TileTopRight,
		{0, last[1]}:       TileBottomLeft,
		{last[0], last[1]}: TileBottomRight,
	}
	for pos, want := range corners {
		if got := r.Tiles[pos[0]][pos[1]]; got != want {
			t.Errorf("Tile %v = %d, want %d", pos, got, want)
		}
	}
	if r.Tiles[0][4] != TileLeftEdge || r.Tiles[last[0]][4] != TileRightEdge {
		t.Error("Side edges carry the wrong tiles")
	}
	if r.Tiles[4][0] != TileTopEdge || r.Tiles[4][last[1]] != TileBottomEdge {
		t.Error("Top or bottom edge carries the wrong tiles")
	}

	plain, interior := 0, 0
	for i := 1; i < last[0]; i++ {
		for j := 1; j < last[1]; j++ {
			interior++
			switch v := r.Tiles[i][j]; {
			case v == TilePlain:
				plain++
			case v < 0 || v > 2:
				t.Fatalf("Interior tile (%d,%d) = %d is outside the alphabet", i, j, v)
			}
		}
	}
	if ratio := float64(plain) / float64(interior); ratio < 0.6 || ratio > 0.9 {
		t.Errorf("Plain tile ratio %.2f is far from 0.75", ratio)
	}
}

func TestGenerate_TilesDeterministic(t *testing.T) {
	a := Generate(2, 2, RoleBasic, rng.New(99))
	b := Generate(2, 2, RoleBasic, rng.New(99))
	if a.Tiles != b.Tiles {
		t.Error("Same seed should yield the same tile map")
	}
}

func TestOpenDoor(t *testing.T) {
	r := Generate(1, 1, RoleBasic, rng.New(1))
	r.OpenDoor(South)

	if !r.HasDoor(South) || r.Configuration != [4]int{0, 1, 0, 0} {
		t.Fatalf("Unexpected configuration %v", r.Configuration)
	}
	want := Hitbox{X: Width/2 - DoorLength/2, Y: Height - DoorThickness, W: DoorLength, H: DoorThickness}
	if r.Doors[South] != want {
		t.Errorf("South door = %+v, want %+v", r.Doors[South], want)
	}
	if r.Doors[North].Active() {
		t.Error("North door should remain inactive")
	}
}

func TestLoad_SpawnsInBasicRoom(t *testing.T) {
	factory, last := newMockFactory()
	r := Generate(1, 1, RoleBasic, rng.New(1))

	if err := r.Load(factory, DefaultCapacity); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !r.Loaded {
		t.Error("Room should be loaded")
	}
	if *last == nil || (*last).Capacity != DefaultCapacity || (*last).Spawned != 1 {
		t.Fatalf("Expected one spawned occupant in a %d-capacity manager, got %+v", DefaultCapacity, *last)
	}
	if r.Occupants() != *last {
		t.Error("Room should own the manager it created")
	}
}

func TestLoad_NoOccupantsInHallway(t *testing.T) {
	factory, last := newMockFactory()
	r := Generate(1, 1, RoleHallway, rng.New(1))

	if err := r.Load(factory, DefaultCapacity); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *last != nil || r.Occupants() != nil {
		t.Error("Hallway rooms should not get an occupant manager")
	}
}

func TestLoad_ClearedRoomDoesNotRespawn(t *testing.T) {
	factory, last := newMockFactory()
	r := Generate(1, 1, RoleChallenge, rng.New(1))
	r.Spawnable = false

	if err := r.Load(factory, 5); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if (*last).Spawned != 0 {
		t.Errorf("Expected no spawns in a room that is no longer spawnable, got %d", (*last).Spawned)
	}
}

func TestLoad_Errors(t *testing.T) {
	empty := Default()
	if err := empty.Load(nil, 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}

	r := Generate(1, 1, RoleHallway, rng.New(1))
	if err := r.Load(nil, 1); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	if err := r.Load(nil, 1); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("Expected ErrAlreadyLoaded, got %v", err)
	}
}

func TestUnload(t *testing.T) {
	factory, _ := newMockFactory()
	r := Generate(1, 1, RoleBasic, rng.New(1))

	if err := r.Unload(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded, got %v", err)
	}

	r.Load(factory, 1)
	if err := r.Unload(); err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if r.Loaded || r.Occupants() != nil {
		t.Error("Unloaded room should not keep its occupants")
	}
}

func TestEntry(t *testing.T) {
	r := Generate(0, 0, RoleBasic, rng.New(1))
	const w, h = 64, 64

	cases := []struct {
		travel       Direction
		wantX, wantY int
	}{
		{North, 100, Height - h - DoorThickness - 1},
		{South, 100, DoorThickness + 1},
		{East, DoorThickness + 1, 200},
		{West, Width - DoorThickness - w - 1, 200},
	}
	for _, c := range cases {
		x, y := r.Entry(c.travel, 100, 200, w, h)
		if x != c.wantX || y != c.wantY {
			t.Errorf("Entry(%s) = (%d,%d), want (%d,%d)", c.travel, x, y, c.wantX, c.wantY)
		}
		// The arrival spot must not sit on the door leading back.
		back := DoorHitbox(c.travel.Opposite(), r.Width, r.Height)
		if back.Intersects(Hitbox{X: x, Y: y, W: w, H: h}) {
			t.Errorf("Entry(%s) places the actor on the %s door", c.travel, c.travel.Opposite())
		}
	}
}

func TestHitbox_Intersects(t *testing.T) {
	a := Hitbox{X: 0, Y: 0, W: 10, H: 10}

	if !a.Intersects(Hitbox{X: 5, Y: 5, W: 10, H: 10}) {
		t.Error("Overlapping boxes should intersect")
	}
	if a.Intersects(Hitbox{X: 10, Y: 0, W: 5, H: 5}) {
		t.Error("Touching edges should not intersect")
	}
	if a.Intersects(Hitbox{X: 2, Y: 2}) {
		t.Error("An inactive box should never intersect")
	}
}

func TestDirection(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite is not an involution for %s", d)
		}
		parsed, err := ParseDirection(d.String())
		if err != nil || parsed != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), parsed, err)
		}
		back := Coord{3, 3}.Step(d).Step(d.Opposite())
		if back != (Coord{3, 3}) {
			t.Errorf("Step(%s) then back landed on %v", d, back)
		}
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Error("Expected an error for an unknown direction")
	}
}
