package state

import (
	"fmt"

	"github.com/wfunc/dungeonfloor/floor"
	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/room"
)

// Options configures a Dungeon.
type Options struct {
	// Occupants builds the occupant manager of every loaded room. Nil means
	// rooms never hold occupants.
	Occupants room.OccupantFactory
	Capacity  int
	// Collider defaults to AABB.
	Collider Collider
}

// Dungeon tracks the current room of a floor and moves the player between
// rooms. A room can only be left once its occupants are gone.
type Dungeon struct {
	floor   *floor.Floor
	current *room.Room
	player  Actor
	opts    Options

	machine *BaseStateMachine
	sealed  *SealedState
	cleared *ClearedState
}

// NewDungeon loads the start room of f and makes it current.
func NewDungeon(f *floor.Floor, player Actor, opts Options) (*Dungeon, error) {
	if opts.Collider == nil {
		opts.Collider = AABB
	}
	if opts.Capacity <= 0 {
		opts.Capacity = room.DefaultCapacity
	}

	start := f.Room(f.Start)
	if start == nil {
		return nil, fmt.Errorf("start %v: %w", f.Start, floor.ErrOutOfBounds)
	}
	if err := start.Load(opts.Occupants, opts.Capacity); err != nil {
		return nil, err
	}

	d := &Dungeon{floor: f, player: player, opts: opts}
	d.enterState(start)
	return d, nil
}

func (d *Dungeon) Floor() *floor.Floor { return d.floor }
func (d *Dungeon) Current() *room.Room { return d.current }
func (d *Dungeon) State() State        { return d.machine.GetCurrentState() }

// OccupantCount is the number of occupants left in the current room.
func (d *Dungeon) OccupantCount() int {
	if occ := d.current.Occupants(); occ != nil {
		return occ.Count()
	}
	return 0
}

// Tick advances the current room by one frame. It reports whether the
// current room changed. Errors leave the current room as it was.
func (d *Dungeon) Tick() (bool, error) {
	cur := d.current
	if occ := cur.Occupants(); occ != nil {
		occ.Update(cur.Width, cur.Height)
	}

	count := d.OccupantCount()
	if count < 0 {
		logger.Log.Errorf("Room %s reports %d occupants, treating it as cleared", cur.ID, count)
	}
	if count > 0 {
		d.machine.GetCurrentState().OnUpdate()
		return false, nil
	}

	if d.machine.GetCurrentState() != State(d.cleared) {
		if err := d.machine.ChangeState(d.cleared); err != nil {
			return false, fmt.Errorf("clear room %s: %w", cur.ID, err)
		}
	}
	return d.ChangeRooms()
}

// ChangeRooms moves the player through the first door, in N, S, E, W order,
// that the player touches and that leads to a room. It reports whether the
// room changed.
func (d *Dungeon) ChangeRooms() (bool, error) {
	cur := d.current
	at := cur.Coord()
	for _, dir := range room.Directions {
		if !cur.HasDoor(dir) || !d.opts.Collider.Intersects(d.player.Hitbox(), cur.Doors[dir]) {
			continue
		}
		next := d.floor.Room(at.Step(dir))
		if next == nil || !next.Initialized {
			continue
		}
		if err := d.enter(next, dir); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (d *Dungeon) enter(next *room.Room, travel room.Direction) error {
	cur := d.current
	if err := next.Load(d.opts.Occupants, d.opts.Capacity); err != nil {
		return fmt.Errorf("move %s from %s: %w", travel, cur.ID, err)
	}
	if err := cur.Unload(); err != nil {
		if rollback := next.Unload(); rollback != nil {
			logger.Log.Errorf("Rolling back load of %s: %v", next.ID, rollback)
		}
		return fmt.Errorf("move %s from %s: %w", travel, cur.ID, err)
	}

	x, y := d.player.Position()
	hb := d.player.Hitbox()
	d.player.SetPosition(next.Entry(travel, x, y, hb.W, hb.H))

	logger.Log.Debugf("Moved %s from room %s to %s", travel, cur.ID, next.ID)
	d.enterState(next)
	return nil
}

func (d *Dungeon) enterState(r *room.Room) {
	d.current = r
	d.sealed = NewSealedState(r)
	d.cleared = NewClearedState(r)
	d.machine = NewBaseStateMachine(d.sealed)
	d.machine.AddTransition(d.sealed, d.cleared, func() bool {
		return d.OccupantCount() <= 0
	})
}

// Render draws the occupants of the current room.
func (d *Dungeon) Render(deltaTime float64) {
	if occ := d.current.Occupants(); occ != nil {
		occ.Render(deltaTime)
	}
}

// Close unloads the current room.
func (d *Dungeon) Close() error {
	if !d.current.Loaded {
		return nil
	}
	return d.current.Unload()
}
