// services/run_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/dungeonfloor/floor"
	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/models"
	"github.com/wfunc/dungeonfloor/persistence"
	"github.com/wfunc/dungeonfloor/room"
	"github.com/wfunc/dungeonfloor/state"
)

var (
	ErrNotStarted = errors.New("run not started")
	ErrNoDoor     = errors.New("no door on that side")
)

// Metrics is the part of the monitor a run reports to.
type Metrics interface {
	ObserveFloor(index int, took time.Duration, roles map[string]int, overRequest bool)
	IncRoomTransitions()
}

// Listener is told about room and floor changes after they happen.
type Listener interface {
	RoomChanged(snap Snapshot)
	FloorChanged(snap Snapshot)
}

// Snapshot 当前运行状态
type Snapshot struct {
	RunID     string `json:"run_id"`
	Seed      int64  `json:"seed"`
	Floor     int    `json:"floor"`
	Room      string `json:"room"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Role      string `json:"role"`
	State     string `json:"state"`
	Locked    bool   `json:"locked"`
	Occupants int    `json:"occupants"`
	KeyFound  bool   `json:"key_found"`
	PlayerX   int    `json:"player_x"`
	PlayerY   int    `json:"player_y"`
	Dump      string `json:"dump"`
}

type RunOptions struct {
	StartFloor   int
	PlayerWidth  int
	PlayerHeight int
	Occupants    room.OccupantFactory
	Capacity     int
}

// RunService owns one run through the dungeon: the floor being played, the
// player and the room state machine. It is safe for concurrent use.
type RunService struct {
	id      string
	seed    int64
	opts    RunOptions
	gen     *floor.Generator
	store   persistence.Store
	metrics Metrics

	player   *state.Player
	floor    *floor.Floor
	dungeon  *state.Dungeon
	listener Listener
	mutex    sync.Mutex
}

// NewRunService prepares a run. seed is only recorded; randomness comes from
// the generator's source. store and metrics may be nil.
func NewRunService(gen *floor.Generator, seed int64, store persistence.Store, metrics Metrics, opts RunOptions) *RunService {
	if opts.PlayerWidth <= 0 {
		opts.PlayerWidth = 64
	}
	if opts.PlayerHeight <= 0 {
		opts.PlayerHeight = 64
	}
	return &RunService{
		id:      uuid.NewString(),
		seed:    seed,
		opts:    opts,
		gen:     gen,
		store:   store,
		metrics: metrics,
		player:  state.NewPlayer(opts.PlayerWidth, opts.PlayerHeight),
	}
}

func (s *RunService) ID() string { return s.id }

// SetListener registers the receiver of change notifications.
func (s *RunService) SetListener(l Listener) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.listener = l
}

// Start generates the first floor and enters its start room.
func (s *RunService) Start() error {
	s.mutex.Lock()
	err := s.enterFloor(s.opts.StartFloor)
	snap, l := s.snapshot(), s.listener
	s.mutex.Unlock()

	if err != nil {
		return err
	}
	if l != nil {
		l.FloorChanged(snap)
	}
	return nil
}

// enterFloor generates floor index around the grid centre and enters it.
func (s *RunService) enterFloor(index int) error {
	began := time.Now()
	f, err := s.gen.Generate(index, s.gen.Center())
	if err != nil {
		return fmt.Errorf("generate floor %d: %w", index, err)
	}
	took := time.Since(began)

	d, err := state.NewDungeon(f, s.player, state.Options{
		Occupants: s.opts.Occupants,
		Capacity:  s.opts.Capacity,
	})
	if err != nil {
		f.Destroy()
		return fmt.Errorf("enter floor %d: %w", index, err)
	}
	s.player.Center(d.Current())

	if s.metrics != nil {
		s.metrics.ObserveFloor(index, took, f.RoleCounts(), errors.Is(f.Warnings, floor.ErrRoleOverRequest))
	}
	s.record(f)

	s.floor, s.dungeon = f, d
	return nil
}

func (s *RunService) record(f *floor.Floor) {
	if s.store == nil {
		return
	}
	rec := &models.FloorRecord{
		RunID:    s.id,
		Floor:    f.Number,
		Seed:     s.seed,
		StartRow: f.Start.Row,
		StartCol: f.Start.Col,
		Bounds:   f.Bounds.String(),
		Rooms:    f.RoleCounts(),
		Dump:     f.Dump(),
	}
	if f.Warnings != nil {
		rec.Warnings = f.Warnings.Error()
	}
	if err := s.store.SaveFloorRecord(rec); err != nil {
		logger.Log.Warnf("Run %s: failed to record floor %d: %v", s.id, f.Number, err)
	}
}

// Tick advances the run by one frame. Entering the key room picks up the
// key; entering the exit room with the key descends to the next floor.
func (s *RunService) Tick() error {
	s.mutex.Lock()
	if s.dungeon == nil {
		s.mutex.Unlock()
		return ErrNotStarted
	}

	changed, err := s.dungeon.Tick()
	if err != nil {
		s.mutex.Unlock()
		logger.Log.Errorf("Run %s floor %d: %v", s.id, s.floor.Number, err)
		return err
	}
	descended := false
	if changed {
		if s.metrics != nil {
			s.metrics.IncRoomTransitions()
		}
		descended, err = s.progress()
	}
	snap, l := s.snapshot(), s.listener
	s.mutex.Unlock()

	if err != nil {
		return err
	}
	if l != nil {
		switch {
		case descended:
			l.FloorChanged(snap)
		case changed:
			l.RoomChanged(snap)
		}
	}
	return nil
}

func (s *RunService) progress() (bool, error) {
	cur := s.dungeon.Current()
	switch cur.Role {
	case room.RoleKey:
		if !s.floor.KeyFound {
			s.floor.KeyFound = true
			logger.Log.Infof("Run %s: key found on floor %d in room %s", s.id, s.floor.Number, cur.ID)
		}
	case room.RoleExit:
		if !s.floor.KeyFound {
			logger.Log.Infof("Run %s: exit %s is sealed until the key is found", s.id, cur.ID)
			return false, nil
		}
		return true, s.descend()
	}
	return false, nil
}

// descend tears down the current floor and enters the next one. On failure
// the run stays on the old floor.
func (s *RunService) descend() error {
	prev, prevDungeon := s.floor, s.dungeon
	x, y := s.player.Position()
	if err := prevDungeon.Close(); err != nil {
		return err
	}
	if err := s.enterFloor(prev.Number + 1); err != nil {
		s.player.SetPosition(x, y)
		if loadErr := prevDungeon.Current().Load(s.opts.Occupants, s.opts.Capacity); loadErr != nil {
			logger.Log.Errorf("Run %s: could not restore room %s: %v", s.id, prevDungeon.Current().ID, loadErr)
		}
		return err
	}
	prev.Destroy()
	logger.Log.Infof("Run %s descended to floor %d", s.id, s.floor.Number)
	return nil
}

// Descend skips to the next floor regardless of the key.
func (s *RunService) Descend() error {
	s.mutex.Lock()
	if s.dungeon == nil {
		s.mutex.Unlock()
		return ErrNotStarted
	}
	err := s.descend()
	snap, l := s.snapshot(), s.listener
	s.mutex.Unlock()

	if err != nil {
		return err
	}
	if l != nil {
		l.FloorChanged(snap)
	}
	return nil
}

// Walk puts the player on the door of the current room facing d. The move
// through the door happens on the next tick once the room is cleared.
func (s *RunService) Walk(d room.Direction) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.dungeon == nil {
		return ErrNotStarted
	}
	cur := s.dungeon.Current()
	if !cur.HasDoor(d) {
		return fmt.Errorf("room %s %s: %w", cur.ID, d, ErrNoDoor)
	}
	s.player.StandOn(cur, d)
	return nil
}

type clearer interface {
	Clear()
}

// ClearRoom removes every occupant of the current room. It reports whether
// the occupant manager supports clearing.
func (s *RunService) ClearRoom() (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.dungeon == nil {
		return false, ErrNotStarted
	}
	c, ok := s.dungeon.Current().Occupants().(clearer)
	if !ok {
		return false, nil
	}
	c.Clear()
	return true, nil
}

// Render forwards a frame to the occupants of the current room.
func (s *RunService) Render(deltaTime float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.dungeon != nil {
		s.dungeon.Render(deltaTime)
	}
}

func (s *RunService) Snapshot() (Snapshot, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.dungeon == nil {
		return Snapshot{}, ErrNotStarted
	}
	return s.snapshot(), nil
}

func (s *RunService) snapshot() Snapshot {
	if s.dungeon == nil {
		return Snapshot{RunID: s.id, Seed: s.seed}
	}
	cur := s.dungeon.Current()
	x, y := s.player.Position()
	return Snapshot{
		RunID:     s.id,
		Seed:      s.seed,
		Floor:     s.floor.Number,
		Room:      cur.ID,
		Row:       cur.Row,
		Col:       cur.Col,
		Role:      cur.Role.String(),
		State:     s.dungeon.State().GetID(),
		Locked:    cur.Locked,
		Occupants: s.dungeon.OccupantCount(),
		KeyFound:  s.floor.KeyFound,
		PlayerX:   x,
		PlayerY:   y,
		Dump:      s.floor.Dump(),
	}
}

// History returns the generation ledger of this run.
func (s *RunService) History() ([]models.FloorRecord, models.RunSummary, error) {
	if s.store == nil {
		return nil, models.RunSummary{}, persistence.ErrRecordNotFound
	}
	records, err := s.store.LoadFloorRecords(s.id)
	if err != nil {
		return nil, models.RunSummary{}, err
	}
	summary, err := s.store.LoadRunSummary(s.id)
	return records, summary, err
}

// Close unloads the current room and releases the floor.
func (s *RunService) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.dungeon == nil {
		return nil
	}
	err := s.dungeon.Close()
	s.floor.Destroy()
	s.dungeon, s.floor = nil, nil
	return err
}
