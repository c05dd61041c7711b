package state

import (
	"errors"
	"sync"

	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/room"
)

// StateMachine drives the states of one room.
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

type State interface {
	OnEnter()
	OnExit()
	OnUpdate()
	GetID() string
}

const (
	StateSealed  = "sealed"
	StateCleared = "cleared"
)

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// BaseStateMachine guards transitions with optional conditions keyed by
// state id.
type BaseStateMachine struct {
	currentState State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	currentID := sm.currentState.GetID()
	newID := newState.GetID()

	if conditions, exists := sm.transitions[currentID]; exists {
		if condition, exists := conditions[newID]; exists {
			if condition != nil && !condition() {
				return ErrTransitionNotAllowed
			}
		}
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	fromID := from.GetID()
	toID := to.GetID()

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[string]func() bool)
	}

	sm.transitions[fromID][toID] = condition
	return nil
}

// RoomStateBase is embedded by the states of a single room.
type RoomStateBase struct {
	ID   string
	Room *room.Room
}

func (s *RoomStateBase) GetID() string {
	return s.ID
}

func (s *RoomStateBase) OnEnter()  {}
func (s *RoomStateBase) OnExit()   {}
func (s *RoomStateBase) OnUpdate() {}

// SealedState holds while occupants remain. Its doors stay shut.
type SealedState struct {
	RoomStateBase
}

func NewSealedState(r *room.Room) *SealedState {
	return &SealedState{
		RoomStateBase: RoomStateBase{
			ID:   StateSealed,
			Room: r,
		},
	}
}

// OnUpdate runs on ticks where occupants are still present. A room that
// can spawn cannot be left until it is cleared.
func (s *SealedState) OnUpdate() {
	if s.Room.Spawnable {
		s.Room.Locked = true
	}
}

// ClearedState is entered once the occupant count reaches zero.
type ClearedState struct {
	RoomStateBase
}

func NewClearedState(r *room.Room) *ClearedState {
	return &ClearedState{
		RoomStateBase: RoomStateBase{
			ID:   StateCleared,
			Room: r,
		},
	}
}

func (s *ClearedState) OnEnter() {
	s.Room.Locked = false
	s.Room.Spawnable = false
	logger.Log.Debugf("Room %s cleared, doors open", s.Room.ID)
}
