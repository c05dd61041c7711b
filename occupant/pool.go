// Package occupant provides the default occupant manager: a bounded pool of
// wandering occupants that expire after a fixed number of ticks.
package occupant

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/rng"
	"github.com/wfunc/dungeonfloor/room"
)

const (
	Size     = 48
	MaxSpeed = 4
)

// Occupant is a single wandering hostile.
type Occupant struct {
	ID     string
	X, Y   int
	DX, DY int
	// Life is the number of ticks left. Zero or less with a pool lifetime
	// set means the occupant is gone on the next update.
	Life int
}

// Pool holds the occupants of one loaded room.
type Pool struct {
	capacity  int
	lifetime  int
	src       *rng.Source
	occupants []*Occupant
	frames    int
	elapsed   float64
	mutex     sync.RWMutex
}

// NewPool creates a pool holding at most capacity occupants. lifetime is in
// ticks; zero means occupants never expire.
func NewPool(capacity, lifetime int, src *rng.Source) *Pool {
	return &Pool{
		capacity: capacity,
		lifetime: lifetime,
		src:      src,
	}
}

// Factory returns a room.OccupantFactory building pools that share src.
func Factory(lifetime int, src *rng.Source) room.OccupantFactory {
	return func(capacity int) room.Occupants {
		return NewPool(capacity, lifetime, src)
	}
}

// Spawn places count occupants at random positions inside the area. Spawns
// beyond capacity are dropped.
func (p *Pool) Spawn(areaWidth, areaHeight, count int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for i := 0; i < count; i++ {
		if len(p.occupants) >= p.capacity {
			logger.Log.Debugf("Occupant pool full at %d, dropping %d spawns", p.capacity, count-i)
			return
		}
		o := &Occupant{
			ID:   uuid.NewString(),
			X:    p.src.Between(room.DoorThickness, areaWidth-room.DoorThickness-Size),
			Y:    p.src.Between(room.DoorThickness, areaHeight-room.DoorThickness-Size),
			DX:   p.src.Between(-MaxSpeed, MaxSpeed),
			DY:   p.src.Between(-MaxSpeed, MaxSpeed),
			Life: p.lifetime,
		}
		p.occupants = append(p.occupants, o)
	}
}

// Update moves every occupant one step, bouncing off the walls, and drops
// the expired ones.
func (p *Pool) Update(areaWidth, areaHeight int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	alive := p.occupants[:0]
	for _, o := range p.occupants {
		if p.lifetime > 0 {
			o.Life--
			if o.Life <= 0 {
				continue
			}
		}
		o.X, o.DX = bounce(o.X+o.DX, o.DX, areaWidth-Size)
		o.Y, o.DY = bounce(o.Y+o.DY, o.DY, areaHeight-Size)
		alive = append(alive, o)
	}
	clear(p.occupants[len(alive):])
	p.occupants = alive
}

func bounce(pos, speed, limit int) (int, int) {
	switch {
	case pos < 0:
		return -pos, -speed
	case pos > limit:
		return 2*limit - pos, -speed
	}
	return pos, speed
}

func (p *Pool) Count() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.occupants)
}

// Render advances the pool's frame clock. Drawing is left to the frontend,
// which reads positions through Occupants.
func (p *Pool) Render(deltaTime float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.frames++
	p.elapsed += deltaTime
}

// Frames returns how many frames were rendered and their total duration.
func (p *Pool) Frames() (int, float64) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.frames, p.elapsed
}

// Occupants returns a copy of the live occupants.
func (p *Pool) Occupants() []Occupant {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	out := make([]Occupant, 0, len(p.occupants))
	for _, o := range p.occupants {
		out = append(out, *o)
	}
	return out
}

// Clear removes every occupant.
func (p *Pool) Clear() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	clear(p.occupants)
	p.occupants = p.occupants[:0]
}
