// Package floor generates dungeon floors: a fixed grid of room slots filled
// by recursive partitioning, hallway carving, door linking and special role
// distribution.
package floor

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/rng"
	"github.com/wfunc/dungeonfloor/room"
)

const (
	DefaultMaxRows     = 20
	DefaultMaxCols     = 20
	DefaultMinSubgraph = 2

	// boundsMargin is how far the generation window reaches from the grid
	// centre on floor 0; every floor adds one slot on each side.
	boundsMargin = 4
)

// Texture is a loaded floor tile sheet.
type Texture interface {
	Dispose()
}

// TextureLoader acquires floor textures.
type TextureLoader interface {
	Load(path string) (Texture, error)
}

type Options struct {
	MaxRows     int
	MaxCols     int
	MinSubgraph int
	TexturePath string
}

func DefaultOptions() Options {
	return Options{
		MaxRows:     DefaultMaxRows,
		MaxCols:     DefaultMaxCols,
		MinSubgraph: DefaultMinSubgraph,
	}
}

// Floor is one dungeon level.
type Floor struct {
	Number   int
	Grid     *Grid
	Bounds   Region
	Start    room.Coord
	Texture  Texture
	KeyFound bool

	// Warnings collects problems that did not stop generation: a missing
	// texture (Texture stays nil) or a clamped role request.
	Warnings error
}

// Room returns the slot at c, nil outside the grid.
func (f *Floor) Room(c room.Coord) *room.Room {
	return f.Grid.At(c)
}

// Destroy releases the floor texture. It is safe to call more than once and
// when the texture never loaded.
func (f *Floor) Destroy() {
	if f.Texture != nil {
		f.Texture.Dispose()
		f.Texture = nil
	}
}

// ComputeBounds returns the generation window for a floor: a square around
// the grid centre that grows by one slot per side with every floor, clamped
// to the grid.
func ComputeBounds(index, maxRows, maxCols int) Region {
	reach := boundsMargin + index
	return Region{
		StartRow: clamp(maxRows/2-reach, 0, maxRows-1),
		StopRow:  clamp(maxRows/2+reach, 0, maxRows-1),
		StartCol: clamp(maxCols/2-reach, 0, maxCols-1),
		StopCol:  clamp(maxCols/2+reach, 0, maxCols-1),
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Generator builds floors. All randomness comes from one shared source.
type Generator struct {
	opts   Options
	src    *rng.Source
	loader TextureLoader
}

// NewGenerator returns a generator. loader may be nil, in which case floors
// are generated without a texture and without a warning.
func NewGenerator(opts Options, src *rng.Source, loader TextureLoader) *Generator {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MaxCols <= 0 {
		opts.MaxCols = DefaultMaxCols
	}
	if opts.MinSubgraph <= 0 {
		opts.MinSubgraph = DefaultMinSubgraph
	}
	return &Generator{opts: opts, src: src, loader: loader}
}

func (g *Generator) Options() Options {
	return g.opts
}

// Center is the conventional start coordinate of a floor.
func (g *Generator) Center() room.Coord {
	return room.Coord{Row: g.opts.MaxRows / 2, Col: g.opts.MaxCols / 2}
}

// Generate builds floor index with start as its start room. Structural
// failures abort and return an error; texture and role shortfalls are
// recorded in Floor.Warnings instead.
func (g *Generator) Generate(index int, start room.Coord) (*Floor, error) {
	f := &Floor{Grid: NewGrid(g.opts.MaxRows, g.opts.MaxCols)}
	if err := g.GenerateInto(f, index, start); err != nil {
		return nil, err
	}
	return f, nil
}

// GenerateInto wipes f and generates floor index into it.
func (g *Generator) GenerateInto(f *Floor, index int, start room.Coord) error {
	if f.Grid == nil || f.Grid.Rows() != g.opts.MaxRows || f.Grid.Cols() != g.opts.MaxCols {
		f.Grid = NewGrid(g.opts.MaxRows, g.opts.MaxCols)
	}
	f.Destroy()
	f.Grid.Reset()
	f.Number = index
	f.KeyFound = false
	f.Start = start
	f.Warnings = nil
	f.Bounds = ComputeBounds(index, g.opts.MaxRows, g.opts.MaxCols)

	if !f.Bounds.Contains(start) {
		return fmt.Errorf("floor %d: start %v, bounds %v: %w", index, start, f.Bounds, ErrStartOutOfBounds)
	}

	g.loadTexture(f)

	if _, err := Partition(f.Grid, g.src, start, f.Bounds, g.opts.MinSubgraph); err != nil {
		f.Destroy()
		return fmt.Errorf("floor %d: %w", index, err)
	}
	Link(f.Grid)
	if err := CheckConnectivity(f.Grid, start); err != nil {
		f.Destroy()
		return fmt.Errorf("floor %d: %w", index, err)
	}

	g.distribute(f, 1, room.RoleKey)
	g.distribute(f, 1, room.RoleExit)
	g.distribute(f, g.src.Between(1, index+1), room.RoleShop)
	challenges := 0
	if index >= 1 {
		challenges = g.src.Between(1, index)
	}
	g.distribute(f, challenges, room.RoleChallenge)

	logger.Log.Infow("Generated floor",
		"floor", index,
		"bounds", f.Bounds.String(),
		"rooms", f.RoleCounts(),
		"warnings", f.Warnings,
	)
	logger.Log.Debugf("Floor %d layout:\n%s", index, f.Dump())
	return nil
}

// RoleCounts returns the number of rooms per role name.
func (f *Floor) RoleCounts() map[string]int {
	summary := make(map[string]int)
	for role, n := range f.Grid.CountRoles() {
		summary[role.String()] = n
	}
	return summary
}

func (g *Generator) loadTexture(f *Floor) {
	if g.loader == nil {
		return
	}
	tex, err := g.loader.Load(g.opts.TexturePath)
	if err != nil {
		logger.Log.Warnf("Floor %d texture %q unavailable: %v", f.Number, g.opts.TexturePath, err)
		f.Warnings = multierr.Append(f.Warnings, fmt.Errorf("floor texture: %w", err))
		return
	}
	f.Texture = tex
}

func (g *Generator) distribute(f *Floor, count int, role room.Role) {
	if _, err := DistributeRole(f.Grid, g.src, count, role); err != nil {
		logger.Log.Warnf("Floor %d: %v", f.Number, err)
		f.Warnings = multierr.Append(f.Warnings, err)
	}
}
