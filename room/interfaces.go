package room

// Occupants is the occupant manager owned by a loaded room. Simulation,
// AI and drawing of the occupants live behind it.
type Occupants interface {
	Spawn(areaWidth, areaHeight, count int)
	Update(areaWidth, areaHeight int)
	Count() int
	Render(deltaTime float64)
}

// OccupantFactory creates an occupant manager able to hold capacity occupants.
type OccupantFactory func(capacity int) Occupants
