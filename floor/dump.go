package floor

import (
	"fmt"
	"io"
	"strings"

	"github.com/wfunc/dungeonfloor/room"
)

var roleTokens = map[room.Role]byte{
	room.RoleBasic:     '.',
	room.RoleChallenge: 'C',
	room.RoleDefault:   '?',
	room.RoleExit:      'E',
	room.RoleHallway:   '-',
	room.RoleKey:       'K',
	room.RoleShop:      'S',
	room.RoleStart:     'O',
}

// Token is the single character a slot is drawn with in a dump.
func Token(r *room.Room) byte {
	switch {
	case r.Loaded:
		return 'P'
	case !r.Initialized:
		return ' '
	}
	if tok, ok := roleTokens[r.Role]; ok {
		return tok
	}
	return '?'
}

// Fprint writes one line per grid row: the row index, then the row's
// tokens between two '|' borders.
func Fprint(w io.Writer, g *Grid) error {
	line := make([]byte, g.Cols())
	for row := 0; row < g.Rows(); row++ {
		for col := range line {
			line[col] = Token(g.At(room.Coord{Row: row, Col: col}))
		}
		if _, err := fmt.Fprintf(w, "%02d. |%s|\n", row, line); err != nil {
			return err
		}
	}
	return nil
}

// Dump renders the floor for debugging.
func (f *Floor) Dump() string {
	var sb strings.Builder
	Fprint(&sb, f.Grid)
	return sb.String()
}
