// Package assets loads floor tile sheets as ebiten images.
package assets

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/wfunc/dungeonfloor/floor"
)

// DefaultTileSize is the edge of one tile in the sheet, in pixels. A room is
// room.TileCols x room.TileRows tiles of this size.
const DefaultTileSize = 64

// Tileset is a loaded floor tile sheet.
type Tileset struct {
	Image    *ebiten.Image
	TileSize int
	Cols     int // tiles per sheet row
	Rows     int
}

// Dispose releases the GPU side of the sheet.
func (t *Tileset) Dispose() {
	if t.Image != nil {
		t.Image.Deallocate()
		t.Image = nil
	}
}

// Loader implements floor.TextureLoader for image files on disk.
type Loader struct {
	TileSize int
}

func NewLoader(tileSize int) *Loader {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	return &Loader{TileSize: tileSize}
}

// Load decodes the image at path into a Tileset.
func (l *Loader) Load(path string) (floor.Texture, error) {
	if path == "" {
		return nil, fmt.Errorf("load tileset: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode tileset %s: %w", path, err)
	}

	bounds := img.Bounds()
	cols, rows := bounds.Dx()/l.TileSize, bounds.Dy()/l.TileSize
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("tileset %s: %dx%d is smaller than one %dpx tile",
			path, bounds.Dx(), bounds.Dy(), l.TileSize)
	}

	return &Tileset{
		Image:    ebiten.NewImageFromImage(img),
		TileSize: l.TileSize,
		Cols:     cols,
		Rows:     rows,
	}, nil
}
