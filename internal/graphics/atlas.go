package graphics

import (
	"hash/fnv"
	"image"
	"image/color"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"blockworld/internal/registry"
	"blockworld/internal/world"
)

// DefaultTileSize is the edge length in pixels of one atlas tile.
const DefaultTileSize = 16

var blockTints = map[string]color.RGBA{
	"grass": colornames.Forestgreen,
	"dirt":  colornames.Saddlebrown,
	"stone": colornames.Gray,
	"sand":  colornames.Khaki,
	"water": colornames.Royalblue,
	"glass": colornames.Lightcyan,
}

// BlockTint returns the flat colour a block is painted with: a known tint,
// a CSS colour of the same name, or a colour hashed from the name.
func BlockTint(name string) color.RGBA {
	if c, ok := blockTints[name]; ok {
		return c
	}
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return color.RGBA{R: 64 + uint8(v)%160, G: 64 + uint8(v>>8)%160, B: 64 + uint8(v>>16)%160, A: 255}
}

func shade(c color.RGBA, pct int) color.RGBA {
	return color.RGBA{
		R: uint8(int(c.R) * pct / 100),
		G: uint8(int(c.G) * pct / 100),
		B: uint8(int(c.B) * pct / 100),
		A: c.A,
	}
}

// BuildAtlas paints a procedural 16x16-tile atlas for every tile the catalog
// references. A tile shared by several blocks takes the colour of a block
// textured with it on every face, otherwise the first block's.
// The error tile is a magenta and black checker.
func BuildAtlas(cat *registry.Catalog, tileSize int) *image.RGBA {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	// one pixel per tile, scaled up afterwards
	base := image.NewRGBA(image.Rect(0, 0, registry.AtlasTiles, registry.AtlasTiles))
	painted := make(map[int]bool)
	faces := []struct {
		face world.BlockFace
		pct  int
	}{
		{world.FaceTop, 100},
		{world.FaceNorth, 85},
		{world.FaceBottom, 70},
	}
	paint := func(blk registry.Block, tile, pct int) {
		if tile == registry.ErrorTile || painted[tile] {
			return
		}
		painted[tile] = true
		col, row := registry.TileCoords(tile)
		base.SetRGBA(col, row, shade(BlockTint(blk.Name), pct))
	}

	// blocks with a single texture claim their tile first
	var mixed []registry.Block
	for _, blk := range cat.All() {
		if blk.ID.IsAir() {
			continue
		}
		top := blk.Tile(world.FaceTop)
		if top == blk.Tile(world.FaceBottom) && top == blk.Tile(world.FaceNorth) {
			paint(blk, top, 100)
			continue
		}
		mixed = append(mixed, blk)
	}
	for _, blk := range mixed {
		for _, f := range faces {
			paint(blk, blk.Tile(f.face), f.pct)
		}
	}

	size := registry.AtlasTiles * tileSize
	atlas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(atlas, atlas.Bounds(), base, base.Bounds(), draw.Src, nil)

	col, row := registry.TileCoords(registry.ErrorTile)
	half := tileSize / 2
	if half == 0 {
		half = 1
	}
	origin := image.Pt(col*tileSize, row*tileSize)
	for qy := 0; qy < 2; qy++ {
		for qx := 0; qx < 2; qx++ {
			c := colornames.Black
			if qx == qy {
				c = colornames.Magenta
			}
			r := image.Rect(qx*half, qy*half, (qx+1)*half, (qy+1)*half).Add(origin)
			draw.Draw(atlas, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
		}
	}
	return atlas
}
