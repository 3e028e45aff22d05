package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"blockworld/internal/world"
)

var (
	ErrDuplicateBlock = errors.New("registry: duplicate block")
	ErrReservedAir    = errors.New("registry: id 0 is reserved for air")
	ErrFrozen         = errors.New("registry: builder already built")
	ErrInvalidCatalog = errors.New("registry: invalid catalog")
)

// AtlasTiles is the number of tiles along each side of the block atlas.
const AtlasTiles = 16

// NoTexture marks a face without a texture of its own.
const NoTexture = -1

// TileIndex converts an atlas column/row pair to a tile index.
func TileIndex(col, row int) int {
	return row*AtlasTiles + col
}

// TileCoords splits a tile index into its atlas column and row.
func TileCoords(tile int) (col, row int) {
	return tile % AtlasTiles, tile / AtlasTiles
}

// ErrorTile is the atlas tile drawn for materials the catalog does not know.
var ErrorTile = TileIndex(AtlasTiles-1, 0)

// Textures holds the atlas tile of each face group.
type Textures struct {
	Top    int
	Bottom int
	Side   int
}

// Block is one immutable catalog entry.
type Block struct {
	ID         world.Material
	Name       string
	Opaque     bool
	Collidable bool
	Textures   Textures
}

// Tile returns the atlas tile for a face. Top and bottom fall back to the
// side texture; a block without any texture uses ErrorTile.
func (b Block) Tile(face world.BlockFace) int {
	t := b.Textures.Side
	switch face {
	case world.FaceTop:
		if b.Textures.Top != NoTexture {
			t = b.Textures.Top
		}
	case world.FaceBottom:
		if b.Textures.Bottom != NoTexture {
			t = b.Textures.Bottom
		}
	}
	if t == NoTexture {
		return ErrorTile
	}
	return t
}

// ErrorBlock is substituted for material ids missing from the catalog.
var ErrorBlock = Block{
	Name:       "error",
	Opaque:     true,
	Collidable: true,
	Textures:   Textures{Top: ErrorTile, Bottom: ErrorTile, Side: ErrorTile},
}

var airBlock = Block{
	ID:       world.Air,
	Name:     "air",
	Textures: Textures{Top: NoTexture, Bottom: NoTexture, Side: NoTexture},
}

// Builder collects block registrations. It is not safe for concurrent use.
type Builder struct {
	blocks      map[world.Material]Block
	names       map[string]world.Material
	airDeclared bool
	frozen      bool
}

// NewBuilder returns a builder with air pre-registered.
func NewBuilder() *Builder {
	return &Builder{
		blocks: map[world.Material]Block{world.Air: airBlock},
		names:  map[string]world.Material{airBlock.Name: world.Air},
	}
}

// Register adds a block type. Air may be declared once more to rename it or
// give it textures, but never as opaque or collidable.
func (b *Builder) Register(blk Block) error {
	if b.frozen {
		return ErrFrozen
	}
	blk.Name = strings.TrimSpace(blk.Name)
	if blk.Name == "" {
		return fmt.Errorf("%w: block %d has no name", ErrInvalidCatalog, blk.ID)
	}

	if blk.ID == world.Air {
		if blk.Opaque || blk.Collidable {
			return fmt.Errorf("%w: %q", ErrReservedAir, blk.Name)
		}
		if b.airDeclared {
			return fmt.Errorf("%w: id 0 (%q)", ErrDuplicateBlock, blk.Name)
		}
	} else if prev, ok := b.blocks[blk.ID]; ok {
		return fmt.Errorf("%w: id %d already used by %q", ErrDuplicateBlock, blk.ID, prev.Name)
	}
	if id, ok := b.names[blk.Name]; ok && id != blk.ID {
		return fmt.Errorf("%w: name %q already used by id %d", ErrDuplicateBlock, blk.Name, id)
	}

	if blk.ID == world.Air {
		delete(b.names, b.blocks[world.Air].Name)
		b.airDeclared = true
	}
	b.blocks[blk.ID] = blk
	b.names[blk.Name] = blk.ID
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (b *Builder) MustRegister(blk Block) {
	if err := b.Register(blk); err != nil {
		panic(err)
	}
}

// Build freezes the builder and returns the catalog. Further Register
// calls fail with ErrFrozen.
func (b *Builder) Build() *Catalog {
	b.frozen = true
	c := &Catalog{byName: make(map[string]world.Material, len(b.names))}
	for id, blk := range b.blocks {
		c.blocks[id] = blk
		c.present[id] = true
		c.count++
	}
	for name, id := range b.names {
		c.byName[name] = id
	}
	c.digest = digest(c.All())
	return c
}

// Catalog maps material ids to block attributes. It never changes after
// Build, so it is shared between the frame loop and build workers without
// locking.
type Catalog struct {
	blocks  [256]Block
	present [256]bool
	byName  map[string]world.Material
	count   int
	digest  string
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id world.Material) (Block, bool) {
	if !c.present[id] {
		return Block{}, false
	}
	return c.blocks[id], true
}

// Resolve returns the entry for id, or ErrorBlock carrying id when the
// catalog does not know it.
func (c *Catalog) Resolve(id world.Material) Block {
	if c.present[id] {
		return c.blocks[id]
	}
	blk := ErrorBlock
	blk.ID = id
	return blk
}

// Known reports whether id is registered.
func (c *Catalog) Known(id world.Material) bool {
	return c.present[id]
}

// SeeThrough reports whether faces next to a cell of this material are
// visible: air and registered non-opaque blocks. Unknown ids count as
// opaque because they are meshed with ErrorBlock.
func (c *Catalog) SeeThrough(id world.Material) bool {
	if id == world.Air {
		return true
	}
	return c.present[id] && !c.blocks[id].Opaque
}

// ByName returns the id registered under name.
func (c *Catalog) ByName(name string) (world.Material, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// All returns every entry sorted by id.
func (c *Catalog) All() []Block {
	out := make([]Block, 0, c.count)
	for id := range c.blocks {
		if c.present[id] {
			out = append(out, c.blocks[id])
		}
	}
	return out
}

// Len returns the number of registered entries, air included.
func (c *Catalog) Len() int {
	return c.count
}

// Digest is a stable hash of the catalog contents, handy for telling two
// loaded catalogs apart in logs.
func (c *Catalog) Digest() string {
	return c.digest
}

func digest(blocks []Block) string {
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })
	h := sha256.New()
	for _, b := range blocks {
		fmt.Fprintf(h, "%d|%s|%t|%t|%d|%d|%d\n", b.ID, b.Name, b.Opaque, b.Collidable,
			b.Textures.Top, b.Textures.Bottom, b.Textures.Side)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Default returns the built-in catalog: air, grass, dirt and stone.
func Default() *Catalog {
	b := NewBuilder()
	b.MustRegister(Block{
		ID:         world.Grass,
		Name:       "grass",
		Opaque:     true,
		Collidable: true,
		Textures: Textures{
			Top:    TileIndex(1, 15),
			Bottom: TileIndex(2, 15),
			Side:   TileIndex(0, 15),
		},
	})
	b.MustRegister(Block{
		ID:         world.Dirt,
		Name:       "dirt",
		Opaque:     true,
		Collidable: true,
		Textures:   Textures{Top: TileIndex(2, 15), Bottom: TileIndex(2, 15), Side: TileIndex(2, 15)},
	})
	b.MustRegister(Block{
		ID:         world.Stone,
		Name:       "stone",
		Opaque:     true,
		Collidable: true,
		Textures:   Textures{Top: TileIndex(3, 15), Bottom: TileIndex(3, 15), Side: TileIndex(3, 15)},
	})
	return b.Build()
}
