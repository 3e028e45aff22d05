package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"blockworld/internal/world"
)

//go:embed catalog.schema.json
var catalogSchemaJSON string

var catalogSchema = jsonschema.MustCompileString("catalog.schema.json", catalogSchemaJSON)

// catalogFile is the declarative catalog document:
//
//	blocks:
//	  - id: 1
//	    name: grass
//	    textures: {top: [1, 15], bottom: [2, 15], side: [0, 15]}
type catalogFile struct {
	Blocks []blockEntry `yaml:"blocks"`
}

type blockEntry struct {
	ID         int           `yaml:"id"`
	Name       string        `yaml:"name"`
	Opaque     *bool         `yaml:"opaque"`
	Collidable *bool         `yaml:"collidable"`
	Textures   *textureEntry `yaml:"textures"`
}

type textureEntry struct {
	All    *tileRef `yaml:"all"`
	Top    *tileRef `yaml:"top"`
	Bottom *tileRef `yaml:"bottom"`
	Side   *tileRef `yaml:"side"`
}

// tileRef is a tile index written either as a number or as [column, row].
type tileRef int

func (t *tileRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var i int
		if err := value.Decode(&i); err != nil {
			return err
		}
		*t = tileRef(i)
		return nil
	case yaml.SequenceNode:
		var pair []int
		if err := value.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: tile needs [column, row]", value.Line)
		}
		*t = tileRef(TileIndex(pair[0], pair[1]))
		return nil
	}
	return fmt.Errorf("line %d: unexpected tile value", value.Line)
}

func (e blockEntry) block() Block {
	blk := Block{
		ID:       world.Material(e.ID),
		Name:     e.Name,
		Opaque:   e.ID != 0,
		Textures: Textures{Top: NoTexture, Bottom: NoTexture, Side: NoTexture},
	}
	if e.Opaque != nil {
		blk.Opaque = *e.Opaque
	}
	blk.Collidable = blk.Opaque
	if e.Collidable != nil {
		blk.Collidable = *e.Collidable
	}
	if tx := e.Textures; tx != nil {
		set := func(dst *int, ref *tileRef) {
			if ref != nil {
				*dst = int(*ref)
			}
		}
		if tx.All != nil {
			blk.Textures = Textures{Top: int(*tx.All), Bottom: int(*tx.All), Side: int(*tx.All)}
		}
		set(&blk.Textures.Top, tx.Top)
		set(&blk.Textures.Bottom, tx.Bottom)
		set(&blk.Textures.Side, tx.Side)
	}
	return blk
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load parses a YAML catalog, validates it against the catalog schema and
// registers every entry in document order.
func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc catalogFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	b := NewBuilder()
	for i, e := range doc.Blocks {
		if err := b.Register(e.block()); err != nil {
			return nil, fmt.Errorf("blocks[%d]: %w", i, err)
		}
	}
	return b.Build(), nil
}

// validate checks the raw document against the embedded schema. YAML is
// decoded generically and re-encoded as JSON so the validator sees the
// same value types it would for a JSON document.
func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidCatalog)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := catalogSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return nil
}
