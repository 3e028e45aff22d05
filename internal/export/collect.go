package export

import (
	"blockworld/internal/streaming"
	"blockworld/internal/world"
)

// Collect gathers the installed meshes of coords, positioned at their chunk
// origins. Coordinates without a non-empty mesh are skipped.
func Collect(store *streaming.Store, coords []world.ChunkCoord) []Placed {
	out := make([]Placed, 0, len(coords))
	for _, c := range coords {
		m, ok := store.MeshFor(c)
		if !ok || m.Empty() {
			continue
		}
		out = append(out, Placed{Origin: c.Origin(store.ChunkWidth()), Mesh: m})
	}
	return out
}
