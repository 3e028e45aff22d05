package world

import "strconv"

// Material identifies the type of a voxel. Zero is reserved for air.
type Material uint8

const (
	Air Material = iota
	Grass
	Dirt
	Stone
)

// IsAir reports whether m is the reserved empty material.
func (m Material) IsAir() bool {
	return m == Air
}

func (m Material) String() string {
	switch m {
	case Air:
		return "air"
	case Grass:
		return "grass"
	case Dirt:
		return "dirt"
	case Stone:
		return "stone"
	}
	return "material(" + strconv.Itoa(int(m)) + ")"
}

// BlockFace identifies one of the six faces of a block
type BlockFace int

const (
	FaceEast   BlockFace = iota // +X
	FaceWest                    // -X
	FaceTop                     // +Y
	FaceBottom                  // -Y
	FaceNorth                   // +Z
	FaceSouth                   // -Z
)

// FaceFor returns the face whose outward normal points along axis (0=X, 1=Y, 2=Z)
// in the positive direction when positive is true.
func FaceFor(axis int, positive bool) BlockFace {
	f := BlockFace(axis * 2)
	if !positive {
		f++
	}
	return f
}

// Axis returns the principal axis of the face normal (0=X, 1=Y, 2=Z).
func (f BlockFace) Axis() int {
	return int(f) / 2
}

// Positive reports whether the face normal points along the positive axis.
func (f BlockFace) Positive() bool {
	return f%2 == 0
}

// Normal returns the unit outward normal of the face.
func (f BlockFace) Normal() [3]float32 {
	var n [3]float32
	if f.Positive() {
		n[f.Axis()] = 1
	} else {
		n[f.Axis()] = -1
	}
	return n
}

func (f BlockFace) String() string {
	switch f {
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	}
	return "face(" + strconv.Itoa(int(f)) + ")"
}
