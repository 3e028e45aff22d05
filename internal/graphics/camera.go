package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying perspective camera.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // degrees, 0 looks down +X
	Pitch    float32 // degrees, clamped to +-89

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		Yaw:       -90,
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio; a zero height (minimized window) is ignored.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Look turns the camera by mouse deltas scaled by sensitivity.
func (c *Camera) Look(dx, dy, sensitivity float32) {
	c.Yaw += dx * sensitivity
	c.Pitch -= dy * sensitivity

	// Constrain pitch
	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(c.Yaw))
	p := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}.Normalize()
}

// Right returns the horizontal unit vector to the camera's right.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Move translates the camera by forward/right/up amounts in world units,
// keeping forward motion horizontal.
func (c *Camera) Move(forward, right, up float32) {
	f := c.Front()
	flat := mgl32.Vec3{f.X(), 0, f.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	c.Position = c.Position.
		Add(flat.Mul(forward)).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
