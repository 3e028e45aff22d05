package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFrustumContainsBox(t *testing.T) {
	c := NewCamera(100, 100)
	f := NewFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()))

	cases := []struct {
		name     string
		min, max mgl32.Vec3
		want     bool
	}{
		{"ahead", mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -8}, true},
		{"behind", mgl32.Vec3{-1, -1, 8}, mgl32.Vec3{1, 1, 10}, false},
		{"beyond far plane", mgl32.Vec3{-1, -1, -2000}, mgl32.Vec3{1, 1, -1990}, false},
		{"far to the side", mgl32.Vec3{500, -1, -12}, mgl32.Vec3{502, 1, -10}, false},
		{"around the eye", mgl32.Vec3{-8, -8, -8}, mgl32.Vec3{8, 8, 8}, true},
	}
	for _, tc := range cases {
		if got := f.ContainsBox(tc.min, tc.max); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
