// Package camera computes the fixed view-projection used to draw the cube.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a right-handed perspective camera with OpenGL clip conventions
// (depth in [-1, 1]). It holds no per-frame state.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	FovY float32 // radians
	Near float32
	Far  float32
}

// Default looks down at the origin from slightly above the +Z axis.
func Default() Camera {
	return Camera{
		Eye:    mgl32.Vec3{0, 1.5, 3},
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   mgl32.DegToRad(60),
		Near:   0.01,
		Far:    10,
	}
}

func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// ViewProjection returns projection * view for the given aspect ratio.
func (c Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

// Aspect returns width/height, falling back to 1 for a degenerate viewport
// such as a minimized window.
func Aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
