package scene

import (
	"github.com/KyleNBurke/vulkan-engine/engine/math"
)

type Camera struct {
	ProjectionMatrix     math.Mat4
	Transform            math.Transform
	AutoUpdateViewMatrix bool

	fov      float32
	nearClip float32
	farClip  float32
}

func NewCamera(fovRadians, aspectRatio, nearClip, farClip float32) Camera {
	return Camera{
		ProjectionMatrix:     math.NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip),
		Transform:            math.NewTransform(),
		AutoUpdateViewMatrix: true,
		fov:                  fovRadians,
		nearClip:             nearClip,
		farClip:              farClip,
	}
}

// UpdateProjection re-derives the projection matrix for a new aspect
// ratio, typically after a framebuffer resize.
func (c *Camera) UpdateProjection(aspectRatio float32) {
	c.ProjectionMatrix = math.NewMat4Perspective(c.fov, aspectRatio, c.nearClip, c.farClip)
}

type AmbientLight struct {
	Color     math.Vec3
	Intensity float32
}

func NewAmbientLight(color math.Vec3, intensity float32) AmbientLight {
	return AmbientLight{Color: color, Intensity: intensity}
}

type PointLight struct {
	Position  math.Vec3
	Color     math.Vec3
	Intensity float32
}

func NewPointLight(position, color math.Vec3, intensity float32) PointLight {
	return PointLight{Position: position, Color: color, Intensity: intensity}
}

// Scene is the plain data the renderer consumes each frame. Meshes and
// texts are drawn in slice order.
type Scene struct {
	Camera       Camera
	AmbientLight AmbientLight
	PointLights  []PointLight
	Geometries   *Pool[Geometry3D]
	Meshes       []*Mesh
	Texts        []*Text
}

func NewScene(camera Camera) *Scene {
	return &Scene{
		Camera:     camera,
		Geometries: NewPool[Geometry3D](),
	}
}

// GeometryOf resolves a mesh's geometry handle. A stale handle is caller
// misuse and panics.
func (s *Scene) GeometryOf(handle Handle) *Geometry3D {
	return s.Geometries.MustGet(handle)
}
