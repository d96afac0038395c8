package scene

import (
	"github.com/KyleNBurke/vulkan-engine/engine/math"
)

// Material selects the fixed pipeline a mesh is drawn with.
type Material int

const (
	MaterialBasic Material = iota
	MaterialNormal
	MaterialLambert
)

// Mesh is a dynamic mesh repacked into the frame's dynamic buffer every
// frame. The offset fields are scratch space for the renderer: written
// during packing, read during command recording, meaningless across
// frames.
type Mesh struct {
	Transform        math.Transform
	GeometryHandle   Handle
	Material         Material
	AutoUpdateMatrix bool

	IndexOffset     int
	AttributeOffset int
	UniformOffset   int
}

func NewMesh(geometryHandle Handle, material Material) *Mesh {
	return &Mesh{
		Transform:        math.NewTransform(),
		GeometryHandle:   geometryHandle,
		Material:         material,
		AutoUpdateMatrix: true,
	}
}

// StaticMesh is uploaded once per SubmitStaticMeshes call and never
// touched again until the next submission.
type StaticMesh struct {
	Transform        math.Transform
	GeometryHandle   Handle
	Material         Material
	AutoUpdateMatrix bool
}

func NewStaticMesh(geometryHandle Handle, material Material) *StaticMesh {
	return &StaticMesh{
		Transform:        math.NewTransform(),
		GeometryHandle:   geometryHandle,
		Material:         material,
		AutoUpdateMatrix: true,
	}
}

// StaticInstancedMesh shares one geometry across many per-instance
// transforms in the static buffer.
type StaticInstancedMesh struct {
	Transforms       []math.Transform
	GeometryHandle   Handle
	Material         Material
	AutoUpdateMatrix bool
}

func NewStaticInstancedMesh(geometryHandle Handle, material Material) *StaticInstancedMesh {
	return &StaticInstancedMesh{
		GeometryHandle:   geometryHandle,
		Material:         material,
		AutoUpdateMatrix: true,
	}
}
