package vulkan

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/KyleNBurke/vulkan-engine/engine/math"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

const (
	// InFlightFramesCount is the number of frames the CPU may record ahead
	// of the GPU.
	InFlightFramesCount = 2

	// FrameDataMemorySize is the fixed frame header: projection matrix
	// (16 floats), inverse view matrix (16 floats), ambient light color
	// (3 floats), light count (1 u32) and 5 point light slots of 8 floats.
	FrameDataMemorySize = 76 * 4

	// MaxPointLights is the hard shader-side limit on point lights.
	MaxPointLights = 5

	MeshUniformSize       = 16 * 4
	TextMatrixUniformSize = 12 * 4
	AtlasIndexUniformSize = 4

	// Frame header byte offsets.
	projectionMatrixOffset  = 0
	inverseViewMatrixOffset = 16 * 4
	ambientLightOffset      = 32 * 4
	pointLightCountOffset   = 35 * 4
	pointLightPositionBase  = 36 * 4
	pointLightColorBase     = 40 * 4
	pointLightStride        = 8 * 4

	indexAlignment = 4
)

// FontResolver maps a text's font handle to the loaded font and the atlas
// slot it was submitted to.
type FontResolver interface {
	ResolveFont(handle scene.Handle) (scene.Font, int)
}

// FramePacker computes the dynamic buffer layout for a scene and packs the
// frame bytes. It is pure CPU-side work: layout walks a cursor over the
// scene writing offsets back onto the objects, packing serializes into a
// byte slice the caller copies into mapped memory.
type FramePacker struct {
	uniformAlignment int

	// Byte offset of the atlas index uniform relative to the text matrix
	// uniform, honoring the device alignment.
	AtlasIndexRelativeOffset int
}

func NewFramePacker(uniformAlignment int) *FramePacker {
	return &FramePacker{
		uniformAlignment:         uniformAlignment,
		AtlasIndexRelativeOffset: int(alignUp(TextMatrixUniformSize, uint64(uniformAlignment))),
	}
}

// Layout walks the scene and assigns every mesh and text its index,
// attribute and uniform offsets in the dynamic buffer. Auto-updated
// transforms are recomposed and dirty texts regenerated first, since the
// layout depends on the generated quad counts. Returns the total buffer
// size in bytes.
func (p *FramePacker) Layout(s *scene.Scene, fonts FontResolver) int {
	offset := FrameDataMemorySize

	for _, mesh := range s.Meshes {
		if mesh.AutoUpdateMatrix {
			mesh.Transform.UpdateMatrix()
		}

		geometry := s.GeometryOf(mesh.GeometryHandle)
		indexOffset, attributeOffset, uniformOffset := p.layoutObject(offset, len(geometry.VertexIndices()), len(geometry.VertexAttributes()))

		mesh.IndexOffset = indexOffset
		mesh.AttributeOffset = attributeOffset
		mesh.UniformOffset = uniformOffset

		offset = uniformOffset + MeshUniformSize
	}

	for _, text := range s.Texts {
		if text.AutoUpdateMatrix {
			text.Transform.UpdateMatrix()
		}

		font, atlasIndex := fonts.ResolveFont(text.FontHandle)
		if text.Generate {
			text.GenerateGlyphQuads(font)
		}

		indexOffset, attributeOffset, matrixUniformOffset := p.layoutObject(offset, len(text.VertexIndices()), len(text.VertexAttributes()))

		text.IndexOffset = indexOffset
		text.AttributeOffset = attributeOffset
		text.MatrixUniformOffset = matrixUniformOffset
		text.AtlasIndexUniformOffset = matrixUniformOffset + p.AtlasIndexRelativeOffset
		text.AtlasIndex = atlasIndex

		offset = text.AtlasIndexUniformOffset + AtlasIndexUniformSize
	}

	return offset
}

// layoutObject advances the cursor over one object's packed regions:
// u16 indices, padding to a 4-byte boundary, f32 attributes, padding to
// the uniform alignment, then the uniform block.
func (p *FramePacker) layoutObject(offset, indexCount, attributeCount int) (indexOffset, attributeOffset, uniformOffset int) {
	indexOffset = offset

	indexSize := indexCount * 2
	attributeOffset = int(alignUp(uint64(indexOffset+indexSize), indexAlignment))

	attributeSize := attributeCount * 4
	uniformOffset = int(alignUp(uint64(attributeOffset+attributeSize), uint64(p.uniformAlignment)))

	return indexOffset, attributeOffset, uniformOffset
}

// Pack serializes the frame header and every laid-out mesh and text into a
// buffer of the given size. Layout must have run first. More than
// MaxPointLights point lights is a scene contract violation and panics.
func (p *FramePacker) Pack(s *scene.Scene, inverseViewMatrix math.Mat4, uiProjectionMatrix math.Mat3, size int) []byte {
	if len(s.PointLights) > MaxPointLights {
		panic(fmt.Sprintf("only %d point lights allowed, scene has %d", MaxPointLights, len(s.PointLights)))
	}

	data := make([]byte, size)

	// Frame header
	putMat4(data, projectionMatrixOffset, s.Camera.ProjectionMatrix)
	putMat4(data, inverseViewMatrixOffset, inverseViewMatrix)

	ambient := s.AmbientLight.Color.MulScalar(s.AmbientLight.Intensity)
	putVec3(data, ambientLightOffset, ambient)

	putUint32(data, pointLightCountOffset, uint32(len(s.PointLights)))
	for i, light := range s.PointLights {
		putVec3(data, pointLightPositionBase+pointLightStride*i, light.Position)
		putVec3(data, pointLightColorBase+pointLightStride*i, light.Color.MulScalar(light.Intensity))
	}

	// Dynamic meshes
	for _, mesh := range s.Meshes {
		geometry := s.GeometryOf(mesh.GeometryHandle)
		putUint16s(data, mesh.IndexOffset, geometry.VertexIndices())
		putFloat32s(data, mesh.AttributeOffset, geometry.VertexAttributes())
		putMat4(data, mesh.UniformOffset, mesh.Transform.Matrix)
	}

	// Texts
	for _, text := range s.Texts {
		putUint16s(data, text.IndexOffset, text.VertexIndices())
		putFloat32s(data, text.AttributeOffset, text.VertexAttributes())

		matrix := uiProjectionMatrix.Mul(text.Transform.Matrix.AffineMat3())
		padded := matrix.ToPaddedArray()
		putFloat32s(data, text.MatrixUniformOffset, padded[:])

		putUint32(data, text.AtlasIndexUniformOffset, uint32(text.AtlasIndex))
	}

	return data
}

// StaticRenderInfo is one recorded draw in the static buffer. Instanced
// meshes contribute one entry per instance, all sharing the same geometry
// offsets.
type StaticRenderInfo struct {
	IndexOffset     int
	AttributeOffset int
	UniformOffset   int
	IndexCount      int
	Material        scene.Material
}

// LayoutStatic computes the static buffer layout for a submission. Returns
// the render info table and the total buffer size.
func (p *FramePacker) LayoutStatic(s *scene.Scene, meshes []*scene.StaticMesh, instanced []*scene.StaticInstancedMesh) ([]StaticRenderInfo, int) {
	renderInfo := make([]StaticRenderInfo, 0, len(meshes))
	offset := 0

	for _, mesh := range meshes {
		if mesh.AutoUpdateMatrix {
			mesh.Transform.UpdateMatrix()
		}

		geometry := s.GeometryOf(mesh.GeometryHandle)
		indexOffset, attributeOffset, uniformOffset := p.layoutObject(offset, len(geometry.VertexIndices()), len(geometry.VertexAttributes()))

		renderInfo = append(renderInfo, StaticRenderInfo{
			IndexOffset:     indexOffset,
			AttributeOffset: attributeOffset,
			UniformOffset:   uniformOffset,
			IndexCount:      len(geometry.VertexIndices()),
			Material:        mesh.Material,
		})

		offset = uniformOffset + MeshUniformSize
	}

	uniformStride := int(alignUp(MeshUniformSize, uint64(p.uniformAlignment)))

	for _, mesh := range instanced {
		geometry := s.GeometryOf(mesh.GeometryHandle)
		indexOffset, attributeOffset, uniformOffset := p.layoutObject(offset, len(geometry.VertexIndices()), len(geometry.VertexAttributes()))

		for i := range mesh.Transforms {
			if mesh.AutoUpdateMatrix {
				mesh.Transforms[i].UpdateMatrix()
			}

			renderInfo = append(renderInfo, StaticRenderInfo{
				IndexOffset:     indexOffset,
				AttributeOffset: attributeOffset,
				UniformOffset:   uniformOffset + i*uniformStride,
				IndexCount:      len(geometry.VertexIndices()),
				Material:        mesh.Material,
			})
		}

		offset = uniformOffset + len(mesh.Transforms)*uniformStride
	}

	return renderInfo, offset
}

// PackStatic serializes the submission into a buffer laid out by
// LayoutStatic. The render info table must come from the same call.
func (p *FramePacker) PackStatic(s *scene.Scene, meshes []*scene.StaticMesh, instanced []*scene.StaticInstancedMesh, renderInfo []StaticRenderInfo, size int) []byte {
	data := make([]byte, size)

	for i, mesh := range meshes {
		info := renderInfo[i]
		geometry := s.GeometryOf(mesh.GeometryHandle)
		putUint16s(data, info.IndexOffset, geometry.VertexIndices())
		putFloat32s(data, info.AttributeOffset, geometry.VertexAttributes())
		putMat4(data, info.UniformOffset, mesh.Transform.Matrix)
	}

	entry := len(meshes)
	for _, mesh := range instanced {
		geometry := s.GeometryOf(mesh.GeometryHandle)
		if len(mesh.Transforms) == 0 {
			continue
		}

		first := renderInfo[entry]
		putUint16s(data, first.IndexOffset, geometry.VertexIndices())
		putFloat32s(data, first.AttributeOffset, geometry.VertexAttributes())

		for i := range mesh.Transforms {
			putMat4(data, renderInfo[entry].UniformOffset, mesh.Transforms[i].Matrix)
			entry++
		}
	}

	return data
}

func putUint32(data []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(data[offset:], v)
}

func putFloat32(data []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(data[offset:], stdmath.Float32bits(v))
}

func putFloat32s(data []byte, offset int, values []float32) {
	for i, v := range values {
		putFloat32(data, offset+i*4, v)
	}
}

func putUint16s(data []byte, offset int, values []uint16) {
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[offset+i*2:], v)
	}
}

func putVec3(data []byte, offset int, v math.Vec3) {
	putFloat32(data, offset, v.X)
	putFloat32(data, offset+4, v.Y)
	putFloat32(data, offset+8, v.Z)
}

func putMat4(data []byte, offset int, m math.Mat4) {
	putFloat32s(data, offset, m.Data[:])
}
