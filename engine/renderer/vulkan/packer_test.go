package vulkan

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleNBurke/vulkan-engine/engine/math"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

const testUniformAlignment = 256

type fakeFont struct{}

func (fakeFont) Glyph(r rune) (scene.Glyph, bool) {
	return scene.Glyph{Width: 8, Height: 12, Advance: 10}, true
}

func (fakeFont) SpaceAdvance() float32 { return 4 }

func (fakeFont) AtlasSize() (float32, float32) { return 256, 256 }

type fakeFontResolver struct{}

func (fakeFontResolver) ResolveFont(handle scene.Handle) (scene.Font, int) {
	return fakeFont{}, 3
}

func newTestScene() *scene.Scene {
	camera := scene.NewCamera(1.2, 16.0/9.0, 0.1, 100.0)
	return scene.NewScene(camera)
}

func readUint32(t *testing.T, data []byte, offset int) uint32 {
	t.Helper()
	require.LessOrEqual(t, offset+4, len(data))
	return binary.LittleEndian.Uint32(data[offset:])
}

func readFloat32(t *testing.T, data []byte, offset int) float32 {
	t.Helper()
	return stdmath.Float32frombits(readUint32(t, data, offset))
}

func TestLayoutEmptyScene(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	size := packer.Layout(s, fakeFontResolver{})
	assert.Equal(t, FrameDataMemorySize, size)

	data := packer.Pack(s, math.NewMat4Identity(), math.NewMat3Identity(), size)
	assert.Len(t, data, FrameDataMemorySize)
	assert.Equal(t, uint32(0), readUint32(t, data, pointLightCountOffset))
}

func TestLayoutMeshOffsets(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	handle := s.Geometries.Add(*scene.NewTriangleGeometry())
	mesh := scene.NewMesh(handle, scene.MaterialLambert)
	s.Meshes = append(s.Meshes, mesh)

	size := packer.Layout(s, fakeFontResolver{})

	// 3 indices take 6 bytes after the header, padded up to 4.
	assert.Equal(t, FrameDataMemorySize, mesh.IndexOffset)
	assert.Equal(t, FrameDataMemorySize+8, mesh.AttributeOffset)

	// 18 attribute floats end at 384, pushed to the next alignment
	// boundary for the uniform block.
	assert.Equal(t, 512, mesh.UniformOffset)
	assert.Equal(t, 512+MeshUniformSize, size)
}

func TestLayoutOffsetsMonotonic(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	handle := s.Geometries.Add(*scene.NewBoxGeometry())
	for i := 0; i < 3; i++ {
		s.Meshes = append(s.Meshes, scene.NewMesh(handle, scene.MaterialBasic))
	}

	size := packer.Layout(s, fakeFontResolver{})

	previousEnd := FrameDataMemorySize
	for _, mesh := range s.Meshes {
		assert.GreaterOrEqual(t, mesh.IndexOffset, previousEnd)
		assert.GreaterOrEqual(t, mesh.AttributeOffset, mesh.IndexOffset)
		assert.Zero(t, mesh.AttributeOffset%indexAlignment)
		assert.Zero(t, mesh.UniformOffset%testUniformAlignment)
		previousEnd = mesh.UniformOffset + MeshUniformSize
	}
	assert.Equal(t, previousEnd, size)
}

func TestLayoutTextOffsets(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	text := scene.NewText(scene.Handle{}, "hi")
	s.Texts = append(s.Texts, text)

	size := packer.Layout(s, fakeFontResolver{})

	// Layout regenerates dirty texts before measuring them.
	assert.False(t, text.Generate)
	assert.Len(t, text.VertexIndices(), 12)

	assert.Equal(t, testUniformAlignment, packer.AtlasIndexRelativeOffset)
	assert.Equal(t, text.MatrixUniformOffset+testUniformAlignment, text.AtlasIndexUniformOffset)
	assert.Equal(t, 3, text.AtlasIndex)
	assert.Equal(t, text.AtlasIndexUniformOffset+AtlasIndexUniformSize, size)
}

func TestPackFrameHeader(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	s.AmbientLight = scene.NewAmbientLight(math.NewVec3(1.0, 0.5, 0.25), 2.0)
	s.PointLights = append(s.PointLights,
		scene.NewPointLight(math.NewVec3(1, 2, 3), math.NewVec3(1, 1, 1), 0.5),
		scene.NewPointLight(math.NewVec3(4, 5, 6), math.NewVec3(0, 1, 0), 1.0))

	size := packer.Layout(s, fakeFontResolver{})
	data := packer.Pack(s, math.NewMat4Identity(), math.NewMat3Identity(), size)

	assert.Equal(t, s.Camera.ProjectionMatrix.Data[0], readFloat32(t, data, projectionMatrixOffset))
	assert.Equal(t, float32(1.0), readFloat32(t, data, inverseViewMatrixOffset))

	// Ambient color is premultiplied by intensity.
	assert.Equal(t, float32(2.0), readFloat32(t, data, ambientLightOffset))
	assert.Equal(t, float32(0.5), readFloat32(t, data, ambientLightOffset+8))

	assert.Equal(t, uint32(2), readUint32(t, data, pointLightCountOffset))
	assert.Equal(t, float32(1), readFloat32(t, data, pointLightPositionBase))
	assert.Equal(t, float32(0.5), readFloat32(t, data, pointLightColorBase))
	assert.Equal(t, float32(4), readFloat32(t, data, pointLightPositionBase+pointLightStride))
	assert.Equal(t, float32(1), readFloat32(t, data, pointLightColorBase+pointLightStride+4))
}

func TestPackMaxPointLights(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	for i := 0; i < MaxPointLights; i++ {
		s.PointLights = append(s.PointLights, scene.NewPointLight(math.NewVec3(float32(i), 0, 0), math.NewVec3One(), 1.0))
	}

	size := packer.Layout(s, fakeFontResolver{})

	var data []byte
	assert.NotPanics(t, func() {
		data = packer.Pack(s, math.NewMat4Identity(), math.NewMat3Identity(), size)
	})

	assert.Equal(t, uint32(MaxPointLights), readUint32(t, data, pointLightCountOffset))
	assert.Equal(t, float32(MaxPointLights-1), readFloat32(t, data, pointLightPositionBase+(MaxPointLights-1)*pointLightStride))
}

func TestPackTooManyPointLightsPanics(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	for i := 0; i < MaxPointLights+1; i++ {
		s.PointLights = append(s.PointLights, scene.NewPointLight(math.NewVec3Zero(), math.NewVec3One(), 1.0))
	}

	size := packer.Layout(s, fakeFontResolver{})
	assert.Panics(t, func() {
		packer.Pack(s, math.NewMat4Identity(), math.NewMat3Identity(), size)
	})
}

func TestPackMeshContents(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	handle := s.Geometries.Add(*scene.NewTriangleGeometry())
	mesh := scene.NewMesh(handle, scene.MaterialBasic)
	mesh.Transform.TranslateX(7.0)
	s.Meshes = append(s.Meshes, mesh)

	size := packer.Layout(s, fakeFontResolver{})
	data := packer.Pack(s, math.NewMat4Identity(), math.NewMat3Identity(), size)

	geometry := s.GeometryOf(handle)
	for i, index := range geometry.VertexIndices() {
		assert.Equal(t, uint32(index), uint32(binary.LittleEndian.Uint16(data[mesh.IndexOffset+i*2:])))
	}
	assert.Equal(t, geometry.VertexAttributes()[0], readFloat32(t, data, mesh.AttributeOffset))

	// Row-major transform, x translation sits in the first row.
	assert.Equal(t, float32(7.0), readFloat32(t, data, mesh.UniformOffset+3*4))
}

func TestPackTextAtlasIndex(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	text := scene.NewText(scene.Handle{}, "a")
	s.Texts = append(s.Texts, text)

	size := packer.Layout(s, fakeFontResolver{})
	data := packer.Pack(s, math.NewMat4Identity(), math.NewMat3Identity(), size)

	assert.Equal(t, uint32(3), readUint32(t, data, text.AtlasIndexUniformOffset))
}

func TestLayoutStaticInstanced(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	handle := s.Geometries.Add(*scene.NewPlaneGeometry())

	instanced := scene.NewStaticInstancedMesh(handle, scene.MaterialLambert)
	instanced.Transforms = make([]math.Transform, 3)
	for i := range instanced.Transforms {
		instanced.Transforms[i] = math.NewTransform()
		instanced.Transforms[i].TranslateY(float32(i))
	}

	renderInfo, size := packer.LayoutStatic(s, nil, []*scene.StaticInstancedMesh{instanced})
	require.Len(t, renderInfo, 3)

	// All instances share the geometry, only the uniform offset strides.
	for i, info := range renderInfo {
		assert.Equal(t, renderInfo[0].IndexOffset, info.IndexOffset)
		assert.Equal(t, renderInfo[0].AttributeOffset, info.AttributeOffset)
		assert.Equal(t, renderInfo[0].UniformOffset+i*testUniformAlignment, info.UniformOffset)
		assert.Equal(t, 6, info.IndexCount)
		assert.Equal(t, scene.MaterialLambert, info.Material)
	}
	assert.Equal(t, renderInfo[2].UniformOffset+testUniformAlignment, size)

	data := packer.PackStatic(s, nil, []*scene.StaticInstancedMesh{instanced}, renderInfo, size)
	for i, info := range renderInfo {
		assert.Equal(t, float32(i), readFloat32(t, data, info.UniformOffset+7*4))
	}
}

func TestLayoutStaticIdempotent(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	handle := s.Geometries.Add(*scene.NewBoxGeometry())
	meshes := []*scene.StaticMesh{
		scene.NewStaticMesh(handle, scene.MaterialBasic),
		scene.NewStaticMesh(handle, scene.MaterialLambert),
	}

	firstInfo, firstSize := packer.LayoutStatic(s, meshes, nil)
	secondInfo, secondSize := packer.LayoutStatic(s, meshes, nil)

	assert.Equal(t, firstInfo, secondInfo)
	assert.Equal(t, firstSize, secondSize)
}

func TestLayoutGrowthPreservesEarlierObjects(t *testing.T) {
	packer := NewFramePacker(testUniformAlignment)
	s := newTestScene()

	handle := s.Geometries.Add(*scene.NewTriangleGeometry())
	first := scene.NewMesh(handle, scene.MaterialBasic)
	s.Meshes = append(s.Meshes, first)

	smallSize := packer.Layout(s, fakeFontResolver{})
	firstOffsets := [3]int{first.IndexOffset, first.AttributeOffset, first.UniformOffset}

	s.Meshes = append(s.Meshes, scene.NewMesh(handle, scene.MaterialLambert))
	largeSize := packer.Layout(s, fakeFontResolver{})

	assert.Greater(t, largeSize, smallSize)
	assert.Equal(t, firstOffsets, [3]int{first.IndexOffset, first.AttributeOffset, first.UniformOffset})
}
