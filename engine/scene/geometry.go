package scene

// Geometry is the read-only contract consumed by the renderer: a 16-bit
// triangle-list index array and interleaved float32 attributes
// (position vec3, normal vec3).
type Geometry interface {
	VertexIndices() []uint16
	VertexAttributes() []float32
}

// Geometry3D is the plain in-memory geometry used by the built-in shapes
// and by loaded models.
type Geometry3D struct {
	Indices    []uint16
	Attributes []float32
}

func NewGeometry3D(indices []uint16, attributes []float32) *Geometry3D {
	return &Geometry3D{
		Indices:    indices,
		Attributes: attributes,
	}
}

func (g *Geometry3D) VertexIndices() []uint16 {
	return g.Indices
}

func (g *Geometry3D) VertexAttributes() []float32 {
	return g.Attributes
}

func NewTriangleGeometry() *Geometry3D {
	indices := []uint16{
		0, 1, 2,
	}

	attributes := []float32{
		0.0, 0.5, 0.0, 0.0, 0.0, 1.0,
		-0.5, -0.5, 0.0, 0.0, 0.0, 1.0,
		0.5, -0.5, 0.0, 0.0, 0.0, 1.0,
	}

	return NewGeometry3D(indices, attributes)
}

func NewPlaneGeometry() *Geometry3D {
	indices := []uint16{
		0, 2, 3,
		0, 1, 2,
	}

	attributes := []float32{
		0.5, 0.5, 0.0, 0.0, 0.0, 1.0,
		-0.5, 0.5, 0.0, 0.0, 0.0, 1.0,
		-0.5, -0.5, 0.0, 0.0, 0.0, 1.0,
		0.5, -0.5, 0.0, 0.0, 0.0, 1.0,
	}

	return NewGeometry3D(indices, attributes)
}

func NewBoxGeometry() *Geometry3D {
	indices := []uint16{
		0, 3, 2, // top
		0, 2, 1,
		4, 6, 7, // bottom
		4, 5, 6,
		8, 9, 10, // right
		8, 10, 11,
		12, 15, 13, // left
		13, 15, 14,
		16, 17, 18, // front
		16, 18, 19,
		20, 23, 22, // back
		20, 22, 21,
	}

	attributes := []float32{
		0.5, 0.5, 0.5, 0.0, 1.0, 0.0, // top
		-0.5, 0.5, 0.5, 0.0, 1.0, 0.0,
		-0.5, 0.5, -0.5, 0.0, 1.0, 0.0,
		0.5, 0.5, -0.5, 0.0, 1.0, 0.0,
		0.5, -0.5, 0.5, 0.0, -1.0, 0.0, // bottom
		-0.5, -0.5, 0.5, 0.0, -1.0, 0.0,
		-0.5, -0.5, -0.5, 0.0, -1.0, 0.0,
		0.5, -0.5, -0.5, 0.0, -1.0, 0.0,
		-0.5, 0.5, 0.5, -1.0, 0.0, 0.0, // right
		-0.5, 0.5, -0.5, -1.0, 0.0, 0.0,
		-0.5, -0.5, -0.5, -1.0, 0.0, 0.0,
		-0.5, -0.5, 0.5, -1.0, 0.0, 0.0,
		0.5, 0.5, 0.5, 1.0, 0.0, 0.0, // left
		0.5, 0.5, -0.5, 1.0, 0.0, 0.0,
		0.5, -0.5, -0.5, 1.0, 0.0, 0.0,
		0.5, -0.5, 0.5, 1.0, 0.0, 0.0,
		0.5, 0.5, 0.5, 0.0, 0.0, 1.0, // front
		-0.5, 0.5, 0.5, 0.0, 0.0, 1.0,
		-0.5, -0.5, 0.5, 0.0, 0.0, 1.0,
		0.5, -0.5, 0.5, 0.0, 0.0, 1.0,
		0.5, 0.5, -0.5, 0.0, 0.0, -1.0, // back
		-0.5, 0.5, -0.5, 0.0, 0.0, -1.0,
		-0.5, -0.5, -0.5, 0.0, 0.0, -1.0,
		0.5, -0.5, -0.5, 0.0, 0.0, -1.0,
	}

	return NewGeometry3D(indices, attributes)
}
