package math

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func TestMat4ComposeIdentity(t *testing.T) {
	var m Mat4
	m.Compose(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
	assert.True(t, m.Compare(NewMat4Identity(), tolerance))
}

func TestMat4ComposeTranslation(t *testing.T) {
	var m Mat4
	m.Compose(NewVec3(1, 2, 3), NewQuatIdentity(), NewVec3One())
	assert.True(t, m.Compare(NewMat4Translation(NewVec3(1, 2, 3)), tolerance))
}

func TestMat4InverseViewRoundTrip(t *testing.T) {
	// Inverting a camera world matrix must map the camera's own position
	// back to the origin.
	var world Mat4
	world.Compose(NewVec3(1, 2, 3), NewQuatIdentity(), NewVec3One())

	view := world.Inverse()
	origin := NewVec3(1, 2, 3).TransformPoint(view)

	assert.True(t, origin.Compare(NewVec3Zero(), tolerance))
}

func TestMat4InverseRotated(t *testing.T) {
	var world Mat4
	rotation := NewQuatFromAxisAngle(NewVec3Up(), gomath.Pi/3)
	world.Compose(NewVec3(-4, 7, 0.5), rotation, NewVec3One())

	product := world.Mul(world.Inverse())
	assert.True(t, product.Compare(NewMat4Identity(), tolerance))
}

func TestMat4MulIdentity(t *testing.T) {
	var m Mat4
	m.Compose(NewVec3(5, -1, 2), NewQuatFromAxisAngle(NewVec3Right(), 0.7), NewVec3(2, 2, 2))
	assert.True(t, m.Mul(NewMat4Identity()).Compare(m, tolerance))
	assert.True(t, NewMat4Identity().Mul(m).Compare(m, tolerance))
}

func TestMat3UIProjection(t *testing.T) {
	m := NewMat3UIProjection(800, 600)

	assert.InDelta(t, 2.0/800.0, m.Elements[0][0], tolerance)
	assert.InDelta(t, 2.0/600.0, m.Elements[1][1], tolerance)
	assert.InDelta(t, -1.0, m.Elements[0][2], tolerance)
	assert.InDelta(t, -1.0, m.Elements[1][2], tolerance)
}

func TestMat3ToPaddedArray(t *testing.T) {
	m := NewMat3From([3][3]float32{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})

	expected := [12]float32{
		1, 2, 3, 0,
		4, 5, 6, 0,
		7, 8, 9, 0,
	}
	assert.Equal(t, expected, m.ToPaddedArray())
}

func TestMat3MulComposition(t *testing.T) {
	a := NewMat3From([3][3]float32{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})

	expected := NewMat3From([3][3]float32{
		{30, 36, 42},
		{66, 81, 96},
		{102, 126, 150},
	})
	assert.True(t, a.Mul(a).Compare(expected, tolerance))
}

func TestQuaternionRotatesVector(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), gomath.Pi/2)
	rotated := NewVec3(1, 0, 0).ApplyQuaternion(q)
	assert.True(t, rotated.Compare(NewVec3(0, 0, -1), tolerance))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(10, 0, 5))
	assert.Equal(t, 0, Clamp(-10, 0, 5))
	assert.Equal(t, 3, Clamp(3, 0, 5))
	assert.Equal(t, float32(1.5), Clamp(float32(1.5), 1.0, 2.0))
}
