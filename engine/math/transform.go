package math

func NewTransform() Transform {
	return Transform{
		Position: NewVec3Zero(),
		Rotation: NewQuatIdentity(),
		Scale:    NewVec3One(),
		Matrix:   NewMat4Identity(),
	}
}

// UpdateMatrix recomposes the world matrix from position, rotation and
// scale. Callers mutating those fields directly must call this before the
// matrix is read.
func (t *Transform) UpdateMatrix() {
	t.Matrix.Compose(t.Position, t.Rotation, t.Scale)
}

func (t *Transform) TranslateOnAxis(axis Vec3, distance float32) {
	axis = axis.ApplyQuaternion(t.Rotation)
	t.Position = t.Position.Add(axis.MulScalar(distance))
}

func (t *Transform) TranslateX(distance float32) {
	t.TranslateOnAxis(NewVec3Right(), distance)
}

func (t *Transform) TranslateY(distance float32) {
	t.TranslateOnAxis(NewVec3Up(), distance)
}

func (t *Transform) TranslateZ(distance float32) {
	t.TranslateOnAxis(NewVec3(0, 0, 1), distance)
}

func (t *Transform) RotateOnAxis(axis Vec3, angle float32) {
	t.Rotation = t.Rotation.Mul(NewQuatFromAxisAngle(axis, angle))
}

func (t *Transform) RotateX(angle float32) {
	t.RotateOnAxis(NewVec3Right(), angle)
}

func (t *Transform) RotateY(angle float32) {
	t.RotateOnAxis(NewVec3Up(), angle)
}

func (t *Transform) RotateZ(angle float32) {
	t.RotateOnAxis(NewVec3(0, 0, 1), angle)
}
