package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion struct {
	X, Y, Z, W float32
}

/**
 * @brief A 3x3 matrix in row-major order, used for UI-space transforms.
 * The third row is an implicit homogeneous row for 2D transforms.
 */
type Mat3 struct {
	Elements [3][3]float32
}

/**
 * @brief A 4x4 matrix in row-major order with the translation in the
 * last column, typically used to represent object transformations.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the transform of an object in the world. The matrix
 * is only valid after UpdateMatrix has been called following the last
 * mutation of position, rotation or scale.
 */
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
	Matrix   Mat4
}
