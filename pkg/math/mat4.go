package math

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
type Mat4 [16]float32

// Ortho returns an orthographic projection matrix.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (far - near)

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -(far + near) * fn, 1,
	}
}

// Frame returns an orthographic projection that fits a square of half size
// extent around center into a viewport with the given aspect (width/height).
// The shorter viewport axis spans the whole square.
func Frame(center Vec3, extent, aspect float32) Mat4 {
	hw, hh := extent, extent
	if aspect >= 1 {
		hw *= aspect
	} else if aspect > 0 {
		hh /= aspect
	}
	return Ortho(center[0]-hw, center[0]+hw, center[1]-hh, center[1]+hh, -extent*100, extent*100)
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}
