package math

import "testing"

func TestVec3Sub(t *testing.T) {
	got := Vec3{4, 6, 8}.Sub(Vec3{1, 2, 3})
	want := Vec3{3, 4, 5}
	if got != want {
		t.Errorf("Vec3.Sub() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 0, -4}

	if got := a.Min(b); got != (Vec3{1, 0, -4}) {
		t.Errorf("Vec3.Min() = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -2}) {
		t.Errorf("Vec3.Max() = %v", got)
	}
	if got := a.Midpoint(b); got != (Vec3{2, 2.5, -3}) {
		t.Errorf("Vec3.Midpoint() = %v", got)
	}
}
