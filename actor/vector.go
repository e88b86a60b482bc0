package actor

import "github.com/go-gl/mathgl/mgl64"

// Normalize returns the unit vector of v, or the zero vector when v has no length
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / l)
}

// SetLength scales v to length l, keeping the zero vector as is
func SetLength(v mgl64.Vec3, l float64) mgl64.Vec3 {
	return Normalize(v).Mul(l)
}

// Project returns the projection of v on the direction of onto
func Project(v, onto mgl64.Vec3) mgl64.Vec3 {
	l2 := onto.LenSqr()
	if l2 == 0 {
		return mgl64.Vec3{}
	}
	return onto.Mul(v.Dot(onto) / l2)
}
