package actor

import (
	"math"

	"github.com/nathoo/raidcore/types"
)

// LookAt returns the yaw, in radians, that turns something at from to face
// to on the horizontal plane. The target's height is ignored. Yaw 0 faces
// +Z and grows toward +X. It reports false when to is directly above or
// below from.
func LookAt(from, to types.Vec3) (float64, bool) {
	dx, dz := to.X-from.X, to.Z-from.Z
	if dx == 0 && dz == 0 {
		return 0, false
	}
	return math.Atan2(dx, dz), true
}

// Forward is the unit direction for yaw on the horizontal plane.
func Forward(yaw float64) types.Vec3 {
	return types.Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}

// horizontalStep moves from toward to by at most dist on the horizontal
// plane, keeping from's height.
func horizontalStep(from, to types.Vec3, dist float64) types.Vec3 {
	dx, dz := to.X-from.X, to.Z-from.Z
	d := math.Hypot(dx, dz)
	if d == 0 || dist <= 0 {
		return from
	}
	if dist >= d {
		return types.Vec3{X: to.X, Y: from.Y, Z: to.Z}
	}
	k := dist / d
	return types.Vec3{X: from.X + dx*k, Y: from.Y, Z: from.Z + dz*k}
}
