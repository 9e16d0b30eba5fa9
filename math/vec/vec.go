// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
)

type Vec3 struct {
	X, Y, Z float32
}

func VFromA(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Dot returns a dot b
func Dot(a Vec3, b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Box is an axis aligned bounding box. The zero value is empty.
type Box struct {
	Mins, Maxs Vec3
	valid      bool
}

// Extend grows the box to contain p.
func (b *Box) Extend(p Vec3) {
	if !b.valid {
		b.Mins, b.Maxs, b.valid = p, p, true
		return
	}
	b.Mins = Vec3{math32.Min(b.Mins.X, p.X), math32.Min(b.Mins.Y, p.Y), math32.Min(b.Mins.Z, p.Z)}
	b.Maxs = Vec3{math32.Max(b.Maxs.X, p.X), math32.Max(b.Maxs.Y, p.Y), math32.Max(b.Maxs.Z, p.Z)}
}

func (b Box) Empty() bool {
	return !b.valid
}
