// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"testing"
)

func TestArray(t *testing.T) {
	v := Vec3{1, 2, 3}
	if VFromA(v.Array()) != v {
		t.Errorf("VFromA(Array()) changed %v", v)
	}
}

func TestDot(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}
	if got := Dot(a, b); got != 12 {
		t.Errorf("Dot(%v,%v) = %v want 12", a, b, got)
	}
}

func TestBox(t *testing.T) {
	var b Box
	if !b.Empty() {
		t.Errorf("zero Box is not empty")
	}
	b.Extend(Vec3{1, 5, -2})
	b.Extend(Vec3{-3, 6, 0})
	if b.Mins != (Vec3{-3, 5, -2}) || b.Maxs != (Vec3{1, 6, 0}) {
		t.Errorf("Box = %v..%v", b.Mins, b.Maxs)
	}
	if b.Empty() {
		t.Errorf("extended Box is empty")
	}
	if !newBox().Empty() {
		t.Errorf("returned zero Box is not empty")
	}
}

func newBox() Box {
	return Box{}
}
