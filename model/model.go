// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"kwark/math/vec"
)

type Type int

const (
	ModBrush Type = iota
	ModSprite
	ModAlias
)

func (t Type) String() string {
	switch t {
	case ModBrush:
		return "brush"
	case ModSprite:
		return "sprite"
	case ModAlias:
		return "alias"
	}
	return "unknown"
}

// Model is the part every decoded level, alias model and sprite has in
// common.
type Model interface {
	Type() Type
	Mins() vec.Vec3
	Maxs() vec.Vec3
}
