// SPDX-License-Identifier: GPL-2.0-or-later

package spr

const (
	ST_SYNC = iota
	ST_RAND
)

const (
	SPR_SINGLE = iota
	SPR_GROUP
)

const (
	SPR_VP_PARALLEL_UPRIGHT = iota
	SPR_FACING_UPRIGHT
	SPR_VP_PARALLEL
	SPR_ORIENTED
	SPR_VP_PARALLEL_ORIENTED
)

const (
	spriteVersion = 1
	Magic         = 'P'<<24 | 'S'<<16 | 'D'<<8 | 'I'

	// Transparent is the color index drawn as transparent.
	Transparent = 255
)

type Header struct { // dsprite_t
	ID             int32 // "IDSP"
	Version        int32 // SPRITE_VERSION
	Type           int32 // SPR_VP_PARALLEL_UPRIGHT, ...
	BoundingRadius float32
	MaxWidth       int32
	MaxHeight      int32
	FrameCount     int32
	BeamLength     float32
	SyncType       int32 // ST_SYNC or ST_RAND
}

type frameHeader struct { // dspriteframe_t, followed by Width*Height indices
	Origin [2]int32
	Width  int32
	Height int32
}

const (
	headerSize      = 36
	frameHeaderSize = 16
)
