// SPDX-License-Identifier: GPL-2.0-or-later

package texture

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrOddSkyWidth = errors.New("sky texture width is odd")
	ErrUnknownSlot = errors.New("unknown texture slot")
)

// Class is the derived purpose of a texture.
type Class int

const (
	ClassDefault Class = iota
	ClassSky
	ClassFluid
	ClassDebug
)

func (c Class) String() string {
	switch c {
	case ClassDefault:
		return "default"
	case ClassSky:
		return "sky"
	case ClassFluid:
		return "fluid"
	case ClassDebug:
		return "debug"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Classify derives the Class from name and size. The first matching rule
// wins.
func Classify(name string, width, height uint32) Class {
	switch {
	case strings.HasPrefix(name, "clip"):
		return ClassDebug
	case strings.HasPrefix(name, "trigger"):
		return ClassDebug
	case uint64(width)*uint64(height) == 0:
		return ClassDebug
	case strings.HasPrefix(name, "sky"):
		return ClassSky
	case strings.HasPrefix(name, "*"):
		return ClassFluid
	}
	return ClassDefault
}

// Kind selects one of the destination texture arrays.
type Kind int

const (
	NotRenderable Kind = iota
	Default
	Sky
	Fluid
)

func (k Kind) String() string {
	switch k {
	case NotRenderable:
		return "none"
	case Default:
		return "default"
	case Sky:
		return "sky"
	case Fluid:
		return "fluid"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reason tells why a slot is not renderable.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonDebug
	ReasonAbsent
)

func (r Reason) String() string {
	switch r {
	case ReasonDebug:
		return "debug"
	case ReasonAbsent:
		return "absent"
	}
	return ""
}

// Destination is where a slot ended up. Index is only meaningful when Kind is
// not NotRenderable. For sky textures Index is the front image, the back
// image is at Index+1.
type Destination struct {
	Kind   Kind
	Index  int
	Reason Reason
}

func (d Destination) Renderable() bool {
	return d.Kind != NotRenderable
}

func (d Destination) String() string {
	if !d.Renderable() {
		return "none(" + d.Reason.String() + ")"
	}
	return fmt.Sprintf("%v[%d]", d.Kind, d.Index)
}

// Image is an RGBA8 image, row major without padding.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage allocates a transparent black image.
func NewImage(w, h int) Image {
	return Image{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

// SplitSky returns the left half of every row as front and the right half
// as back.
func SplitSky(img Image) (front, back Image, err error) {
	if img.Width%2 != 0 {
		return Image{}, Image{}, errors.Wrapf(ErrOddSkyWidth, "width %d", img.Width)
	}
	hw := img.Width / 2
	front = NewImage(hw, img.Height)
	back = NewImage(hw, img.Height)
	rowBytes := hw * 4
	for y := 0; y < img.Height; y++ {
		src := img.Pix[y*img.Width*4:]
		copy(front.Pix[y*rowBytes:], src[:rowBytes])
		copy(back.Pix[y*rowBytes:], src[rowBytes:2*rowBytes])
	}
	return front, back, nil
}

// JoinSky is the inverse of SplitSky.
func JoinSky(front, back Image) (Image, error) {
	if front.Width != back.Width || front.Height != back.Height {
		return Image{}, errors.Errorf("sky halves differ: %dx%d and %dx%d", front.Width, front.Height, back.Width, back.Height)
	}
	img := NewImage(front.Width*2, front.Height)
	rowBytes := front.Width * 4
	for y := 0; y < front.Height; y++ {
		dst := img.Pix[y*rowBytes*2:]
		copy(dst, front.Pix[y*rowBytes:(y+1)*rowBytes])
		copy(dst[rowBytes:], back.Pix[y*rowBytes:(y+1)*rowBytes])
	}
	return img, nil
}
