// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"bufio"
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"kwark/palette"
	"kwark/texture"
)

type Format int

const (
	PNG Format = iota
	WebP
	TGA
	BMP
)

var (
	ErrFormat = errors.New("unknown image format")
	ErrSize   = errors.New("not enough image data")
)

var formatNames = map[Format]string{
	PNG:  "png",
	WebP: "webp",
	TGA:  "tga",
	BMP:  "bmp",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return "unknown"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(s), ".")
	for f, n := range formatNames {
		if n == s {
			return f, nil
		}
	}
	return 0, errors.Wrapf(ErrFormat, "%q", s)
}

type Options struct {
	// Scale is an integer upscale factor, 0 and 1 keep the size.
	Scale int
	// EdgeFix bleeds opaque colors into fully transparent pixels.
	EdgeFix bool
}

// NRGBA wraps the pixels of img without copying.
func NRGBA(img texture.Image) (*image.NRGBA, error) {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) < img.Width*img.Height*4 {
		return nil, errors.Wrapf(ErrSize, "%d bytes for %dx%d", len(img.Pix), img.Width, img.Height)
	}
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}, nil
}

func prepare(img texture.Image, o Options) (image.Image, error) {
	if o.EdgeFix {
		c := texture.NewImage(img.Width, img.Height)
		copy(c.Pix, img.Pix)
		palette.AlphaEdgeFix(c.Width, c.Height, c.Pix)
		img = c
	}
	src, err := NRGBA(img)
	if err != nil {
		return nil, err
	}
	if o.Scale <= 1 {
		return src, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width*o.Scale, img.Height*o.Scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// Write encodes img to w. img is expected to be RGBA 8bit data.
func Write(w io.Writer, img texture.Image, f Format, o Options) error {
	m, err := prepare(img, o)
	if err != nil {
		return err
	}
	switch f {
	case PNG:
		err = png.Encode(w, m)
	case WebP:
		err = nativewebp.Encode(w, m, nil)
	case TGA:
		err = tga.Encode(w, m)
	case BMP:
		err = bmp.Encode(w, m)
	default:
		return errors.Wrapf(ErrFormat, "%d", int(f))
	}
	return errors.Wrapf(err, "encode %v", f)
}

// WriteFile writes img to name, creating or truncating it.
func WriteFile(name string, img texture.Image, f Format, o Options) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(file)
	if err := Write(bw, img, f, o); err != nil {
		file.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Sniff guesses the format from the first bytes. TGA has no magic, so
// everything unknown is treated as TGA.
func Sniff(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return WebP
	case bytes.HasPrefix(head, []byte("BM")):
		return BMP
	}
	return TGA
}

// Read decodes any of the supported formats back into RGBA.
func Read(r io.Reader) (texture.Image, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(12)
	if err != nil && err != io.EOF {
		return texture.Image{}, errors.Wrap(err, "decode")
	}
	var m image.Image
	switch Sniff(head) {
	case PNG:
		m, err = png.Decode(br)
	case WebP:
		m, err = webp.Decode(br)
	case BMP:
		m, err = bmp.Decode(br)
	default:
		m, err = tga.Decode(br)
	}
	if err != nil {
		return texture.Image{}, errors.Wrap(err, "decode")
	}
	b := m.Bounds()
	out := texture.NewImage(b.Dx(), b.Dy())
	dst, err := NRGBA(out)
	if err != nil {
		return texture.Image{}, err
	}
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return out, nil
}
