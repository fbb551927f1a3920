package display

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas rasterises text into a Width×Height monochrome image. Hardware
// panels embed it and copy the pixels out on Flush.
type Canvas struct {
	img  *image.Gray
	face font.Face
}

// NewCanvas returns a blank canvas using the 7×13 bitmap face.
func NewCanvas() *Canvas {
	return &Canvas{
		img:  image.NewGray(image.Rect(0, 0, Width, Height)),
		face: basicfont.Face7x13,
	}
}

func (c *Canvas) Begin() error {
	draw.Draw(c.img, c.img.Bounds(), image.Black, image.Point{}, draw.Src)
	return nil
}

func (c *Canvas) DrawText(x, y int, s string) error {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.White,
		Face: c.face,
		Dot:  fixed.P(x, y+c.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return nil
}

// Flush is a no-op; the canvas is its own output.
func (c *Canvas) Flush() error {
	return nil
}

// Lit reports whether the pixel at x, y is on.
func (c *Canvas) Lit(x, y int) bool {
	return c.img.GrayAt(x, y).Y >= 0x80
}

// litCount returns the number of pixels switched on.
func (c *Canvas) litCount() int {
	n := 0
	for _, v := range c.img.Pix {
		if v >= 0x80 {
			n++
		}
	}
	return n
}
