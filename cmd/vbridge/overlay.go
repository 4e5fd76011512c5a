package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	vb "visionbridge/pkg/visionbridge"
)

var (
	boxColor   = color.RGBA{80, 255, 80, 255}
	pointColor = color.RGBA{255, 220, 40, 255}
	arrowColor = color.RGBA{255, 80, 80, 255}
	textColor  = color.RGBA{255, 255, 255, 255}
)

// overlay draws annotations over a copy of a decoded frame.
type overlay struct {
	img  *image.RGBA
	face font.Face
}

func newOverlay(raw vb.RawImage) *overlay {
	img := image.NewRGBA(bounds(raw))
	copy(img.Pix, raw.Pix)
	return &overlay{img: img, face: basicfont.Face7x13}
}

func (o *overlay) rect(r image.Rectangle, c color.RGBA) {
	tl, br := r.Min, r.Max.Sub(image.Pt(1, 1))
	tr, bl := image.Pt(br.X, tl.Y), image.Pt(tl.X, br.Y)
	o.line(tl, tr, c)
	o.line(tr, br, c)
	o.line(br, bl, c)
	o.line(bl, tl, c)
}

// point draws a circle outline of the given radius around p.
func (o *overlay) point(p vb.Point2f, radius int, c color.RGBA) {
	center := pixel(p)
	steps := 8 * max(radius, 1)
	for i := range steps {
		a := 2 * math.Pi * float64(i) / float64(steps)
		dx := int(math.Round(float64(radius) * math.Cos(a)))
		dy := int(math.Round(float64(radius) * math.Sin(a)))
		o.img.SetRGBA(center.X+dx, center.Y+dy, c)
	}
}

// arrow draws a line from from to to with a two-wing head at to. Flow
// vectors are short, so the head shrinks with the line.
func (o *overlay) arrow(from, to vb.Point2f, c color.RGBA) {
	a, b := pixel(from), pixel(to)
	o.line(a, b, c)

	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length < 2 {
		return
	}
	dx, dy = dx/length, dy/length
	head := math.Min(6, length/2)
	bx, by := float64(b.X)-dx*head, float64(b.Y)-dy*head
	w := head / 2
	o.line(b, image.Pt(int(bx+dy*w), int(by-dx*w)), c)
	o.line(b, image.Pt(int(bx-dy*w), int(by+dx*w)), c)
}

// line draws a 1px segment between a and b, both ends included.
func (o *overlay) line(a, b image.Point, c color.RGBA) {
	d := b.Sub(a)
	step := image.Pt(sign(d.X), sign(d.Y))
	d = image.Pt(d.X*step.X, -d.Y*step.Y)
	acc := d.X + d.Y
	for p := a; ; {
		o.img.SetRGBA(p.X, p.Y, c)
		if p == b {
			return
		}
		e := 2 * acc
		if e >= d.Y {
			acc += d.Y
			p.X += step.X
		}
		if e <= d.X {
			acc += d.X
			p.Y += step.Y
		}
	}
}

func (o *overlay) label(s string, x, y int) {
	(&font.Drawer{
		Dst:  o.img,
		Src:  image.NewUniform(textColor),
		Face: o.face,
		Dot:  fixed.P(x, y),
	}).DrawString(s)
}

func (o *overlay) save(path string) error {
	return writePNG(path, o.img)
}

// pngFile writes encoded frames to a PNG file.
type pngFile string

func (p pngFile) WriteImageData(pix []byte, width, height int) error {
	img := &image.RGBA{Pix: pix, Stride: 4 * width, Rect: image.Rect(0, 0, width, height)}
	return writePNG(string(p), img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func pixel(p vb.Point2f) image.Point {
	return image.Pt(int(math.Round(float64(p.X))), int(math.Round(float64(p.Y))))
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
