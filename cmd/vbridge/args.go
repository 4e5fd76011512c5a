package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/samber/lo"

	vb "visionbridge/pkg/visionbridge"
)

func parseMode(s string) (vb.ChannelMode, error) {
	switch strings.ToLower(s) {
	case "gray", "grey":
		return vb.ModeGray, nil
	case "rgb", "color":
		return vb.ModeRGBColor, nil
	}
	return 0, fmt.Errorf("unknown channel mode %q (want gray or rgb)", s)
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' })
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseRect reads "x0,y0,x1,y1".
func parseRect(s string) (image.Rectangle, error) {
	v, err := parseFloats(s)
	if err != nil {
		return image.Rectangle{}, err
	}
	if len(v) != 4 {
		return image.Rectangle{}, fmt.Errorf("rectangle %q needs 4 values, got %d", s, len(v))
	}
	r := image.Rect(int(v[0]), int(v[1]), int(v[2]), int(v[3]))
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("rectangle %q is empty", s)
	}
	return r, nil
}

// parsePoints reads a flat "x,y;x,y" list.
func parsePoints(s string) ([]vb.Point2f, error) {
	v, err := parseFloats(s)
	if err != nil {
		return nil, err
	}
	if len(v)%2 != 0 {
		return nil, fmt.Errorf("point list %q has an odd number of coordinates", s)
	}
	return lo.Map(lo.Chunk(v, 2), func(xy []float64, _ int) vb.Point2f {
		return vb.Point2f{X: float32(xy[0]), Y: float32(xy[1])}
	}), nil
}

// gridPoints seeds a regular grid of points, each at the center of a
// step x step cell.
func gridPoints(width, height, step int) []vb.Point2f {
	if step < 1 {
		return nil
	}
	var pts []vb.Point2f
	for y := step / 2; y < height; y += step {
		for x := step / 2; x < width; x += step {
			pts = append(pts, vb.Point2f{X: float32(x), Y: float32(y)})
		}
	}
	return pts
}

func bounds(raw vb.RawImage) image.Rectangle {
	return image.Rect(0, 0, raw.Width, raw.Height)
}

func sameSize(raws []vb.RawImage) error {
	if len(raws) == 0 {
		return nil
	}
	first := raws[0]
	_, idx, found := lo.FindIndexOf(raws, func(r vb.RawImage) bool {
		return r.Width != first.Width || r.Height != first.Height
	})
	if found {
		return fmt.Errorf("frame %d is %dx%d, frame 0 is %dx%d", idx, raws[idx].Width, raws[idx].Height, first.Width, first.Height)
	}
	return nil
}
