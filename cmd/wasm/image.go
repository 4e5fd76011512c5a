//go:build js && wasm

package main

import (
	"image"
	"syscall/js"

	vb "visionbridge/pkg/visionbridge"
)

func modeArg(args []js.Value, i int) vb.ChannelMode {
	if len(args) > i && args[i].Type() == js.TypeNumber {
		return vb.ChannelMode(args[i].Int())
	}
	return vb.ModeRGBColor
}

// newImage(source, mode) decodes pixels read from source. mode is 1 for
// gray and 3 for color; color is the default.
func newImage(args []js.Value) (interface{}, error) {
	if err := need(args, 1, "newImage(source, mode)"); err != nil {
		return nil, err
	}
	im, err := vb.ReadImage(engine, hostSource{args[0]}, modeArg(args, 1), vb.WithCache(cache))
	if err != nil {
		return nil, err
	}
	return objs.add(im), nil
}

func convert(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "convert(id, mode)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	out, err := im.Convert(modeArg(args, 1))
	if err != nil {
		return nil, err
	}
	return objs.add(out), nil
}

func write(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "write(id, target)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	return nil, im.Write(hostWriter{args[1]})
}

func size(args []js.Value) (interface{}, error) {
	if err := need(args, 1, "size(id)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"width":    im.Width(),
		"height":   im.Height(),
		"channels": im.Channels(),
	}, nil
}

// inPlace looks up the image in args[0] and applies op to it.
func inPlace(args []js.Value, usage string, n int, op func(im *vb.Image) error) (interface{}, error) {
	if err := need(args, n, usage); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	return nil, op(im)
}

func canny(args []js.Value) (interface{}, error) {
	return inPlace(args, "canny(id, size, low, high)", 4, func(im *vb.Image) error {
		return im.Canny(args[1].Int(), args[2].Float(), args[3].Float())
	})
}

func flipX(args []js.Value) (interface{}, error) {
	return inPlace(args, "flipX(id)", 1, (*vb.Image).FlipX)
}

func slice(args []js.Value) (interface{}, error) {
	return inPlace(args, "slice(id, x, y, width, height)", 5, func(im *vb.Image) error {
		return im.Slice(rectArgs(args[1:]))
	})
}

func blur(args []js.Value) (interface{}, error) {
	return inPlace(args, "blur(id, sigma)", 2, func(im *vb.Image) error {
		return im.Blur(args[1].Float())
	})
}

func closeOutline(args []js.Value) (interface{}, error) {
	return inPlace(args, "closeOutline(id)", 1, (*vb.Image).CloseOutline)
}

// rectArgs reads x, y, width, height the way canvas APIs pass them.
func rectArgs(args []js.Value) image.Rectangle {
	x, y := args[0].Int(), args[1].Int()
	return image.Rect(x, y, x+args[2].Int(), y+args[3].Int())
}

func detect(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "detect(id, family, modelPath)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	req := vb.DetectRequest{Family: vb.DetectorFamily(args[1].String()), Params: cfg.Detector}
	if len(args) > 2 && args[2].Type() == js.TypeString {
		req.ModelPath = args[2].String()
	}
	comps, err := im.Detect(req)
	if err != nil {
		return nil, err
	}
	return compsResult(comps), nil
}

func swtDetect(args []js.Value) (interface{}, error) {
	if err := need(args, 1, "swtDetect(id)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	words, err := im.SWTDetect(cfg.SWT)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(words))
	for i, r := range words {
		out[i] = rectResult(r)
	}
	return out, nil
}

// mser(id, outlineId) returns the keypoints and the id of the label image.
func mser(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "mser(id, outlineId)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	outline, err := imageArg(args[1])
	if err != nil {
		return nil, err
	}
	kps, labels, err := im.MSER(outline, cfg.MSER)
	if err != nil {
		return nil, err
	}
	labelImage := vb.ImageFromMat(engine, labels)
	labels.Close()

	jsKps := make([]interface{}, len(kps))
	for i, k := range kps {
		jsKps[i] = map[string]interface{}{
			"x":    k.Keypoint.X,
			"y":    k.Keypoint.Y,
			"m01":  k.M01,
			"m02":  k.M02,
			"m10":  k.M10,
			"m11":  k.M11,
			"m20":  k.M20,
			"rect": rectResult(k.Rect),
			"size": k.Size,
		}
	}
	return map[string]interface{}{
		"keypoints": jsKps,
		"labels":    objs.add(labelImage),
	}, nil
}

func siftMatch(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "siftMatch(id, objectId)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	object, err := imageArg(args[1])
	if err != nil {
		return nil, err
	}
	res, err := im.SIFTMatch(object, cfg.SIFT)
	if err != nil {
		return nil, err
	}
	matches := make([]interface{}, len(res.Matches))
	for i, m := range res.Matches {
		matches[i] = []interface{}{m.Target, m.Query}
	}
	return map[string]interface{}{
		"matches":         matches,
		"imageKeypoints":  keypointsResult(res.ImageKeypoints),
		"objectKeypoints": keypointsResult(res.ObjectKeypoints),
	}, nil
}

func rectResult(r image.Rectangle) map[string]interface{} {
	return map[string]interface{}{
		"x":      r.Min.X,
		"y":      r.Min.Y,
		"width":  r.Dx(),
		"height": r.Dy(),
	}
}

func compResult(c vb.Comp) map[string]interface{} {
	return map[string]interface{}{
		"rect":       rectResult(c.Rect),
		"neighbors":  c.Neighbors,
		"id":         c.Classification.ID,
		"confidence": c.Classification.Confidence,
	}
}

func compsResult(comps []vb.Comp) []interface{} {
	out := make([]interface{}, len(comps))
	for i, c := range comps {
		out[i] = compResult(c)
	}
	return out
}

func keypointsResult(kps []vb.Keypoint) []interface{} {
	out := make([]interface{}, len(kps))
	for i, k := range kps {
		out[i] = map[string]interface{}{
			"x":      k.X,
			"y":      k.Y,
			"octave": k.Octave,
			"level":  k.Level,
			"scale":  k.Scale,
			"angle":  k.Angle,
		}
	}
	return out
}
