//go:build !purego && !js

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	vb "visionbridge/pkg/visionbridge"
)

func loadRaw(path string) (vb.RawImage, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return vb.RawImage{}, fmt.Errorf("reading image %s: unreadable or unsupported format", path)
	}
	defer img.Close()

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(img, &rgba, gocv.ColorBGRToRGBA)
	return vb.RawImage{Pix: rgba.ToBytes(), Width: rgba.Cols(), Height: rgba.Rows()}, nil
}
