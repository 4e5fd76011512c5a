//go:build purego || js

package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	vb "visionbridge/pkg/visionbridge"
)

func loadRaw(path string) (vb.RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return vb.RawImage{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return vb.RawImage{}, fmt.Errorf("decoding image %s: %w", path, err)
	}
	return vb.FromImage(img), nil
}
