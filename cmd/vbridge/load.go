package main

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	vb "visionbridge/pkg/visionbridge"
)

// loadAll reads every path concurrently and returns the images in
// argument order. The first failure wins.
func loadAll(paths []string) ([]vb.RawImage, error) {
	raws := make([]vb.RawImage, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		g.Go(func() error {
			raw, err := loadRaw(p)
			if err != nil {
				return err
			}
			raws[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raws, nil
}
