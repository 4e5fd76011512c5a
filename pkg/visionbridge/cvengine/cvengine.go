// Package cvengine provides the image algorithm backend for visionbridge.
//
// The default build wraps OpenCV through gocv. Building with -tags purego
// (or for js/wasm) selects a pure Go backend that covers decoding, color
// conversion, flipping, cropping, blurring and outline closing only.
package cvengine

import vb "visionbridge/pkg/visionbridge"

var _ vb.Engine = (*Engine)(nil)
