//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	vb "visionbridge/pkg/visionbridge"
)

// hostSource reads pixels through the page's readImageData(source), which
// returns an ImageData-like {data, width, height}.
type hostSource struct {
	v js.Value
}

func (s hostSource) ReadImageData() (vb.RawImage, error) {
	fn := js.Global().Get("readImageData")
	if fn.Type() != js.TypeFunction {
		return vb.RawImage{}, fmt.Errorf("readImageData is not defined")
	}
	data := fn.Invoke(s.v)
	if data.IsNull() || data.IsUndefined() {
		return vb.RawImage{}, fmt.Errorf("readImageData returned nothing")
	}
	px := data.Get("data")
	raw := vb.RawImage{
		Pix:    make([]byte, px.Get("length").Int()),
		Width:  data.Get("width").Int(),
		Height: data.Get("height").Int(),
	}
	js.CopyBytesToGo(raw.Pix, px)
	return raw, nil
}

// hostWriter hands RGBA pixels to the page's writeImageData(target, data,
// width, height).
type hostWriter struct {
	v js.Value
}

func (w hostWriter) WriteImageData(pix []byte, width, height int) error {
	fn := js.Global().Get("writeImageData")
	if fn.Type() != js.TypeFunction {
		return fmt.Errorf("writeImageData is not defined")
	}
	arr := js.Global().Get("Uint8ClampedArray").New(len(pix))
	js.CopyBytesToJS(arr, pix)
	fn.Invoke(w.v, arr, width, height)
	return nil
}
