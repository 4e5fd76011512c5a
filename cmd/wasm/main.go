//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"visionbridge/internal/config"
	"visionbridge/internal/monitoring"
	vb "visionbridge/pkg/visionbridge"
	"visionbridge/pkg/visionbridge/cvengine"
)

var (
	engine = cvengine.New()
	cfg    = config.Default()
	cache  = vb.NewMatCache(cfg.CacheCapacity)
	objs   = newRegistry()
)

func main() {
	funcs := map[string]func([]js.Value) (interface{}, error){
		"newImage":      newImage,
		"convert":       convert,
		"write":         write,
		"size":          size,
		"canny":         canny,
		"flipX":         flipX,
		"slice":         slice,
		"blur":          blur,
		"closeOutline":  closeOutline,
		"detect":        detect,
		"swtDetect":     swtDetect,
		"mser":          mser,
		"siftMatch":     siftMatch,
		"newTracker":    newTracker,
		"track":         track,
		"newFlow":       newFlow,
		"addPoints":     addPoints,
		"flow":          flow,
		"delete":        deleteObject,
		"liveResources": liveResources,
	}
	api := make(map[string]interface{}, len(funcs))
	for name, fn := range funcs {
		api[name] = js.FuncOf(guarded(fn))
	}
	js.Global().Set("visionbridge", js.ValueOf(api))
	monitoring.Logger().Info("wasm: visionbridge ready", "backend", engine.Name())
	select {} // block forever
}

// guarded turns errors and precondition panics into {error: msg} results
// so a bad call from script does not take the module down.
func guarded(fn func([]js.Value) (interface{}, error)) func(js.Value, []js.Value) interface{} {
	return func(_ js.Value, args []js.Value) (res interface{}) {
		defer func() {
			if r := recover(); r != nil {
				monitoring.Logger().Error("wasm: call panicked", "panic", r)
				res = errorResult(fmt.Sprint(r))
			}
		}()
		v, err := fn(args)
		if err != nil {
			return errorResult(err.Error())
		}
		return v
	}
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}

func need(args []js.Value, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
