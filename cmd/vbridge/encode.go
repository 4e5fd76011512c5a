package main

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"visionbridge/internal/monitoring"
)

func (a *app) encodeCmd() *cobra.Command {
	var (
		mode    string
		crop    string
		flip    bool
		blur    float64
		canny   bool
		outline bool
	)
	cmd := &cobra.Command{
		Use:   "encode <input> <output.png>",
		Short: "Decode an image, apply operations and write it back as PNG",
		Long: "Decode an image in gray or rgb mode, then apply, in order: " +
			"--slice, --flip, --blur, --canny, --close.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			raw, err := loadRaw(args[0])
			if err != nil {
				return err
			}
			im, err := a.decode(raw, m)
			if err != nil {
				return err
			}
			defer im.Close()

			if crop != "" {
				r, err := parseRect(crop)
				if err != nil {
					return fmt.Errorf("--slice: %w", err)
				}
				if !r.In(image.Rect(0, 0, im.Width(), im.Height())) {
					return fmt.Errorf("--slice %v is outside the %dx%d image", r, im.Width(), im.Height())
				}
				if err := im.Slice(r); err != nil {
					return err
				}
			}
			if flip {
				if err := im.FlipX(); err != nil {
					return err
				}
			}
			if blur > 0 {
				if err := im.Blur(blur); err != nil {
					return err
				}
			}
			if canny {
				c := a.cfg.SWT
				if err := im.Canny(c.Size, float64(c.LowThresh), float64(c.HighThresh)); err != nil {
					return err
				}
			}
			if outline {
				if err := im.CloseOutline(); err != nil {
					return err
				}
			}
			if err := im.Write(pngFile(args[1])); err != nil {
				return err
			}
			monitoring.Logger().Info("encode: wrote image", "path", args[1], "width", im.Width(), "height", im.Height(), "channels", im.Channels())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&mode, "mode", "rgb", "channel mode: gray or rgb")
	f.StringVar(&crop, "slice", "", "crop rectangle x0,y0,x1,y1")
	f.BoolVar(&flip, "flip", false, "mirror horizontally")
	f.Float64Var(&blur, "blur", 0, "Gaussian blur sigma")
	f.BoolVar(&canny, "canny", false, "replace the image with its Canny edge map")
	f.BoolVar(&outline, "close", false, "close gaps in a binary outline")
	return cmd
}
