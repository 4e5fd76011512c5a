package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"visionbridge/internal/monitoring"
	vb "visionbridge/pkg/visionbridge"
)

func (a *app) detectCmd() *cobra.Command {
	var (
		family string
		model  string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Find faces, pedestrians or cars in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fam := vb.DetectorFamily(family)
			switch fam {
			case vb.FamilyFace, vb.FamilyPedestrian, vb.FamilyCar:
			default:
				return fmt.Errorf("unknown detector family %q", family)
			}
			if model != "" && !fileExists(model) {
				return fmt.Errorf("model file %s does not exist", model)
			}

			raw, err := loadRaw(args[0])
			if err != nil {
				return err
			}
			im, err := a.decode(raw, vb.ModeGray)
			if err != nil {
				return err
			}
			defer im.Close()

			comps, err := im.Detect(vb.DetectRequest{Family: fam, ModelPath: model, Params: a.cfg.Detector})
			if err != nil {
				return err
			}
			monitoring.Logger().Info("detect: done", "family", fam, "found", len(comps))

			if out != "" {
				o := newOverlay(raw)
				for _, c := range comps {
					o.rect(c.Rect, boxColor)
					o.label(fmt.Sprintf("%d", c.Neighbors), c.Rect.Min.X+2, c.Rect.Min.Y+12)
				}
				if err := o.save(out); err != nil {
					return err
				}
			}
			return emit(cmd, comps)
		},
	}
	f := cmd.Flags()
	f.StringVar(&family, "family", string(vb.FamilyFace), "detector family: face, pedestrian or car")
	f.StringVar(&model, "model", "", "model file for the detector")
	f.StringVar(&out, "out", "", "write a PNG with the detections boxed")
	return cmd
}
