package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"visionbridge/internal/monitoring"
	vb "visionbridge/pkg/visionbridge"
)

func (a *app) matchCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "match <scene> <object>",
		Short: "Find the object's SIFT features in the scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := loadAll(args)
			if err != nil {
				return err
			}
			scene, err := a.decode(raws[0], vb.ModeGray)
			if err != nil {
				return err
			}
			defer scene.Close()
			object, err := a.decode(raws[1], vb.ModeGray)
			if err != nil {
				return err
			}
			defer object.Close()

			res, err := scene.SIFTMatch(object, a.cfg.SIFT)
			if err != nil {
				return err
			}
			monitoring.Logger().Info("match: done",
				"scene_keypoints", len(res.ImageKeypoints),
				"object_keypoints", len(res.ObjectKeypoints),
				"matches", len(res.Matches))

			if out != "" {
				o := newOverlay(raws[0])
				for _, m := range res.Matches {
					kp := res.ImageKeypoints[m.Target]
					o.point(vb.Point2f{X: kp.X, Y: kp.Y}, max(2, int(kp.Scale)), pointColor)
				}
				o.label(fmt.Sprintf("%d matches", len(res.Matches)), 4, 14)
				if err := o.save(out); err != nil {
					return err
				}
			}
			return emit(cmd, res)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write a PNG with the matched scene keypoints circled")
	return cmd
}
