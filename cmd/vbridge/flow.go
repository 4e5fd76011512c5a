package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"visionbridge/internal/monitoring"
	vb "visionbridge/pkg/visionbridge"
)

type flowReport struct {
	Steps  []stepStats  `json:"steps"`
	Points []vb.Point2f `json:"points"`
}

func (a *app) flowCmd() *cobra.Command {
	var (
		points   string
		grid     int
		plotPath string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "flow <frame> <frame>...",
		Short: "Track points across frames with sparse optical flow",
		Long: "Track points across frames with pyramidal Lucas-Kanade flow. " +
			"Points come from --points or, if it is not set, a grid over the first frame.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := loadAll(args)
			if err != nil {
				return err
			}
			if err := sameSize(raws); err != nil {
				return err
			}

			var seed []vb.Point2f
			if points != "" {
				if seed, err = parsePoints(points); err != nil {
					return fmt.Errorf("--points: %w", err)
				}
			} else {
				seed = gridPoints(raws[0].Width, raws[0].Height, grid)
			}

			session := vb.NewFlowSession(a.engine, a.cfg.Flow)
			defer session.Close()
			session.AddPoints(seed...)

			var o *overlay
			if out != "" {
				o = newOverlay(raws[len(raws)-1])
			}
			report := flowReport{Steps: make([]stepStats, 0, len(raws)-1)}
			for i, raw := range raws {
				res, err := a.flowStep(session, raw)
				if err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				if i == 0 {
					continue
				}
				s := summarizeFlow(i, res)
				report.Steps = append(report.Steps, s)
				monitoring.Logger().Debug("flow: frame", "frame", i, "tracked", s.Tracked, "lost", s.Lost, "mean", s.Mean)
				if o != nil {
					for j, p := range res.Results {
						if p.Status {
							o.arrow(res.Previous[j], p.Point, arrowColor)
						}
					}
				}
			}
			report.Points = session.Points()

			if o != nil {
				o.label(fmt.Sprintf("%d/%d points", len(report.Points), len(seed)), 4, 14)
				if err := o.save(out); err != nil {
					return err
				}
			}
			if plotPath != "" {
				if err := plotFlow(report.Steps, plotPath); err != nil {
					return err
				}
			}
			return emit(cmd, report)
		},
	}
	f := cmd.Flags()
	f.StringVar(&points, "points", "", "points to track as x,y;x,y")
	f.IntVar(&grid, "grid", 16, "grid spacing used when --points is not set")
	f.StringVar(&plotPath, "plot", "", "write a displacement plot (.png, .svg or .pdf)")
	f.StringVar(&out, "out", "", "write a PNG of the last frame with flow arrows")
	return cmd
}

// flowStep decodes one frame and advances the session. The first call
// compares the frame with itself, so its result carries no motion.
func (a *app) flowStep(session *vb.FlowSession, raw vb.RawImage) (vb.FlowResult, error) {
	im, err := a.decode(raw, vb.ModeGray)
	if err != nil {
		return vb.FlowResult{}, err
	}
	defer im.Close()
	frame := im.Mat()
	defer frame.Close()
	return session.Track(frame)
}
