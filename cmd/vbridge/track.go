package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"visionbridge/internal/monitoring"
	vb "visionbridge/pkg/visionbridge"
)

type trackFrame struct {
	Frame int `json:"frame"`
	vb.TrackResult
}

func (a *app) trackCmd() *cobra.Command {
	var (
		box       string
		algorithm string
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "track <frame> <frame>...",
		Short: "Follow an object box through a sequence of frames",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRect(box)
			if err != nil {
				return fmt.Errorf("--box: %w", err)
			}
			raws, err := loadAll(args)
			if err != nil {
				return err
			}
			if err := sameSize(raws); err != nil {
				return err
			}
			if !r.In(bounds(raws[0])) {
				return fmt.Errorf("--box %v is outside the %dx%d frame", r, raws[0].Width, raws[0].Height)
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}

			params := a.cfg.Tracker
			if algorithm != "" {
				params.Algorithm = algorithm
			}
			seed, err := a.decode(raws[0], vb.ModeRGBColor)
			if err != nil {
				return err
			}
			seedMat := seed.Mat()
			seed.Close()
			session, err := vb.NewTrackSession(a.engine, seedMat, r, params)
			seedMat.Close()
			if err != nil {
				return err
			}
			defer session.Close()

			results := make([]trackFrame, 0, len(raws)-1)
			for i := 1; i < len(raws); i++ {
				res, err := a.trackStep(session, raws[i])
				if err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				results = append(results, trackFrame{Frame: i, TrackResult: res})
				if !res.Info.TrackSuccess {
					monitoring.Logger().Warn("track: lost object", "frame", i)
				}
				if outDir != "" {
					o := newOverlay(raws[i])
					o.rect(res.Box.Rect, boxColor)
					o.label(fmt.Sprintf("frame %d conf %.2f", i, res.Box.Classification.Confidence), 4, 14)
					if err := o.save(filepath.Join(outDir, fmt.Sprintf("frame_%04d.png", i))); err != nil {
						return err
					}
				}
			}
			return emit(cmd, results)
		},
	}
	f := cmd.Flags()
	f.StringVar(&box, "box", "", "initial object box x0,y0,x1,y1 in the first frame")
	f.StringVar(&algorithm, "algorithm", "", "tracker algorithm, overrides the config (mil, kcf, csrt)")
	f.StringVar(&outDir, "out", "", "directory for per-frame PNGs with the tracked box")
	_ = cmd.MarkFlagRequired("box")
	return cmd
}

func (a *app) trackStep(session *vb.TrackSession, raw vb.RawImage) (vb.TrackResult, error) {
	im, err := a.decode(raw, vb.ModeRGBColor)
	if err != nil {
		return vb.TrackResult{}, err
	}
	defer im.Close()
	frame := im.Mat()
	defer frame.Close()
	return session.Track(frame)
}
