package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"visionbridge/internal/config"
	"visionbridge/internal/monitoring"
	vb "visionbridge/pkg/visionbridge"
)

// app carries the state shared by every subcommand once the persistent
// flags are parsed.
type app struct {
	configPath string
	verbose    bool

	engine vb.Engine
	cfg    *config.Config
	cache  *vb.MatCache
}

func newRootCmd(engine vb.Engine) *cobra.Command {
	a := &app{engine: engine}
	root := &cobra.Command{
		Use:           "vbridge",
		Short:         "Run visionbridge image operations on files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "JSON parameter file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(
		a.encodeCmd(),
		a.matchCmd(),
		a.flowCmd(),
		a.trackCmd(),
		a.detectCmd(),
	)
	return root
}

func (a *app) setup(logOut io.Writer) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	monitoring.SetLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))

	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	a.cache = vb.NewMatCache(a.cfg.CacheCapacity)

	backend := "custom"
	if n, ok := a.engine.(interface{ Name() string }); ok {
		backend = n.Name()
	}
	monitoring.Logger().Debug("vbridge: ready", "backend", backend, "cache", a.cfg.CacheCapacity, "config", a.configPath)
	return nil
}

func (a *app) decode(raw vb.RawImage, mode vb.ChannelMode) (*vb.Image, error) {
	return vb.NewImage(a.engine, raw, mode, vb.WithCache(a.cache))
}

func emit(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
