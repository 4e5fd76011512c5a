package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	vb "visionbridge/pkg/visionbridge"
)

// DefaultCacheCapacity is the number of derived matrices kept by default.
const DefaultCacheCapacity = 32

// Config holds the parameter records handed to the backend. The JSON
// layout mirrors the parameter structs, one section per algorithm.
type Config struct {
	Tracker       vb.TrackerParams `json:"tracker"`
	Flow          vb.FlowParams    `json:"flow"`
	SIFT          vb.SIFTParams    `json:"sift"`
	MSER          vb.MSERParams    `json:"mser"`
	SWT           vb.SWTParams     `json:"swt"`
	Detector      vb.DetectParams  `json:"detector"`
	CacheCapacity int              `json:"cache_capacity"`
}

// Default returns a Config with every section at its default values.
func Default() *Config {
	return &Config{
		Tracker:       vb.NewTrackerParams(),
		Flow:          vb.NewFlowParams(),
		SIFT:          vb.NewSIFTParams(),
		MSER:          vb.NewMSERParams(),
		SWT:           vb.NewSWTParams(),
		Detector:      vb.NewDetectParams(),
		CacheCapacity: DefaultCacheCapacity,
	}
}

// Load reads a Config from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their default values, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values the backends cannot accept.
func (c *Config) Validate() error {
	if c.Flow.WinSize.Width < 3 || c.Flow.WinSize.Height < 3 {
		return fmt.Errorf("flow.win_size must be at least 3x3, got %dx%d", c.Flow.WinSize.Width, c.Flow.WinSize.Height)
	}
	if c.Flow.Level < 0 {
		return fmt.Errorf("flow.level must be non-negative, got %d", c.Flow.Level)
	}
	if c.MSER.MinArea < 0 || c.MSER.MaxArea < c.MSER.MinArea {
		return fmt.Errorf("mser area range [%d, %d] is invalid", c.MSER.MinArea, c.MSER.MaxArea)
	}
	if c.Detector.MinNeighbors < 0 {
		return fmt.Errorf("detector.min_neighbors must be non-negative, got %d", c.Detector.MinNeighbors)
	}
	if c.CacheCapacity < 0 {
		return fmt.Errorf("cache_capacity must be non-negative, got %d", c.CacheCapacity)
	}
	switch c.Tracker.Algorithm {
	case "", "mil", "kcf", "csrt":
	default:
		return fmt.Errorf("tracker.algorithm %q is not one of mil, kcf, csrt", c.Tracker.Algorithm)
	}
	return nil
}
