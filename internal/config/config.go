// Package config holds the settings shared by the viewer and the stitcher.
package config

import (
	"errors"
	"fmt"
	"os"

	"panorama-stitcher/internal/logger"

	"github.com/rs/zerolog"
)

var ErrNoImages = errors.New("no image paths configured")

const (
	DefaultViewerImage = "DVI1/gi01.jpeg"
	// DefaultPreviewWidth caps the width of what a window renders. Clicks
	// are still reported in full-resolution pixels.
	DefaultPreviewWidth = 1600
)

// DefaultStitchImages is the fixed input list of the stitcher.
var DefaultStitchImages = []string{
	"DVI1/gi01.jpeg",
	"DVI1/gi02.jpeg",
	"DVI1/gi03.jpeg",
}

type Config struct {
	Images       []string
	Windows      WindowTitles
	PreviewWidth int
	Ransac       RansacParams
	LogLevel     string
}

// WindowTitles double as window identifiers.
type WindowTitles struct {
	Viewer  string
	Strip   string
	Base    string
	Current string
	Result  string
}

type RansacParams struct {
	ReprojThreshold float64
	MaxIters        int
	Confidence      float64
}

func Default() *Config {
	images := make([]string, len(DefaultStitchImages))
	copy(images, DefaultStitchImages)

	return &Config{
		Images: images,
		Windows: WindowTitles{
			Viewer:  "Display window",
			Strip:   "Reorder images",
			Base:    "Base image",
			Current: "Current image",
			Result:  "Result",
		},
		PreviewWidth: DefaultPreviewWidth,
		Ransac: RansacParams{
			ReprojThreshold: 3.0,
			MaxIters:        2000,
			Confidence:      0.995,
		},
		LogLevel: "info",
	}
}

// ApplyEnv reads LOG_LEVEL and DEBUG.
func (c *Config) ApplyEnv() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
		return
	}
	if os.Getenv("DEBUG") == "1" {
		c.LogLevel = "debug"
	}
}

func (c *Config) Validate() error {
	if len(c.Images) == 0 {
		return ErrNoImages
	}
	for i, p := range c.Images {
		if p == "" {
			return fmt.Errorf("image path %d is empty", i)
		}
	}
	if c.Ransac.ReprojThreshold <= 0 {
		return fmt.Errorf("ransac threshold must be positive, got %g", c.Ransac.ReprojThreshold)
	}
	if c.Ransac.MaxIters <= 0 {
		return fmt.Errorf("ransac iterations must be positive, got %d", c.Ransac.MaxIters)
	}
	if c.Ransac.Confidence <= 0 || c.Ransac.Confidence >= 1 {
		return fmt.Errorf("ransac confidence must be in (0, 1), got %g", c.Ransac.Confidence)
	}
	if c.PreviewWidth < 0 {
		return fmt.Errorf("preview width must not be negative, got %d", c.PreviewWidth)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) Level() zerolog.Level {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}
