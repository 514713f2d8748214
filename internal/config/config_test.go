package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultStitchImages, cfg.Images)
	assert.Equal(t, "Display window", cfg.Windows.Viewer)
}

func TestDefaultDoesNotAliasPathList(t *testing.T) {
	cfg := Default()
	cfg.Images[0] = "other.png"
	assert.Equal(t, "DVI1/gi01.jpeg", DefaultStitchImages[0])
}

func TestValidateRejectsEmptyImages(t *testing.T) {
	cfg := Default()
	cfg.Images = nil
	assert.ErrorIs(t, cfg.Validate(), ErrNoImages)

	cfg.Images = []string{"a.png", ""}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadRansac(t *testing.T) {
	cfg := Default()
	cfg.Ransac.ReprojThreshold = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Ransac.Confidence = 1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Ransac.MaxIters = -1
	assert.Error(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "1")
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())

	t.Setenv("LOG_LEVEL", "error")
	cfg = Default()
	cfg.ApplyEnv()
	assert.Equal(t, zerolog.ErrorLevel, cfg.Level())
}

func TestValidateRejectsUnknownLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "chatty"
	assert.Error(t, cfg.Validate())
}

func TestValidatePreviewWidth(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultPreviewWidth, cfg.PreviewWidth)

	cfg.PreviewWidth = 0
	assert.NoError(t, cfg.Validate(), "zero disables downscaling")

	cfg.PreviewWidth = -5
	assert.Error(t, cfg.Validate())
}
