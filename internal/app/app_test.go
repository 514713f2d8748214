package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"panorama-stitcher/internal/config"
	"panorama-stitcher/internal/display/displaytest"
	"panorama-stitcher/internal/imageset"
	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int, seed uint8) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: seed, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func newAlloc(t *testing.T) *memory.Manager {
	m := memory.NewManager(logger.NewNop())
	t.Cleanup(m.Cleanup)
	return m
}

func loadSet(t *testing.T, alloc *memory.Manager, n, w, h int) *imageset.Collection {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = writePNG(t, dir, fmt.Sprintf("img%d.png", i), w, h, uint8(i*40))
	}
	set, err := imageset.Load(paths, alloc, logger.NewNop())
	require.NoError(t, err)
	return set
}

func TestViewerMissingFileOpensNoWindow(t *testing.T) {
	fake := displaytest.New(displaytest.Press("Display window"))
	v := NewViewer(fake, newAlloc(t), "Display window", logger.NewNop())

	err := v.Run(context.Background(), filepath.Join(t.TempDir(), "nope.jpeg"))
	require.ErrorIs(t, err, imageset.ErrLoad)
	assert.Empty(t, fake.Shows)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestViewerShowsUntilKey(t *testing.T) {
	path := writePNG(t, t.TempDir(), "gi01.png", 30, 20, 7)
	fake := displaytest.New(
		displaytest.ClickAt("Display window", 1, 1),
		displaytest.Press("Display window"),
	)
	v := NewViewer(fake, newAlloc(t), "Display window", logger.NewNop())

	require.NoError(t, v.Run(context.Background(), path))
	require.Len(t, fake.Shows, 1)
	assert.Equal(t, image.Rect(0, 0, 30, 20), fake.Shows[0].Bounds)
	assert.Equal(t, []string{"Display window"}, fake.Destroyed)
	assert.Empty(t, fake.Events, "the click is consumed before the key")
}

func TestReorderSwapsClickedZones(t *testing.T) {
	alloc := newAlloc(t)
	set := loadSet(t, alloc, 3, 20, 10)
	original := set.Paths()

	fake := displaytest.New(
		displaytest.ClickAt("strip", 5, 5),  // zone 0
		displaytest.ClickAt("strip", 45, 5), // zone 2
		displaytest.Press("strip"),
	)
	require.NoError(t, Reorder(context.Background(), fake, "strip", set, alloc, logger.NewNop()))

	assert.Equal(t, []string{original[2], original[1], original[0]}, set.Paths())
	shows := fake.ShowsOf("strip")
	require.Len(t, shows, 2, "initial strip plus one rebuild")
	assert.Equal(t, image.Rect(0, 0, 60, 10), shows[1].Bounds)
	assert.NotEqual(t, shows[0].Pixels, shows[1].Pixels)
	assert.False(t, fake.Open("strip"))
}

func TestReorderSwapBackRestoresOrder(t *testing.T) {
	alloc := newAlloc(t)
	set := loadSet(t, alloc, 3, 20, 10)
	original := set.Paths()

	fake := displaytest.New(
		displaytest.ClickAt("strip", 25, 0),
		displaytest.ClickAt("strip", 45, 0),
		displaytest.ClickAt("strip", 45, 0),
		displaytest.ClickAt("strip", 25, 0),
		displaytest.Press("strip"),
	)
	require.NoError(t, Reorder(context.Background(), fake, "strip", set, alloc, logger.NewNop()))
	assert.Equal(t, original, set.Paths())
}

func TestReorderSameZoneTwiceKeepsOrder(t *testing.T) {
	alloc := newAlloc(t)
	set := loadSet(t, alloc, 2, 20, 10)
	original := set.Paths()

	fake := displaytest.New(
		displaytest.ClickAt("strip", 30, 0),
		displaytest.ClickAt("strip", 31, 0),
		displaytest.Press("strip"),
	)
	require.NoError(t, Reorder(context.Background(), fake, "strip", set, alloc, logger.NewNop()))
	assert.Equal(t, original, set.Paths())
	assert.Len(t, fake.ShowsOf("strip"), 2)
}

func TestReorderSingleImage(t *testing.T) {
	alloc := newAlloc(t)
	set := loadSet(t, alloc, 1, 20, 10)

	fake := displaytest.New(displaytest.Press("strip"))
	require.NoError(t, Reorder(context.Background(), fake, "strip", set, alloc, logger.NewNop()))
	require.Len(t, fake.Shows, 1)
	assert.Equal(t, image.Rect(0, 0, 20, 10), fake.Shows[0].Bounds)
}

func TestReorderHeightMismatch(t *testing.T) {
	alloc := newAlloc(t)
	dir := t.TempDir()
	set, err := imageset.Load([]string{
		writePNG(t, dir, "a.png", 10, 10, 1),
		writePNG(t, dir, "b.png", 10, 12, 2),
	}, alloc, logger.NewNop())
	require.NoError(t, err)

	err = Reorder(context.Background(), displaytest.New(), "strip", set, alloc, logger.NewNop())
	assert.Error(t, err)
}

func TestPointPickerBasePriority(t *testing.T) {
	alloc := newAlloc(t)
	set := loadSet(t, alloc, 2, 20, 20)
	titles := config.Default().Windows

	fake := displaytest.New(
		// Clicks on the current window still fill the base list first.
		displaytest.ClickAt(titles.Current, 1, 1),
		displaytest.ClickAt(titles.Current, 2, 2),
		displaytest.ClickAt(titles.Base, 3, 3),
		displaytest.ClickAt(titles.Base, 4, 4),
		displaytest.Press(titles.Base),
		displaytest.ClickAt(titles.Base, 5, 5),
		displaytest.ClickAt(titles.Current, 6, 6),
		displaytest.ClickAt(titles.Current, 7, 7),
		displaytest.ClickAt(titles.Current, 8, 8),
		displaytest.ClickAt(titles.Current, 9, 9),
	)

	picker := NewPointPicker(fake, titles, logger.NewNop())
	base, current, err := picker.PickPoints(context.Background(), set.At(0).Mat, set.At(1).Mat)
	require.NoError(t, err)

	require.Len(t, base, 4)
	require.Len(t, current, 4)
	assert.Equal(t, 1.0, base[0].X)
	assert.Equal(t, 4.0, base[3].X)
	assert.Equal(t, 5.0, current[0].X)
	assert.Equal(t, 8.0, current[3].X)
	assert.Len(t, fake.Events, 1, "clicks after both lists are full are left unread")

	require.Len(t, fake.Shows, 2)
	assert.Equal(t, titles.Base, fake.Shows[0].Title)
	assert.Equal(t, titles.Current, fake.Shows[1].Title)
	assert.False(t, fake.Open(titles.Base))
	assert.False(t, fake.Open(titles.Current))
}

func TestPointPickerCancelled(t *testing.T) {
	alloc := newAlloc(t)
	set := loadSet(t, alloc, 2, 20, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	picker := NewPointPicker(displaytest.New(), config.Default().Windows, logger.NewNop())
	_, _, err := picker.PickPoints(ctx, set.At(0).Mat, set.At(1).Mat)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitSuccess, ExitCode(err))
}

func TestStitcherEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Images = []string{
		writePNG(t, dir, "gi01.png", 100, 100, 10),
		writePNG(t, dir, "gi02.png", 100, 100, 200),
	}
	w := cfg.Windows

	fake := displaytest.New(
		displaytest.Press(w.Strip),
		displaytest.ClickAt(w.Base, 60, 10),
		displaytest.ClickAt(w.Base, 90, 10),
		displaytest.ClickAt(w.Base, 90, 90),
		displaytest.ClickAt(w.Base, 60, 90),
		displaytest.ClickAt(w.Current, 10, 10),
		displaytest.ClickAt(w.Current, 40, 10),
		displaytest.ClickAt(w.Current, 40, 90),
		displaytest.ClickAt(w.Current, 10, 90),
		displaytest.Press(w.Result),
		displaytest.Press(w.Result),
	)

	alloc := newAlloc(t)
	res, err := NewStitcher(cfg, fake, alloc, logger.NewNop()).Run(context.Background())
	require.NoError(t, err)
	defer res.Canvas.Close()

	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, image.Rect(0, 0, 200, 100), res.Canvas.Bounds())
	assert.Len(t, fake.ShowsOf(w.Result), 2)
	assert.True(t, fake.Closed)
	assert.Empty(t, fake.Events)
}

func TestStitcherLoadFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Images = []string{
		writePNG(t, dir, "gi01.png", 10, 10, 1),
		filepath.Join(dir, "gi02.jpeg"),
	}
	fake := displaytest.New()

	_, err := NewStitcher(cfg, fake, newAlloc(t), logger.NewNop()).Run(context.Background())
	require.ErrorIs(t, err, imageset.ErrLoad)
	assert.Contains(t, err.Error(), "gi02.jpeg")
	assert.Empty(t, fake.Shows)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitSuccess, ExitCode(fmt.Errorf("reorder: %w", context.Canceled)))
	assert.Equal(t, ExitFailure, ExitCode(imageset.ErrLoad))
}
