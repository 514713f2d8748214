// Package cli builds the cobra commands for the two programs and runs their
// workflows inside a fyne application.
package cli

import (
	"context"
	"errors"
	"fmt"

	"panorama-stitcher/internal/app"
	"panorama-stitcher/internal/config"

	"github.com/spf13/cobra"
)

const (
	ViewerAppID   = "com.panorama.viewer"
	StitcherAppID = "com.panorama.stitcher"
)

// ExitError carries a non-zero workflow status through cobra.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type commonFlags struct {
	logLevel string
}

func (f *commonFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
}

// resolve layers env and changed flags over the defaults.
func (f *commonFlags) resolve(cmd *cobra.Command, cfg *config.Config) {
	cfg.ApplyEnv()
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

func launch(launcher Launcher, cfg *config.Config, appID string, wf Workflow) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if code := launcher(cfg, appID, wf); code != app.ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}

func NewViewerCmd(launcher Launcher) *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "viewer [image]",
		Short: "Show one image until a key is pressed",
		Long: fmt.Sprintf(`Decode an image and show it in a window. Any key closes it.
With no argument %s is opened.`, config.DefaultViewerImage),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Images = []string{config.DefaultViewerImage}
			if len(args) == 1 {
				cfg.Images = args
			}
			flags.resolve(cmd, cfg)

			return launch(launcher, cfg, ViewerAppID, func(ctx context.Context, env *Env) error {
				v := app.NewViewer(env.Display, env.Memory, env.Config.Windows.Viewer, env.Logger)
				return v.Run(ctx, env.Config.Images[0])
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func NewStitcherCmd(launcher Launcher) *cobra.Command {
	var (
		flags     commonFlags
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "stitcher [images...]",
		Short: "Stitch images side by side from hand-picked point pairs",
		Long: `Load the images, let the user reorder them on a strip, then for every image
after the first collect four point pairs, estimate a homography and append
the warped image to the right of the panorama.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if len(args) > 0 {
				cfg.Images = args
			}
			flags.resolve(cmd, cfg)
			if cmd.Flags().Changed("ransac-threshold") {
				cfg.Ransac.ReprojThreshold = threshold
			}

			return launch(launcher, cfg, StitcherAppID, func(ctx context.Context, env *Env) error {
				result, err := app.NewStitcher(env.Config, env.Display, env.Memory, env.Logger).Run(ctx)
				if err != nil {
					return err
				}
				result.Canvas.Close()
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().Float64Var(&threshold, "ransac-threshold", config.Default().Ransac.ReprojThreshold, "RANSAC reprojection threshold in pixels")
	return cmd
}

// Execute runs cmd and maps its outcome to an exit status.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return app.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	return app.ExitFailure
}
