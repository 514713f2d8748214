package cli

import (
	"context"
	"errors"
	"time"

	"panorama-stitcher/internal/app"
	"panorama-stitcher/internal/config"
	"panorama-stitcher/internal/display"
	"panorama-stitcher/internal/gui"
	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/memory"
	"panorama-stitcher/internal/shutdown"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

var errWorkflowStuck = errors.New("workflow did not stop after the UI loop ended")

// Env is what a workflow gets to work with.
type Env struct {
	Config  *config.Config
	Logger  logger.Logger
	Memory  *memory.Manager
	Display display.Display
}

// Workflow runs on its own goroutine while fyne owns the main one.
type Workflow func(ctx context.Context, env *Env) error

// Launcher runs a workflow and returns the process exit status.
type Launcher func(cfg *config.Config, appID string, wf Workflow) int

// Launch starts fyne, runs wf once the driver is up, and quits the UI loop
// when wf returns. A signal or a user-closed window cancels wf's context.
func Launch(cfg *config.Config, appID string, wf Workflow) int {
	log := logger.NewConsoleLogger(cfg.Level())
	mem := memory.NewManager(log)

	sd := shutdown.NewManager(context.Background(), log)
	sd.Register(mem)
	sd.Listen()

	fyneApp := fyneapp.NewWithID(appID)
	windows := gui.NewManager(fyneApp, log)
	windows.SetMaxWidth(cfg.PreviewWidth)
	windows.SetOnUserClose(sd.Cancel)

	env := &Env{Config: cfg, Logger: log, Memory: mem, Display: windows}

	done := make(chan error, 1)
	fyneApp.Lifecycle().SetOnStarted(func() {
		go func() {
			done <- wf(sd.Context(), env)
			fyne.Do(fyneApp.Quit)
		}()
	})

	log.Info("Launcher", "starting", map[string]interface{}{
		"app_id":    appID,
		"log_level": cfg.LogLevel,
	})
	fyneApp.Run()

	sd.Cancel()
	var err error
	select {
	case err = <-done:
	case <-time.After(shutdown.DefaultComponentTimeout):
		err = errWorkflowStuck
	}
	sd.Shutdown()

	code := app.ExitCode(err)
	if code != app.ExitSuccess {
		log.Error("Launcher", err, map[string]interface{}{"exit_code": code})
	}
	return code
}
