// tensionview renders a mesh colored by per-vertex tension. The tension is
// computed in the vertex shader from the baked adjacency and rest deltas and
// the live deformed vertex buffer.
package main

import (
	"fmt"
	"os"

	"github.com/go-gl/gl/v4.3-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tension/internal/config"
	"github.com/Faultbox/midgard-tension/internal/logger"
	"github.com/Faultbox/midgard-tension/internal/window"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	meshArg := "grid:24x24"
	if args := config.Args(); len(args) > 0 {
		meshArg = args[0]
	}

	win, err := window.New(window.Config{
		Title:      "Tension Viewer",
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	}, logger.Named("window"))
	if err != nil {
		logger.Error("failed to create window", zap.Error(err))
		os.Exit(1)
	}
	defer win.Close()

	if err := gl.Init(); err != nil {
		logger.Error("failed to initialize OpenGL", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("OpenGL initialized", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	v, err := newViewer(cfg, win, meshArg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	v.Run()
	logger.Info("viewer closed normally")
}
