package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/xopoww/go-triangle/app"
	"github.com/xopoww/go-triangle/config"
	"github.com/xopoww/go-triangle/renderer"
	"github.com/xopoww/go-triangle/scenery"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called from the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	screenshot := flag.String("screenshot", "", "Save the drawn frame as PNG to this path")
	flag.Parse()

	cfg, cfgErr := config.LoadConfig(*configPath)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)
	if cfgErr != nil {
		if !errors.Is(cfgErr, fs.ErrNotExist) {
			logger.Error("Failed to load configuration", "err", cfgErr)
			os.Exit(1)
		}
		logger.Warn("No configuration file, using defaults", "path", *configPath)
	}
	if *screenshot != "" {
		cfg.Render.Screenshot = *screenshot
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Fatal error occured", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Initialize GLFW and create window
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	window, err := app.OpenWindow(cfg.Window, cfg.GL)
	if err != nil {
		return err
	}
	defer window.Destroy()

	triangle, err := scenery.TriangleFromPoints(cfg.Render.Vertices)
	if err != nil {
		return err
	}
	if !triangle.InClipSpace() {
		logger.Warn("Triangle reaches outside clip space and will be clipped", "vertices", cfg.Render.Vertices)
	}

	opts := renderer.DefaultOptions()
	opts.Triangle = triangle
	opts.ClearColor = mgl.Vec4(cfg.Render.ClearColor)
	opts.Precision = cfg.Render.Precision
	opts.Logger = logger

	surface := app.NewWindowSurface(window)
	tr := renderer.New(surface, opts)
	defer func() {
		if err := tr.Close(); err != nil {
			logger.Error("Failed to release GL objects", "err", err)
		}
	}()

	if err := tr.Initialize(); err != nil {
		return err
	}
	logger.Info("OpenGL version", "version", surface.Version())

	// The back buffer is undefined after the swap, keep the frame for screenshots
	frame, err := tr.Snapshot()
	if err != nil {
		logger.Error("Failed to read the frame back", "err", err)
	}
	if cfg.Render.Screenshot != "" {
		saveScreenshot(logger, frame, cfg.Render.Screenshot)
	}
	window.SwapBuffers()

	eventHandler := app.NewEventHandler()
	eventHandler.AddAction(glfw.KeyEscape, func() { window.SetShouldClose(true) })
	screenshotRequested := false
	eventHandler.AddSwitch(glfw.KeyF3, &screenshotRequested)
	window.SetKeyCallback(eventHandler.KeyCallback())

	// The triangle is drawn once, just wait for the window to be closed
	for !window.ShouldClose() {
		glfw.WaitEvents()

		if screenshotRequested {
			screenshotRequested = false
			saveScreenshot(logger, frame, fmt.Sprintf(
				"screenshot_%s.png",
				time.Now().Format("02-01-2006_15:04:05"),
			))
		}
	}
	return nil
}

func saveScreenshot(logger *slog.Logger, img image.Image, filename string) {
	if err := writePNG(img, filename); err != nil {
		logger.Error("Failed to save a screenshot", "err", err)
		return
	}
	logger.Info("Saved a screenshot", "path", filename)
}

func writePNG(img image.Image, filename string) error {
	if img == nil {
		return errors.New("no frame to save")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
