package app

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/xopoww/go-triangle/config"
	"github.com/xopoww/go-triangle/glutils"
	"github.com/xopoww/go-triangle/glutils/gogl"
	"github.com/xopoww/go-triangle/renderer"
)

// OpenWindow creates a window with a core profile context of the configured version.
// glfw must be initialized and this must run on the main thread.
func OpenWindow(wc config.WindowConfig, gc config.GLConfig) (*glfw.Window, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, boolHint(wc.Resizable))
	glfw.WindowHint(glfw.ContextVersionMajor, gc.Major)
	glfw.WindowHint(glfw.ContextVersionMinor, gc.Minor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(wc.Width, wc.Height, wc.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: GL %d.%d: %s", glutils.ErrNoContext, gc.Major, gc.Minor, err)
	}
	return window, nil
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// WindowSurface lets a renderer draw into a glfw window
type WindowSurface struct {
	window *glfw.Window
	ctx    gogl.Context
	// set once the GL functions are loaded
	ready bool
}

var _ renderer.Surface = (*WindowSurface)(nil)

func NewWindowSurface(window *glfw.Window) *WindowSurface {
	return &WindowSurface{window: window}
}

func (s *WindowSurface) Context() (glutils.GL, error) {
	s.window.MakeContextCurrent()
	ctx, err := gogl.New()
	if err != nil {
		return nil, err
	}
	s.ctx = ctx
	s.ready = true
	return ctx, nil
}

// Version of the acquired context, empty unless Context succeeded
func (s *WindowSurface) Version() string {
	if !s.ready || s.window != glfw.GetCurrentContext() {
		return ""
	}
	return s.ctx.Version()
}

// ResizeToDisplay returns the framebuffer size, which on HiDPI screens
// differs from the window size in screen coordinates
func (s *WindowSurface) ResizeToDisplay() (int, int) {
	return s.window.GetFramebufferSize()
}
