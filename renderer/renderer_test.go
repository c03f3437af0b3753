package renderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xopoww/go-triangle/glutils"
	"github.com/xopoww/go-triangle/glutils/glfake"
	"github.com/xopoww/go-triangle/scenery"
)

type fakeSurface struct {
	gl      *glfake.GL
	err     error
	width   int
	height  int
	resizes int
}

func newSurface() *fakeSurface {
	return &fakeSurface{gl: glfake.New(), width: 300, height: 150}
}

func (s *fakeSurface) Context() (glutils.GL, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.gl, nil
}

func (s *fakeSurface) ResizeToDisplay() (int, int) {
	s.resizes++
	return s.width, s.height
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return opts
}

func TestInitializeDrawsOnce(t *testing.T) {
	surface := newSurface()
	r := New(surface, quietOptions())
	assert.Equal(t, Uninitialized, r.State())

	require.NoError(t, r.Initialize())
	assert.Equal(t, Drawn, r.State())

	gl := surface.gl
	require.Len(t, gl.Draws, 1)
	draw := gl.Draws[0]
	assert.EqualValues(t, glutils.TRIANGLES, draw.Mode)
	assert.EqualValues(t, 0, draw.First)
	assert.EqualValues(t, 3, draw.Count)
	assert.Equal(t, r.program.Handle, draw.Program)
	assert.Equal(t, r.vao, draw.VertexArray)

	assert.EqualValues(t, glutils.TRUE, gl.GetProgramiv(r.program.Handle, glutils.LINK_STATUS))
	for _, s := range r.program.Shaders {
		assert.EqualValues(t, glutils.TRUE, gl.GetShaderiv(s.Handle, glutils.COMPILE_STATUS))
	}
}

func TestInitializeUploadsTriangle(t *testing.T) {
	surface := newSurface()
	r := New(surface, quietOptions())
	require.NoError(t, r.Initialize())

	buf := surface.gl.Buffers[r.vbo]
	require.NotNil(t, buf)
	assert.Equal(t, []float32{0, 0, 0, 0.5, 0.7, 0}, buf.Data)
	assert.EqualValues(t, glutils.STATIC_DRAW, buf.Usage)
	assert.EqualValues(t, glutils.ARRAY_BUFFER, buf.Target)
}

func TestInitializeVertexLayout(t *testing.T) {
	surface := newSurface()
	r := New(surface, quietOptions())
	require.NoError(t, r.Initialize())

	gl := surface.gl
	vao := gl.VertexArrays[r.vao]
	require.NotNil(t, vao)
	pos := uint32(r.posLoc)
	assert.True(t, vao.Enabled[pos])
	assert.Equal(t, glfake.AttribPointer{
		Buffer: r.vbo,
		Size:   2,
		Type:   glutils.FLOAT,
	}, vao.Pointers[pos])

	// a_color is never read by the vertex shader, so it is not active
	assert.EqualValues(t, -1, r.colorLoc)
	assert.Len(t, vao.Enabled, 1)
}

func TestInitializeSurface(t *testing.T) {
	surface := newSurface()
	opts := quietOptions()
	opts.ClearColor = mgl.Vec4{0.1, 0.2, 0.3, 0.4}
	r := New(surface, opts)
	require.NoError(t, r.Initialize())

	gl := surface.gl
	assert.Equal(t, 1, surface.resizes)
	w, h := r.Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 150, h)
	assert.Equal(t, [4]int32{0, 0, 300, 150}, gl.ViewportRect)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 0.4}, gl.Clearing)
	assert.Equal(t, []uint32{glutils.COLOR_BUFFER_BIT}, gl.Clears)
	assert.Equal(t, r.program.Handle, gl.Program)
	assert.Equal(t, r.vao, gl.BoundVAO)
}

func TestInitializeTwice(t *testing.T) {
	surface := newSurface()
	r := New(surface, quietOptions())
	require.NoError(t, r.Initialize())

	err := r.Initialize()
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, Drawn, r.State())
	assert.Len(t, surface.gl.Draws, 1)
}

func TestIndependentInstances(t *testing.T) {
	s1, s2 := newSurface(), newSurface()
	s2.width, s2.height = 64, 32
	opts2 := quietOptions()
	opts2.Triangle = scenery.Triangle{{-1, -1}, {1, -1}, {0, 1}}

	r1 := New(s1, quietOptions())
	r2 := New(s2, opts2)
	require.NoError(t, r1.Initialize())
	require.NoError(t, r2.Initialize())

	assert.Len(t, s1.gl.Draws, 1)
	assert.Len(t, s2.gl.Draws, 1)
	assert.Equal(t, []float32{0, 0, 0, 0.5, 0.7, 0}, s1.gl.Buffers[r1.vbo].Data)
	assert.Equal(t, []float32{-1, -1, 1, -1, 0, 1}, s2.gl.Buffers[r2.vbo].Data)
	assert.Equal(t, [4]int32{0, 0, 300, 150}, s1.gl.ViewportRect)
	assert.Equal(t, [4]int32{0, 0, 64, 32}, s2.gl.ViewportRect)

	require.NoError(t, r2.Close())
	assert.Equal(t, Drawn, r1.State())
	assert.NotZero(t, s1.gl.Live())
	assert.Zero(t, s2.gl.Live())
}

func TestInitializeNoContext(t *testing.T) {
	surface := newSurface()
	surface.err = errors.New("context version 4.6 unsupported")
	r := New(surface, quietOptions())

	err := r.Initialize()
	assert.ErrorIs(t, err, glutils.ErrNoContext)
	assert.Contains(t, err.Error(), "4.6 unsupported")
	assert.Equal(t, Failed, r.State())
	assert.Zero(t, surface.resizes)
}

func TestInitializeCompileFailure(t *testing.T) {
	for _, tc := range []struct {
		name  string
		opts  func(*Options)
		stage glutils.ShaderStage
	}{
		{"vertex", func(o *Options) { o.VertexSource = "#version 300 es\nvoid main() {" }, glutils.VertexShader},
		{"fragment", func(o *Options) { o.FragmentSource = "void main() {}" }, glutils.FragmentShader},
	} {
		t.Run(tc.name, func(t *testing.T) {
			surface := newSurface()
			opts := quietOptions()
			tc.opts(&opts)
			r := New(surface, opts)

			err := r.Initialize()
			var serr *glutils.ShaderError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tc.stage, serr.Stage)
			assert.NotEmpty(t, serr.Log)
			assert.Equal(t, Failed, r.State())
			assert.Empty(t, surface.gl.Draws, "nothing may be drawn without a linked program")
			assert.Zero(t, surface.gl.Live())
		})
	}
}

func TestInitializeMissingPosition(t *testing.T) {
	surface := newSurface()
	opts := quietOptions()
	opts.VertexSource = "#version 300 es\nin vec4 a_other;\nvoid main() {\n  gl_Position = a_other;\n}\n"
	r := New(surface, opts)

	err := r.Initialize()
	assert.ErrorIs(t, err, glutils.ErrAttribNotFound)
	assert.Contains(t, err.Error(), "a_position")
	assert.Equal(t, Failed, r.State())
	assert.Empty(t, surface.gl.Draws)
	assert.Zero(t, surface.gl.Live())
}

func TestInitializeActiveColorInput(t *testing.T) {
	surface := newSurface()
	opts := quietOptions()
	opts.VertexSource = "#version 300 es\nin vec4 a_position;\nin vec4 a_color;\nout vec4 v_color;\nvoid main() {\n  gl_Position = a_position;\n  v_color = a_color;\n}\n"
	r := New(surface, opts)

	require.NoError(t, r.Initialize())
	require.EqualValues(t, 1, r.colorLoc)
	// no color data exists, so the slot is left disabled
	assert.False(t, surface.gl.VertexArrays[r.vao].Enabled[1])
	assert.Len(t, surface.gl.Draws, 1)
}

func TestInitializePrecision(t *testing.T) {
	surface := newSurface()
	opts := quietOptions()
	opts.Precision = "highp"
	r := New(surface, opts)
	require.NoError(t, r.Initialize())

	fs := r.program.Shaders[1]
	assert.Contains(t, surface.gl.Shaders[fs.Handle].Source, "precision highp float;")
	assert.NotContains(t, surface.gl.Shaders[fs.Handle].Source, "{{")

	for _, p := range []string{"", "ultra"} {
		surface := newSurface()
		opts.Precision = p
		r := New(surface, opts)
		err := r.Initialize()
		assert.ErrorContains(t, err, "bad float precision")
		assert.Equal(t, Failed, r.State())
		assert.Empty(t, surface.gl.Shaders)
	}
}

func TestInitializeDrawError(t *testing.T) {
	surface := newSurface()
	r := New(surface, quietOptions())
	surface.width = -1

	err := r.Initialize()
	assert.ErrorIs(t, err, glutils.GLError(glutils.INVALID_VALUE))
	assert.Equal(t, Failed, r.State())
	assert.Zero(t, surface.gl.Live())
}

func TestClose(t *testing.T) {
	surface := newSurface()
	r := New(surface, quietOptions())
	require.NoError(t, r.Initialize())
	require.NotZero(t, surface.gl.Live())

	require.NoError(t, r.Close())
	assert.Equal(t, Closed, r.State())
	assert.Zero(t, surface.gl.Live())
	assert.Zero(t, surface.gl.Program)
	assert.Zero(t, surface.gl.BoundVAO)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Initialize(), ErrClosed)
}

func TestInitializeAfterFailure(t *testing.T) {
	surface := newSurface()
	surface.err = errors.New("context lost")
	r := New(surface, quietOptions())
	require.Error(t, r.Initialize())

	surface.err = nil
	err := r.Initialize()
	assert.ErrorIs(t, err, ErrFailed)
	assert.ErrorIs(t, err, glutils.ErrNoContext)
	assert.NotErrorIs(t, err, ErrAlreadyInitialized)
	assert.Contains(t, err.Error(), "context lost")
	assert.Equal(t, Failed, r.State())
	assert.Empty(t, surface.gl.Draws)
}

func TestCloseUninitialized(t *testing.T) {
	r := New(newSurface(), quietOptions())
	assert.NoError(t, r.Close())
	assert.Equal(t, Closed, r.State())
}

func TestSnapshot(t *testing.T) {
	surface := newSurface()
	opts := quietOptions()
	opts.ClearColor = mgl.Vec4{0, 0, 1, 1}
	r := New(surface, opts)

	_, err := r.Snapshot()
	assert.ErrorIs(t, err, ErrNotDrawn)

	require.NoError(t, r.Initialize())
	img, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 150), img.Bounds())
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.At(10, 10))
}

func TestNewKeepsExplicitZeroValues(t *testing.T) {
	surface := newSurface()
	opts := quietOptions()
	opts.Triangle = scenery.Triangle{}
	opts.ClearColor = mgl.Vec4{0, 0, 0, 0}
	r := New(surface, opts)
	assert.Equal(t, scenery.Triangle{}, r.opts.Triangle)

	require.NoError(t, r.Initialize())
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0}, surface.gl.Buffers[r.vbo].Data)
	assert.Equal(t, [4]float32{0, 0, 0, 0}, surface.gl.Clearing)
}

func TestNewEmptyOptions(t *testing.T) {
	surface := newSurface()
	r := New(surface, Options{})
	assert.NotNil(t, r.log)

	// nothing is filled in behind the caller's back
	err := r.Initialize()
	assert.ErrorContains(t, err, "bad float precision")
	assert.Empty(t, surface.gl.Draws)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Uninitialized", Uninitialized.String())
	assert.Equal(t, "Drawn", Drawn.String())
	assert.Equal(t, "Closed", Closed.String())
	assert.Equal(t, "Unknown", State(42).String())
}
