// Package renderer draws a single triangle with a two-stage shader program.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/xopoww/go-triangle/glutils"
	"github.com/xopoww/go-triangle/scenery"
	"github.com/xopoww/go-triangle/shaders"
)

const (
	positionAttrib = "a_position"
	colorAttrib    = "a_color"
)

var (
	ErrAlreadyInitialized = errors.New("renderer already initialized")
	ErrNotDrawn           = errors.New("nothing has been drawn")
	ErrClosed             = errors.New("renderer closed")
	// ErrFailed wraps the error of an earlier failed Initialize
	ErrFailed = errors.New("renderer failed")
)

// Surface is whatever the renderer draws on
type Surface interface {
	// Context acquires the rendering context of the surface
	Context() (glutils.GL, error)
	// ResizeToDisplay matches the backing store to the displayed size and returns it
	ResizeToDisplay() (width, height int)
}

// Options are used as given, start from DefaultOptions
type Options struct {
	VertexSource string
	// FragmentSource is a text/template executed with shaders.FragData
	FragmentSource string
	Precision      string
	Triangle       scenery.Triangle
	ClearColor     mgl.Vec4
	Logger         *slog.Logger
}

// DefaultOptions draws the default triangle on transparent black.
// Its color comes from its clip space position.
func DefaultOptions() Options {
	return Options{
		VertexSource:   shaders.Vert,
		FragmentSource: shaders.Frag,
		Precision:      shaders.DefaultPrecision,
		Triangle:       scenery.DefaultTriangle,
		ClearColor:     mgl.Vec4{0, 0, 0, 0},
	}
}

// TriangleRenderer owns every GL object it creates and releases them in Close
type TriangleRenderer struct {
	surface Surface
	opts    Options
	log     *slog.Logger

	state State
	err   error
	gl    glutils.GL

	program  glutils.Program
	vbo      uint32
	vao      uint32
	posLoc   int32
	colorLoc int32

	width  int
	height int
}

func New(surface Surface, opts Options) *TriangleRenderer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &TriangleRenderer{
		surface:  surface,
		opts:     opts,
		log:      opts.Logger,
		posLoc:   -1,
		colorLoc: -1,
	}
}

func (r *TriangleRenderer) State() State { return r.state }

// Size is the viewport size taken at initialization
func (r *TriangleRenderer) Size() (width, height int) { return r.width, r.height }

func (r *TriangleRenderer) advance(s State) {
	r.log.Debug("renderer state", "from", r.state, "to", s)
	r.state = s
}

// Initialize builds the program and vertex data and draws the triangle once.
// It can only be called on a fresh renderer. On failure every object created
// so far is released and the renderer ends up Failed.
func (r *TriangleRenderer) Initialize() error {
	switch r.state {
	case Uninitialized:
	case Closed:
		return ErrClosed
	case Failed:
		return fmt.Errorf("%w: %w", ErrFailed, r.err)
	default:
		return fmt.Errorf("%w: state %s", ErrAlreadyInitialized, r.state)
	}

	if err := r.initialize(); err != nil {
		r.log.Error("renderer initialization failed", "state", r.state, "err", err)
		r.release()
		r.err = err
		r.advance(Failed)
		return err
	}
	return nil
}

func (r *TriangleRenderer) initialize() error {
	gl, err := r.surface.Context()
	if err != nil {
		if !errors.Is(err, glutils.ErrNoContext) {
			err = fmt.Errorf("%w: %w", glutils.ErrNoContext, err)
		}
		return err
	}
	if gl == nil {
		return glutils.ErrNoContext
	}
	r.gl = gl
	r.advance(ContextAcquired)

	if !shaders.ValidPrecision(r.opts.Precision) {
		return fmt.Errorf("bad float precision %q", r.opts.Precision)
	}
	fragSrc, err := glutils.NewShaderSourceFromTemplate("fragment", r.opts.FragmentSource,
		glutils.FragmentShader, shaders.FragData{Precision: r.opts.Precision})
	if err != nil {
		return err
	}

	vs, err := glutils.CompileShader(gl, glutils.NewShaderSource(r.opts.VertexSource, glutils.VertexShader))
	if err != nil {
		return err
	}
	fs, err := glutils.CompileShader(gl, fragSrc)
	if err != nil {
		gl.DeleteShader(vs.Handle)
		return err
	}
	r.advance(ShadersCompiled)

	r.program, err = glutils.LinkProgram(gl, vs, fs)
	if err != nil {
		gl.DeleteShader(vs.Handle)
		gl.DeleteShader(fs.Handle)
		return err
	}
	r.advance(ProgramLinked)

	r.posLoc, err = glutils.AttribLocation(gl, r.program.Handle, positionAttrib)
	if err != nil {
		return err
	}
	// a_color is declared but never read, so the linker usually drops it
	r.colorLoc, err = glutils.AttribLocation(gl, r.program.Handle, colorAttrib)
	if err != nil {
		r.log.Debug("color input not active", "err", err)
	}

	r.vbo = glutils.UploadVertices(gl, r.opts.Triangle.Floats())
	// No color data is uploaded. An active a_color slot stays disabled and
	// reads the default generic value (0,0,0,1).
	r.vao = glutils.MakeVao(gl, r.vbo, []int32{r.posLoc}, glutils.VertexAttrib{
		Location: r.posLoc,
		Size:     2,
		Type:     glutils.FLOAT,
	})
	if err := glutils.CheckError(gl); err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}
	r.advance(BufferUploaded)

	r.width, r.height = r.surface.ResizeToDisplay()
	gl.Viewport(0, 0, int32(r.width), int32(r.height))

	c := r.opts.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(glutils.COLOR_BUFFER_BIT)

	gl.UseProgram(r.program.Handle)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(glutils.TRIANGLES, 0, int32(len(r.opts.Triangle)))
	if err := glutils.CheckError(gl); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	r.advance(Drawn)

	r.log.Info("triangle drawn", "width", r.width, "height", r.height)
	return nil
}

// Snapshot reads back the drawn frame, top row first
func (r *TriangleRenderer) Snapshot() (image.Image, error) {
	if r.state != Drawn {
		return nil, fmt.Errorf("%w: state %s", ErrNotDrawn, r.state)
	}
	img, err := glutils.ReadImage(r.gl, r.width, r.height)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return glutils.FlipImage(img), nil
}

// Close releases all GL objects. It is safe to call more than once.
func (r *TriangleRenderer) Close() error {
	if r.state == Closed {
		return nil
	}
	r.release()
	r.advance(Closed)
	if r.gl == nil {
		return nil
	}
	return glutils.CheckError(r.gl)
}

func (r *TriangleRenderer) release() {
	gl := r.gl
	if gl == nil {
		return
	}
	if r.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArray(r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffer(r.vbo)
		r.vbo = 0
	}
	if r.program.Handle != 0 {
		gl.UseProgram(0)
		r.program.Delete(gl)
	}
	r.posLoc, r.colorLoc = -1, -1
}
