package glutils

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

type ShaderStage uint32

const (
	VertexShader   ShaderStage = VERTEX_SHADER
	FragmentShader ShaderStage = FRAGMENT_SHADER
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderStage(%#x)", uint32(s))
	}
}

var (
	// ErrInvalidShader is returned when a shader handle passed to LinkProgram
	// is zero or belongs to the wrong stage.
	ErrInvalidShader = errors.New("invalid shader")
)

// ShaderError carries the compiler diagnostic of a failed compilation
type ShaderError struct {
	Stage ShaderStage
	Log   string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("compile %s shader: %s", e.Stage, strings.TrimSpace(e.Log))
}

// LinkError carries the linker diagnostic of a failed link
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link error: %s", strings.TrimSpace(e.Log))
}

// Simple struct to hold information needed to compile a shader
type ShaderSource struct {
	source string
	stage  ShaderStage
}

func NewShaderSource(source string, stage ShaderStage) ShaderSource {
	return ShaderSource{
		source: source,
		stage:  stage,
	}
}

// Create ShaderSource from go template source by injecting data into it
func NewShaderSourceFromTemplate(name, source string, stage ShaderStage, data interface{}) (ShaderSource, error) {
	tmpl, err := template.New(name).Parse(source)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("parse template %q: %w", name, err)
	}
	bldr := strings.Builder{}
	err = tmpl.Execute(&bldr, data)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("execute template: %w", err)
	}
	return ShaderSource{
		source: bldr.String(),
		stage:  stage,
	}, nil
}

func (ss ShaderSource) Source() string     { return ss.source }
func (ss ShaderSource) Stage() ShaderStage { return ss.stage }

// Shader is a compiled shader object
type Shader struct {
	Handle uint32
	Stage  ShaderStage
}

// CompileShader compiles ss. On failure the shader object is deleted and
// a *ShaderError with the compiler log is returned.
func CompileShader(gl GL, ss ShaderSource) (Shader, error) {
	shader := gl.CreateShader(ss.stage)
	if shader == 0 {
		return Shader{}, fmt.Errorf("create %s shader: %w", ss.stage, lastError(gl))
	}

	gl.ShaderSource(shader, ss.source)
	gl.CompileShader(shader)

	if gl.GetShaderiv(shader, COMPILE_STATUS) == FALSE {
		gllog := gl.GetShaderInfoLog(shader)
		gl.DeleteShader(shader)
		return Shader{}, &ShaderError{Stage: ss.stage, Log: gllog}
	}

	return Shader{Handle: shader, Stage: ss.stage}, nil
}

// Program is a linked program together with the shaders attached to it
type Program struct {
	Handle  uint32
	Shaders []Shader
}

// LinkProgram links vs and fs into a new program.
// On failure the program object is deleted, the shaders are left to the caller.
func LinkProgram(gl GL, vs, fs Shader) (Program, error) {
	if vs.Handle == 0 || vs.Stage != VertexShader {
		return Program{}, fmt.Errorf("%w: want compiled vertex shader, got %s #%d", ErrInvalidShader, vs.Stage, vs.Handle)
	}
	if fs.Handle == 0 || fs.Stage != FragmentShader {
		return Program{}, fmt.Errorf("%w: want compiled fragment shader, got %s #%d", ErrInvalidShader, fs.Stage, fs.Handle)
	}

	program := gl.CreateProgram()
	if program == 0 {
		return Program{}, fmt.Errorf("create program: %w", lastError(gl))
	}
	gl.AttachShader(program, vs.Handle)
	gl.AttachShader(program, fs.Handle)
	gl.LinkProgram(program)

	if gl.GetProgramiv(program, LINK_STATUS) == FALSE {
		gllog := gl.GetProgramInfoLog(program)
		gl.DeleteProgram(program)
		return Program{}, &LinkError{Log: gllog}
	}

	return Program{Handle: program, Shaders: []Shader{vs, fs}}, nil
}

// Compile both sources and link them into a program.
// Nothing is leaked if any step fails.
func CreateProgram(gl GL, vertSrc, fragSrc ShaderSource) (Program, error) {
	vs, err := CompileShader(gl, vertSrc)
	if err != nil {
		return Program{}, err
	}
	fs, err := CompileShader(gl, fragSrc)
	if err != nil {
		gl.DeleteShader(vs.Handle)
		return Program{}, err
	}
	program, err := LinkProgram(gl, vs, fs)
	if err != nil {
		gl.DeleteShader(vs.Handle)
		gl.DeleteShader(fs.Handle)
		return Program{}, err
	}
	return program, nil
}

// Delete detaches and deletes the shaders, then deletes the program itself.
// The zero Program is a no-op.
func (p *Program) Delete(gl GL) {
	for _, shader := range p.Shaders {
		if p.Handle != 0 {
			gl.DetachShader(p.Handle, shader.Handle)
		}
		gl.DeleteShader(shader.Handle)
	}
	if p.Handle != 0 {
		gl.DeleteProgram(p.Handle)
	}
	*p = Program{}
}
