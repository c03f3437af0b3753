// Package gogl implements glutils.GL on top of the go-gl OpenGL bindings.
package gogl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/xopoww/go-triangle/glutils"
)

var (
	initOnce sync.Once
	initErr  error
)

// Context forwards to the GL context current on the calling thread
type Context struct{}

var _ glutils.GL = Context{}

// New loads the GL function pointers. A context must already be current.
func New() (Context, error) {
	initOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return Context{}, fmt.Errorf("%w: %s", glutils.ErrNoContext, initErr)
	}
	return Context{}, nil
}

// Version returns the GL_VERSION string of the current context
func (Context) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (Context) CreateShader(stage glutils.ShaderStage) uint32 {
	return gl.CreateShader(uint32(stage))
}

func (Context) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (Context) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Context) GetShaderiv(shader uint32, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (c Context) GetShaderInfoLog(shader uint32) string {
	logLength := c.GetShaderiv(shader, gl.INFO_LOG_LENGTH)
	if logLength == 0 {
		return ""
	}
	gllog := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(gllog))
	return strings.TrimRight(gllog, "\x00")
}

func (Context) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Context) CreateProgram() uint32 { return gl.CreateProgram() }

func (Context) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (Context) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (Context) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (Context) GetProgramiv(program uint32, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (c Context) GetProgramInfoLog(program uint32) string {
	logLength := c.GetProgramiv(program, gl.INFO_LOG_LENGTH)
	if logLength == 0 {
		return ""
	}
	gllog := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(gllog))
	return strings.TrimRight(gllog, "\x00")
}

func (Context) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (Context) UseProgram(program uint32) { gl.UseProgram(program) }

func (Context) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Context) GenBuffer() uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return vbo
}

func (Context) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (Context) BufferData(target uint32, data []float32, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, 4*len(data), gl.Ptr(data), usage)
}

func (Context) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (Context) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (Context) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (Context) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (Context) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, uintptr(offset))
}

func (Context) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (Context) Clear(mask uint32) { gl.Clear(mask) }

func (Context) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (Context) ReadPixels(x, y, width, height int32, pix []byte) {
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

func (Context) GetError() uint32 { return gl.GetError() }
