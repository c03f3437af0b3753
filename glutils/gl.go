package glutils

import "errors"

// GL is the part of the OpenGL (and WebGL2) API the renderer needs.
// Object handles are uint32 and 0 means "no object", locations are int32
// and -1 means "not found", just like in the C API.
//
// Implementations are not safe for concurrent use: a GL context belongs to
// the thread it was made current on.
type GL interface {
	CreateShader(stage ShaderStage) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	GetAttribLocation(program uint32, name string) int32
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []float32, usage uint32)
	DeleteBuffer(buffer uint32)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)
	DeleteVertexArray(vao uint32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	DrawArrays(mode uint32, first, count int32)
	ReadPixels(x, y, width, height int32, pix []byte)
	GetError() uint32
}

// GL enums, same values as in gl.h
const (
	FALSE = 0
	TRUE  = 1

	TRIANGLES = 0x0004

	UNSIGNED_BYTE = 0x1401
	FLOAT         = 0x1406
	RGBA          = 0x1908

	COLOR_BUFFER_BIT = 0x00004000

	ARRAY_BUFFER = 0x8892
	STATIC_DRAW  = 0x88E4

	FRAGMENT_SHADER = 0x8B30
	VERTEX_SHADER   = 0x8B31
	COMPILE_STATUS  = 0x8B81
	LINK_STATUS     = 0x8B82
	INFO_LOG_LENGTH = 0x8B84

	NO_ERROR          = 0
	INVALID_ENUM      = 0x0500
	INVALID_VALUE     = 0x0501
	INVALID_OPERATION = 0x0502
	OUT_OF_MEMORY     = 0x0505
)

// ErrNoContext is returned when the requested GL context version cannot be obtained.
var ErrNoContext = errors.New("no GL context available")
