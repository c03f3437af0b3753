// Package glfake provides an in-memory glutils.GL that records every call.
//
// It compiles nothing. Shader sources go through a small syntax check that is
// enough to tell a well-formed GLSL ES 3.00 source from a broken one, and
// programs link when exactly one compiled vertex and one compiled fragment
// shader are attached.
package glfake

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xopoww/go-triangle/glutils"
)

type Shader struct {
	Stage    glutils.ShaderStage
	Source   string
	Compiled bool
	Log      string
	Deleted  bool
}

type Program struct {
	Attached []uint32
	Linked   bool
	Log      string
	Attribs  map[string]int32
	Deleted  bool
}

type Buffer struct {
	Target  uint32
	Data    []float32
	Usage   uint32
	Deleted bool
}

type AttribPointer struct {
	Buffer     uint32
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     int
}

type VertexArray struct {
	Enabled  map[uint32]bool
	Pointers map[uint32]AttribPointer
	Deleted  bool
}

type DrawCall struct {
	Mode        uint32
	First       int32
	Count       int32
	Program     uint32
	VertexArray uint32
}

// GL records the state a real driver would hold. The zero value is not
// usable, call New.
type GL struct {
	Shaders      map[uint32]*Shader
	Programs     map[uint32]*Program
	Buffers      map[uint32]*Buffer
	VertexArrays map[uint32]*VertexArray

	ArrayBuffer  uint32
	BoundVAO     uint32
	Program      uint32
	ViewportRect [4]int32
	Clearing     [4]float32
	Clears       []uint32
	Draws        []DrawCall

	// Errors are handed out by GetError one at a time
	Errors []uint32

	nextID uint32
}

var _ glutils.GL = (*GL)(nil)

func New() *GL {
	return &GL{
		Shaders:      make(map[uint32]*Shader),
		Programs:     make(map[uint32]*Program),
		Buffers:      make(map[uint32]*Buffer),
		VertexArrays: make(map[uint32]*VertexArray),
	}
}

func (g *GL) newID() uint32 {
	g.nextID++
	return g.nextID
}

func (g *GL) fail(code uint32) {
	g.Errors = append(g.Errors, code)
}

func (g *GL) CreateShader(stage glutils.ShaderStage) uint32 {
	if stage != glutils.VertexShader && stage != glutils.FragmentShader {
		g.fail(glutils.INVALID_ENUM)
		return 0
	}
	id := g.newID()
	g.Shaders[id] = &Shader{Stage: stage}
	return id
}

func (g *GL) shader(id uint32) *Shader {
	s, ok := g.Shaders[id]
	if !ok || s.Deleted {
		g.fail(glutils.INVALID_VALUE)
		return nil
	}
	return s
}

func (g *GL) ShaderSource(shader uint32, source string) {
	if s := g.shader(shader); s != nil {
		s.Source = source
	}
}

func (g *GL) CompileShader(shader uint32) {
	s := g.shader(shader)
	if s == nil {
		return
	}
	s.Log = CheckSource(s.Source)
	s.Compiled = s.Log == ""
}

func (g *GL) GetShaderiv(shader uint32, pname uint32) int32 {
	s := g.shader(shader)
	if s == nil {
		return 0
	}
	switch pname {
	case glutils.COMPILE_STATUS:
		return boolToInt(s.Compiled)
	case glutils.INFO_LOG_LENGTH:
		if s.Log == "" {
			return 0
		}
		return int32(len(s.Log) + 1)
	}
	g.fail(glutils.INVALID_ENUM)
	return 0
}

func (g *GL) GetShaderInfoLog(shader uint32) string {
	if s := g.shader(shader); s != nil {
		return s.Log
	}
	return ""
}

func (g *GL) DeleteShader(shader uint32) {
	if shader == 0 {
		return
	}
	if s := g.shader(shader); s != nil {
		s.Deleted = true
	}
}

func (g *GL) CreateProgram() uint32 {
	id := g.newID()
	g.Programs[id] = &Program{Attribs: make(map[string]int32)}
	return id
}

func (g *GL) program(id uint32) *Program {
	p, ok := g.Programs[id]
	if !ok || p.Deleted {
		g.fail(glutils.INVALID_VALUE)
		return nil
	}
	return p
}

func (g *GL) AttachShader(program, shader uint32) {
	p := g.program(program)
	if p == nil || g.shader(shader) == nil {
		return
	}
	for _, s := range p.Attached {
		if s == shader {
			g.fail(glutils.INVALID_OPERATION)
			return
		}
	}
	p.Attached = append(p.Attached, shader)
}

func (g *GL) DetachShader(program, shader uint32) {
	p := g.program(program)
	if p == nil {
		return
	}
	for i, s := range p.Attached {
		if s == shader {
			p.Attached = append(p.Attached[:i], p.Attached[i+1:]...)
			return
		}
	}
	g.fail(glutils.INVALID_OPERATION)
}

var inputRe = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?in\s+\w+\s+(\w+)\s*;`)

func (g *GL) LinkProgram(program uint32) {
	p := g.program(program)
	if p == nil {
		return
	}
	p.Linked = false
	p.Attribs = make(map[string]int32)

	var vert, frag *Shader
	for _, id := range p.Attached {
		s := g.Shaders[id]
		if !s.Compiled {
			p.Log = fmt.Sprintf("error: shader %d is not compiled", id)
			return
		}
		switch s.Stage {
		case glutils.VertexShader:
			if vert != nil {
				p.Log = "error: more than one vertex shader attached"
				return
			}
			vert = s
		case glutils.FragmentShader:
			if frag != nil {
				p.Log = "error: more than one fragment shader attached"
				return
			}
			frag = s
		}
	}
	if vert == nil || frag == nil {
		p.Log = "error: program needs a vertex and a fragment shader"
		return
	}

	// like a real linker, only inputs that are read somewhere stay active
	for _, m := range inputRe.FindAllStringSubmatch(vert.Source, -1) {
		uses := regexp.MustCompile(`\b` + regexp.QuoteMeta(m[1]) + `\b`).FindAllStringIndex(vert.Source, -1)
		if len(uses) > 1 {
			p.Attribs[m[1]] = int32(len(p.Attribs))
		}
	}
	p.Linked = true
	p.Log = ""
}

func (g *GL) GetProgramiv(program uint32, pname uint32) int32 {
	p := g.program(program)
	if p == nil {
		return 0
	}
	switch pname {
	case glutils.LINK_STATUS:
		return boolToInt(p.Linked)
	case glutils.INFO_LOG_LENGTH:
		if p.Log == "" {
			return 0
		}
		return int32(len(p.Log) + 1)
	}
	g.fail(glutils.INVALID_ENUM)
	return 0
}

func (g *GL) GetProgramInfoLog(program uint32) string {
	if p := g.program(program); p != nil {
		return p.Log
	}
	return ""
}

func (g *GL) GetAttribLocation(program uint32, name string) int32 {
	p := g.program(program)
	if p == nil {
		return -1
	}
	if !p.Linked {
		g.fail(glutils.INVALID_OPERATION)
		return -1
	}
	loc, ok := p.Attribs[name]
	if !ok {
		return -1
	}
	return loc
}

func (g *GL) UseProgram(program uint32) {
	if program != 0 {
		p := g.program(program)
		if p == nil {
			return
		}
		if !p.Linked {
			g.fail(glutils.INVALID_OPERATION)
			return
		}
	}
	g.Program = program
}

func (g *GL) DeleteProgram(program uint32) {
	if program == 0 {
		return
	}
	if p := g.program(program); p != nil {
		p.Deleted = true
		if g.Program == program {
			g.Program = 0
		}
	}
}

func (g *GL) GenBuffer() uint32 {
	id := g.newID()
	g.Buffers[id] = &Buffer{}
	return id
}

func (g *GL) BindBuffer(target, buffer uint32) {
	if target != glutils.ARRAY_BUFFER {
		g.fail(glutils.INVALID_ENUM)
		return
	}
	if buffer != 0 {
		b, ok := g.Buffers[buffer]
		if !ok || b.Deleted {
			g.fail(glutils.INVALID_VALUE)
			return
		}
		b.Target = target
	}
	g.ArrayBuffer = buffer
}

func (g *GL) BufferData(target uint32, data []float32, usage uint32) {
	if target != glutils.ARRAY_BUFFER {
		g.fail(glutils.INVALID_ENUM)
		return
	}
	if g.ArrayBuffer == 0 {
		g.fail(glutils.INVALID_OPERATION)
		return
	}
	b := g.Buffers[g.ArrayBuffer]
	b.Data = append([]float32(nil), data...)
	b.Usage = usage
}

func (g *GL) DeleteBuffer(buffer uint32) {
	if b, ok := g.Buffers[buffer]; ok && !b.Deleted {
		b.Deleted = true
		if g.ArrayBuffer == buffer {
			g.ArrayBuffer = 0
		}
	}
}

func (g *GL) GenVertexArray() uint32 {
	id := g.newID()
	g.VertexArrays[id] = &VertexArray{
		Enabled:  make(map[uint32]bool),
		Pointers: make(map[uint32]AttribPointer),
	}
	return id
}

func (g *GL) BindVertexArray(vao uint32) {
	if vao != 0 {
		v, ok := g.VertexArrays[vao]
		if !ok || v.Deleted {
			g.fail(glutils.INVALID_OPERATION)
			return
		}
	}
	g.BoundVAO = vao
}

func (g *GL) vao() *VertexArray {
	if g.BoundVAO == 0 {
		g.fail(glutils.INVALID_OPERATION)
		return nil
	}
	return g.VertexArrays[g.BoundVAO]
}

func (g *GL) EnableVertexAttribArray(index uint32) {
	if v := g.vao(); v != nil {
		v.Enabled[index] = true
	}
}

func (g *GL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	v := g.vao()
	if v == nil {
		return
	}
	if size < 1 || size > 4 || stride < 0 || offset < 0 {
		g.fail(glutils.INVALID_VALUE)
		return
	}
	if g.ArrayBuffer == 0 && offset != 0 {
		g.fail(glutils.INVALID_OPERATION)
		return
	}
	v.Pointers[index] = AttribPointer{
		Buffer:     g.ArrayBuffer,
		Size:       size,
		Type:       xtype,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
	}
}

func (g *GL) DeleteVertexArray(vao uint32) {
	if v, ok := g.VertexArrays[vao]; ok && !v.Deleted {
		v.Deleted = true
		if g.BoundVAO == vao {
			g.BoundVAO = 0
		}
	}
}

func (g *GL) Viewport(x, y, width, height int32) {
	if width < 0 || height < 0 {
		g.fail(glutils.INVALID_VALUE)
		return
	}
	g.ViewportRect = [4]int32{x, y, width, height}
}

func (g *GL) ClearColor(r, gr, b, a float32) {
	g.Clearing = [4]float32{r, gr, b, a}
}

func (g *GL) Clear(mask uint32) {
	g.Clears = append(g.Clears, mask)
}

func (g *GL) DrawArrays(mode uint32, first, count int32) {
	if first < 0 || count < 0 {
		g.fail(glutils.INVALID_VALUE)
		return
	}
	if g.Program == 0 || g.BoundVAO == 0 {
		g.fail(glutils.INVALID_OPERATION)
		return
	}
	// an enabled array with no buffer behind it would read garbage
	for index := range g.VertexArrays[g.BoundVAO].Enabled {
		p, ok := g.VertexArrays[g.BoundVAO].Pointers[index]
		if !ok || p.Buffer == 0 {
			g.fail(glutils.INVALID_OPERATION)
			return
		}
	}
	g.Draws = append(g.Draws, DrawCall{
		Mode:        mode,
		First:       first,
		Count:       count,
		Program:     g.Program,
		VertexArray: g.BoundVAO,
	})
}

// ReadPixels fills pix with the clear color, the fake does not rasterize
func (g *GL) ReadPixels(x, y, width, height int32, pix []byte) {
	if width < 0 || height < 0 || len(pix) < int(4*width*height) {
		g.fail(glutils.INVALID_VALUE)
		return
	}
	var c [4]byte
	for i, f := range g.Clearing {
		c[i] = byte(clamp01(f)*255 + 0.5)
	}
	for i := 0; i < int(width*height); i++ {
		copy(pix[4*i:], c[:])
	}
}

func (g *GL) GetError() uint32 {
	if len(g.Errors) == 0 {
		return glutils.NO_ERROR
	}
	code := g.Errors[0]
	g.Errors = g.Errors[1:]
	return code
}

// Live counts objects created and not yet deleted
func (g *GL) Live() int {
	n := 0
	for _, s := range g.Shaders {
		if !s.Deleted {
			n++
		}
	}
	for _, p := range g.Programs {
		if !p.Deleted {
			n++
		}
	}
	for _, b := range g.Buffers {
		if !b.Deleted {
			n++
		}
	}
	for _, v := range g.VertexArrays {
		if !v.Deleted {
			n++
		}
	}
	return n
}

// CheckSource returns a compiler log for src, or "" if it looks valid
func CheckSource(src string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "#version") {
		return "ERROR: 0:1: '' : #version required and missing.\n"
	}
	depth := 0
	for i, line := range lines {
		for _, r := range line {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth < 0 {
					return fmt.Sprintf("ERROR: 0:%d: '}' : syntax error\n", i+1)
				}
			}
		}
	}
	if depth != 0 {
		return fmt.Sprintf("ERROR: 0:%d: '' : syntax error: unexpected end of file\n", len(lines))
	}
	if !strings.Contains(src, "void main") {
		return "ERROR: 0:0: '' : Missing main()\n"
	}
	return ""
}

func boolToInt(b bool) int32 {
	if b {
		return glutils.TRUE
	}
	return glutils.FALSE
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
