package glutils

import (
	"errors"
	"fmt"
	"image"
)

// ErrAttribNotFound is returned when a vertex input is not active in a program
var ErrAttribNotFound = errors.New("attribute not found")

// GLError is a non-zero code reported by glGetError
type GLError uint32

func (e GLError) Error() string {
	switch e {
	case INVALID_ENUM:
		return "OpenGL error: invalid enum"
	case INVALID_VALUE:
		return "OpenGL error: invalid value"
	case INVALID_OPERATION:
		return "OpenGL error: invalid operation"
	case OUT_OF_MEMORY:
		return "OpenGL error: out of memory"
	default:
		return fmt.Sprintf("OpenGL error %d", uint32(e))
	}
}

func CheckError(gl GL) error {
	if errCode := gl.GetError(); errCode != NO_ERROR {
		return GLError(errCode)
	}
	return nil
}

func lastError(gl GL) error {
	if err := CheckError(gl); err != nil {
		return err
	}
	return errors.New("no object returned")
}

// Look up the location of a vertex shader input.
// Inputs the linker optimized away are reported as ErrAttribNotFound.
func AttribLocation(gl GL, program uint32, name string) (int32, error) {
	loc := gl.GetAttribLocation(program, name)
	if loc < 0 {
		return -1, fmt.Errorf("%w: %q", ErrAttribNotFound, name)
	}
	return loc, nil
}

// Upload points into a new array buffer, which is left bound
func UploadVertices(gl GL, points []float32) uint32 {
	vbo := gl.GenBuffer()
	gl.BindBuffer(ARRAY_BUFFER, vbo)
	gl.BufferData(ARRAY_BUFFER, points, STATIC_DRAW)
	return vbo
}

// VertexAttrib describes how one input slot reads from the bound array buffer
type VertexAttrib struct {
	Location   int32
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     int
}

// Initialize and return a vertex array reading from vbo.
// Every slot in enabled is turned on, every layout is described.
func MakeVao(gl GL, vbo uint32, enabled []int32, layouts ...VertexAttrib) uint32 {
	vao := gl.GenVertexArray()
	gl.BindVertexArray(vao)
	for _, loc := range enabled {
		gl.EnableVertexAttribArray(uint32(loc))
	}
	gl.BindBuffer(ARRAY_BUFFER, vbo)
	for _, l := range layouts {
		gl.VertexAttribPointer(uint32(l.Location), l.Size, l.Type, l.Normalized, l.Stride, l.Offset)
	}
	return vao
}

// Copy the pixels of the current read framebuffer into an image.
// Rows come out bottom-up, use FlipImage to get a conventional image.
func ReadImage(gl GL, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("read image: bad size %dx%d", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.ReadPixels(0, 0, int32(width), int32(height), img.Pix)
	if err := CheckError(gl); err != nil {
		return nil, err
	}
	return img, nil
}

// Create a copy of src reflected along the horizontal axis
func FlipImage(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for i := b.Min.X; i < b.Max.X; i++ {
		for j := b.Min.Y; j < b.Max.Y; j++ {
			dst.Set(i, j, src.At(i, b.Max.Y-1-(j-b.Min.Y)))
		}
	}
	return dst
}
