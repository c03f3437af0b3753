package scenery

import (
	"fmt"

	mgl "github.com/go-gl/mathgl/mgl32"
)

// Triangle is three points in clip space
type Triangle [3]mgl.Vec2

var DefaultTriangle = Triangle{
	{0, 0},
	{0, 0.5},
	{0.7, 0},
}

func TriangleFromPoints(points [][2]float32) (Triangle, error) {
	var t Triangle
	if len(points) != len(t) {
		return t, fmt.Errorf("triangle needs %d points, got %d", len(t), len(points))
	}
	for i, p := range points {
		t[i] = mgl.Vec2(p)
	}
	return t, nil
}

// Flatten the vertices into x0, y0, x1, y1, x2, y2
func (t Triangle) Floats() []float32 {
	points := make([]float32, 0, 2*len(t))
	for _, v := range t {
		points = append(points, v.X(), v.Y())
	}
	return points
}

func (t Triangle) InClipSpace() bool {
	for _, v := range t {
		for _, c := range v {
			if c < -1 || c > 1 {
				return false
			}
		}
	}
	return true
}

// Twice the signed area, positive for counter-clockwise winding
func (t Triangle) doubleArea() float32 {
	a := t[1].Sub(t[0])
	b := t[2].Sub(t[0])
	return a.X()*b.Y() - a.Y()*b.X()
}

// Degenerate triangles cover no pixels
func (t Triangle) Degenerate() bool {
	return mgl.FloatEqual(t.doubleArea(), 0)
}

// Clockwise triangles are back facing under the default glFrontFace
func (t Triangle) Clockwise() bool {
	return t.doubleArea() < 0
}
