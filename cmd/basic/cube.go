package main

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dcore-engine/dcore/mesh"
	"github.com/dcore-engine/dcore/renderers/basic"
)

// cube is drawn when no mesh is configured. Each face has its own four
// vertices so normals stay flat.
func cube() *mesh.Mesh {
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	corners := []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	m := &mesh.Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range corners {
			pos := f.normal.Mul(0.5).
				Add(f.u.Mul(c.X() - 0.5)).
				Add(f.v.Mul(c.Y() - 0.5))
			m.Vertices = append(m.Vertices, basic.Vertex{
				Position:  pos,
				Normal:    f.normal,
				TexCoords: mgl32.Vec2{c.X(), 1 - c.Y()},
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
