// Package mesh loads Wavefront OBJ models into basic renderer vertices.
package mesh

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dcore-engine/dcore/renderers/basic"
)

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []basic.Vertex
	Indices  []uint32
}

// vertexKey identifies a unique combination of position, normal and uv
// indices. Missing components are -1.
type vertexKey struct {
	position, normal, uv int
}

type builder struct {
	decoder *obj.Decoder
	unique  map[vertexKey]uint32
	mesh    Mesh
}

// Load decodes an OBJ model. mtl may be nil. Polygons are split into
// triangle fans and vertices sharing all attributes are merged.
func Load(model, mtl io.Reader) (*Mesh, error) {
	if mtl == nil {
		mtl = strings.NewReader("")
	}
	decoder, err := obj.DecodeReader(model, mtl)
	if err != nil {
		return nil, errors.Wrap(err, "decode obj")
	}

	b := &builder{decoder: decoder, unique: make(map[vertexKey]uint32)}
	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				if err := b.addTriangle(face, 0, i-1, i); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(b.mesh.Indices) == 0 {
		return nil, errors.New("obj has no faces")
	}
	return &b.mesh, nil
}

// LoadFile loads path and, when it exists, the .mtl file next to it.
func LoadFile(path string) (*Mesh, error) {
	model, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open mesh")
	}
	defer model.Close()

	var mtl io.Reader
	mtlFile, err := os.Open(strings.TrimSuffix(path, ".obj") + ".mtl")
	if err == nil {
		defer mtlFile.Close()
		mtl = mtlFile
	}

	m, err := Load(model, mtl)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return m, nil
}

func (b *builder) addTriangle(face obj.Face, corners ...int) error {
	for _, c := range corners {
		if err := b.addVertex(face, c); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addVertex(face obj.Face, corner int) error {
	key := vertexKey{position: face.Vertices[corner], normal: -1, uv: -1}
	if corner < len(face.Normals) {
		key.normal = face.Normals[corner]
	}
	if corner < len(face.Uvs) {
		key.uv = face.Uvs[corner]
	}

	index, exists := b.unique[key]
	if !exists {
		vert, err := b.vertex(key)
		if err != nil {
			return err
		}
		index = uint32(len(b.mesh.Vertices))
		b.mesh.Vertices = append(b.mesh.Vertices, vert)
		b.unique[key] = index
	}

	b.mesh.Indices = append(b.mesh.Indices, index)
	return nil
}

func (b *builder) vertex(key vertexKey) (basic.Vertex, error) {
	d := b.decoder
	if key.position < 0 || key.position*3+2 >= len(d.Vertices) {
		return basic.Vertex{}, errors.Newf("vertex index %d out of range", key.position)
	}

	vert := basic.Vertex{Position: mgl32.Vec3{
		d.Vertices[key.position*3],
		d.Vertices[key.position*3+1],
		d.Vertices[key.position*3+2],
	}}
	if key.normal >= 0 && key.normal*3+2 < len(d.Normals) {
		vert.Normal = mgl32.Vec3{
			d.Normals[key.normal*3],
			d.Normals[key.normal*3+1],
			d.Normals[key.normal*3+2],
		}
	}
	// OBJ puts the texture origin bottom left, Vulkan top left.
	if key.uv >= 0 && key.uv*2+1 < len(d.Uvs) {
		vert.TexCoords = mgl32.Vec2{
			d.Uvs[key.uv*2],
			1.0 - d.Uvs[key.uv*2+1],
		}
	}
	return vert, nil
}
