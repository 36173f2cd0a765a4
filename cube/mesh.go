// Package cube holds the fixed cube geometry drawn by the demo.
package cube

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VertexCount is four vertices for each of the six faces.
	VertexCount = 24

	// IndexCount is two triangles for each of the six faces.
	IndexCount    = 36
	TriangleCount = IndexCount / 3
)

// Vertex is tightly packed: 3 + 4 + 2 float32s, 36 bytes.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
	TexCoord mgl32.Vec2
}

type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

type face struct {
	corners [4]mgl32.Vec3
	color   mgl32.Vec4
}

// faces lists corners in texture order: (0,0), (1,0), (1,1), (0,1).
var faces = [6]face{
	{
		corners: [4]mgl32.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1}},
		color:   mgl32.Vec4{1, 0.5, 0.5, 1},
	},
	{
		corners: [4]mgl32.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},
		color:   mgl32.Vec4{0.5, 1, 0.5, 1},
	},
	{
		corners: [4]mgl32.Vec3{{-1, -1, -1}, {-1, 1, -1}, {-1, 1, 1}, {-1, -1, 1}},
		color:   mgl32.Vec4{0.5, 0.5, 1, 1},
	},
	{
		corners: [4]mgl32.Vec3{{1, -1, -1}, {1, 1, -1}, {1, 1, 1}, {1, -1, 1}},
		color:   mgl32.Vec4{1, 0.5, 0, 1},
	},
	{
		corners: [4]mgl32.Vec3{{-1, -1, -1}, {-1, -1, 1}, {1, -1, 1}, {1, -1, -1}},
		color:   mgl32.Vec4{0, 0.5, 1, 1},
	},
	{
		corners: [4]mgl32.Vec3{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},
		color:   mgl32.Vec4{1, 0, 0.5, 1},
	},
}

var texCoords = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

var indices = [IndexCount]uint16{
	0, 1, 2, 0, 2, 3,
	6, 5, 4, 7, 6, 4,
	8, 9, 10, 8, 10, 11,
	14, 13, 12, 15, 14, 12,
	16, 17, 18, 16, 18, 19,
	22, 21, 20, 23, 22, 20,
}

// New returns a fresh copy of the cube. Callers may keep or modify it freely.
func New() *Mesh {
	mesh := &Mesh{
		Vertices: make([]Vertex, 0, VertexCount),
		Indices:  make([]uint16, IndexCount),
	}

	for _, f := range faces {
		for corner, position := range f.corners {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: position,
				Color:    f.color,
				TexCoord: texCoords[corner],
			})
		}
	}
	copy(mesh.Indices, indices[:])

	return mesh
}

// Triangles groups the index list into triangles.
func (m *Mesh) Triangles() [][3]uint16 {
	triangles := make([][3]uint16, 0, len(m.Indices)/3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		triangles = append(triangles, [3]uint16{m.Indices[i], m.Indices[i+1], m.Indices[i+2]})
	}
	return triangles
}

// Validate checks the index list forms whole, non-degenerate triangles, stays
// in range and leaves no vertex unreferenced.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return errors.Newf("index count %d is not a multiple of 3", len(m.Indices))
	}

	referenced := make([]bool, len(m.Vertices))
	for triIdx, tri := range m.Triangles() {
		for corner, index := range tri {
			if int(index) >= len(m.Vertices) {
				return errors.Newf("index %d at position %d out of range for %d vertices", index, triIdx*3+corner, len(m.Vertices))
			}
			referenced[index] = true
		}

		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			return errors.Newf("triangle %d %v is degenerate", triIdx, tri)
		}
	}

	for vertex, used := range referenced {
		if !used {
			return errors.Newf("vertex %d is never referenced", vertex)
		}
	}

	return nil
}

// VertexBytes encodes the vertex table in the byte order the GPU expects.
func (m *Mesh) VertexBytes(order binary.ByteOrder) ([]byte, error) {
	return encode(order, m.Vertices)
}

// IndexBytes encodes the index table in the byte order the GPU expects.
func (m *Mesh) IndexBytes(order binary.ByteOrder) ([]byte, error) {
	return encode(order, m.Indices)
}

func encode(order binary.ByteOrder, data any) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, order, data)
	if err != nil {
		return nil, errors.Wrap(err, "encode mesh data")
	}
	return buf.Bytes(), nil
}
