package cube

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexIsTightlyPacked(t *testing.T) {
	v := Vertex{}
	assert.Equal(t, uintptr(36), unsafe.Sizeof(v))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(v.Position))
	assert.Equal(t, uintptr(12), unsafe.Offsetof(v.Color))
	assert.Equal(t, uintptr(28), unsafe.Offsetof(v.TexCoord))
}

func TestNewHasTwelveTrianglesOverAllVertices(t *testing.T) {
	mesh := New()

	require.Len(t, mesh.Vertices, VertexCount)
	require.Len(t, mesh.Indices, IndexCount)
	assert.Len(t, mesh.Triangles(), TriangleCount)
	assert.Equal(t, 12, TriangleCount)
	assert.NoError(t, mesh.Validate())
}

func TestEachFaceUsesItsOwnFourVertices(t *testing.T) {
	mesh := New()

	for faceIdx := 0; faceIdx < 6; faceIdx++ {
		tris := mesh.Triangles()[faceIdx*2 : faceIdx*2+2]
		for _, tri := range tris {
			for _, index := range tri {
				assert.GreaterOrEqual(t, int(index), faceIdx*4)
				assert.Less(t, int(index), faceIdx*4+4)
			}
		}
	}
}

func TestFacesAreFlat(t *testing.T) {
	mesh := New()

	// Every face lies in a plane where one coordinate is constant at +-1.
	for faceIdx := 0; faceIdx < 6; faceIdx++ {
		quad := mesh.Vertices[faceIdx*4 : faceIdx*4+4]
		constantAxes := 0
		for axis := 0; axis < 3; axis++ {
			value := quad[0].Position[axis]
			same := true
			for _, v := range quad[1:] {
				if v.Position[axis] != value {
					same = false
				}
			}
			if same {
				constantAxes++
				assert.Equal(t, float32(1), mgl32.Abs(value))
			}
		}
		assert.Equal(t, 1, constantAxes, "face %d", faceIdx)

		for _, v := range quad {
			assert.Equal(t, quad[0].Color, v.Color)
		}
	}
}

func TestNewIsDeterministic(t *testing.T) {
	first := New()
	second := New()
	assert.Equal(t, first, second)

	firstVerts, err := first.VertexBytes(binary.LittleEndian)
	require.NoError(t, err)
	secondVerts, err := second.VertexBytes(binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, firstVerts, secondVerts)
	assert.Len(t, firstVerts, VertexCount*36)

	firstIdx, err := first.IndexBytes(binary.LittleEndian)
	require.NoError(t, err)
	secondIdx, err := second.IndexBytes(binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, firstIdx, secondIdx)
	assert.Len(t, firstIdx, IndexCount*2)
}

func TestNewReturnsIndependentCopies(t *testing.T) {
	first := New()
	first.Indices[0] = 23
	first.Vertices[0].Color = mgl32.Vec4{}

	second := New()
	assert.Equal(t, uint16(0), second.Indices[0])
	assert.Equal(t, mgl32.Vec4{1, 0.5, 0.5, 1}, second.Vertices[0].Color)
}

func TestValidate(t *testing.T) {
	mesh := New()
	mesh.Indices = mesh.Indices[:35]
	assert.ErrorContains(t, mesh.Validate(), "not a multiple of 3")

	mesh = New()
	mesh.Indices[4] = 24
	assert.ErrorContains(t, mesh.Validate(), "out of range")

	mesh = New()
	mesh.Indices[7] = mesh.Indices[6]
	assert.ErrorContains(t, mesh.Validate(), "triangle 2 [6 6 4] is degenerate")

	mesh = New()
	mesh.Vertices = append(mesh.Vertices, Vertex{})
	assert.ErrorContains(t, mesh.Validate(), "vertex 24 is never referenced")
}
