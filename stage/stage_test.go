package stage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkngwrapper/vulkan-cube/shaders"
)

func TestColoredStage(t *testing.T) {
	s, err := New(Colored)
	require.NoError(t, err)

	assert.Equal(t, shaders.Colored, s.Program)
	assert.Equal(t, 36, s.Stride)
	assert.Equal(t, []VertexAttribute{
		{Name: "pos", Location: 0, Format: Float3, Offset: 0},
		{Name: "color0", Location: 1, Format: Float4, Offset: 12},
	}, s.Attributes)
	assert.Equal(t, Params{DepthTest: LessOrEqual, DepthWrite: true, CullFace: CullNothing}, s.Params)
	assert.Equal(t, [4]float32{0, 0, 0.45, 1}, s.ClearColor)
	assert.Nil(t, s.Texture)
}

func TestTexturedStage(t *testing.T) {
	s, err := New(Textured)
	require.NoError(t, err)

	assert.Equal(t, shaders.Textured, s.Program)
	require.Len(t, s.Attributes, 3)
	assert.Equal(t, VertexAttribute{Name: "uv0", Location: 2, Format: Float2, Offset: 28}, s.Attributes[2])
	require.NotNil(t, s.Params.ColorBlend)
	assert.Equal(t, BlendState{Source: BlendSourceAlpha, Destination: BlendOneMinusSourceAlpha}, *s.Params.ColorBlend)
	require.NotNil(t, s.Params.AlphaBlend)
	assert.Equal(t, BlendState{Source: BlendZero, Destination: BlendOne}, *s.Params.AlphaBlend)
	assert.Equal(t, &TextureParams{Width: 256, Height: 256}, s.Texture)
}

func TestAttributesFitInStride(t *testing.T) {
	for _, variant := range []Variant{Colored, Textured} {
		s, err := New(variant)
		require.NoError(t, err)

		end := 0
		for i, attr := range s.Attributes {
			assert.Equal(t, i, attr.Location)
			assert.GreaterOrEqual(t, attr.Offset, end, "%s overlaps previous attribute", attr.Name)
			end = attr.Offset + attr.Format.Components()*4
		}
		assert.LessOrEqual(t, end, s.Stride)
	}
}

func TestNewIsDeterministic(t *testing.T) {
	first, err := New(Textured)
	require.NoError(t, err)
	second, err := New(Textured)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUnknownVariant(t *testing.T) {
	_, err := New(Variant(7))
	assert.ErrorContains(t, err, "unknown variant 7")
	assert.Equal(t, "unknown", Variant(7).String())
}

func TestTexturePixels(t *testing.T) {
	params := TextureParams{Width: 4, Height: 2}
	pixels := params.Pixels()

	require.Len(t, pixels, 4*2*4)
	for _, b := range pixels {
		assert.Equal(t, byte(0xff), b)
	}
}

func TestAttributesMatchShaderInputs(t *testing.T) {
	for _, variant := range []Variant{Colored, Textured} {
		s, err := New(variant)
		require.NoError(t, err)

		for _, attr := range s.Attributes {
			decl := fmt.Sprintf("@location(%d) %s:", attr.Location, attr.Name)
			assert.True(t, strings.Contains(s.Program.Vertex, decl), "%s vertex shader lacks %q", variant, decl)
		}
		assert.Equal(t, len(s.Attributes), strings.Count(structBlock(s.Program.Vertex, "VertexInput"), "@location("),
			"%s vertex shader has inputs without attributes", variant)
	}
}

// structBlock returns the body of the named WGSL struct declaration.
func structBlock(source, name string) string {
	start := strings.Index(source, "struct "+name+" {")
	if start < 0 {
		return ""
	}
	end := strings.Index(source[start:], "}")
	return source[start : start+end]
}
