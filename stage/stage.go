// Package stage describes what the demo draws: which shader program, how the
// cube's vertices feed it and the fixed-function state around it. It is
// independent of the graphics API; the renderer translates it.
package stage

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/vulkan-cube/cube"
	"github.com/vkngwrapper/vulkan-cube/shaders"
)

type Variant int

const (
	// Colored draws vertex colors only.
	Colored Variant = iota
	// Textured multiplies vertex colors by a sampled render-target texture.
	Textured
)

var variantNames = map[Variant]string{
	Colored:  "colored",
	Textured: "textured",
}

func (v Variant) String() string {
	name, ok := variantNames[v]
	if !ok {
		return "unknown"
	}
	return name
}

type VertexFormat int

const (
	Float2 VertexFormat = iota + 2
	Float3
	Float4
)

// Components is the number of float32 values in the format.
func (f VertexFormat) Components() int {
	return int(f)
}

type VertexAttribute struct {
	Name     string
	Location int
	Format   VertexFormat
	Offset   int
}

type Comparison int

const (
	Never Comparison = iota
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
	Equal
	NotEqual
	Always
)

type CullFace int

const (
	CullNothing CullFace = iota
	CullFront
	CullBack
)

type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSourceAlpha
	BlendOneMinusSourceAlpha
)

// BlendState is always an additive equation: src*Source + dst*Destination.
type BlendState struct {
	Source      BlendFactor
	Destination BlendFactor
}

type Params struct {
	DepthTest  Comparison
	DepthWrite bool
	CullFace   CullFace
	ColorBlend *BlendState
	AlphaBlend *BlendState
}

type TextureParams struct {
	Width  int
	Height int
}

// Stage bundles everything needed to build the pipeline and draw a frame.
type Stage struct {
	Variant    Variant
	Program    shaders.Program
	Attributes []VertexAttribute
	Stride     int
	Params     Params
	ClearColor [4]float32

	// Texture is nil when the variant samples no texture.
	Texture *TextureParams
}

func positionAndColor() []VertexAttribute {
	v := cube.Vertex{}
	return []VertexAttribute{
		{Name: "pos", Location: 0, Format: Float3, Offset: int(unsafe.Offsetof(v.Position))},
		{Name: "color0", Location: 1, Format: Float4, Offset: int(unsafe.Offsetof(v.Color))},
	}
}

// New returns the stage description for a variant.
func New(variant Variant) (*Stage, error) {
	stride := int(unsafe.Sizeof(cube.Vertex{}))

	switch variant {
	case Colored:
		return &Stage{
			Variant:    Colored,
			Program:    shaders.Colored,
			Attributes: positionAndColor(),
			Stride:     stride,
			Params: Params{
				DepthTest:  LessOrEqual,
				DepthWrite: true,
				CullFace:   CullNothing,
			},
			ClearColor: [4]float32{0, 0, 0.45, 1},
		}, nil
	case Textured:
		v := cube.Vertex{}
		return &Stage{
			Variant: Textured,
			Program: shaders.Textured,
			Attributes: append(positionAndColor(),
				VertexAttribute{Name: "uv0", Location: 2, Format: Float2, Offset: int(unsafe.Offsetof(v.TexCoord))},
			),
			Stride: stride,
			Params: Params{
				DepthTest:  LessOrEqual,
				DepthWrite: true,
				CullFace:   CullNothing,
				ColorBlend: &BlendState{Source: BlendSourceAlpha, Destination: BlendOneMinusSourceAlpha},
				AlphaBlend: &BlendState{Source: BlendZero, Destination: BlendOne},
			},
			ClearColor: [4]float32{0.6, 0.6, 0.6, 1},
			Texture:    &TextureParams{Width: 256, Height: 256},
		}, nil
	}

	return nil, errors.Newf("unknown variant %d", variant)
}
