// Package shaders holds the WGSL programs for each pipeline variant and
// compiles them to SPIR-V for Vulkan.
package shaders

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/naga"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Program is a vertex + fragment shader pair as WGSL source.
type Program struct {
	Name     string
	Vertex   string
	Fragment string
}

// Compiled holds SPIR-V words ready for vkCreateShaderModule.
type Compiled struct {
	Vertex   []uint32
	Fragment []uint32
}

const uniformsDecl = `
struct Uniforms {
    mvp: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
`

var Colored = Program{
	Name: "colored",
	Vertex: uniformsDecl + `
struct VertexInput {
    @location(0) pos: vec3<f32>,
    @location(1) color0: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = uniforms.mvp * vec4<f32>(in.pos, 1.0);
    out.color = in.color0;
    return out;
}
`,
	Fragment: `
@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`,
}

var Textured = Program{
	Name: "textured",
	Vertex: uniformsDecl + `
struct VertexInput {
    @location(0) pos: vec3<f32>,
    @location(1) color0: vec4<f32>,
    @location(2) uv0: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
    @location(1) uv: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = uniforms.mvp * vec4<f32>(in.pos, 1.0);
    out.color = in.color0;
    out.uv = in.uv0;
    return out;
}
`,
	Fragment: `
@group(0) @binding(1) var tex: texture_2d<f32>;
@group(0) @binding(2) var tex_sampler: sampler;

@fragment
fn fs_main(@location(0) color: vec4<f32>, @location(1) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return color * textureSample(tex, tex_sampler, uv);
}
`,
}

// Compile translates both stages. An error here is fatal for the demo.
func (p Program) Compile() (Compiled, error) {
	vertex, err := compileStage(p.Vertex)
	if err != nil {
		return Compiled{}, errors.Wrapf(err, "compile %s vertex shader", p.Name)
	}

	fragment, err := compileStage(p.Fragment)
	if err != nil {
		return Compiled{}, errors.Wrapf(err, "compile %s fragment shader", p.Name)
	}

	return Compiled{Vertex: vertex, Fragment: fragment}, nil
}

func compileStage(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}

	return BytesToBytecode(spirv)
}

// BytesToBytecode packs little-endian SPIR-V bytes into words and checks the
// module header.
func BytesToBytecode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Newf("spir-v length %d is not a multiple of 4", len(b))
	}
	if len(b) < 20 {
		return nil, errors.Newf("spir-v module of %d bytes is shorter than its header", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}

	if byteCode[0] != SPIRVMagic {
		return nil, errors.Newf("bad spir-v magic number %#08x", byteCode[0])
	}

	return byteCode, nil
}
