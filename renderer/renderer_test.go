package renderer

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/vkngwrapper/vulkan-cube/camera"
	"github.com/vkngwrapper/vulkan-cube/stage"
)

func mustStage(t *testing.T, variant stage.Variant) *stage.Stage {
	t.Helper()
	st, err := stage.New(variant)
	require.NoError(t, err)
	return st
}

func TestVulkanClipMapsDepthRange(t *testing.T) {
	near := vulkanClip.Mul4x1(mgl32.Vec4{0.25, 0.5, -1, 1})
	far := vulkanClip.Mul4x1(mgl32.Vec4{0.25, 0.5, 1, 1})

	assert.Equal(t, mgl32.Vec4{0.25, -0.5, 0, 1}, near)
	assert.Equal(t, mgl32.Vec4{0.25, -0.5, 1, 1}, far)
}

func TestFrameUniforms(t *testing.T) {
	cam := camera.Default()

	ubo := frameUniforms(cam, 800, 600)
	assert.True(t, vulkanClip.Mul4(cam.ViewProjection(800.0/600.0)).ApproxEqual(ubo.MVP))
	assert.Equal(t, uintptr(64), unsafe.Sizeof(ubo))

	// A resize only touches the x scale.
	resized := frameUniforms(cam, 1024, 400)
	assert.NotEqual(t, ubo.MVP.Row(0), resized.MVP.Row(0))
	assert.Equal(t, ubo.MVP.Row(1), resized.MVP.Row(1))
	assert.Equal(t, ubo.MVP.Row(2), resized.MVP.Row(2))
	assert.Equal(t, ubo.MVP.Row(3), resized.MVP.Row(3))
}

func TestClampExtent(t *testing.T) {
	minExtent := core1_0.Extent2D{Width: 100, Height: 100}
	maxExtent := core1_0.Extent2D{Width: 4096, Height: 2048}

	assert.Equal(t, core1_0.Extent2D{Width: 800, Height: 600}, clampExtent(800, 600, minExtent, maxExtent))
	assert.Equal(t, core1_0.Extent2D{Width: 100, Height: 100}, clampExtent(10, 0, minExtent, maxExtent))
	assert.Equal(t, core1_0.Extent2D{Width: 4096, Height: 2048}, clampExtent(5000, 3000, minExtent, maxExtent))
}

func TestVertexAttributeDescriptions(t *testing.T) {
	st := mustStage(t, stage.Textured)

	descriptions, err := vertexAttributeDescriptions(st)
	require.NoError(t, err)
	assert.Equal(t, []core1_0.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: core1_0.FormatR32G32B32SignedFloat, Offset: 0},
		{Binding: 0, Location: 1, Format: core1_0.FormatR32G32B32A32SignedFloat, Offset: 12},
		{Binding: 0, Location: 2, Format: core1_0.FormatR32G32SignedFloat, Offset: 28},
	}, descriptions)

	bindings := vertexBindingDescriptions(st)
	require.Len(t, bindings, 1)
	assert.Equal(t, 36, bindings[0].Stride)
}

func TestVertexAttributeDescriptionsRejectUnknownFormat(t *testing.T) {
	st := mustStage(t, stage.Colored)
	st.Attributes = append(st.Attributes, stage.VertexAttribute{Name: "bad", Location: 2, Format: stage.VertexFormat(9)})

	_, err := vertexAttributeDescriptions(st)
	assert.ErrorContains(t, err, "attribute bad")
}

func TestDescriptorLayoutFollowsTexture(t *testing.T) {
	colored := descriptorSetLayoutBindings(mustStage(t, stage.Colored))
	require.Len(t, colored, 1)
	assert.Equal(t, core1_0.DescriptorTypeUniformBuffer, colored[0].DescriptorType)
	assert.Equal(t, core1_0.StageVertex, colored[0].StageFlags)

	textured := descriptorSetLayoutBindings(mustStage(t, stage.Textured))
	require.Len(t, textured, 3)
	assert.Equal(t, textureBinding, textured[1].Binding)
	assert.Equal(t, core1_0.DescriptorTypeSampledImage, textured[1].DescriptorType)
	assert.Equal(t, samplerBinding, textured[2].Binding)
	assert.Equal(t, core1_0.DescriptorTypeSampler, textured[2].DescriptorType)

	assert.Len(t, descriptorPoolSizes(false, 3), 1)
	sizes := descriptorPoolSizes(true, 3)
	require.Len(t, sizes, 3)
	for _, size := range sizes {
		assert.Equal(t, 3, size.DescriptorCount)
	}
}

func TestPipelineStateTranslation(t *testing.T) {
	assert.Equal(t, core1_0.CompareOpLessOrEqual, compareOp(stage.LessOrEqual))
	assert.Equal(t, core1_0.CompareOpAlways, compareOp(stage.Always))
	assert.Equal(t, core1_0.CullModeFlags(0), cullMode(stage.CullNothing))
	assert.Equal(t, core1_0.CullModeBack, cullMode(stage.CullBack))

	opaque := colorBlendAttachment(mustStage(t, stage.Colored).Params)
	assert.False(t, opaque.BlendEnabled)

	blended := colorBlendAttachment(mustStage(t, stage.Textured).Params)
	assert.True(t, blended.BlendEnabled)
	assert.Equal(t, core1_0.BlendFactorSrcAlpha, blended.SrcColorBlendFactor)
	assert.Equal(t, core1_0.BlendFactorOneMinusSrcAlpha, blended.DstColorBlendFactor)
	assert.Equal(t, core1_0.BlendFactorZero, blended.SrcAlphaBlendFactor)
	assert.Equal(t, core1_0.BlendFactorOne, blended.DstAlphaBlendFactor)
	assert.Equal(t, core1_0.BlendOpAdd, blended.ColorBlendOp)
	assert.Equal(t, core1_0.BlendOpAdd, blended.AlphaBlendOp)
}

func TestTransitionFor(t *testing.T) {
	upload, err := transitionFor(core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	require.NoError(t, err)
	assert.Equal(t, core1_0.AccessTransferWrite, upload.destAccess)
	assert.Equal(t, core1_0.PipelineStageTransfer, upload.destStage)

	sample, err := transitionFor(core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	require.NoError(t, err)
	assert.Equal(t, core1_0.AccessShaderRead, sample.destAccess)

	_, err = transitionFor(core1_0.ImageLayoutShaderReadOnlyOptimal, core1_0.ImageLayoutUndefined)
	assert.Error(t, err)
}

func TestQueueFamilyIndicesUnique(t *testing.T) {
	graphics, present := 0, 0
	indices := QueueFamilyIndices{GraphicsFamily: &graphics, PresentFamily: &present}
	assert.True(t, indices.IsComplete())
	assert.Equal(t, []int{0}, indices.Unique())

	present = 2
	assert.Equal(t, []int{0, 2}, indices.Unique())

	assert.False(t, (&QueueFamilyIndices{GraphicsFamily: &graphics}).IsComplete())
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, stage.Colored, app.stage.Variant)
	assert.Len(t, app.mesh.Indices, 36)

	cfg := DefaultConfig()
	cfg.Variant = stage.Variant(42)
	_, err = NewApp(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Width = -1
	_, err = NewApp(cfg)
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewAppTextured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Variant = stage.Textured

	app, err := NewApp(cfg)
	require.NoError(t, err)
	assert.Equal(t, stage.Textured, app.stage.Variant)
	require.NotNil(t, app.stage.Texture)
	assert.Len(t, descriptorSetLayoutBindings(app.stage), 3)
	assert.True(t, colorBlendAttachment(app.stage.Params).BlendEnabled)
}

func TestCleanupWithNothingCreated(t *testing.T) {
	app, err := NewApp(DefaultConfig())
	require.NoError(t, err)

	// Run defers cleanup before opening the window, so it must cope with
	// every resource still being nil.
	assert.NotPanics(t, app.cleanup)
}

func TestMissingNames(t *testing.T) {
	available := map[string]int{"VK_KHR_surface": 1, "VK_KHR_xlib_surface": 2}

	assert.Empty(t, missingNames([]string{"VK_KHR_surface"}, available))
	assert.Empty(t, missingNames(nil, available))
	assert.Equal(t, []string{"VK_KHR_win32_surface", "VK_EXT_debug_utils"},
		missingNames([]string{"VK_KHR_win32_surface", "VK_KHR_surface", "VK_EXT_debug_utils"}, available))
}

func TestRenderPassInfo(t *testing.T) {
	info := renderPassInfo(core1_0.FormatB8G8R8A8SRGB, core1_0.FormatD32SignedFloat)

	require.Len(t, info.Attachments, 2)
	color, depth := info.Attachments[0], info.Attachments[1]
	assert.Equal(t, core1_0.FormatB8G8R8A8SRGB, color.Format)
	assert.Equal(t, core1_0.AttachmentLoadOpClear, color.LoadOp)
	assert.Equal(t, core1_0.AttachmentStoreOpStore, color.StoreOp)
	assert.Equal(t, core1_0.FormatD32SignedFloat, depth.Format)
	assert.Equal(t, core1_0.AttachmentLoadOpClear, depth.LoadOp)
	assert.Equal(t, core1_0.AttachmentStoreOpDontCare, depth.StoreOp)
	assert.Equal(t, core1_0.ImageLayoutDepthStencilAttachmentOptimal, depth.FinalLayout)

	require.Len(t, info.Subpasses, 1)
	require.NotNil(t, info.Subpasses[0].DepthStencilAttachment)
	assert.Equal(t, 1, info.Subpasses[0].DepthStencilAttachment.Attachment)
}

func TestClearValuesFollowStage(t *testing.T) {
	for _, variant := range []stage.Variant{stage.Colored, stage.Textured} {
		st := mustStage(t, variant)
		values := clearValues(st)

		require.Len(t, values, 2)
		assert.Equal(t, core1_0.ClearValueFloat(st.ClearColor), values[0])
		assert.Equal(t, core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0}, values[1])
	}
}
