package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/vkngwrapper/vulkan-cube/shaders"
	"github.com/vkngwrapper/vulkan-cube/stage"
)

const (
	uniformBinding = 0
	textureBinding = 1
	samplerBinding = 2
)

func descriptorSetLayoutBindings(st *stage.Stage) []core1_0.DescriptorSetLayoutBinding {
	bindings := []core1_0.DescriptorSetLayoutBinding{
		{
			Binding:         uniformBinding,
			DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,

			StageFlags: core1_0.StageVertex,
		},
	}

	if st.Texture != nil {
		bindings = append(bindings,
			core1_0.DescriptorSetLayoutBinding{
				Binding:         textureBinding,
				DescriptorType:  core1_0.DescriptorTypeSampledImage,
				DescriptorCount: 1,

				StageFlags: core1_0.StageFragment,
			},
			core1_0.DescriptorSetLayoutBinding{
				Binding:         samplerBinding,
				DescriptorType:  core1_0.DescriptorTypeSampler,
				DescriptorCount: 1,

				StageFlags: core1_0.StageFragment,
			},
		)
	}

	return bindings
}

func (app *App) createDescriptorSetLayout() error {
	var err error
	app.descriptorSetLayout, _, err = app.device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: descriptorSetLayoutBindings(app.stage),
	})
	return err
}

func vertexBindingDescriptions(st *stage.Stage) []core1_0.VertexInputBindingDescription {
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    st.Stride,
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func vertexFormat(format stage.VertexFormat) (core1_0.Format, error) {
	switch format {
	case stage.Float2:
		return core1_0.FormatR32G32SignedFloat, nil
	case stage.Float3:
		return core1_0.FormatR32G32B32SignedFloat, nil
	case stage.Float4:
		return core1_0.FormatR32G32B32A32SignedFloat, nil
	}
	return 0, errors.Newf("unsupported vertex format %d", format)
}

func vertexAttributeDescriptions(st *stage.Stage) ([]core1_0.VertexInputAttributeDescription, error) {
	var descriptions []core1_0.VertexInputAttributeDescription
	for _, attr := range st.Attributes {
		format, err := vertexFormat(attr.Format)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s", attr.Name)
		}

		descriptions = append(descriptions, core1_0.VertexInputAttributeDescription{
			Binding:  0,
			Location: attr.Location,
			Format:   format,
			Offset:   attr.Offset,
		})
	}
	return descriptions, nil
}

func compareOp(comparison stage.Comparison) core1_0.CompareOp {
	switch comparison {
	case stage.Never:
		return core1_0.CompareOpNever
	case stage.Less:
		return core1_0.CompareOpLess
	case stage.LessOrEqual:
		return core1_0.CompareOpLessOrEqual
	case stage.Greater:
		return core1_0.CompareOpGreater
	case stage.GreaterOrEqual:
		return core1_0.CompareOpGreaterOrEqual
	case stage.Equal:
		return core1_0.CompareOpEqual
	case stage.NotEqual:
		return core1_0.CompareOpNotEqual
	}
	return core1_0.CompareOpAlways
}

func cullMode(cull stage.CullFace) core1_0.CullModeFlags {
	switch cull {
	case stage.CullFront:
		return core1_0.CullModeFront
	case stage.CullBack:
		return core1_0.CullModeBack
	}
	return 0
}

func blendFactor(factor stage.BlendFactor) core1_0.BlendFactor {
	switch factor {
	case stage.BlendOne:
		return core1_0.BlendFactorOne
	case stage.BlendSourceAlpha:
		return core1_0.BlendFactorSrcAlpha
	case stage.BlendOneMinusSourceAlpha:
		return core1_0.BlendFactorOneMinusSrcAlpha
	}
	return core1_0.BlendFactorZero
}

func colorBlendAttachment(params stage.Params) core1_0.PipelineColorBlendAttachmentState {
	attachment := core1_0.PipelineColorBlendAttachmentState{
		ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
	}
	if params.ColorBlend == nil && params.AlphaBlend == nil {
		return attachment
	}

	// A missing half of the blend state passes the source through.
	color := stage.BlendState{Source: stage.BlendOne, Destination: stage.BlendZero}
	if params.ColorBlend != nil {
		color = *params.ColorBlend
	}
	alpha := stage.BlendState{Source: stage.BlendOne, Destination: stage.BlendZero}
	if params.AlphaBlend != nil {
		alpha = *params.AlphaBlend
	}

	attachment.BlendEnabled = true
	attachment.SrcColorBlendFactor = blendFactor(color.Source)
	attachment.DstColorBlendFactor = blendFactor(color.Destination)
	attachment.ColorBlendOp = core1_0.BlendOpAdd
	attachment.SrcAlphaBlendFactor = blendFactor(alpha.Source)
	attachment.DstAlphaBlendFactor = blendFactor(alpha.Destination)
	attachment.AlphaBlendOp = core1_0.BlendOpAdd
	return attachment
}

func (app *App) createShaderModule(code []uint32) (core1_0.ShaderModule, error) {
	module, _, err := app.device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	return module, err
}

func (app *App) createGraphicsPipeline() error {
	// Compiled once; swapchain recreation only rebuilds the modules.
	if app.shaderCode == nil {
		compiled, err := app.stage.Program.Compile()
		if err != nil {
			return err
		}
		app.shaderCode = &compiled
	}

	vertShader, err := app.createShaderModule(app.shaderCode.Vertex)
	if err != nil {
		return errors.Wrap(err, "vertex shader module")
	}
	defer vertShader.Destroy(nil)

	fragShader, err := app.createShaderModule(app.shaderCode.Fragment)
	if err != nil {
		return errors.Wrap(err, "fragment shader module")
	}
	defer fragShader.Destroy(nil)

	attributes, err := vertexAttributeDescriptions(app.stage)
	if err != nil {
		return err
	}

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions:   vertexBindingDescriptions(app.stage),
		VertexAttributeDescriptions: attributes,
	}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   shaders.VertexEntryPoint,
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   shaders.FragmentEntryPoint,
	}

	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(app.swapchainExtent.Width),
				Height:   float32(app.swapchainExtent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: app.swapchainExtent,
			},
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    cullMode(app.stage.Params.CullFace),
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	depthStencil := &core1_0.PipelineDepthStencilStateCreateInfo{
		DepthTestEnable:  true,
		DepthWriteEnable: app.stage.Params.DepthWrite,
		DepthCompareOp:   compareOp(app.stage.Params.DepthTest),
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			colorBlendAttachment(app.stage.Params),
		},
	}

	app.pipelineLayout, _, err = app.device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{
			app.descriptorSetLayout,
		},
	})
	if err != nil {
		return errors.Wrap(err, "pipeline layout")
	}

	pipelines, _, err := app.device.CreateGraphicsPipelines(nil, nil, []core1_0.GraphicsPipelineCreateInfo{
		{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			DepthStencilState:  depthStencil,
			ColorBlendState:    colorBlend,
			Layout:             app.pipelineLayout,
			RenderPass:         app.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	})
	if err != nil {
		return err
	}
	app.graphicsPipeline = pipelines[0]

	return nil
}
