package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

var textureFormat = core1_0.FormatR8G8B8A8SRGB

// createTexture builds the render-target texture for stages that sample one.
// It is usable as a color attachment, but nothing renders into it; it keeps
// the contents uploaded here.
func (app *App) createTexture() error {
	params := app.stage.Texture
	if params == nil {
		return nil
	}

	stagingBuffer, stagingMemory, err := app.createStagingBuffer(params.Pixels())
	if err != nil {
		return err
	}
	defer stagingBuffer.Destroy(nil)
	defer stagingMemory.Free(nil)

	app.textureImage, app.textureImageMemory, err = app.createImage(params.Width, params.Height, textureFormat,
		core1_0.ImageTilingOptimal,
		core1_0.ImageUsageTransferDst|core1_0.ImageUsageSampled|core1_0.ImageUsageColorAttachment,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	err = app.transitionImageLayout(app.textureImage, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	if err != nil {
		return err
	}
	err = app.copyBufferToImage(stagingBuffer, app.textureImage, params.Width, params.Height)
	if err != nil {
		return err
	}
	err = app.transitionImageLayout(app.textureImage, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	if err != nil {
		return err
	}

	app.textureImageView, err = app.createImageView(app.textureImage, textureFormat, core1_0.ImageAspectColor)
	if err != nil {
		return err
	}

	return app.createSampler()
}

func (app *App) createSampler() error {
	var err error
	app.textureSampler, _, err = app.device.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,

		BorderColor: core1_0.BorderColorIntOpaqueBlack,

		MipmapMode: core1_0.SamplerMipmapModeLinear,
	})

	return err
}

func (app *App) createImageView(image core1_0.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags) (core1_0.ImageView, error) {
	imageView, _, err := app.device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, err
}

func (app *App) createImage(width, height int, format core1_0.Format, tiling core1_0.ImageTiling, usage core1_0.ImageUsageFlags, memoryProperties core1_0.MemoryPropertyFlags) (core1_0.Image, core1_0.DeviceMemory, error) {
	image, _, err := app.device.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return nil, nil, err
	}

	memReqs := image.MemoryRequirements()
	memoryIndex, err := app.findMemoryType(memReqs.MemoryTypeBits, memoryProperties)
	if err != nil {
		return image, nil, err
	}

	imageMemory, _, err := app.device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		return image, nil, err
	}

	_, err = image.BindImageMemory(imageMemory, 0)
	return image, imageMemory, err
}

type layoutTransition struct {
	sourceAccess, destAccess core1_0.AccessFlags
	sourceStage, destStage   core1_0.PipelineStageFlags
}

func transitionFor(oldLayout, newLayout core1_0.ImageLayout) (layoutTransition, error) {
	if oldLayout == core1_0.ImageLayoutUndefined && newLayout == core1_0.ImageLayoutTransferDstOptimal {
		return layoutTransition{
			sourceAccess: 0,
			destAccess:   core1_0.AccessTransferWrite,
			sourceStage:  core1_0.PipelineStageTopOfPipe,
			destStage:    core1_0.PipelineStageTransfer,
		}, nil
	} else if oldLayout == core1_0.ImageLayoutTransferDstOptimal && newLayout == core1_0.ImageLayoutShaderReadOnlyOptimal {
		return layoutTransition{
			sourceAccess: core1_0.AccessTransferWrite,
			destAccess:   core1_0.AccessShaderRead,
			sourceStage:  core1_0.PipelineStageTransfer,
			destStage:    core1_0.PipelineStageFragmentShader,
		}, nil
	}

	return layoutTransition{}, errors.Newf("unexpected layout transition: %s -> %s", oldLayout, newLayout)
}

func (app *App) transitionImageLayout(image core1_0.Image, oldLayout core1_0.ImageLayout, newLayout core1_0.ImageLayout) error {
	transition, err := transitionFor(oldLayout, newLayout)
	if err != nil {
		return err
	}

	buffer, err := app.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	err = buffer.CmdPipelineBarrier(transition.sourceStage, transition.destStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               image,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcAccessMask: transition.sourceAccess,
			DstAccessMask: transition.destAccess,
		},
	})
	if err != nil {
		return err
	}

	return app.endSingleTimeCommands(buffer)
}

func (app *App) copyBufferToImage(buffer core1_0.Buffer, image core1_0.Image, width, height int) error {
	cmdBuffer, err := app.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	err = cmdBuffer.CmdCopyBufferToImage(buffer, image, core1_0.ImageLayoutTransferDstOptimal, []core1_0.BufferImageCopy{
		{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,

			ImageSubresource: core1_0.ImageSubresourceLayers{
				AspectMask:     core1_0.ImageAspectColor,
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: core1_0.Extent3D{Width: width, Height: height, Depth: 1},
		},
	})
	if err != nil {
		return err
	}

	return app.endSingleTimeCommands(cmdBuffer)
}
