package renderer

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
)

func writeData(memory core1_0.DeviceMemory, offset int, data any) error {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return errors.Wrap(err, "encode buffer data")
	}

	return writeBytes(memory, offset, buf.Bytes())
}

func writeBytes(memory core1_0.DeviceMemory, offset int, data []byte) error {
	memoryPtr, _, err := memory.Map(offset, len(data), 0)
	if err != nil {
		return err
	}
	defer memory.Unmap()

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), len(data))
	copy(dataBuffer, data)
	return nil
}

func (app *App) createBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	buffer, _, err := app.device.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, nil, err
	}

	memRequirements := buffer.MemoryRequirements()
	memoryTypeIndex, err := app.findMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		return buffer, nil, err
	}

	memory, _, err := app.device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return buffer, nil, err
	}

	_, err = buffer.BindBufferMemory(memory, 0)
	return buffer, memory, err
}

// createStagingBuffer returns a host-visible buffer already holding data. The
// caller destroys it once the copy has been submitted.
func (app *App) createStagingBuffer(data []byte) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	stagingBuffer, stagingMemory, err := app.createBuffer(len(data), core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err == nil {
		err = writeBytes(stagingMemory, 0, data)
	}
	if err != nil {
		if stagingBuffer != nil {
			stagingBuffer.Destroy(nil)
		}
		if stagingMemory != nil {
			stagingMemory.Free(nil)
		}
		return nil, nil, err
	}

	return stagingBuffer, stagingMemory, nil
}

// createDeviceLocalBuffer uploads data through a staging buffer into memory
// the host never touches again.
func (app *App) createDeviceLocalBuffer(data []byte, usage core1_0.BufferUsageFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	stagingBuffer, stagingMemory, err := app.createStagingBuffer(data)
	if err != nil {
		return nil, nil, err
	}
	defer stagingBuffer.Destroy(nil)
	defer stagingMemory.Free(nil)

	buffer, memory, err := app.createBuffer(len(data), core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return buffer, memory, err
	}

	return buffer, memory, app.copyBuffer(stagingBuffer, buffer, len(data))
}

func (app *App) createVertexBuffer() error {
	data, err := app.mesh.VertexBytes(common.ByteOrder)
	if err != nil {
		return err
	}

	app.vertexBuffer, app.vertexBufferMemory, err = app.createDeviceLocalBuffer(data, core1_0.BufferUsageVertexBuffer)
	return err
}

func (app *App) createIndexBuffer() error {
	data, err := app.mesh.IndexBytes(common.ByteOrder)
	if err != nil {
		return err
	}

	app.indexBuffer, app.indexBufferMemory, err = app.createDeviceLocalBuffer(data, core1_0.BufferUsageIndexBuffer)
	return err
}

func (app *App) createUniformBuffers() error {
	bufferSize := int(unsafe.Sizeof(UniformBufferObject{}))

	for i := 0; i < len(app.swapchainImages); i++ {
		buffer, memory, err := app.createBuffer(bufferSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if buffer != nil {
			app.uniformBuffers = append(app.uniformBuffers, buffer)
		}
		if memory != nil {
			app.uniformBuffersMemory = append(app.uniformBuffersMemory, memory)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func descriptorPoolSizes(hasTexture bool, sets int) []core1_0.DescriptorPoolSize {
	sizes := []core1_0.DescriptorPoolSize{
		{
			Type:            core1_0.DescriptorTypeUniformBuffer,
			DescriptorCount: sets,
		},
	}

	if hasTexture {
		sizes = append(sizes,
			core1_0.DescriptorPoolSize{
				Type:            core1_0.DescriptorTypeSampledImage,
				DescriptorCount: sets,
			},
			core1_0.DescriptorPoolSize{
				Type:            core1_0.DescriptorTypeSampler,
				DescriptorCount: sets,
			},
		)
	}

	return sizes
}

func (app *App) createDescriptorPool() error {
	var err error
	app.descriptorPool, _, err = app.device.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets:   len(app.swapchainImages),
		PoolSizes: descriptorPoolSizes(app.stage.Texture != nil, len(app.swapchainImages)),
	})
	return err
}

func (app *App) createDescriptorSets() error {
	var allocLayouts []core1_0.DescriptorSetLayout
	for i := 0; i < len(app.swapchainImages); i++ {
		allocLayouts = append(allocLayouts, app.descriptorSetLayout)
	}

	var err error
	app.descriptorSets, _, err = app.device.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: app.descriptorPool,
		SetLayouts:     allocLayouts,
	})
	if err != nil {
		return err
	}

	for i := 0; i < len(app.swapchainImages); i++ {
		writes := []core1_0.WriteDescriptorSet{
			{
				DstSet:          app.descriptorSets[i],
				DstBinding:      uniformBinding,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeUniformBuffer,

				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: app.uniformBuffers[i],
						Offset: 0,
						Range:  int(unsafe.Sizeof(UniformBufferObject{})),
					},
				},
			},
		}

		if app.textureImageView != nil {
			writes = append(writes,
				core1_0.WriteDescriptorSet{
					DstSet:          app.descriptorSets[i],
					DstBinding:      textureBinding,
					DstArrayElement: 0,

					DescriptorType: core1_0.DescriptorTypeSampledImage,

					ImageInfo: []core1_0.DescriptorImageInfo{
						{
							ImageView:   app.textureImageView,
							ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
						},
					},
				},
				core1_0.WriteDescriptorSet{
					DstSet:          app.descriptorSets[i],
					DstBinding:      samplerBinding,
					DstArrayElement: 0,

					DescriptorType: core1_0.DescriptorTypeSampler,

					ImageInfo: []core1_0.DescriptorImageInfo{
						{
							Sampler: app.textureSampler,
						},
					},
				},
			)
		}

		err = app.device.UpdateDescriptorSets(writes, nil)
		if err != nil {
			return err
		}
	}

	return nil
}

func (app *App) beginSingleTimeCommands() (core1_0.CommandBuffer, error) {
	buffers, _, err := app.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        app.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return nil, err
	}

	buffer := buffers[0]
	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	return buffer, err
}

func (app *App) endSingleTimeCommands(buffer core1_0.CommandBuffer) error {
	defer app.device.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})

	_, err := buffer.End()
	if err != nil {
		return err
	}

	_, err = app.graphicsQueue.Submit(nil, []core1_0.SubmitInfo{
		{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	})
	if err != nil {
		return err
	}

	_, err = app.graphicsQueue.WaitIdle()
	return err
}

func (app *App) copyBuffer(srcBuffer core1_0.Buffer, dstBuffer core1_0.Buffer, size int) error {
	buffer, err := app.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	err = buffer.CmdCopyBuffer(srcBuffer, dstBuffer, []core1_0.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		},
	})
	if err != nil {
		return err
	}

	return app.endSingleTimeCommands(buffer)
}
