// Package renderer draws a stage with Vulkan inside an SDL2 window.
package renderer

import (
	"log"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/vkngwrapper/vulkan-cube/camera"
	"github.com/vkngwrapper/vulkan-cube/cube"
	"github.com/vkngwrapper/vulkan-cube/shaders"
	"github.com/vkngwrapper/vulkan-cube/stage"
)

// App owns every GPU resource. Everything is created once in Run and
// released when Run returns; only swapchain-sized resources are rebuilt on
// resize.
type App struct {
	config Config
	stage  *stage.Stage
	mesh   *cube.Mesh
	camera camera.Camera
	timer  *FrameTimer

	shaderCode *shaders.Compiled

	window *sdl.Window
	loader core.Loader

	instance       core1_0.Instance
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	surface        khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	device         core1_0.Device

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	swapchainExtension    khr_swapchain.Extension
	swapchain             khr_swapchain.Swapchain
	swapchainImages       []core1_0.Image
	swapchainImageFormat  core1_0.Format
	swapchainExtent       core1_0.Extent2D
	swapchainImageViews   []core1_0.ImageView
	swapchainFramebuffers []core1_0.Framebuffer

	renderPass          core1_0.RenderPass
	descriptorPool      core1_0.DescriptorPool
	descriptorSets      []core1_0.DescriptorSet
	descriptorSetLayout core1_0.DescriptorSetLayout
	pipelineLayout      core1_0.PipelineLayout
	graphicsPipeline    core1_0.Pipeline

	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer

	imageAvailableSemaphore []core1_0.Semaphore
	renderFinishedSemaphore []core1_0.Semaphore
	inFlightFence           []core1_0.Fence
	imagesInFlight          []core1_0.Fence
	currentFrame            int

	vertexBuffer       core1_0.Buffer
	vertexBufferMemory core1_0.DeviceMemory
	indexBuffer        core1_0.Buffer
	indexBufferMemory  core1_0.DeviceMemory

	uniformBuffers       []core1_0.Buffer
	uniformBuffersMemory []core1_0.DeviceMemory

	// Only set for stages with a texture.
	textureImage       core1_0.Image
	textureImageMemory core1_0.DeviceMemory
	textureImageView   core1_0.ImageView
	textureSampler     core1_0.Sampler

	depthImage       core1_0.Image
	depthImageMemory core1_0.DeviceMemory
	depthImageView   core1_0.ImageView
}

func NewApp(config Config) (*App, error) {
	err := config.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	st, err := stage.New(config.Variant)
	if err != nil {
		return nil, err
	}

	mesh := cube.New()
	err = mesh.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "cube mesh")
	}

	return &App{
		config: config,
		stage:  st,
		mesh:   mesh,
		camera: camera.Default(),
	}, nil
}

// Run blocks until the window is closed. Whatever was created is released
// before it returns, including after a failed setup.
func (app *App) Run() error {
	defer app.cleanup()

	err := app.initWindow()
	if err != nil {
		return err
	}

	err = app.initVulkan()
	if err != nil {
		return err
	}

	return app.mainLoop()
}

func (app *App) initWindow() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Wrap(err, "init sdl")
	}

	window, err := sdl.CreateWindow(app.config.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(app.config.Width), int32(app.config.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	app.window = window

	app.loader, err = core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return errors.Wrap(err, "create vulkan loader")
	}

	return nil
}

func (app *App) initVulkan() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"create instance", app.createInstance},
		{"setup debug messenger", app.setupDebugMessenger},
		{"create surface", app.createSurface},
		{"pick physical device", app.pickPhysicalDevice},
		{"create logical device", app.createLogicalDevice},
		{"create command pool", app.createCommandPool},
		{"create vertex buffer", app.createVertexBuffer},
		{"create index buffer", app.createIndexBuffer},
		{"create texture", app.createTexture},
		{"create descriptor set layout", app.createDescriptorSetLayout},
		{"create swapchain resources", app.createSwapchainResources},
		{"create sync objects", app.createSyncObjects},
	}

	for _, step := range steps {
		err := step.fn()
		if err != nil {
			return errors.Wrap(err, step.name)
		}
	}

	log.Printf("drawing %s cube, %d indices, swapchain %dx%d",
		app.stage.Variant, len(app.mesh.Indices), app.swapchainExtent.Width, app.swapchainExtent.Height)
	return nil
}

// createSwapchainResources builds everything that depends on the window size.
func (app *App) createSwapchainResources() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"create swapchain", app.createSwapchain},
		{"create image views", app.createImageViews},
		{"create render pass", app.createRenderPass},
		{"create graphics pipeline", app.createGraphicsPipeline},
		{"create depth resources", app.createDepthResources},
		{"create framebuffers", app.createFramebuffers},
		{"create uniform buffers", app.createUniformBuffers},
		{"create descriptor pool", app.createDescriptorPool},
		{"create descriptor sets", app.createDescriptorSets},
		{"create command buffers", app.createCommandBuffers},
	}

	for _, step := range steps {
		err := step.fn()
		if err != nil {
			return errors.Wrap(err, step.name)
		}
	}

	app.imagesInFlight = make([]core1_0.Fence, len(app.swapchainImages))
	return nil
}

func (app *App) mainLoop() error {
	rendering := true
	app.timer = NewFrameTimer(app.config.ReportInterval)

appLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_MINIMIZED:
					rendering = false
				case sdl.WINDOWEVENT_RESTORED:
					rendering = true
					app.timer.Reset()
				case sdl.WINDOWEVENT_RESIZED:
					w, h := app.window.GetSize()
					if w > 0 && h > 0 {
						rendering = true
						err := app.recreateSwapChain()
						if err != nil {
							return err
						}
					} else {
						rendering = false
					}
				}
			}
		}
		if rendering {
			err := app.drawFrame()
			if err != nil {
				return err
			}
			app.timer.Tick()
		}
	}

	_, err := app.device.WaitIdle()
	return err
}

func (app *App) cleanupSwapChain() {
	if app.depthImageView != nil {
		app.depthImageView.Destroy(nil)
		app.depthImageView = nil
	}

	if app.depthImage != nil {
		app.depthImage.Destroy(nil)
		app.depthImage = nil
	}

	if app.depthImageMemory != nil {
		app.depthImageMemory.Free(nil)
		app.depthImageMemory = nil
	}

	for _, framebuffer := range app.swapchainFramebuffers {
		framebuffer.Destroy(nil)
	}
	app.swapchainFramebuffers = nil

	if len(app.commandBuffers) > 0 {
		app.device.FreeCommandBuffers(app.commandBuffers)
		app.commandBuffers = nil
	}

	if app.graphicsPipeline != nil {
		app.graphicsPipeline.Destroy(nil)
		app.graphicsPipeline = nil
	}

	if app.pipelineLayout != nil {
		app.pipelineLayout.Destroy(nil)
		app.pipelineLayout = nil
	}

	if app.renderPass != nil {
		app.renderPass.Destroy(nil)
		app.renderPass = nil
	}

	for _, imageView := range app.swapchainImageViews {
		imageView.Destroy(nil)
	}
	app.swapchainImageViews = nil

	if app.swapchain != nil {
		app.swapchain.Destroy(nil)
		app.swapchain = nil
	}

	for _, buffer := range app.uniformBuffers {
		buffer.Destroy(nil)
	}
	app.uniformBuffers = nil

	for _, memory := range app.uniformBuffersMemory {
		memory.Free(nil)
	}
	app.uniformBuffersMemory = nil

	// Destroying the pool frees its sets.
	if app.descriptorPool != nil {
		app.descriptorPool.Destroy(nil)
		app.descriptorPool = nil
	}
	app.descriptorSets = nil
}

func (app *App) cleanup() {
	if app.device != nil {
		app.cleanupSwapChain()
	}

	if app.textureSampler != nil {
		app.textureSampler.Destroy(nil)
	}

	if app.textureImageView != nil {
		app.textureImageView.Destroy(nil)
	}

	if app.textureImage != nil {
		app.textureImage.Destroy(nil)
	}

	if app.textureImageMemory != nil {
		app.textureImageMemory.Free(nil)
	}

	if app.descriptorSetLayout != nil {
		app.descriptorSetLayout.Destroy(nil)
	}

	if app.indexBuffer != nil {
		app.indexBuffer.Destroy(nil)
	}

	if app.indexBufferMemory != nil {
		app.indexBufferMemory.Free(nil)
	}

	if app.vertexBuffer != nil {
		app.vertexBuffer.Destroy(nil)
	}

	if app.vertexBufferMemory != nil {
		app.vertexBufferMemory.Free(nil)
	}

	for _, fence := range app.inFlightFence {
		fence.Destroy(nil)
	}

	for _, semaphore := range app.renderFinishedSemaphore {
		semaphore.Destroy(nil)
	}

	for _, semaphore := range app.imageAvailableSemaphore {
		semaphore.Destroy(nil)
	}

	if app.commandPool != nil {
		app.commandPool.Destroy(nil)
	}

	if app.device != nil {
		app.device.Destroy(nil)
	}

	if app.debugMessenger != nil {
		app.debugMessenger.Destroy(nil)
	}

	if app.surface != nil {
		app.surface.Destroy(nil)
	}

	if app.instance != nil {
		app.instance.Destroy(nil)
	}

	if app.window != nil {
		app.window.Destroy()
	}
	sdl.Quit()
}

func (app *App) recreateSwapChain() error {
	w, h := app.window.VulkanGetDrawableSize()
	if w == 0 || h == 0 {
		return nil
	}
	if (app.window.GetFlags() & sdl.WINDOW_MINIMIZED) != 0 {
		return nil
	}

	_, err := app.device.WaitIdle()
	if err != nil {
		return err
	}

	app.cleanupSwapChain()

	err = app.createSwapchainResources()
	if err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}

	log.Printf("swapchain resized to %dx%d", app.swapchainExtent.Width, app.swapchainExtent.Height)
	return nil
}
