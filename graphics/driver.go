package graphics

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// Limits holds the physical device limits that take part in device scoring.
type Limits struct {
	MaxDescriptorSetSamplers       uint64
	MaxBoundDescriptorSets         uint64
	MaxDescriptorSetUniformBuffers uint64
	MaxUniformBufferRange          uint64
	MaxFramebufferWidth            uint64
	MaxFramebufferHeight           uint64
}

// QueueFamily is one entry of a device's queue family list. PresentSupport
// is reported against the state's surface.
type QueueFamily struct {
	Flags          core1_0.QueueFlags
	PresentSupport bool
}

// PhysicalDeviceInfo is a snapshot of everything the selector needs to know
// about one candidate device.
type PhysicalDeviceInfo struct {
	Device            PhysicalDevice
	Name              string
	Type              core1_0.PhysicalDeviceType
	VendorID          uint32
	DeviceID          uint32
	PipelineCacheUUID uuid.UUID
	Limits            Limits
	QueueFamilies     []QueueFamily
	Extensions        []string
}

// SurfaceSupport is what a device can do with the state's surface.
type SurfaceSupport struct {
	Capabilities khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// MessageFunc receives validation messages when a debug messenger is
// installed.
type MessageFunc func(level slog.Level, msg string)

type InstanceInfo struct {
	ApplicationName    string
	ApplicationVersion common.Version
	EngineName         string
	EngineVersion      common.Version
	Extensions         []string
	Layers             []string

	// EnumeratePortability sets the portability enumeration flag on the
	// instance.
	EnumeratePortability bool
	// Messages, when non-nil, installs a debug messenger.
	Messages MessageFunc
}

type DeviceInfo struct {
	QueueFamilies []int
	Extensions    []string
}

type SwapchainInfo struct {
	Format             khr_surface.SurfaceFormat
	PresentMode        khr_surface.PresentMode
	Extent             core1_0.Extent2D
	ImageCount         int
	SharingMode        core1_0.SharingMode
	QueueFamilyIndices []int
}

type PipelineLayoutInfo struct {
	SetLayouts         []DescriptorSetLayout
	PushConstantRanges []core1_0.PushConstantRange
}

// Shader is a compiled module bound to a pipeline stage and entry point.
type Shader struct {
	Stage  core1_0.ShaderStageFlags
	Module ShaderModule
	Entry  string
}

type GraphicsPipelineInfo struct {
	Stages        []Shader
	VertexInput   core1_0.PipelineVertexInputStateCreateInfo
	InputAssembly core1_0.PipelineInputAssemblyStateCreateInfo
	Viewport      core1_0.PipelineViewportStateCreateInfo
	Rasterization core1_0.PipelineRasterizationStateCreateInfo
	Multisample   core1_0.PipelineMultisampleStateCreateInfo
	DepthStencil  core1_0.PipelineDepthStencilStateCreateInfo
	ColorBlend    core1_0.PipelineColorBlendStateCreateInfo
	Layout        PipelineLayout
	RenderPass    RenderPass
	Subpass       int
}

type ImageInfo struct {
	Width, Height int
	Format        core1_0.Format
	Usage         core1_0.ImageUsageFlags
}

type ImageViewInfo struct {
	Image  Image
	Format core1_0.Format
	Aspect core1_0.ImageAspectFlags
}

type FramebufferInfo struct {
	RenderPass    RenderPass
	Attachments   []ImageView
	Width, Height int
	Layers        int
}

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Area        core1_0.Rect2D
	ClearValues []core1_0.ClearValue
}

// Driver is the host GPU API as seen by the engine. The vkng package
// implements it over vkngwrapper; tests use an in-memory fake.
//
// A Driver owns every object it hands out a handle for. Destroy calls with a
// null handle are ignored.
type Driver interface {
	AvailableInstanceExtensions() ([]string, error)
	AvailableInstanceLayers() ([]string, error)
	CreateInstance(info InstanceInfo) error
	CreateSurface(window Window) error
	PhysicalDevices() ([]PhysicalDeviceInfo, error)
	SurfaceSupport(device PhysicalDevice) (SurfaceSupport, error)
	CreateDevice(device PhysicalDevice, info DeviceInfo) error
	GetQueue(family int) Queue
	DeviceWaitIdle() error
	DestroyDevice()
	DestroySurface()
	DestroyInstance()

	CreateSwapchain(info SwapchainInfo) (Swapchain, error)
	SwapchainImages(swapchain Swapchain) ([]Image, error)
	DestroySwapchain(swapchain Swapchain)
	AcquireNextImage(swapchain Swapchain, fence Fence) (int, error)
	QueuePresent(queue Queue, swapchain Swapchain, image int) error

	CreateRenderPass(info core1_0.RenderPassCreateInfo) (RenderPass, error)
	DestroyRenderPass(renderPass RenderPass)
	CreateDescriptorSetLayout(info core1_0.DescriptorSetLayoutCreateInfo) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(layout DescriptorSetLayout)
	CreatePipelineLayout(info PipelineLayoutInfo) (PipelineLayout, error)
	DestroyPipelineLayout(layout PipelineLayout)
	CreateGraphicsPipeline(cache PipelineCache, info GraphicsPipelineInfo) (Pipeline, error)
	DestroyPipeline(pipeline Pipeline)
	CreatePipelineCache(initialData []byte) (PipelineCache, error)
	PipelineCacheData(cache PipelineCache) ([]byte, error)
	DestroyPipelineCache(cache PipelineCache)
	CreateShaderModule(code []uint32) (ShaderModule, error)
	DestroyShaderModule(module ShaderModule)

	CreateImage(info ImageInfo) (Image, error)
	DestroyImage(image Image)
	CreateImageView(info ImageViewInfo) (ImageView, error)
	DestroyImageView(view ImageView)
	CreateFramebuffer(info FramebufferInfo) (Framebuffer, error)
	DestroyFramebuffer(framebuffer Framebuffer)
	CreateBuffer(size int, usage core1_0.BufferUsageFlags) (Buffer, error)
	WriteBuffer(buffer Buffer, offset int, data []byte) error
	DestroyBuffer(buffer Buffer)

	CreateCommandPool(family int) (CmdPool, error)
	DestroyCommandPool(pool CmdPool)
	AllocateCommandBuffer(pool CmdPool) (CmdBuffer, error)
	BeginCommandBuffer(buffer CmdBuffer) error
	EndCommandBuffer(buffer CmdBuffer) error
	CmdBeginRenderPass(buffer CmdBuffer, info RenderPassBeginInfo) error
	CmdEndRenderPass(buffer CmdBuffer)
	CmdBindPipeline(buffer CmdBuffer, pipeline Pipeline)
	CmdPushConstants(buffer CmdBuffer, layout PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte)
	CmdBindVertexBuffers(buffer CmdBuffer, first int, buffers []Buffer, offsets []int)
	CmdBindIndexBuffer(buffer CmdBuffer, index Buffer, offset int, indexType core1_0.IndexType)
	CmdDraw(buffer CmdBuffer, vertexCount, instanceCount, firstVertex, firstInstance int)
	CmdDrawIndexed(buffer CmdBuffer, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int)
	QueueSubmit(queue Queue, fence Fence, buffers ...CmdBuffer) error
	QueueWaitIdle(queue Queue) error

	CreateFence() (Fence, error)
	WaitForFence(fence Fence) error
	ResetFence(fence Fence) error
	DestroyFence(fence Fence)
}

// Window is the windowing collaborator.
type Window interface {
	RequiredInstanceExtensions() []string
	DrawableSize() (width, height int)
	MousePosition() (x, y int)
	ShouldClose() bool
	Close()
	Update()
}
