// Package graphicstest provides an in-memory graphics.Driver and
// graphics.Window for tests.
package graphicstest

import (
	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// ErrInjected is the error returned by calls named in Driver.Fail.
var ErrInjected = errors.New("injected failure")

// Driver records every call and hands out sequential handles. Calls listed
// in Fail return ErrInjected.
type Driver struct {
	InstanceExtensions []string
	InstanceLayers     []string
	Devices            []graphics.PhysicalDeviceInfo
	Surface            graphics.SurfaceSupport
	// ImageCount is the number of images a swapchain reports. Zero means
	// the requested image count.
	ImageCount int
	CacheData  []byte
	NextImage  int

	// Fail maps a method name to the number of successful calls allowed
	// before it starts failing.
	Fail map[string]int

	Instance  graphics.InstanceInfo
	Device    graphics.DeviceInfo
	Swapchain graphics.SwapchainInfo
	Layouts   []graphics.PipelineLayoutInfo
	Pipelines []graphics.GraphicsPipelineInfo
	Passes    []graphics.RenderPassBeginInfo
	Buffers   map[graphics.Handle][]byte
	Pushed    [][]byte
	Submitted [][]graphics.CmdBuffer
	Draws     [][]int

	// Calls lists method names in call order.
	Calls []string
	// Live maps every handle not yet destroyed to the kind of object.
	Live map[graphics.Handle]string

	counts map[string]int
	next   graphics.Handle
}

func NewDriver() *Driver {
	return &Driver{
		InstanceExtensions: []string{"VK_KHR_surface"},
		InstanceLayers:     []string{},
		Devices:            []graphics.PhysicalDeviceInfo{Discrete()},
		Surface:            DefaultSurface(),
		Buffers:            map[graphics.Handle][]byte{},
		Live:               map[graphics.Handle]string{},
		counts:             map[string]int{},
	}
}

// Discrete returns a discrete GPU with a single graphics, compute and
// present family that supports VK_KHR_swapchain.
func Discrete() graphics.PhysicalDeviceInfo {
	return graphics.PhysicalDeviceInfo{
		Device:   graphics.PhysicalDevice{Handle: 1},
		Name:     "Fake Discrete GPU",
		Type:     core1_0.PhysicalDeviceTypeDiscreteGPU,
		VendorID: 0x10de,
		DeviceID: 0x2204,
		Limits: graphics.Limits{
			MaxDescriptorSetSamplers:       16,
			MaxBoundDescriptorSets:         8,
			MaxDescriptorSetUniformBuffers: 12,
			MaxUniformBufferRange:          65536,
			MaxFramebufferWidth:            16384,
			MaxFramebufferHeight:           16384,
		},
		QueueFamilies: []graphics.QueueFamily{
			{Flags: core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer, PresentSupport: true},
		},
		Extensions: []string{"VK_KHR_swapchain"},
	}
}

// DefaultSurface supports the preferred format, FIFO and mailbox, with a
// fixed 640x480 extent.
func DefaultSurface() graphics.SurfaceSupport {
	return graphics.SurfaceSupport{
		Capabilities: khr_surface.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  core1_0.Extent2D{Width: 640, Height: 480},
			MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
		},
		Formats: []khr_surface.SurfaceFormat{
			{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
			{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		},
		PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO, khr_surface.PresentModeMailbox},
	}
}

func (d *Driver) call(name string) error {
	d.Calls = append(d.Calls, name)
	n := d.counts[name]
	d.counts[name] = n + 1
	if allowed, ok := d.Fail[name]; ok && n >= allowed {
		return errors.Wrap(ErrInjected, name)
	}
	return nil
}

func (d *Driver) handle(kind string) graphics.Handle {
	d.next++
	d.Live[d.next] = kind
	return d.next
}

func (d *Driver) destroy(name string, h graphics.Handle) {
	d.Calls = append(d.Calls, name)
	d.counts[name]++
	if h.Initialized() {
		delete(d.Live, h)
	}
}

// Count returns how many times the named method was called.
func (d *Driver) Count(name string) int { return d.counts[name] }

// LiveOf returns the number of live handles of the given kind.
func (d *Driver) LiveOf(kind string) int {
	n := 0
	for _, k := range d.Live {
		if k == kind {
			n++
		}
	}
	return n
}

func (d *Driver) AvailableInstanceExtensions() ([]string, error) {
	if err := d.call("AvailableInstanceExtensions"); err != nil {
		return nil, err
	}
	return d.InstanceExtensions, nil
}

func (d *Driver) AvailableInstanceLayers() ([]string, error) {
	if err := d.call("AvailableInstanceLayers"); err != nil {
		return nil, err
	}
	return d.InstanceLayers, nil
}

func (d *Driver) CreateInstance(info graphics.InstanceInfo) error {
	if err := d.call("CreateInstance"); err != nil {
		return err
	}
	d.Instance = info
	return nil
}

func (d *Driver) CreateSurface(graphics.Window) error { return d.call("CreateSurface") }

func (d *Driver) PhysicalDevices() ([]graphics.PhysicalDeviceInfo, error) {
	if err := d.call("PhysicalDevices"); err != nil {
		return nil, err
	}
	return d.Devices, nil
}

func (d *Driver) SurfaceSupport(graphics.PhysicalDevice) (graphics.SurfaceSupport, error) {
	if err := d.call("SurfaceSupport"); err != nil {
		return graphics.SurfaceSupport{}, err
	}
	return d.Surface, nil
}

func (d *Driver) CreateDevice(_ graphics.PhysicalDevice, info graphics.DeviceInfo) error {
	if err := d.call("CreateDevice"); err != nil {
		return err
	}
	d.Device = info
	return nil
}

func (d *Driver) GetQueue(int) graphics.Queue {
	d.call("GetQueue")
	return graphics.Queue{Handle: d.handle("queue")}
}

func (d *Driver) DeviceWaitIdle() error { return d.call("DeviceWaitIdle") }
func (d *Driver) DestroyDevice()        { d.destroy("DestroyDevice", 0) }
func (d *Driver) DestroySurface()       { d.destroy("DestroySurface", 0) }
func (d *Driver) DestroyInstance()      { d.destroy("DestroyInstance", 0) }

func (d *Driver) CreateSwapchain(info graphics.SwapchainInfo) (graphics.Swapchain, error) {
	if err := d.call("CreateSwapchain"); err != nil {
		return graphics.Swapchain{}, err
	}
	d.Swapchain = info
	return graphics.Swapchain{Handle: d.handle("swapchain")}, nil
}

func (d *Driver) SwapchainImages(graphics.Swapchain) ([]graphics.Image, error) {
	if err := d.call("SwapchainImages"); err != nil {
		return nil, err
	}
	n := d.ImageCount
	if n == 0 {
		n = d.Swapchain.ImageCount
	}
	images := make([]graphics.Image, n)
	for i := range images {
		d.next++
		images[i] = graphics.Image{Handle: d.next}
	}
	return images, nil
}

func (d *Driver) DestroySwapchain(s graphics.Swapchain) { d.destroy("DestroySwapchain", s.Handle) }

func (d *Driver) AcquireNextImage(graphics.Swapchain, graphics.Fence) (int, error) {
	if err := d.call("AcquireNextImage"); err != nil {
		return 0, err
	}
	return d.NextImage, nil
}

func (d *Driver) QueuePresent(graphics.Queue, graphics.Swapchain, int) error {
	return d.call("QueuePresent")
}

func (d *Driver) CreateRenderPass(core1_0.RenderPassCreateInfo) (graphics.RenderPass, error) {
	if err := d.call("CreateRenderPass"); err != nil {
		return graphics.RenderPass{}, err
	}
	return graphics.RenderPass{Handle: d.handle("render pass")}, nil
}

func (d *Driver) DestroyRenderPass(rp graphics.RenderPass) {
	d.destroy("DestroyRenderPass", rp.Handle)
}

func (d *Driver) CreateDescriptorSetLayout(core1_0.DescriptorSetLayoutCreateInfo) (graphics.DescriptorSetLayout, error) {
	if err := d.call("CreateDescriptorSetLayout"); err != nil {
		return graphics.DescriptorSetLayout{}, err
	}
	return graphics.DescriptorSetLayout{Handle: d.handle("descriptor set layout")}, nil
}

func (d *Driver) DestroyDescriptorSetLayout(l graphics.DescriptorSetLayout) {
	d.destroy("DestroyDescriptorSetLayout", l.Handle)
}

func (d *Driver) CreatePipelineLayout(info graphics.PipelineLayoutInfo) (graphics.PipelineLayout, error) {
	if err := d.call("CreatePipelineLayout"); err != nil {
		return graphics.PipelineLayout{}, err
	}
	d.Layouts = append(d.Layouts, info)
	return graphics.PipelineLayout{Handle: d.handle("pipeline layout")}, nil
}

func (d *Driver) DestroyPipelineLayout(l graphics.PipelineLayout) {
	d.destroy("DestroyPipelineLayout", l.Handle)
}

func (d *Driver) CreateGraphicsPipeline(_ graphics.PipelineCache, info graphics.GraphicsPipelineInfo) (graphics.Pipeline, error) {
	if err := d.call("CreateGraphicsPipeline"); err != nil {
		return graphics.Pipeline{}, err
	}
	d.Pipelines = append(d.Pipelines, info)
	return graphics.Pipeline{Handle: d.handle("pipeline")}, nil
}

func (d *Driver) DestroyPipeline(p graphics.Pipeline) { d.destroy("DestroyPipeline", p.Handle) }

func (d *Driver) CreatePipelineCache(initial []byte) (graphics.PipelineCache, error) {
	if err := d.call("CreatePipelineCache"); err != nil {
		return graphics.PipelineCache{}, err
	}
	d.CacheData = append([]byte(nil), initial...)
	return graphics.PipelineCache{Handle: d.handle("pipeline cache")}, nil
}

func (d *Driver) PipelineCacheData(graphics.PipelineCache) ([]byte, error) {
	if err := d.call("PipelineCacheData"); err != nil {
		return nil, err
	}
	return d.CacheData, nil
}

func (d *Driver) DestroyPipelineCache(c graphics.PipelineCache) {
	d.destroy("DestroyPipelineCache", c.Handle)
}

func (d *Driver) CreateShaderModule([]uint32) (graphics.ShaderModule, error) {
	if err := d.call("CreateShaderModule"); err != nil {
		return graphics.ShaderModule{}, err
	}
	return graphics.ShaderModule{Handle: d.handle("shader module")}, nil
}

func (d *Driver) DestroyShaderModule(m graphics.ShaderModule) {
	d.destroy("DestroyShaderModule", m.Handle)
}

func (d *Driver) CreateImage(graphics.ImageInfo) (graphics.Image, error) {
	if err := d.call("CreateImage"); err != nil {
		return graphics.Image{}, err
	}
	return graphics.Image{Handle: d.handle("image")}, nil
}

func (d *Driver) DestroyImage(i graphics.Image) { d.destroy("DestroyImage", i.Handle) }

func (d *Driver) CreateImageView(graphics.ImageViewInfo) (graphics.ImageView, error) {
	if err := d.call("CreateImageView"); err != nil {
		return graphics.ImageView{}, err
	}
	return graphics.ImageView{Handle: d.handle("image view")}, nil
}

func (d *Driver) DestroyImageView(v graphics.ImageView) { d.destroy("DestroyImageView", v.Handle) }

func (d *Driver) CreateFramebuffer(graphics.FramebufferInfo) (graphics.Framebuffer, error) {
	if err := d.call("CreateFramebuffer"); err != nil {
		return graphics.Framebuffer{}, err
	}
	return graphics.Framebuffer{Handle: d.handle("framebuffer")}, nil
}

func (d *Driver) DestroyFramebuffer(f graphics.Framebuffer) {
	d.destroy("DestroyFramebuffer", f.Handle)
}

func (d *Driver) CreateBuffer(size int, _ core1_0.BufferUsageFlags) (graphics.Buffer, error) {
	if err := d.call("CreateBuffer"); err != nil {
		return graphics.Buffer{}, err
	}
	h := d.handle("buffer")
	d.Buffers[h] = make([]byte, size)
	return graphics.Buffer{Handle: h}, nil
}

func (d *Driver) WriteBuffer(b graphics.Buffer, offset int, data []byte) error {
	if err := d.call("WriteBuffer"); err != nil {
		return err
	}
	mem, ok := d.Buffers[b.Handle]
	if !ok || offset+len(data) > len(mem) {
		return errors.Newf("write of %d bytes at %d out of range", len(data), offset)
	}
	copy(mem[offset:], data)
	return nil
}

func (d *Driver) DestroyBuffer(b graphics.Buffer) {
	d.destroy("DestroyBuffer", b.Handle)
	delete(d.Buffers, b.Handle)
}

func (d *Driver) CreateCommandPool(int) (graphics.CmdPool, error) {
	if err := d.call("CreateCommandPool"); err != nil {
		return graphics.CmdPool{}, err
	}
	return graphics.CmdPool{Handle: d.handle("command pool")}, nil
}

func (d *Driver) DestroyCommandPool(p graphics.CmdPool) {
	d.destroy("DestroyCommandPool", p.Handle)
}

func (d *Driver) AllocateCommandBuffer(graphics.CmdPool) (graphics.CmdBuffer, error) {
	if err := d.call("AllocateCommandBuffer"); err != nil {
		return graphics.CmdBuffer{}, err
	}
	d.next++
	return graphics.CmdBuffer{Handle: d.next}, nil
}

func (d *Driver) BeginCommandBuffer(graphics.CmdBuffer) error { return d.call("BeginCommandBuffer") }
func (d *Driver) EndCommandBuffer(graphics.CmdBuffer) error   { return d.call("EndCommandBuffer") }

func (d *Driver) CmdBeginRenderPass(_ graphics.CmdBuffer, info graphics.RenderPassBeginInfo) error {
	if err := d.call("CmdBeginRenderPass"); err != nil {
		return err
	}
	d.Passes = append(d.Passes, info)
	return nil
}

func (d *Driver) CmdEndRenderPass(graphics.CmdBuffer) { d.call("CmdEndRenderPass") }

func (d *Driver) CmdBindPipeline(graphics.CmdBuffer, graphics.Pipeline) { d.call("CmdBindPipeline") }

func (d *Driver) CmdPushConstants(_ graphics.CmdBuffer, _ graphics.PipelineLayout, _ core1_0.ShaderStageFlags, _ int, data []byte) {
	d.call("CmdPushConstants")
	d.Pushed = append(d.Pushed, append([]byte(nil), data...))
}

func (d *Driver) CmdBindVertexBuffers(graphics.CmdBuffer, int, []graphics.Buffer, []int) {
	d.call("CmdBindVertexBuffers")
}

func (d *Driver) CmdBindIndexBuffer(graphics.CmdBuffer, graphics.Buffer, int, core1_0.IndexType) {
	d.call("CmdBindIndexBuffer")
}

func (d *Driver) CmdDraw(_ graphics.CmdBuffer, vertexCount, instanceCount, firstVertex, firstInstance int) {
	d.call("CmdDraw")
	d.Draws = append(d.Draws, []int{vertexCount, instanceCount, firstVertex, firstInstance})
}

func (d *Driver) CmdDrawIndexed(_ graphics.CmdBuffer, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	d.call("CmdDrawIndexed")
	d.Draws = append(d.Draws, []int{indexCount, instanceCount, firstIndex, vertexOffset, firstInstance})
}

func (d *Driver) QueueSubmit(_ graphics.Queue, _ graphics.Fence, buffers ...graphics.CmdBuffer) error {
	if err := d.call("QueueSubmit"); err != nil {
		return err
	}
	d.Submitted = append(d.Submitted, buffers)
	return nil
}

func (d *Driver) QueueWaitIdle(graphics.Queue) error { return d.call("QueueWaitIdle") }

func (d *Driver) CreateFence() (graphics.Fence, error) {
	if err := d.call("CreateFence"); err != nil {
		return graphics.Fence{}, err
	}
	return graphics.Fence{Handle: d.handle("fence")}, nil
}

func (d *Driver) WaitForFence(graphics.Fence) error { return d.call("WaitForFence") }
func (d *Driver) ResetFence(graphics.Fence) error   { return d.call("ResetFence") }
func (d *Driver) DestroyFence(f graphics.Fence)     { d.destroy("DestroyFence", f.Handle) }
