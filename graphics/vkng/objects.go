package vkng

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// boundImage is an image created by the driver together with its memory.
type boundImage struct {
	image  core1_0.Image
	memory core1_0.DeviceMemory
}

// boundBuffer is a host-visible buffer together with its memory.
type boundBuffer struct {
	buffer core1_0.Buffer
	memory core1_0.DeviceMemory
	size   int
}

func (d *Driver) CreateRenderPass(info core1_0.RenderPassCreateInfo) (graphics.RenderPass, error) {
	renderPass, _, err := d.deviceDriver.CreateRenderPass(nil, info)
	if err != nil {
		return graphics.RenderPass{}, err
	}
	return graphics.RenderPass{Handle: d.objects.put(renderPass)}, nil
}

func (d *Driver) DestroyRenderPass(renderPass graphics.RenderPass) {
	if rp, ok := get[core1_0.RenderPass](d.objects, renderPass.Handle); ok {
		d.deviceDriver.DestroyRenderPass(rp, nil)
		d.objects.remove(renderPass.Handle)
	}
}

func (d *Driver) CreateDescriptorSetLayout(info core1_0.DescriptorSetLayoutCreateInfo) (graphics.DescriptorSetLayout, error) {
	layout, _, err := d.deviceDriver.CreateDescriptorSetLayout(nil, info)
	if err != nil {
		return graphics.DescriptorSetLayout{}, err
	}
	return graphics.DescriptorSetLayout{Handle: d.objects.put(layout)}, nil
}

func (d *Driver) DestroyDescriptorSetLayout(layout graphics.DescriptorSetLayout) {
	if l, ok := get[core1_0.DescriptorSetLayout](d.objects, layout.Handle); ok {
		d.deviceDriver.DestroyDescriptorSetLayout(l, nil)
		d.objects.remove(layout.Handle)
	}
}

func (d *Driver) CreatePipelineLayout(info graphics.PipelineLayoutInfo) (graphics.PipelineLayout, error) {
	setLayouts := make([]core1_0.DescriptorSetLayout, 0, len(info.SetLayouts))
	for _, h := range info.SetLayouts {
		l, err := lookup[core1_0.DescriptorSetLayout](d.objects, h.Handle)
		if err != nil {
			return graphics.PipelineLayout{}, err
		}
		setLayouts = append(setLayouts, l)
	}

	layout, _, err := d.deviceDriver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts:         setLayouts,
		PushConstantRanges: info.PushConstantRanges,
	})
	if err != nil {
		return graphics.PipelineLayout{}, err
	}
	return graphics.PipelineLayout{Handle: d.objects.put(layout)}, nil
}

func (d *Driver) DestroyPipelineLayout(layout graphics.PipelineLayout) {
	if l, ok := get[core1_0.PipelineLayout](d.objects, layout.Handle); ok {
		d.deviceDriver.DestroyPipelineLayout(l, nil)
		d.objects.remove(layout.Handle)
	}
}

func (d *Driver) CreateGraphicsPipeline(cache graphics.PipelineCache, info graphics.GraphicsPipelineInfo) (graphics.Pipeline, error) {
	layout, err := lookup[core1_0.PipelineLayout](d.objects, info.Layout.Handle)
	if err != nil {
		return graphics.Pipeline{}, err
	}
	renderPass, err := lookup[core1_0.RenderPass](d.objects, info.RenderPass.Handle)
	if err != nil {
		return graphics.Pipeline{}, err
	}

	stages := make([]core1_0.PipelineShaderStageCreateInfo, 0, len(info.Stages))
	for _, shader := range info.Stages {
		module, err := lookup[core1_0.ShaderModule](d.objects, shader.Module.Handle)
		if err != nil {
			return graphics.Pipeline{}, err
		}
		stages = append(stages, core1_0.PipelineShaderStageCreateInfo{
			Stage:  shader.Stage,
			Module: module,
			Name:   shader.Entry,
		})
	}

	var pipelineCache *core1_0.PipelineCache
	if c, ok := get[core1_0.PipelineCache](d.objects, cache.Handle); ok {
		pipelineCache = &c
	}

	pipelines, _, err := d.deviceDriver.CreateGraphicsPipelines(pipelineCache, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages:             stages,
			VertexInputState:   &info.VertexInput,
			InputAssemblyState: &info.InputAssembly,
			ViewportState:      &info.Viewport,
			RasterizationState: &info.Rasterization,
			MultisampleState:   &info.Multisample,
			DepthStencilState:  &info.DepthStencil,
			ColorBlendState:    &info.ColorBlend,
			Layout:             layout,
			RenderPass:         renderPass,
			Subpass:            info.Subpass,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return graphics.Pipeline{}, err
	}
	return graphics.Pipeline{Handle: d.objects.put(pipelines[0])}, nil
}

func (d *Driver) DestroyPipeline(pipeline graphics.Pipeline) {
	if p, ok := get[core1_0.Pipeline](d.objects, pipeline.Handle); ok {
		d.deviceDriver.DestroyPipeline(p, nil)
		d.objects.remove(pipeline.Handle)
	}
}

func (d *Driver) CreatePipelineCache(initialData []byte) (graphics.PipelineCache, error) {
	cache, _, err := d.deviceDriver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	if err != nil {
		return graphics.PipelineCache{}, err
	}
	return graphics.PipelineCache{Handle: d.objects.put(cache)}, nil
}

func (d *Driver) PipelineCacheData(cache graphics.PipelineCache) ([]byte, error) {
	c, err := lookup[core1_0.PipelineCache](d.objects, cache.Handle)
	if err != nil {
		return nil, err
	}
	data, _, err := d.deviceDriver.GetPipelineCacheData(c)
	return data, err
}

func (d *Driver) DestroyPipelineCache(cache graphics.PipelineCache) {
	if c, ok := get[core1_0.PipelineCache](d.objects, cache.Handle); ok {
		d.deviceDriver.DestroyPipelineCache(c, nil)
		d.objects.remove(cache.Handle)
	}
}

func (d *Driver) CreateShaderModule(code []uint32) (graphics.ShaderModule, error) {
	module, _, err := d.deviceDriver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return graphics.ShaderModule{}, err
	}
	return graphics.ShaderModule{Handle: d.objects.put(module)}, nil
}

func (d *Driver) DestroyShaderModule(module graphics.ShaderModule) {
	if m, ok := get[core1_0.ShaderModule](d.objects, module.Handle); ok {
		d.deviceDriver.DestroyShaderModule(m, nil)
		d.objects.remove(module.Handle)
	}
}

// CreateImage creates a single-sampled, optimally tiled 2D image in device
// local memory.
func (d *Driver) CreateImage(info graphics.ImageInfo) (graphics.Image, error) {
	image, _, err := d.deviceDriver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  info.Width,
			Height: info.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        info.Format,
		Tiling:        core1_0.ImageTilingOptimal,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         info.Usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return graphics.Image{}, err
	}

	memReqs := d.deviceDriver.GetImageMemoryRequirements(image)
	memoryIndex, err := d.findMemoryType(memReqs.MemoryTypeBits, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		d.deviceDriver.DestroyImage(image, nil)
		return graphics.Image{}, err
	}

	imageMemory, _, err := d.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		d.deviceDriver.DestroyImage(image, nil)
		return graphics.Image{}, errors.Wrap(err, "allocate image memory")
	}

	_, err = d.deviceDriver.BindImageMemory(image, imageMemory, 0)
	if err != nil {
		d.deviceDriver.DestroyImage(image, nil)
		d.deviceDriver.FreeMemory(imageMemory, nil)
		return graphics.Image{}, errors.Wrap(err, "bind image memory")
	}

	return graphics.Image{Handle: d.objects.put(boundImage{image: image, memory: imageMemory})}, nil
}

func (d *Driver) DestroyImage(image graphics.Image) {
	if img, ok := get[boundImage](d.objects, image.Handle); ok {
		d.deviceDriver.DestroyImage(img.image, nil)
		d.deviceDriver.FreeMemory(img.memory, nil)
		d.objects.remove(image.Handle)
	}
}

// image resolves both driver-created and swapchain images.
func (d *Driver) image(h graphics.Handle) (core1_0.Image, error) {
	if img, ok := get[boundImage](d.objects, h); ok {
		return img.image, nil
	}
	return lookup[core1_0.Image](d.objects, h)
}

func (d *Driver) CreateImageView(info graphics.ImageViewInfo) (graphics.ImageView, error) {
	image, err := d.image(info.Image.Handle)
	if err != nil {
		return graphics.ImageView{}, err
	}

	imageView, _, err := d.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   info.Format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     info.Aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return graphics.ImageView{}, err
	}
	return graphics.ImageView{Handle: d.objects.put(imageView)}, nil
}

func (d *Driver) DestroyImageView(view graphics.ImageView) {
	if v, ok := get[core1_0.ImageView](d.objects, view.Handle); ok {
		d.deviceDriver.DestroyImageView(v, nil)
		d.objects.remove(view.Handle)
	}
}

func (d *Driver) CreateFramebuffer(info graphics.FramebufferInfo) (graphics.Framebuffer, error) {
	renderPass, err := lookup[core1_0.RenderPass](d.objects, info.RenderPass.Handle)
	if err != nil {
		return graphics.Framebuffer{}, err
	}

	attachments := make([]core1_0.ImageView, 0, len(info.Attachments))
	for _, h := range info.Attachments {
		v, err := lookup[core1_0.ImageView](d.objects, h.Handle)
		if err != nil {
			return graphics.Framebuffer{}, err
		}
		attachments = append(attachments, v)
	}

	framebuffer, _, err := d.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  renderPass,
		Layers:      uint32(info.Layers),
		Attachments: attachments,
		Width:       info.Width,
		Height:      info.Height,
	})
	if err != nil {
		return graphics.Framebuffer{}, err
	}
	return graphics.Framebuffer{Handle: d.objects.put(framebuffer)}, nil
}

func (d *Driver) DestroyFramebuffer(framebuffer graphics.Framebuffer) {
	if fb, ok := get[core1_0.Framebuffer](d.objects, framebuffer.Handle); ok {
		d.deviceDriver.DestroyFramebuffer(fb, nil)
		d.objects.remove(framebuffer.Handle)
	}
}

// CreateBuffer creates a buffer in host-visible, host-coherent memory so it
// can be written without staging.
func (d *Driver) CreateBuffer(size int, usage core1_0.BufferUsageFlags) (graphics.Buffer, error) {
	buffer, _, err := d.deviceDriver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return graphics.Buffer{}, err
	}

	memRequirements := d.deviceDriver.GetBufferMemoryRequirements(buffer)
	memoryTypeIndex, err := d.findMemoryType(memRequirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		d.deviceDriver.DestroyBuffer(buffer, nil)
		return graphics.Buffer{}, err
	}

	memory, _, err := d.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		d.deviceDriver.DestroyBuffer(buffer, nil)
		return graphics.Buffer{}, errors.Wrap(err, "allocate buffer memory")
	}

	_, err = d.deviceDriver.BindBufferMemory(buffer, memory, 0)
	if err != nil {
		d.deviceDriver.DestroyBuffer(buffer, nil)
		d.deviceDriver.FreeMemory(memory, nil)
		return graphics.Buffer{}, errors.Wrap(err, "bind buffer memory")
	}

	return graphics.Buffer{Handle: d.objects.put(boundBuffer{buffer: buffer, memory: memory, size: size})}, nil
}

func (d *Driver) WriteBuffer(buffer graphics.Buffer, offset int, data []byte) error {
	b, err := lookup[boundBuffer](d.objects, buffer.Handle)
	if err != nil {
		return err
	}
	if offset < 0 || offset+len(data) > b.size {
		return errors.Newf("write of %d bytes at %d overflows buffer of %d", len(data), offset, b.size)
	}

	memoryPtr, _, err := d.deviceDriver.MapMemory(b.memory, offset, len(data), 0)
	if err != nil {
		return errors.Wrap(err, "map buffer memory")
	}
	defer d.deviceDriver.UnmapMemory(b.memory)

	copy(unsafe.Slice((*byte)(memoryPtr), len(data)), data)
	return nil
}

func (d *Driver) DestroyBuffer(buffer graphics.Buffer) {
	if b, ok := get[boundBuffer](d.objects, buffer.Handle); ok {
		d.deviceDriver.DestroyBuffer(b.buffer, nil)
		d.deviceDriver.FreeMemory(b.memory, nil)
		d.objects.remove(buffer.Handle)
	}
}
