package graphics

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// BytesToBytecode reinterprets SPIR-V bytes as little endian words.
func BytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return byteCode
}

// NewShaderModule compiles SPIR-V code into a shader bound to stage. An
// empty entry means "main".
func (s *State) NewShaderModule(stage core1_0.ShaderStageFlags, code []byte, entry string) (Shader, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return Shader{}, errors.Newf("shader code size %d is not a multiple of 4", len(code))
	}
	if entry == "" {
		entry = "main"
	}

	module, err := s.driver.CreateShaderModule(BytesToBytecode(code))
	if err != nil {
		return Shader{}, errors.Wrap(err, "create shader module")
	}
	s.log.Debug("Shader module created", "stage", stage, "codeSize", len(code))
	return Shader{Stage: stage, Module: module, Entry: entry}, nil
}

func (s *State) FreeShaderModule(shader *Shader) {
	if shader == nil || !shader.Module.Initialized() {
		s.log.Error("Tried to free null shader module")
		return
	}
	s.driver.DestroyShaderModule(shader.Module)
	shader.Module = ShaderModule{}
}

// NewImage creates a device-local image, typically a depth attachment.
func (s *State) NewImage(info ImageInfo) (Image, error) {
	image, err := s.driver.CreateImage(info)
	if err != nil {
		return Image{}, errors.Wrap(err, "create image")
	}
	return image, nil
}

func (s *State) FreeImage(image Image) {
	if !image.Initialized() {
		s.log.Error("Tried to free null image")
		return
	}
	s.driver.DestroyImage(image)
}

func (s *State) NewImageView(info ImageViewInfo) (ImageView, error) {
	view, err := s.driver.CreateImageView(info)
	if err != nil {
		return ImageView{}, errors.Wrap(err, "create image view")
	}
	return view, nil
}

// NewImageViewFromSwapchain creates a color view of swapchain image index.
func (s *State) NewImageViewFromSwapchain(index int) (ImageView, error) {
	s.log.Assert(index >= 0 && index < len(s.images), "index < imageCount",
		fmt.Sprintf("Swapchain image %d out of range", index))

	return s.NewImageView(ImageViewInfo{
		Image:  s.images[index],
		Format: s.surfaceFormat.Format,
		Aspect: core1_0.ImageAspectColor,
	})
}

func (s *State) FreeImageView(view ImageView) {
	if !view.Initialized() {
		s.log.Error("Tried to free null image view")
		return
	}
	s.driver.DestroyImageView(view)
}

type NewFramebufferInfo struct {
	Attachments     []ImageView
	RenderPassIndex int
	Width, Height   int
	Layers          int
}

// NewFramebuffer creates a framebuffer compatible with the first render
// pass of the given table entry. Zero layers means one.
func (s *State) NewFramebuffer(info NewFramebufferInfo) (Framebuffer, error) {
	layers := info.Layers
	if layers == 0 {
		layers = 1
	}
	fb, err := s.driver.CreateFramebuffer(FramebufferInfo{
		RenderPass:  s.RenderPass(info.RenderPassIndex),
		Attachments: info.Attachments,
		Width:       info.Width,
		Height:      info.Height,
		Layers:      layers,
	})
	if err != nil {
		return Framebuffer{}, errors.Wrap(err, "create framebuffer")
	}
	return fb, nil
}

func (s *State) FreeFramebuffer(fb Framebuffer) {
	if !fb.Initialized() {
		s.log.Error("Tried to free null framebuffer")
		return
	}
	s.driver.DestroyFramebuffer(fb)
}

// NewVertexBuffer uploads data, any fixed-size value or slice of them, into
// a host-visible vertex buffer.
func (s *State) NewVertexBuffer(data any) (Buffer, error) {
	return s.newBuffer(data, core1_0.BufferUsageVertexBuffer)
}

// NewIndexBuffer uploads data into a host-visible index buffer.
func (s *State) NewIndexBuffer(data any) (Buffer, error) {
	return s.newBuffer(data, core1_0.BufferUsageIndexBuffer)
}

func (s *State) newBuffer(data any, usage core1_0.BufferUsageFlags) (Buffer, error) {
	var b bytes.Buffer
	if err := binary.Write(&b, common.ByteOrder, data); err != nil {
		return Buffer{}, errors.Wrap(err, "encode buffer data")
	}
	if b.Len() == 0 {
		return Buffer{}, errors.New("empty buffer data")
	}

	buffer, err := s.driver.CreateBuffer(b.Len(), usage)
	if err != nil {
		return Buffer{}, errors.Wrap(err, "create buffer")
	}
	if err := s.driver.WriteBuffer(buffer, 0, b.Bytes()); err != nil {
		s.driver.DestroyBuffer(buffer)
		return Buffer{}, errors.Wrap(err, "write buffer")
	}
	return buffer, nil
}

func (s *State) FreeBuffer(buffer Buffer) {
	if !buffer.Initialized() {
		s.log.Error("Tried to free null buffer")
		return
	}
	s.driver.DestroyBuffer(buffer)
}
