// Package basic registers the resources of a simple lit, textured forward
// renderer: one render pass with a color and a depth attachment, a uniform
// buffer and a sampler set layout, two push constant ranges and a
// position/normal/texcoord vertex layout.
package basic

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/dcore-engine/dcore/graphics"
)

// DepthFormat is the format of the depth attachment.
// TODO: pick the first depth format the device supports as an optimal
// tiling attachment instead of assuming D32.
const DepthFormat = core1_0.FormatD32SignedFloat

type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
}

// Vertex attribute locations.
const (
	AttributePosition = iota
	AttributeNormal
	AttributeTexCoords
)

// UniformBuffer is the data shared by every stage but the vertex stage.
type UniformBuffer struct {
	SunDirectionAndIntensity mgl32.Vec4
}

// TransformPushConstant is pushed to the vertex stage once per draw.
type TransformPushConstant struct {
	Transform mgl32.Mat4
}

// Push constant ranges within the registered entry.
const (
	PushConstantRangeBase = iota
	PushConstantRangeTransform
)

// Indices are the table entries Register created.
type Indices struct {
	RenderPass     int
	DescriptorSets int
	PushConstants  int
	VertexInput    int
}

// Register creates the renderer's GPU objects and registers every
// description into the state's tables.
func Register(s *graphics.State) (Indices, error) {
	var idx Indices
	var err error

	idx.RenderPass, err = s.AddRenderPasses(RenderPassInfo(s.SurfaceFormat().Format))
	if err != nil {
		return idx, errors.Wrap(err, "basic renderer")
	}

	idx.DescriptorSets, err = s.AddDescriptorSetLayouts(DescriptorSetLayoutInfos()...)
	if err != nil {
		return idx, errors.Wrap(err, "basic renderer")
	}

	idx.PushConstants = s.AddPushConstantRanges(PushConstantRanges()...)
	idx.VertexInput = s.AddVertexAttributes(VertexAttributes()...)
	if bindings := s.AddVertexBindings(VertexBinding()); bindings != idx.VertexInput {
		return idx, errors.Newf("vertex bindings registered at %d but attributes at %d", bindings, idx.VertexInput)
	}

	s.Log().Debug("Basic renderer registered", "indices", idx)
	return idx, nil
}

// RenderPassInfo describes a single subpass writing colorFormat for
// presentation with a depth attachment.
func RenderPassInfo(colorFormat core1_0.Format) core1_0.RenderPassCreateInfo {
	return core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         colorFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
			{
				Format:         DepthFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpDontCare,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    core1_0.ImageLayoutDepthStencilAttachmentOptimal,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
				DepthStencilAttachment: &core1_0.AttachmentReference{
					Attachment: 1,
					Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	}
}

// DescriptorSetLayoutInfos returns set 0, a uniform buffer, and set 1, a
// combined image sampler. Both are visible to every stage.
func DescriptorSetLayoutInfos() []core1_0.DescriptorSetLayoutCreateInfo {
	binding := func(t core1_0.DescriptorType) core1_0.DescriptorSetLayoutCreateInfo {
		return core1_0.DescriptorSetLayoutCreateInfo{
			Bindings: []core1_0.DescriptorSetLayoutBinding{
				{
					Binding:         0,
					DescriptorType:  t,
					DescriptorCount: 1,

					StageFlags: core1_0.StageAll,
				},
			},
		}
	}
	return []core1_0.DescriptorSetLayoutCreateInfo{
		binding(core1_0.DescriptorTypeUniformBuffer),
		binding(core1_0.DescriptorTypeCombinedImageSampler),
	}
}

func PushConstantRanges() []core1_0.PushConstantRange {
	ranges := make([]core1_0.PushConstantRange, 2)
	ranges[PushConstantRangeBase] = core1_0.PushConstantRange{
		StageFlags: core1_0.StageAll &^ core1_0.StageVertex,
		Offset:     0,
		Size:       int(unsafe.Sizeof(UniformBuffer{})),
	}
	ranges[PushConstantRangeTransform] = core1_0.PushConstantRange{
		StageFlags: core1_0.StageVertex,
		Offset:     0,
		Size:       int(unsafe.Sizeof(TransformPushConstant{})),
	}
	return ranges
}

func VertexBinding() core1_0.VertexInputBindingDescription {
	return core1_0.VertexInputBindingDescription{
		Binding:   0,
		Stride:    int(unsafe.Sizeof(Vertex{})),
		InputRate: core1_0.VertexInputRateVertex,
	}
}

func VertexAttributes() []core1_0.VertexInputAttributeDescription {
	v := Vertex{}
	attributes := make([]core1_0.VertexInputAttributeDescription, 3)
	attributes[AttributePosition] = core1_0.VertexInputAttributeDescription{
		Binding:  0,
		Location: AttributePosition,
		Format:   core1_0.FormatR32G32B32SignedFloat,
		Offset:   int(unsafe.Offsetof(v.Position)),
	}
	attributes[AttributeNormal] = core1_0.VertexInputAttributeDescription{
		Binding:  0,
		Location: AttributeNormal,
		Format:   core1_0.FormatR32G32B32SignedFloat,
		Offset:   int(unsafe.Offsetof(v.Normal)),
	}
	attributes[AttributeTexCoords] = core1_0.VertexInputAttributeDescription{
		Binding:  0,
		Location: AttributeTexCoords,
		Format:   core1_0.FormatR32G32SignedFloat,
		Offset:   int(unsafe.Offsetof(v.TexCoords)),
	}
	return attributes
}

// MaterialOptions returns options for an opaque, depth tested material built
// from the entries in idx that covers extent.
func MaterialOptions(idx Indices, extent core1_0.Extent2D) graphics.MaterialOptions {
	return graphics.MaterialOptions{
		ScissorExtent:  extent,
		ViewportExtent: extent,

		CullMode:    graphics.CullBack,
		PolygonMode: core1_0.PolygonModeFill,
		LineWidth:   1,

		EnableDepthTest:  true,
		EnableDepthWrite: true,
		DepthCompareOp:   core1_0.CompareOpLess,
		MinDepthBound:    0,
		MaxDepthBound:    1,

		PushConstantsIndex:  idx.PushConstants,
		DescriptorSetsIndex: idx.DescriptorSets,
		VertexInputIndex:    idx.VertexInput,
		RenderPassIndex:     idx.RenderPass,
	}
}
