package graphics

import (
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
	CullBoth
)

func (m CullMode) flags() core1_0.CullModeFlags {
	switch m {
	case CullFront:
		return core1_0.CullModeFront
	case CullBack:
		return core1_0.CullModeBack
	case CullBoth:
		return core1_0.CullModeFront | core1_0.CullModeBack
	}
	return 0
}

// MaterialOptions is the flat description of a material's fixed-function
// state and the table entries it is composed from.
type MaterialOptions struct {
	ScissorOffset  core1_0.Offset2D
	ScissorExtent  core1_0.Extent2D
	ViewportExtent core1_0.Extent2D

	CullMode    CullMode
	PolygonMode core1_0.PolygonMode
	LineWidth   float32

	EnableDiscard         bool
	EnableDepthTest       bool
	EnableDepthWrite      bool
	DepthCompareOp        core1_0.CompareOp
	EnableDepthBoundsTest bool
	MinDepthBound         float32
	MaxDepthBound         float32
	EnableStencilTest     bool

	PushConstantsIndex  int
	DescriptorSetsIndex int
	// VertexInputIndex selects both the vertex binding and the vertex
	// attribute entry.
	VertexInputIndex int
	RenderPassIndex  int
}

// Material is a graphics pipeline together with its layout.
type Material struct {
	Pipeline Pipeline
	Layout   PipelineLayout
}

// Valid reports whether both handles are live.
func (m *Material) Valid() bool {
	return m != nil && m.Pipeline.Initialized() && m.Layout.Initialized()
}

func (s *State) pipelineInfo(shaders []Shader, opts MaterialOptions, layout PipelineLayout) GraphicsPipelineInfo {
	return GraphicsPipelineInfo{
		Stages: shaders,
		VertexInput: core1_0.PipelineVertexInputStateCreateInfo{
			VertexBindingDescriptions:   s.vertexBindings.Get(opts.VertexInputIndex),
			VertexAttributeDescriptions: s.vertexAttributes.Get(opts.VertexInputIndex),
		},
		InputAssembly: core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               core1_0.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: false,
		},
		Viewport: core1_0.PipelineViewportStateCreateInfo{
			Viewports: []core1_0.Viewport{
				{
					X:        0,
					Y:        0,
					Width:    float32(opts.ViewportExtent.Width),
					Height:   float32(opts.ViewportExtent.Height),
					MinDepth: 0,
					MaxDepth: 1,
				},
			},
			Scissors: []core1_0.Rect2D{
				{
					Offset: opts.ScissorOffset,
					Extent: opts.ScissorExtent,
				},
			},
		},
		Rasterization: core1_0.PipelineRasterizationStateCreateInfo{
			DepthClampEnable:        false,
			RasterizerDiscardEnable: opts.EnableDiscard,

			PolygonMode: opts.PolygonMode,
			CullMode:    opts.CullMode.flags(),
			FrontFace:   core1_0.FrontFaceClockwise,

			DepthBiasEnable: false,

			LineWidth: opts.LineWidth,
		},
		Multisample: core1_0.PipelineMultisampleStateCreateInfo{
			SampleShadingEnable:  false,
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		DepthStencil: core1_0.PipelineDepthStencilStateCreateInfo{
			DepthTestEnable:       opts.EnableDepthTest,
			DepthWriteEnable:      opts.EnableDepthWrite,
			DepthCompareOp:        opts.DepthCompareOp,
			DepthBoundsTestEnable: opts.EnableDepthBoundsTest,
			MinDepthBounds:        opts.MinDepthBound,
			MaxDepthBounds:        opts.MaxDepthBound,
			StencilTestEnable:     opts.EnableStencilTest,
		},
		ColorBlend: core1_0.PipelineColorBlendStateCreateInfo{
			LogicOpEnabled: false,
			LogicOp:        core1_0.LogicOpCopy,

			BlendConstants: [4]float32{0, 0, 0, 0},
			Attachments: []core1_0.PipelineColorBlendAttachmentState{
				{
					BlendEnabled:   false,
					ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
				},
			},
		},
		Layout:     layout,
		RenderPass: s.RenderPass(opts.RenderPassIndex),
		Subpass:    0,
	}
}

// NewMaterial builds a pipeline layout and a graphics pipeline from the
// registered tables. Creation failures are logged and yield a material with
// null handles. cache may be the null handle.
func (s *State) NewMaterial(shaders []Shader, opts MaterialOptions, cache PipelineCache) *Material {
	start := hrtime.Now()
	material := &Material{}

	layout, err := s.driver.CreatePipelineLayout(PipelineLayoutInfo{
		SetLayouts:         s.descriptorSetLayouts.Get(opts.DescriptorSetsIndex),
		PushConstantRanges: s.pushConstantRanges.Get(opts.PushConstantsIndex),
	})
	if err != nil {
		s.log.Error("Failed to create pipeline layout", "error", err)
		return material
	}

	pipeline, err := s.driver.CreateGraphicsPipeline(cache, s.pipelineInfo(shaders, opts, layout))
	if err != nil {
		s.log.Error("Failed to create graphics pipeline", "error", err)
		s.driver.DestroyPipelineLayout(layout)
		return material
	}

	material.Pipeline = pipeline
	material.Layout = layout
	s.log.Debug("Material created", "stages", len(shaders), "took", hrtime.Since(start))
	return material
}

// FreeMaterial destroys the pipeline and then the layout. A nil material or
// one with a null handle is reported and left alone.
func (s *State) FreeMaterial(m *Material) {
	if m == nil {
		s.log.Error("Tried to free nil material")
		return
	}
	if !m.Pipeline.Initialized() {
		s.log.Error("Tried to destroy null pipeline object")
		return
	}
	if !m.Layout.Initialized() {
		s.log.Error("Tried to destroy null pipeline layout object")
		return
	}

	s.driver.DestroyPipeline(m.Pipeline)
	s.driver.DestroyPipelineLayout(m.Layout)
	m.Pipeline = Pipeline{}
	m.Layout = PipelineLayout{}
}
