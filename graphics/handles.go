package graphics

// Handle identifies an object owned by a Driver. The zero Handle is the
// null handle.
type Handle uint64

// Initialized reports whether the handle refers to a live object.
func (h Handle) Initialized() bool { return h != 0 }

// Each GPU object kind gets its own handle type so that a pipeline can never
// be passed where a pipeline layout is expected.
type (
	PhysicalDevice      struct{ Handle }
	Queue               struct{ Handle }
	Swapchain           struct{ Handle }
	RenderPass          struct{ Handle }
	DescriptorSetLayout struct{ Handle }
	PipelineLayout      struct{ Handle }
	Pipeline            struct{ Handle }
	PipelineCache       struct{ Handle }
	ShaderModule        struct{ Handle }
	Image               struct{ Handle }
	ImageView           struct{ Handle }
	Framebuffer         struct{ Handle }
	Buffer              struct{ Handle }
	CmdPool             struct{ Handle }
	CmdBuffer           struct{ Handle }
	Fence               struct{ Handle }
)
