package graphics

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// AddRenderPasses creates one render pass per description and registers
// them as a single table entry. If any creation fails, the passes created so
// far are destroyed and nothing is registered.
func (s *State) AddRenderPasses(infos ...core1_0.RenderPassCreateInfo) (int, error) {
	passes := make([]RenderPass, 0, len(infos))
	for i, info := range infos {
		rp, err := s.driver.CreateRenderPass(info)
		if err != nil {
			for _, created := range passes {
				s.driver.DestroyRenderPass(created)
			}
			s.log.Fatal("Failed to create render pass", "index", i, "error", err)
			return -1, errors.Wrapf(err, "create render pass #%d", i)
		}
		passes = append(passes, rp)
	}

	index := s.renderPasses.AddValues(passes...)
	s.log.Debug("Registered render passes", "index", index, "count", len(passes))
	return index, nil
}

// AddDescriptorSetLayouts creates one descriptor set layout per description
// and registers them as a single table entry.
func (s *State) AddDescriptorSetLayouts(infos ...core1_0.DescriptorSetLayoutCreateInfo) (int, error) {
	layouts := make([]DescriptorSetLayout, 0, len(infos))
	for i, info := range infos {
		layout, err := s.driver.CreateDescriptorSetLayout(info)
		if err != nil {
			for _, created := range layouts {
				s.driver.DestroyDescriptorSetLayout(created)
			}
			s.log.Fatal("Failed to create descriptor set layout", "index", i, "error", err)
			return -1, errors.Wrapf(err, "create descriptor set layout #%d", i)
		}
		layouts = append(layouts, layout)
	}

	index := s.descriptorSetLayouts.AddValues(layouts...)
	s.log.Debug("Registered descriptor set layouts", "index", index, "count", len(layouts))
	return index, nil
}

// AddVertexBindings registers a vertex binding entry. Bindings and
// attributes describing the same vertex input must be registered at the
// same index.
func (s *State) AddVertexBindings(bindings ...core1_0.VertexInputBindingDescription) int {
	return s.vertexBindings.AddValues(bindings...)
}

func (s *State) AddVertexAttributes(attributes ...core1_0.VertexInputAttributeDescription) int {
	return s.vertexAttributes.AddValues(attributes...)
}

func (s *State) AddPushConstantRanges(ranges ...core1_0.PushConstantRange) int {
	return s.pushConstantRanges.AddValues(ranges...)
}

func (s *State) RenderPasses() *Table[RenderPass]                  { return s.renderPasses }
func (s *State) DescriptorSetLayouts() *Table[DescriptorSetLayout] { return s.descriptorSetLayouts }
func (s *State) VertexBindings() *Table[core1_0.VertexInputBindingDescription] {
	return s.vertexBindings
}
func (s *State) VertexAttributes() *Table[core1_0.VertexInputAttributeDescription] {
	return s.vertexAttributes
}
func (s *State) PushConstantRanges() *Table[core1_0.PushConstantRange] {
	return s.pushConstantRanges
}

// RenderPass returns the first render pass of table entry index.
func (s *State) RenderPass(index int) RenderPass {
	entry := s.renderPasses.Get(index)
	s.log.Assert(len(entry) > 0, "len(entry) > 0", "Render pass entry is empty")
	return entry[0]
}
