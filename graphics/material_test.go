package graphics_test

import (
	"testing"

	"github.com/dcore-engine/dcore/graphics"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// registerEntries fills every table with one entry and returns a material
// description pointing at them.
func registerEntries(t *testing.T, f *fixture) graphics.MaterialOptions {
	t.Helper()
	if _, err := f.state.AddRenderPasses(core1_0.RenderPassCreateInfo{}); err != nil {
		t.Fatal(err)
	}
	second, err := f.state.AddRenderPasses(core1_0.RenderPassCreateInfo{}, core1_0.RenderPassCreateInfo{})
	if err != nil {
		t.Fatal(err)
	}
	sets, err := f.state.AddDescriptorSetLayouts(core1_0.DescriptorSetLayoutCreateInfo{}, core1_0.DescriptorSetLayoutCreateInfo{})
	if err != nil {
		t.Fatal(err)
	}
	bindings := f.state.AddVertexBindings(core1_0.VertexInputBindingDescription{Binding: 0, Stride: 32, InputRate: core1_0.VertexInputRateVertex})
	attributes := f.state.AddVertexAttributes(
		core1_0.VertexInputAttributeDescription{Location: 0, Format: core1_0.FormatR32G32B32SignedFloat, Offset: 0},
		core1_0.VertexInputAttributeDescription{Location: 1, Format: core1_0.FormatR32G32SignedFloat, Offset: 12},
	)
	if bindings != attributes {
		t.Fatalf("vertex input indices differ: %d/%d", bindings, attributes)
	}
	push := f.state.AddPushConstantRanges(core1_0.PushConstantRange{StageFlags: core1_0.StageVertex, Offset: 0, Size: 64})

	return graphics.MaterialOptions{
		ViewportExtent:      core1_0.Extent2D{Width: 640, Height: 480},
		ScissorExtent:       core1_0.Extent2D{Width: 640, Height: 480},
		CullMode:            graphics.CullBack,
		PolygonMode:         core1_0.PolygonModeFill,
		LineWidth:           1,
		EnableDepthTest:     true,
		DepthCompareOp:      core1_0.CompareOpLess,
		MaxDepthBound:       1,
		PushConstantsIndex:  push,
		DescriptorSetsIndex: sets,
		VertexInputIndex:    bindings,
		RenderPassIndex:     second,
	}
}

func TestNewMaterial(t *testing.T) {
	f := initFixture(t)
	opts := registerEntries(t, f)
	shaders := []graphics.Shader{
		{Stage: core1_0.StageVertex, Module: graphics.ShaderModule{Handle: 100}, Entry: "main"},
		{Stage: core1_0.StageFragment, Module: graphics.ShaderModule{Handle: 101}, Entry: "main"},
	}

	m := f.state.NewMaterial(shaders, opts, graphics.PipelineCache{})
	if !m.Valid() {
		t.Fatal("expected a valid material")
	}

	layout := f.driver.Layouts[0]
	if len(layout.SetLayouts) != 2 || len(layout.PushConstantRanges) != 1 || layout.PushConstantRanges[0].Size != 64 {
		t.Fatalf("layout info = %+v", layout)
	}

	info := f.driver.Pipelines[0]
	if len(info.Stages) != 2 || info.Stages[1].Stage != core1_0.StageFragment {
		t.Fatalf("stages = %+v", info.Stages)
	}
	if len(info.VertexInput.VertexBindingDescriptions) != 1 || len(info.VertexInput.VertexAttributeDescriptions) != 2 {
		t.Fatalf("vertex input = %+v", info.VertexInput)
	}
	if info.InputAssembly.Topology != core1_0.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v", info.InputAssembly.Topology)
	}
	vp := info.Viewport.Viewports[0]
	if vp.Width != 640 || vp.Height != 480 || vp.MinDepth != 0 || vp.MaxDepth != 1 {
		t.Errorf("viewport = %+v", vp)
	}
	if info.Rasterization.CullMode != core1_0.CullModeBack || info.Rasterization.FrontFace != core1_0.FrontFaceClockwise {
		t.Errorf("rasterization = %+v", info.Rasterization)
	}
	if !info.DepthStencil.DepthTestEnable || info.DepthStencil.DepthCompareOp != core1_0.CompareOpLess {
		t.Errorf("depth = %+v", info.DepthStencil)
	}
	if info.Multisample.RasterizationSamples != core1_0.Samples1 {
		t.Errorf("samples = %v", info.Multisample.RasterizationSamples)
	}
	if info.Layout != m.Layout {
		t.Errorf("pipeline layout = %v, want %v", info.Layout, m.Layout)
	}
	if want := f.state.RenderPasses().Get(opts.RenderPassIndex)[0]; info.RenderPass != want || info.Subpass != 0 {
		t.Errorf("render pass = %v/%d, want %v/0", info.RenderPass, info.Subpass, want)
	}
}

func TestNewMaterialRasterization(t *testing.T) {
	tests := []struct {
		name        string
		cull        graphics.CullMode
		polygon     core1_0.PolygonMode
		wantCull    core1_0.CullModeFlags
		wantPolygon core1_0.PolygonMode
	}{
		{"none fill", graphics.CullNone, core1_0.PolygonModeFill, 0, core1_0.PolygonModeFill},
		{"front line", graphics.CullFront, core1_0.PolygonModeLine, core1_0.CullModeFront, core1_0.PolygonModeLine},
		{"back point", graphics.CullBack, core1_0.PolygonModePoint, core1_0.CullModeBack, core1_0.PolygonModePoint},
		{"both fill", graphics.CullBoth, core1_0.PolygonModeFill, core1_0.CullModeFront | core1_0.CullModeBack, core1_0.PolygonModeFill},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := initFixture(t)
			opts := registerEntries(t, f)
			opts.CullMode = tt.cull
			opts.PolygonMode = tt.polygon

			if m := f.state.NewMaterial(nil, opts, graphics.PipelineCache{}); !m.Valid() {
				t.Fatal("expected a valid material")
			}
			r := f.driver.Pipelines[0].Rasterization
			if r.CullMode != tt.wantCull {
				t.Errorf("cull mode = %v, want %v", r.CullMode, tt.wantCull)
			}
			if r.PolygonMode != tt.wantPolygon {
				t.Errorf("polygon mode = %v, want %v", r.PolygonMode, tt.wantPolygon)
			}
		})
	}
}

func TestNewMaterialLayoutFailure(t *testing.T) {
	f := initFixture(t)
	opts := registerEntries(t, f)
	f.driver.Fail = map[string]int{"CreatePipelineLayout": 0}

	m := f.state.NewMaterial(nil, opts, graphics.PipelineCache{})
	if m == nil || m.Valid() || m.Pipeline.Initialized() || m.Layout.Initialized() {
		t.Fatalf("expected a null material, got %+v", m)
	}
	if f.driver.Count("CreateGraphicsPipeline") != 0 {
		t.Fatal("pipeline should not be attempted")
	}
	if f.log.Stats().Error == 0 {
		t.Fatal("failure should be logged")
	}
}

func TestNewMaterialPipelineFailure(t *testing.T) {
	f := initFixture(t)
	opts := registerEntries(t, f)
	f.driver.Fail = map[string]int{"CreateGraphicsPipeline": 0}

	m := f.state.NewMaterial(nil, opts, graphics.PipelineCache{})
	if m.Valid() {
		t.Fatal("expected a null material")
	}
	if f.driver.LiveOf("pipeline layout") != 0 {
		t.Fatal("layout leaked")
	}
}

func TestNewMaterialBadIndex(t *testing.T) {
	f := initFixture(t)
	opts := registerEntries(t, f)
	opts.PushConstantsIndex = 5
	expectAssertion(t, func() { f.state.NewMaterial(nil, opts, graphics.PipelineCache{}) })
}

func TestFreeMaterial(t *testing.T) {
	f := initFixture(t)
	opts := registerEntries(t, f)
	m := f.state.NewMaterial(nil, opts, graphics.PipelineCache{})

	f.state.FreeMaterial(m)
	pipeline := indexOf(f.driver.Calls, "DestroyPipeline")
	layout := indexOf(f.driver.Calls, "DestroyPipelineLayout")
	if pipeline < 0 || layout < pipeline {
		t.Fatalf("expected pipeline then layout destruction, calls %v", f.driver.Calls)
	}
	if m.Pipeline.Initialized() || m.Layout.Initialized() {
		t.Fatal("handles should be nulled")
	}
}

func TestFreeNullMaterial(t *testing.T) {
	tests := []struct {
		name string
		m    *graphics.Material
	}{
		{"nil", nil},
		{"null pipeline", &graphics.Material{Layout: graphics.PipelineLayout{Handle: 5}}},
		{"null layout", &graphics.Material{Pipeline: graphics.Pipeline{Handle: 5}}},
		{"both null", &graphics.Material{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := initFixture(t)
			f.state.FreeMaterial(tt.m)
			if f.driver.Count("DestroyPipeline") != 0 || f.driver.Count("DestroyPipelineLayout") != 0 {
				t.Fatal("no destroy call expected")
			}
			if f.log.Stats().Error != 1 {
				t.Fatalf("expected one error, got %+v", f.log.Stats())
			}
		})
	}
}

func TestFreeMaterialTwice(t *testing.T) {
	f := initFixture(t)
	m := f.state.NewMaterial(nil, registerEntries(t, f), graphics.PipelineCache{})
	f.state.FreeMaterial(m)
	f.state.FreeMaterial(m)
	if f.driver.Count("DestroyPipeline") != 1 {
		t.Fatal("pipeline destroyed twice")
	}
}
