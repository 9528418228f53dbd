package graphics_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/debug"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/dcore-engine/dcore/graphics/graphicstest"
	"github.com/vkngwrapper/core/v3/core1_0"
)

var swapchainOnly = []string{"VK_KHR_swapchain"}

func device(name string, t core1_0.PhysicalDeviceType, families ...graphics.QueueFamily) graphics.PhysicalDeviceInfo {
	return graphics.PhysicalDeviceInfo{
		Name:          name,
		Type:          t,
		QueueFamilies: families,
		Extensions:    swapchainOnly,
	}
}

func TestBaseScore(t *testing.T) {
	dev := graphics.PhysicalDeviceInfo{
		Type: core1_0.PhysicalDeviceTypeIntegratedGPU,
		Limits: graphics.Limits{
			MaxDescriptorSetSamplers:       1,
			MaxBoundDescriptorSets:         2,
			MaxDescriptorSetUniformBuffers: 3,
			MaxUniformBufferRange:          7,
			MaxFramebufferWidth:            1000,
			MaxFramebufferHeight:           250,
		},
	}
	want := uint64(5000 + 100 + 200 + 300 + 7 + 10*2)
	if got := graphics.BaseScore(dev); got != want {
		t.Fatalf("score = %d, want %d", got, want)
	}
}

func TestDeviceTypeWeights(t *testing.T) {
	order := []core1_0.PhysicalDeviceType{
		core1_0.PhysicalDeviceTypeOther,
		core1_0.PhysicalDeviceTypeCPU,
		core1_0.PhysicalDeviceTypeIntegratedGPU,
		core1_0.PhysicalDeviceTypeVirtualGPU,
		core1_0.PhysicalDeviceTypeDiscreteGPU,
	}
	var prev uint64
	for i, typ := range order {
		score := graphics.BaseScore(graphics.PhysicalDeviceInfo{Type: typ})
		if i > 0 && score <= prev {
			t.Errorf("type %v scored %d, not above %d", typ, score, prev)
		}
		prev = score
	}
}

func TestScoreIsMonotonicInLimits(t *testing.T) {
	dev := graphicstest.Discrete()
	base, _ := graphics.ScoreDevice(debug.Discard(), dev, swapchainOnly)
	dev.Limits.MaxBoundDescriptorSets++
	more, _ := graphics.ScoreDevice(debug.Discard(), dev, swapchainOnly)
	if more <= base {
		t.Fatalf("score did not grow with limits: %d then %d", base, more)
	}
}

func TestScoreDisqualification(t *testing.T) {
	graphicsOnly := graphics.QueueFamily{Flags: core1_0.QueueGraphics}
	presentOnly := graphics.QueueFamily{PresentSupport: true}

	tests := []struct {
		name string
		dev  graphics.PhysicalDeviceInfo
	}{
		{"no graphics family", device("a", core1_0.PhysicalDeviceTypeDiscreteGPU, presentOnly)},
		{"no present family", device("b", core1_0.PhysicalDeviceTypeDiscreteGPU, graphicsOnly)},
		{"no families", device("c", core1_0.PhysicalDeviceTypeDiscreteGPU)},
		{"missing extension", func() graphics.PhysicalDeviceInfo {
			d := graphicstest.Discrete()
			d.Extensions = []string{"VK_KHR_maintenance1"}
			return d
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := debug.Discard()
			score, _ := graphics.ScoreDevice(log, tt.dev, swapchainOnly)
			if score != 0 {
				t.Fatalf("score = %d, want 0", score)
			}
			if log.Stats().Warn == 0 {
				t.Fatalf("expected a warning for the disqualification")
			}
		})
	}
}

func TestSharedGraphicsPresentBonus(t *testing.T) {
	dev := device("shared", core1_0.PhysicalDeviceTypeDiscreteGPU,
		graphics.QueueFamily{Flags: core1_0.QueueGraphics, PresentSupport: true})
	dev.Limits.MaxUniformBufferRange = 1234

	raw := graphics.BaseScore(dev)
	score, families := graphics.ScoreDevice(debug.Discard(), dev, swapchainOnly)
	if want := raw + raw/10; score != want {
		t.Fatalf("score = %d, want %d", score, want)
	}
	if *families.Graphics != 0 || *families.Present != 0 {
		t.Fatalf("unexpected families %d/%d", *families.Graphics, *families.Present)
	}

	split := device("split", core1_0.PhysicalDeviceTypeDiscreteGPU,
		graphics.QueueFamily{Flags: core1_0.QueueGraphics},
		graphics.QueueFamily{PresentSupport: true})
	split.Limits = dev.Limits
	if score, _ := graphics.ScoreDevice(debug.Discard(), split, swapchainOnly); score != raw {
		t.Fatalf("split score = %d, want %d", score, raw)
	}
}

func TestFindQueueFamiliesLastMatchWins(t *testing.T) {
	families := graphics.FindQueueFamilies([]graphics.QueueFamily{
		{Flags: core1_0.QueueGraphics | core1_0.QueueCompute, PresentSupport: true},
		{Flags: core1_0.QueueTransfer},
		{Flags: core1_0.QueueGraphics, PresentSupport: true},
		{Flags: core1_0.QueueCompute},
	})
	if *families.Graphics != 2 || *families.Present != 2 || *families.Compute != 3 {
		t.Fatalf("families = %d/%d/%d, want 2/3/2", *families.Graphics, *families.Compute, *families.Present)
	}
	if !families.Complete() {
		t.Fatal("expected complete families")
	}
}

func TestSelectPhysicalDevice(t *testing.T) {
	integrated := device("integrated", core1_0.PhysicalDeviceTypeIntegratedGPU,
		graphics.QueueFamily{Flags: core1_0.QueueGraphics, PresentSupport: true})
	discrete := device("discrete", core1_0.PhysicalDeviceTypeDiscreteGPU,
		graphics.QueueFamily{Flags: core1_0.QueueGraphics | core1_0.QueueCompute},
		graphics.QueueFamily{Flags: core1_0.QueueCompute, PresentSupport: true})

	for _, order := range [][]graphics.PhysicalDeviceInfo{
		{integrated, discrete},
		{discrete, integrated},
	} {
		sel, err := graphics.SelectPhysicalDevice(debug.Discard(), order, swapchainOnly)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if sel.Device.Name != "discrete" {
			t.Fatalf("selected %s, want discrete", sel.Device.Name)
		}
		if *sel.Families.Graphics != 0 || *sel.Families.Present != 1 {
			t.Fatalf("families = %d/%d, want 0/1", *sel.Families.Graphics, *sel.Families.Present)
		}
		if sel.Families.Compute == nil || *sel.Families.Compute != 1 {
			t.Fatalf("compute family = %v, want 1", sel.Families.Compute)
		}
	}

	sel, err := graphics.SelectPhysicalDevice(debug.Discard(), []graphics.PhysicalDeviceInfo{integrated}, swapchainOnly)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Families.Compute != nil {
		t.Fatalf("integrated device reports no compute family, got %d", *sel.Families.Compute)
	}
}

func TestSelectPhysicalDeviceTieLastWins(t *testing.T) {
	first := graphicstest.Discrete()
	first.Name = "first"
	second := graphicstest.Discrete()
	second.Name = "second"

	sel, err := graphics.SelectPhysicalDevice(debug.Discard(), []graphics.PhysicalDeviceInfo{first, second}, swapchainOnly)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Device.Name != "second" {
		t.Fatalf("selected %s, want second", sel.Device.Name)
	}
}

func TestSelectPhysicalDeviceNoneSuitable(t *testing.T) {
	noPresent := device("headless", core1_0.PhysicalDeviceTypeDiscreteGPU,
		graphics.QueueFamily{Flags: core1_0.QueueGraphics})

	for name, candidates := range map[string][]graphics.PhysicalDeviceInfo{
		"no candidates":     nil,
		"all disqualified":  {noPresent},
		"missing extension": {graphicstest.Discrete()},
	} {
		t.Run(name, func(t *testing.T) {
			required := swapchainOnly
			if name == "missing extension" {
				required = []string{"VK_KHR_ray_tracing_pipeline"}
			}
			log := debug.Discard()
			_, err := graphics.SelectPhysicalDevice(log, candidates, required)
			if !errors.Is(err, graphics.ErrNoSuitableDevice) {
				t.Fatalf("err = %v, want ErrNoSuitableDevice", err)
			}
			if log.Stats().Fatal == 0 {
				t.Fatal("expected a fatal message")
			}
		})
	}
}
