package graphics

import (
	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/debug"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// ErrNoSuitableDevice is returned when every candidate was disqualified.
var ErrNoSuitableDevice = errors.New("no suitable physical device")

var deviceTypeWeights = map[core1_0.PhysicalDeviceType]uint64{
	core1_0.PhysicalDeviceTypeOther:         0,
	core1_0.PhysicalDeviceTypeIntegratedGPU: 5000,
	core1_0.PhysicalDeviceTypeDiscreteGPU:   10000,
	core1_0.PhysicalDeviceTypeVirtualGPU:    7500,
	core1_0.PhysicalDeviceTypeCPU:           2500,
}

// QueueFamilies records the queue family chosen for each role. Compute is
// optional.
type QueueFamilies struct {
	Graphics *int
	Compute  *int
	Present  *int
}

// Complete reports whether the graphics and present roles are filled.
func (f QueueFamilies) Complete() bool {
	return f.Graphics != nil && f.Present != nil
}

// Selection is the outcome of SelectPhysicalDevice.
type Selection struct {
	Device   PhysicalDeviceInfo
	Families QueueFamilies
	Score    uint64
}

// FindQueueFamilies scans the whole family list. When several families
// qualify for a role the one with the highest index wins.
func FindQueueFamilies(families []QueueFamily) QueueFamilies {
	var found QueueFamilies
	for i, family := range families {
		idx := i
		if family.Flags&core1_0.QueueGraphics != 0 {
			found.Graphics = &idx
		}
		if family.Flags&core1_0.QueueCompute != 0 {
			found.Compute = &idx
		}
		if family.PresentSupport {
			found.Present = &idx
		}
	}
	return found
}

// BaseScore is the device type weight plus the weighted limits.
func BaseScore(dev PhysicalDeviceInfo) uint64 {
	l := dev.Limits
	return deviceTypeWeights[dev.Type] +
		l.MaxDescriptorSetSamplers*100 +
		l.MaxBoundDescriptorSets*100 +
		l.MaxDescriptorSetUniformBuffers*100 +
		l.MaxUniformBufferRange +
		(l.MaxFramebufferWidth/100)*(l.MaxFramebufferHeight/100)
}

// ScoreDevice rates a candidate. A score of zero disqualifies it: a graphics
// or present family is missing, or one of the required device extensions is
// not supported. A device whose graphics and present family are the same
// gets a tenth on top.
func ScoreDevice(log *debug.Log, dev PhysicalDeviceInfo, required []string) (uint64, QueueFamilies) {
	score := BaseScore(dev)
	families := FindQueueFamilies(dev.QueueFamilies)

	if families.Graphics == nil {
		log.Warn("No graphics queue family", "device", dev.Name)
		score = 0
	}
	if families.Present == nil {
		log.Warn("No present queue family", "device", dev.Name)
		score = 0
	}
	if families.Complete() && *families.Graphics == *families.Present {
		score += score / 10
	}

	for _, ext := range required {
		if !contains(dev.Extensions, ext) {
			log.Warn("Required extension not supported", "device", dev.Name, "extension", ext)
			score = 0
		}
	}

	return score, families
}

// SelectPhysicalDevice scores every candidate and keeps the best one. A
// candidate scoring at least as high as the current best replaces it, so
// among equal scores the last one enumerated wins.
func SelectPhysicalDevice(log *debug.Log, candidates []PhysicalDeviceInfo, required []string) (Selection, error) {
	log.Push("device selection")
	defer log.Pop()

	var best Selection
	var maxScore uint64
	for _, dev := range candidates {
		log.Info("Device", "name", dev.Name, "type", dev.Type)

		score, families := ScoreDevice(log, dev, required)
		log.Info("Score", "score", score)

		if score >= maxScore {
			maxScore = score
			best = Selection{Device: dev, Families: families, Score: score}
		}
	}

	if best.Score == 0 || !best.Families.Complete() {
		log.Fatal("Could not find a device with graphics and present queue families", "candidates", len(candidates))
		return Selection{}, ErrNoSuitableDevice
	}

	log.Success("Selected device", "name", best.Device.Name, "score", best.Score)
	return best, nil
}
