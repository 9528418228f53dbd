package graphics

import (
	"fmt"

	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
)

// UniqueQueueFamilies returns the distinct family indices in graphics,
// compute, present order. Roles without a family are skipped.
func UniqueQueueFamilies(f QueueFamilies) []int {
	var unique []int
	for _, family := range []*int{f.Graphics, f.Compute, f.Present} {
		if family == nil || containsInt(unique, *family) {
			continue
		}
		unique = append(unique, *family)
	}
	return unique
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// DeviceExtensions returns the extensions to enable on the logical device:
// the required ones plus the portability subset when the device has it.
func DeviceExtensions(dev PhysicalDeviceInfo, required []string) []string {
	extensions := append([]string(nil), required...)
	if contains(dev.Extensions, khr_portability_subset.ExtensionName) && !contains(extensions, khr_portability_subset.ExtensionName) {
		extensions = append(extensions, khr_portability_subset.ExtensionName)
	}
	return extensions
}

func (s *State) createLogicalDevice() error {
	s.log.Debug("Creating a logical device")

	info := DeviceInfo{
		QueueFamilies: UniqueQueueFamilies(s.families),
		Extensions:    DeviceExtensions(s.physical, s.deviceExtensions),
	}
	s.log.Info("Queue families", "families", info.QueueFamilies)
	for _, ext := range info.Extensions {
		s.log.Info("Device extension", "name", ext)
	}

	if err := s.driver.CreateDevice(s.physical.Device, info); err != nil {
		return err
	}
	s.deviceCreated = true
	s.log.Debug("Logical device created")
	return nil
}

// Queue returns the first queue of the given family. The handle is fetched
// once and cached. Only families 0 to 2 can be cached; asking for any other
// index fails an assertion.
func (s *State) Queue(family int) Queue {
	s.log.Assert(family >= 0 && family < len(s.queues), fmt.Sprintf("family < %d", len(s.queues)),
		"Queue family index too big!")

	if !s.queues[family].Initialized() {
		s.queues[family] = s.driver.GetQueue(family)
	}
	return s.queues[family]
}

// GraphicsQueue returns the queue of the graphics family.
func (s *State) GraphicsQueue() Queue {
	return s.Queue(*s.families.Graphics)
}

// PresentQueue returns the queue of the present family.
func (s *State) PresentQueue() Queue {
	return s.Queue(*s.families.Present)
}
