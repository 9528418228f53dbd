package graphics

import (
	"github.com/dcore-engine/dcore/debug"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
)

// Capability is an optional instance extension or layer the engine would
// like to enable.
type Capability struct {
	Name    string
	Enabled bool
}

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// DefaultInstanceExtensions is the instance extension wishlist used when
// Options does not name one.
var DefaultInstanceExtensions = []string{
	ext_debug_utils.ExtensionName,
	"VK_KHR_get_physical_device_properties2",
	khr_portability_enumeration.ExtensionName,
}

// DefaultInstanceLayers is the layer wishlist used when Options does not
// name one.
var DefaultInstanceLayers = []string{
	validationLayerName,
}

// Wishlist builds a capability list with every entry disabled.
func Wishlist(names ...string) []Capability {
	caps := make([]Capability, len(names))
	for i, name := range names {
		caps[i] = Capability{Name: name}
	}
	return caps
}

// Negotiate computes the set of names to enable. Every name in required is
// enabled unconditionally and comes first. Each available name then enables
// at most one wishlist entry: the first one with the same name that is not
// enabled yet. Wishlist entries are updated in place.
func Negotiate(log *debug.Log, kind string, wishlist []Capability, available, required []string) []string {
	enabled := make([]string, 0, len(required)+len(wishlist))
	enabled = append(enabled, required...)

	for _, name := range available {
		for i := range wishlist {
			if !wishlist[i].Enabled && wishlist[i].Name == name {
				wishlist[i].Enabled = true
				enabled = append(enabled, name)
				break
			}
		}
	}

	for _, c := range wishlist {
		if c.Enabled {
			log.Info("Instance "+kind, "name", c.Name)
		} else {
			log.Warn("Instance "+kind+" not available", "name", c.Name)
		}
	}

	return enabled
}

// Enabled reports whether name was enabled during negotiation.
func Enabled(caps []Capability, name string) bool {
	for _, c := range caps {
		if c.Name == name && c.Enabled {
			return true
		}
	}
	return false
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
