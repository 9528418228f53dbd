// Package vkng implements graphics.Driver over the vkngwrapper bindings.
package vkng

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/debug"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
)

// SDLWindow is implemented by windows that can back a Vulkan surface.
type SDLWindow interface {
	SDL() *sdl.Window
}

// Driver talks to the Vulkan loader SDL found when the window was created.
// It is not safe for concurrent use.
type Driver struct {
	log *debug.Log

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugDriver      ext_debug_utils.ExtensionDriver
	debugMessenger   ext_debug_utils.DebugUtilsMessenger
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	swapchainExtension khr_swapchain.ExtensionDriver
	physicalDevice     core1_0.PhysicalDevice

	objects *arena
}

var _ graphics.Driver = (*Driver)(nil)

// New loads the global driver. SDL must already have loaded Vulkan, which
// creating a window with the Vulkan flag does.
func New(log *debug.Log) (*Driver, error) {
	globalDriver, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan")
	}
	return &Driver{log: log, globalDriver: globalDriver, objects: newArena()}, nil
}

func (d *Driver) AvailableInstanceExtensions() ([]string, error) {
	extensions, _, err := d.globalDriver.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}
	return slices.Sorted(maps.Keys(extensions)), nil
}

func (d *Driver) AvailableInstanceLayers() ([]string, error) {
	layers, _, err := d.globalDriver.AvailableLayers()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance layers")
	}
	return slices.Sorted(maps.Keys(layers)), nil
}

func (d *Driver) CreateInstance(info graphics.InstanceInfo) error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       info.ApplicationName,
		ApplicationVersion:    info.ApplicationVersion,
		EngineName:            info.EngineName,
		EngineVersion:         info.EngineVersion,
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: info.Extensions,
		EnabledLayerNames:     info.Layers,
	}
	if info.EnumeratePortability {
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	instance, _, err := d.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return err
	}
	d.instanceDriver, err = d.globalDriver.BuildInstanceDriver(instance)
	if err != nil {
		return errors.Wrap(err, "build instance driver")
	}

	if info.Messages == nil {
		return nil
	}
	d.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(d.instanceDriver)
	d.debugMessenger, _, err = d.debugDriver.CreateDebugUtilsMessenger(nil, debugMessengerOptions(info.Messages))
	return errors.Wrap(err, "create debug messenger")
}

func debugMessengerOptions(messages graphics.MessageFunc) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: func(_ ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			level := slog.LevelWarn
			if severity&ext_debug_utils.SeverityError != 0 {
				level = slog.LevelError
			}
			messages(level, data.Message)
			return false
		},
	}
}

func (d *Driver) CreateSurface(window graphics.Window) error {
	sdlWindow, ok := window.(SDLWindow)
	if !ok {
		return errors.Newf("window %T has no SDL window to create a surface for", window)
	}

	d.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(d.instanceDriver)
	surface, err := vkng_sdl2.CreateSurface(d.instanceDriver.Instance(), d.surfaceExtension, sdlWindow.SDL())
	if err != nil {
		return err
	}
	d.surface = surface
	return nil
}

// PhysicalDevices snapshots every device the instance can see. Present
// support is queried against the surface, so CreateSurface comes first.
func (d *Driver) PhysicalDevices() ([]graphics.PhysicalDeviceInfo, error) {
	physicalDevices, _, err := d.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}

	infos := make([]graphics.PhysicalDeviceInfo, 0, len(physicalDevices))
	for _, device := range physicalDevices {
		info, err := d.describe(device)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (d *Driver) describe(device core1_0.PhysicalDevice) (graphics.PhysicalDeviceInfo, error) {
	properties, err := d.instanceDriver.GetPhysicalDeviceProperties(device)
	if err != nil {
		return graphics.PhysicalDeviceInfo{}, errors.Wrap(err, "get physical device properties")
	}

	info := graphics.PhysicalDeviceInfo{
		Device:            graphics.PhysicalDevice{Handle: d.objects.intern(device.Handle(), device)},
		Name:              properties.DriverName,
		Type:              properties.DriverType,
		VendorID:          properties.VendorID,
		DeviceID:          properties.DeviceID,
		PipelineCacheUUID: properties.PipelineCacheUUID,
		Limits: graphics.Limits{
			MaxDescriptorSetSamplers:       uint64(properties.Limits.MaxDescriptorSetSamplers),
			MaxBoundDescriptorSets:         uint64(properties.Limits.MaxBoundDescriptorSets),
			MaxDescriptorSetUniformBuffers: uint64(properties.Limits.MaxDescriptorSetUniformBuffers),
			MaxUniformBufferRange:          uint64(properties.Limits.MaxUniformBufferRange),
			MaxFramebufferWidth:            uint64(properties.Limits.MaxFramebufferWidth),
			MaxFramebufferHeight:           uint64(properties.Limits.MaxFramebufferHeight),
		},
	}

	for queueFamilyIdx, queueFamily := range d.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device) {
		family := graphics.QueueFamily{Flags: queueFamily.QueueFlags}
		if d.surface.Initialized() {
			family.PresentSupport, _, err = d.surfaceExtension.GetPhysicalDeviceSurfaceSupport(d.surface, device, queueFamilyIdx)
			if err != nil {
				return info, errors.Wrapf(err, "query present support of family %d", queueFamilyIdx)
			}
		}
		info.QueueFamilies = append(info.QueueFamilies, family)
	}

	extensions, _, err := d.instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return info, errors.Wrap(err, "enumerate device extensions")
	}
	info.Extensions = slices.Sorted(maps.Keys(extensions))
	return info, nil
}

func (d *Driver) SurfaceSupport(device graphics.PhysicalDevice) (graphics.SurfaceSupport, error) {
	physicalDevice, err := lookup[core1_0.PhysicalDevice](d.objects, device.Handle)
	if err != nil {
		return graphics.SurfaceSupport{}, err
	}

	var support graphics.SurfaceSupport
	capabilities, _, err := d.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(d.surface, physicalDevice)
	if err != nil {
		return support, errors.Wrap(err, "get surface capabilities")
	}
	support.Capabilities = *capabilities

	support.Formats, _, err = d.surfaceExtension.GetPhysicalDeviceSurfaceFormats(d.surface, physicalDevice)
	if err != nil {
		return support, errors.Wrap(err, "get surface formats")
	}

	support.PresentModes, _, err = d.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(d.surface, physicalDevice)
	if err != nil {
		return support, errors.Wrap(err, "get surface present modes")
	}
	return support, nil
}

func (d *Driver) CreateDevice(device graphics.PhysicalDevice, info graphics.DeviceInfo) error {
	physicalDevice, err := lookup[core1_0.PhysicalDevice](d.objects, device.Handle)
	if err != nil {
		return err
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range info.QueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	logicalDevice, _, err := d.instanceDriver.CreateDevice(physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: info.Extensions,
	})
	if err != nil {
		return err
	}
	d.deviceDriver, err = d.instanceDriver.BuildDeviceDriver(logicalDevice)
	if err != nil {
		return errors.Wrap(err, "build device driver")
	}

	d.physicalDevice = physicalDevice
	d.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(d.deviceDriver)
	return nil
}

func (d *Driver) GetQueue(family int) graphics.Queue {
	return graphics.Queue{Handle: d.objects.put(d.deviceDriver.GetQueue(family, 0))}
}

func (d *Driver) DeviceWaitIdle() error {
	if d.deviceDriver == nil {
		return nil
	}
	_, err := d.deviceDriver.DeviceWaitIdle()
	return err
}

func (d *Driver) DestroyDevice() {
	if d.deviceDriver == nil {
		return
	}
	d.deviceDriver.DestroyDevice(nil)
	d.deviceDriver = nil
	d.swapchainExtension = nil
}

func (d *Driver) DestroySurface() {
	if d.surface.Initialized() {
		d.surfaceExtension.DestroySurface(d.surface, nil)
		d.surface = khr_surface.Surface{}
	}
}

func (d *Driver) DestroyInstance() {
	if d.debugMessenger.Initialized() {
		d.debugDriver.DestroyDebugUtilsMessenger(d.debugMessenger, nil)
		d.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}
	if d.instanceDriver != nil {
		d.instanceDriver.DestroyInstance(nil)
		d.instanceDriver = nil
	}
	d.objects = newArena()
}

// findMemoryType returns the first memory type allowed by typeFilter that has
// all of properties.
func (d *Driver) findMemoryType(typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	memProperties := d.instanceDriver.GetPhysicalDeviceMemoryProperties(d.physicalDevice)
	for i, memoryType := range memProperties.MemoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Newf("no memory type matches filter %#x with properties %v", typeFilter, properties)
}
