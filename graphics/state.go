// Package graphics is a thin device layer over Vulkan. It negotiates
// instance extensions and layers, picks a physical device, builds the logical
// device and swapchain, keeps index-addressed tables of resource
// descriptions and composes them into materials.
package graphics

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/debug"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

const EngineName = "DCE"

var EngineVersion = common.CreateVersion(0, 1, 0)

// Options configures Init.
type Options struct {
	AppName    string
	AppVersion common.Version

	// InstanceExtensions and InstanceLayers are wishlists: names that are
	// not available are skipped with a warning. Nil selects the defaults.
	InstanceExtensions []string
	InstanceLayers     []string
	// DeviceExtensions must all be supported by the selected device. Nil
	// selects VK_KHR_swapchain.
	DeviceExtensions []string
	// DebugMessenger routes validation messages into the log when the
	// debug utils extension is enabled.
	DebugMessenger bool
}

// State owns the device and every object registered through it. It is not
// safe for concurrent use.
type State struct {
	log    *debug.Log
	driver Driver
	window Window

	instanceExtensions []Capability
	instanceLayers     []Capability
	deviceExtensions   []string

	physical PhysicalDeviceInfo
	families QueueFamilies
	queues   [3]Queue

	surfaceFormat khr_surface.SurfaceFormat
	presentMode   khr_surface.PresentMode
	extent        core1_0.Extent2D
	imageCount    int
	sharingMode   core1_0.SharingMode
	swapchain     Swapchain
	images        []Image
	frameFence    Fence

	renderPasses         *Table[RenderPass]
	descriptorSetLayouts *Table[DescriptorSetLayout]
	vertexBindings       *Table[core1_0.VertexInputBindingDescription]
	vertexAttributes     *Table[core1_0.VertexInputAttributeDescription]
	pushConstantRanges   *Table[core1_0.PushConstantRange]

	instanceCreated bool
	surfaceCreated  bool
	deviceCreated   bool
}

func NewState(log *debug.Log, driver Driver, window Window) *State {
	return &State{
		log:                  log,
		driver:               driver,
		window:               window,
		renderPasses:         NewTable[RenderPass](log, "render pass"),
		descriptorSetLayouts: NewTable[DescriptorSetLayout](log, "descriptor set layout"),
		vertexBindings:       NewTable[core1_0.VertexInputBindingDescription](log, "vertex binding"),
		vertexAttributes:     NewTable[core1_0.VertexInputAttributeDescription](log, "vertex attribute"),
		pushConstantRanges:   NewTable[core1_0.PushConstantRange](log, "push constant range"),
	}
}

// Init brings the state up: instance, surface, physical device, logical
// device and swapchain. On error the state is partially initialized and
// only Deinit may be called on it.
func (s *State) Init(opts Options) error {
	s.log.Push("init")
	defer s.log.Pop()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"create instance", func() error { return s.createInstance(opts) }},
		{"create surface", s.createSurface},
		{"select physical device", func() error { return s.selectPhysicalDevice(opts) }},
		{"create logical device", s.createLogicalDevice},
		{"create swapchain", s.createSwapchain},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			s.log.Fatal("Initialization failed", "step", step.name, "error", err)
			return errors.Wrap(err, step.name)
		}
	}

	s.log.Success("Graphics state initialized")
	return nil
}

func (s *State) createInstance(opts Options) error {
	s.log.Debug("Creating instance")

	required := s.window.RequiredInstanceExtensions()
	available, err := s.driver.AvailableInstanceExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerate instance extensions")
	}
	for _, ext := range required {
		if !contains(available, ext) {
			return errors.Newf("missing instance extension %s required by the window", ext)
		}
	}

	wanted := opts.InstanceExtensions
	if wanted == nil {
		wanted = DefaultInstanceExtensions
	}
	s.instanceExtensions = Wishlist(wanted...)
	extensions := Negotiate(s.log, "extension", s.instanceExtensions, available, required)

	layersAvailable, err := s.driver.AvailableInstanceLayers()
	if err != nil {
		return errors.Wrap(err, "enumerate instance layers")
	}
	wanted = opts.InstanceLayers
	if wanted == nil {
		wanted = DefaultInstanceLayers
	}
	s.instanceLayers = Wishlist(wanted...)
	layers := Negotiate(s.log, "layer", s.instanceLayers, layersAvailable, nil)

	s.log.Info("To be enabled extensions", "count", len(extensions), "names", extensions)
	s.log.Info("To be enabled layers", "count", len(layers), "names", layers)

	appName := opts.AppName
	if appName == "" {
		appName = EngineName
	}
	info := InstanceInfo{
		ApplicationName:      appName,
		ApplicationVersion:   opts.AppVersion,
		EngineName:           EngineName,
		EngineVersion:        EngineVersion,
		Extensions:           extensions,
		Layers:               layers,
		EnumeratePortability: Enabled(s.instanceExtensions, khr_portability_enumeration.ExtensionName),
	}
	if opts.DebugMessenger && Enabled(s.instanceExtensions, ext_debug_utils.ExtensionName) {
		info.Messages = func(level slog.Level, msg string) {
			s.log.Log(context.Background(), level, msg, "source", "validation")
		}
	}

	if err := s.driver.CreateInstance(info); err != nil {
		return err
	}
	s.instanceCreated = true
	s.log.Debug("Done creating instance")
	return nil
}

func (s *State) createSurface() error {
	s.log.Debug("Creating surface")
	if err := s.driver.CreateSurface(s.window); err != nil {
		return err
	}
	s.surfaceCreated = true
	return nil
}

func (s *State) selectPhysicalDevice(opts Options) error {
	s.deviceExtensions = opts.DeviceExtensions
	if s.deviceExtensions == nil {
		s.deviceExtensions = []string{khr_swapchain.ExtensionName}
	}

	candidates, err := s.driver.PhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "enumerate physical devices")
	}

	selection, err := SelectPhysicalDevice(s.log, candidates, s.deviceExtensions)
	if err != nil {
		return err
	}
	s.physical = selection.Device
	s.families = selection.Families
	return nil
}

// Deinit destroys everything the state created, in reverse order. It is
// safe to call on a partially initialized state.
func (s *State) Deinit() {
	s.log.Push("deinit")
	defer s.log.Pop()

	if s.deviceCreated {
		if err := s.driver.DeviceWaitIdle(); err != nil {
			s.log.Error("Waiting for device failed", "error", err)
		}
	}

	s.renderPasses.Each(func(_ int, entry []RenderPass) {
		for _, rp := range entry {
			s.driver.DestroyRenderPass(rp)
		}
	})
	s.descriptorSetLayouts.Each(func(_ int, entry []DescriptorSetLayout) {
		for _, layout := range entry {
			s.driver.DestroyDescriptorSetLayout(layout)
		}
	})
	s.renderPasses = NewTable[RenderPass](s.log, "render pass")
	s.descriptorSetLayouts = NewTable[DescriptorSetLayout](s.log, "descriptor set layout")

	if s.frameFence.Initialized() {
		s.driver.DestroyFence(s.frameFence)
		s.frameFence = Fence{}
	}
	if s.swapchain.Initialized() {
		s.driver.DestroySwapchain(s.swapchain)
		s.swapchain = Swapchain{}
		s.images = nil
	}
	if s.deviceCreated {
		s.driver.DestroyDevice()
		s.deviceCreated = false
		s.queues = [3]Queue{}
	}
	if s.surfaceCreated {
		s.driver.DestroySurface()
		s.surfaceCreated = false
	}
	if s.instanceCreated {
		s.driver.DestroyInstance()
		s.instanceCreated = false
	}
	s.log.Debug("Graphics state deinitialized")
}

// InstanceExtensions returns the negotiated extension wishlist.
func (s *State) InstanceExtensions() []Capability {
	return append([]Capability(nil), s.instanceExtensions...)
}

// InstanceLayers returns the negotiated layer wishlist.
func (s *State) InstanceLayers() []Capability {
	return append([]Capability(nil), s.instanceLayers...)
}

func (s *State) PhysicalDevice() PhysicalDeviceInfo { return s.physical }

// RequiredDeviceExtensions lists the device extensions every candidate had
// to support.
func (s *State) RequiredDeviceExtensions() []string { return s.deviceExtensions }

// Candidates re-enumerates every physical device the driver can see.
func (s *State) Candidates() ([]PhysicalDeviceInfo, error) {
	return s.driver.PhysicalDevices()
}

// WaitIdle blocks until the device has finished all submitted work.
func (s *State) WaitIdle() error {
	if !s.deviceCreated {
		return nil
	}
	return errors.Wrap(s.driver.DeviceWaitIdle(), "wait for device")
}

func (s *State) QueueFamilies() QueueFamilies { return s.families }
func (s *State) Log() *debug.Log              { return s.log }

func (s *State) ShouldClose() bool         { return s.window.ShouldClose() }
func (s *State) Close()                    { s.window.Close() }
func (s *State) Update()                   { s.window.Update() }
func (s *State) MousePosition() (x, y int) { return s.window.MousePosition() }
