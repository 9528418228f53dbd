package graphics

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// ChooseSurfaceFormat prefers B8G8R8A8 sRGB with the sRGB nonlinear color
// space and falls back to the first candidate.
func ChooseSurfaceFormat(formats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range formats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}
	if len(formats) == 0 {
		return khr_surface.SurfaceFormat{}
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox and falls back to FIFO, which every
// surface supports.
func ChoosePresentMode(modes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, mode := range modes {
		if mode == khr_surface.PresentModeMailbox {
			return mode
		}
	}
	return khr_surface.PresentModeFIFO
}

// ChooseImageCount asks for one image more than the minimum, within the
// maximum when there is one.
func ChooseImageCount(caps khr_surface.SurfaceCapabilities) int {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseExtent uses the surface's current extent unless the surface leaves
// it to the application, in which case the drawable size is clamped to the
// supported range.
func ChooseExtent(caps khr_surface.SurfaceCapabilities, width, height int) core1_0.Extent2D {
	if caps.CurrentExtent.Width != -1 {
		return caps.CurrentExtent
	}
	return core1_0.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// ChooseSharingMode shares swapchain images concurrently between the
// graphics and present families when they differ.
func ChooseSharingMode(f QueueFamilies) (core1_0.SharingMode, []int) {
	if f.Complete() && *f.Graphics != *f.Present {
		return core1_0.SharingModeConcurrent, []int{*f.Graphics, *f.Present}
	}
	return core1_0.SharingModeExclusive, nil
}

func (s *State) createSwapchain() error {
	s.log.Debug("Creating swapchain")

	support, err := s.driver.SurfaceSupport(s.physical.Device)
	if err != nil {
		return errors.Wrap(err, "query surface support")
	}
	if len(support.Formats) == 0 {
		return errors.New("surface reports no formats")
	}

	s.surfaceFormat = ChooseSurfaceFormat(support.Formats)
	s.presentMode = ChoosePresentMode(support.PresentModes)
	width, height := s.window.DrawableSize()
	s.extent = ChooseExtent(support.Capabilities, width, height)
	s.imageCount = ChooseImageCount(support.Capabilities)
	var families []int
	s.sharingMode, families = ChooseSharingMode(s.families)

	s.log.Info("Swapchain",
		"format", s.surfaceFormat.Format,
		"presentMode", s.presentMode,
		"width", s.extent.Width,
		"height", s.extent.Height,
		"images", s.imageCount,
		"sharing", s.sharingMode)

	s.swapchain, err = s.driver.CreateSwapchain(SwapchainInfo{
		Format:             s.surfaceFormat,
		PresentMode:        s.presentMode,
		Extent:             s.extent,
		ImageCount:         s.imageCount,
		SharingMode:        s.sharingMode,
		QueueFamilyIndices: families,
	})
	if err != nil {
		return err
	}

	s.images, err = s.driver.SwapchainImages(s.swapchain)
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}
	return nil
}

func (s *State) SurfaceFormat() khr_surface.SurfaceFormat { return s.surfaceFormat }
func (s *State) PresentMode() khr_surface.PresentMode     { return s.presentMode }
func (s *State) SwapchainExtent() core1_0.Extent2D        { return s.extent }
func (s *State) SharingMode() core1_0.SharingMode         { return s.sharingMode }

// SwapchainImageCount returns the number of images the swapchain was
// created with, which may exceed the requested count.
func (s *State) SwapchainImageCount() int { return len(s.images) }

// AcquireNextImage returns the index of the next presentable image and waits
// until it is ready.
func (s *State) AcquireNextImage() (int, error) {
	if !s.frameFence.Initialized() {
		fence, err := s.driver.CreateFence()
		if err != nil {
			return 0, errors.Wrap(err, "create frame fence")
		}
		s.frameFence = fence
	}

	index, err := s.driver.AcquireNextImage(s.swapchain, s.frameFence)
	if err != nil {
		return 0, errors.Wrap(err, "acquire next image")
	}
	if err := s.driver.WaitForFence(s.frameFence); err != nil {
		return 0, err
	}
	if err := s.driver.ResetFence(s.frameFence); err != nil {
		return 0, err
	}
	return index, nil
}

// Present queues swapchain image for presentation on the given queue
// family.
func (s *State) Present(queue, image int) error {
	s.log.Assert(image >= 0 && image < len(s.images), "image < imageCount",
		fmt.Sprintf("Swapchain image %d out of range", image))
	return s.driver.QueuePresent(s.Queue(queue), s.swapchain, image)
}
