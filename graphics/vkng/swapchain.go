package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

func (d *Driver) CreateSwapchain(info graphics.SwapchainInfo) (graphics.Swapchain, error) {
	capabilities, _, err := d.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(d.surface, d.physicalDevice)
	if err != nil {
		return graphics.Swapchain{}, errors.Wrap(err, "get surface capabilities")
	}

	swapchain, _, err := d.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: d.surface,

		MinImageCount:    info.ImageCount,
		ImageFormat:      info.Format.Format,
		ImageColorSpace:  info.Format.ColorSpace,
		ImageExtent:      info.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   info.SharingMode,
		QueueFamilyIndices: info.QueueFamilyIndices,

		PreTransform:   capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    info.PresentMode,
		Clipped:        true,
	})
	if err != nil {
		return graphics.Swapchain{}, err
	}
	return graphics.Swapchain{Handle: d.objects.put(swapchain)}, nil
}

// SwapchainImages maps the images owned by swapchain. They are released with
// the swapchain and must not be passed to DestroyImage.
func (d *Driver) SwapchainImages(swapchain graphics.Swapchain) ([]graphics.Image, error) {
	sc, err := lookup[khr_swapchain.Swapchain](d.objects, swapchain.Handle)
	if err != nil {
		return nil, err
	}

	images, _, err := d.swapchainExtension.GetSwapchainImages(sc)
	if err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}

	handles := make([]graphics.Image, len(images))
	for i, image := range images {
		handles[i] = graphics.Image{Handle: d.objects.put(image)}
	}
	return handles, nil
}

func (d *Driver) DestroySwapchain(swapchain graphics.Swapchain) {
	sc, ok := get[khr_swapchain.Swapchain](d.objects, swapchain.Handle)
	if !ok {
		return
	}
	// Drop the mapped swapchain images along with it.
	for h, obj := range d.objects.objects {
		if _, isImage := obj.(core1_0.Image); isImage {
			d.objects.remove(h)
		}
	}
	d.swapchainExtension.DestroySwapchain(sc, nil)
	d.objects.remove(swapchain.Handle)
}

func (d *Driver) AcquireNextImage(swapchain graphics.Swapchain, fence graphics.Fence) (int, error) {
	sc, err := lookup[khr_swapchain.Swapchain](d.objects, swapchain.Handle)
	if err != nil {
		return 0, err
	}
	f, err := lookup[core1_0.Fence](d.objects, fence.Handle)
	if err != nil {
		return 0, err
	}

	imageIndex, _, err := d.swapchainExtension.AcquireNextImage(sc, common.NoTimeout, nil, &f)
	if err != nil {
		return 0, err
	}
	return imageIndex, nil
}

func (d *Driver) QueuePresent(queue graphics.Queue, swapchain graphics.Swapchain, image int) error {
	q, err := lookup[core1_0.Queue](d.objects, queue.Handle)
	if err != nil {
		return err
	}
	sc, err := lookup[khr_swapchain.Swapchain](d.objects, swapchain.Handle)
	if err != nil {
		return err
	}

	res, err := d.swapchainExtension.QueuePresent(q, khr_swapchain.PresentInfo{
		Swapchains:   []khr_swapchain.Swapchain{sc},
		ImageIndices: []int{image},
	})
	if res == khr_swapchain.VKSuboptimal {
		d.log.Debug("Swapchain is suboptimal for the surface")
	}
	return err
}
