// Command dcinfo initializes the graphics state and prints the negotiated
// instance capabilities and how every physical device scored.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/dcore-engine/dcore/graphics"
	"github.com/dcore-engine/dcore/internal/app"
)

func main() {
	runtime.LockOSThread()

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath, os.Stdout); err != nil {
		log.Fatalf("%+v\n", err)
	}
}

func run(configPath string, out io.Writer) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.State
	fmt.Fprintln(out, "Instance extensions:")
	printCapabilities(out, s.InstanceExtensions())
	fmt.Fprintln(out, "Instance layers:")
	printCapabilities(out, s.InstanceLayers())

	selected := s.PhysicalDevice()
	families := s.QueueFamilies()
	fmt.Fprintln(out, "Physical devices:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tTYPE\tVENDOR\tDEVICE\tSCORE\tGRAPHICS\tCOMPUTE\tPRESENT")
	for _, dev := range candidates(s) {
		score, f := graphics.ScoreDevice(s.Log(), dev, s.RequiredDeviceExtensions())
		marker := ""
		if dev.VendorID == selected.VendorID && dev.DeviceID == selected.DeviceID && dev.Name == selected.Name {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%#04x\t%#04x\t%d\t%s\t%s\t%s\n", marker, dev.Name, dev.Type,
			dev.VendorID, dev.DeviceID, score, family(f.Graphics), family(f.Compute), family(f.Present))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Swapchain: %dx%d, %d images, format %v, present mode %v, graphics family %s\n",
		s.SwapchainExtent().Width, s.SwapchainExtent().Height, s.SwapchainImageCount(),
		s.SurfaceFormat().Format, s.PresentMode(), family(families.Graphics))
	return nil
}

func candidates(s *graphics.State) []graphics.PhysicalDeviceInfo {
	devices, err := s.Candidates()
	if err != nil {
		s.Log().Error("Failed to enumerate physical devices", "error", err)
		return []graphics.PhysicalDeviceInfo{s.PhysicalDevice()}
	}
	return devices
}

func printCapabilities(out io.Writer, caps []graphics.Capability) {
	for _, c := range caps {
		state := "-"
		if c.Enabled {
			state = "+"
		}
		fmt.Fprintf(out, "  %s %s\n", state, c.Name)
	}
}

func family(idx *int) string {
	if idx == nil {
		return "none"
	}
	return fmt.Sprint(*idx)
}
