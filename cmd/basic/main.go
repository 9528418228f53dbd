// Command basic draws a spinning mesh with the basic renderer.
//
// The shaders are compiled from shaders/ with glslc.
//
//go:generate glslc ../../shaders/basic.vert -o ../../shaders/basic.vert.spv
//go:generate glslc ../../shaders/basic.frag -o ../../shaders/basic.frag.spv
package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
	"golang.org/x/sync/errgroup"

	"github.com/dcore-engine/dcore/graphics"
	"github.com/dcore-engine/dcore/internal/app"
	"github.com/dcore-engine/dcore/mesh"
	"github.com/dcore-engine/dcore/renderers/basic"
)

type Demo struct {
	*app.App
	state *graphics.State

	indices  basic.Indices
	cache    graphics.PipelineCache
	material *graphics.Material

	mesh         *mesh.Mesh
	vertexBuffer graphics.Buffer
	indexBuffer  graphics.Buffer

	depthImage   graphics.Image
	depthView    graphics.ImageView
	imageViews   []graphics.ImageView
	framebuffers []graphics.Framebuffer

	pool   graphics.CmdPool
	buffer graphics.CmdBuffer

	start  time.Duration
	frames int
}

func (d *Demo) Run() error {
	if err := d.init(); err != nil {
		return err
	}
	return d.mainLoop()
}

func (d *Demo) init() error {
	var err error
	d.indices, err = basic.Register(d.state)
	if err != nil {
		return err
	}

	steps := []func() error{
		d.createMaterial,
		d.loadMesh,
		d.createFramebuffers,
		d.createCommandBuffer,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// loadShaders reads both SPIR-V files concurrently.
func (d *Demo) loadShaders() (vert, frag []byte, err error) {
	var g errgroup.Group
	g.Go(func() error {
		var err error
		vert, err = os.ReadFile(d.Config.Shaders.Vertex)
		return errors.Wrap(err, "read vertex shader")
	})
	g.Go(func() error {
		var err error
		frag, err = os.ReadFile(d.Config.Shaders.Fragment)
		return errors.Wrap(err, "read fragment shader")
	})
	err = g.Wait()
	return vert, frag, err
}

func (d *Demo) createMaterial() error {
	vertBytes, fragBytes, err := d.loadShaders()
	if err != nil {
		return err
	}

	vertShader, err := d.state.NewShaderModule(core1_0.StageVertex, vertBytes, d.Config.Shaders.Entry)
	if err != nil {
		return err
	}
	defer d.state.FreeShaderModule(&vertShader)

	fragShader, err := d.state.NewShaderModule(core1_0.StageFragment, fragBytes, d.Config.Shaders.Entry)
	if err != nil {
		return err
	}
	defer d.state.FreeShaderModule(&fragShader)

	d.cache, err = d.state.NewMaterialCache(d.readPipelineCache())
	if err != nil {
		return err
	}

	opts := basic.MaterialOptions(d.indices, d.state.SwapchainExtent())
	d.material = d.state.NewMaterial([]graphics.Shader{vertShader, fragShader}, opts, d.cache)
	if !d.material.Valid() {
		return errors.New("basic material could not be created")
	}
	return nil
}

func (d *Demo) readPipelineCache() []byte {
	if d.Config.PipelineCache == "" {
		return nil
	}
	data, err := os.ReadFile(d.Config.PipelineCache)
	if err != nil {
		if !os.IsNotExist(err) {
			d.Log.Warn("Failed to read pipeline cache", "path", d.Config.PipelineCache, "error", err)
		}
		return nil
	}
	return data
}

func (d *Demo) writePipelineCache() {
	if d.Config.PipelineCache == "" || !d.cache.Initialized() {
		return
	}
	data, err := d.state.MaterialCacheData(d.cache)
	if err == nil {
		err = os.WriteFile(d.Config.PipelineCache, data, 0o644)
	}
	if err != nil {
		d.Log.Warn("Failed to save pipeline cache", "path", d.Config.PipelineCache, "error", err)
		return
	}
	d.Log.Debug("Pipeline cache saved", "path", d.Config.PipelineCache, "bytes", len(data))
}

func (d *Demo) loadMesh() error {
	var err error
	if d.Config.Mesh != "" {
		d.mesh, err = mesh.LoadFile(d.Config.Mesh)
		if err != nil {
			return err
		}
	} else {
		d.mesh = cube()
	}

	d.vertexBuffer, err = d.state.NewVertexBuffer(d.mesh.Vertices)
	if err != nil {
		return err
	}
	d.indexBuffer, err = d.state.NewIndexBuffer(d.mesh.Indices)
	if err != nil {
		return err
	}
	d.Log.Info("Mesh loaded", "vertices", len(d.mesh.Vertices), "indices", len(d.mesh.Indices))
	return nil
}

func (d *Demo) createFramebuffers() error {
	extent := d.state.SwapchainExtent()

	var err error
	d.depthImage, err = d.state.NewImage(graphics.ImageInfo{
		Width:  extent.Width,
		Height: extent.Height,
		Format: basic.DepthFormat,
		Usage:  core1_0.ImageUsageDepthStencilAttachment,
	})
	if err != nil {
		return err
	}
	d.depthView, err = d.state.NewImageView(graphics.ImageViewInfo{
		Image:  d.depthImage,
		Format: basic.DepthFormat,
		Aspect: core1_0.ImageAspectDepth,
	})
	if err != nil {
		return err
	}

	for i := 0; i < d.state.SwapchainImageCount(); i++ {
		view, err := d.state.NewImageViewFromSwapchain(i)
		if err != nil {
			return err
		}
		d.imageViews = append(d.imageViews, view)

		framebuffer, err := d.state.NewFramebuffer(graphics.NewFramebufferInfo{
			Attachments:     []graphics.ImageView{view, d.depthView},
			RenderPassIndex: d.indices.RenderPass,
			Width:           extent.Width,
			Height:          extent.Height,
		})
		if err != nil {
			return err
		}
		d.framebuffers = append(d.framebuffers, framebuffer)
	}
	return nil
}

func (d *Demo) createCommandBuffer() error {
	var err error
	d.pool, err = d.state.NewCmdPool(graphics.CmdPoolGraphics)
	if err != nil {
		return err
	}
	d.buffer, err = d.state.NewCmdBuffer(d.pool)
	return err
}

func (d *Demo) mainLoop() error {
	d.start = hrtime.Now()
	for !d.state.ShouldClose() {
		if d.Window.Minimized() {
			d.Window.Wait()
			continue
		}
		d.state.Update()
		if d.Window.Minimized() {
			continue
		}
		if err := d.drawFrame(); err != nil {
			return err
		}
		d.frames++
	}

	elapsed := hrtime.Since(d.start)
	if d.frames > 0 {
		d.Log.Info("Frames drawn", "frames", d.frames, "elapsed", elapsed, "average", elapsed/time.Duration(d.frames))
	}
	return nil
}

// transform spins the model over time and tilts it with the mouse.
func (d *Demo) transform() basic.TransformPushConstant {
	extent := d.state.SwapchainExtent()
	seconds := float32(hrtime.Since(d.start).Seconds())
	_, mouseY := d.state.MousePosition()
	tilt := (float32(mouseY)/float32(max(extent.Height, 1)) - 0.5) * mgl32.DegToRad(90)

	model := mgl32.HomogRotate3DX(tilt).Mul4(mgl32.HomogRotate3DY(seconds * mgl32.DegToRad(45)))
	view := mgl32.LookAtV(mgl32.Vec3{0, 1.5, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), float32(extent.Width)/float32(max(extent.Height, 1)), 0.1, 100)
	// Vulkan clip space has Y pointing down.
	proj[5] *= -1

	return basic.TransformPushConstant{Transform: proj.Mul4(view).Mul4(model)}
}

func (d *Demo) drawFrame() error {
	imageIndex, err := d.state.AcquireNextImage()
	if err != nil {
		return err
	}

	buf := d.buffer
	if err := d.state.CmdBegin(buf); err != nil {
		return err
	}
	err = d.state.CmdBeginRenderPass(buf, graphics.BeginRenderPassInfo{
		RenderPassIndex: d.indices.RenderPass,
		Framebuffer:     d.framebuffers[imageIndex],
		Area: core1_0.Rect2D{
			Offset: core1_0.Offset2D{X: 0, Y: 0},
			Extent: d.state.SwapchainExtent(),
		},
		ClearValues: []core1_0.ClearValue{
			core1_0.ClearValueFloat{0.05, 0.05, 0.08, 1},
			core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0},
		},
	})
	if err != nil {
		return err
	}

	d.state.CmdBindMaterial(buf, d.material)
	if err := d.state.CmdPushConstants(buf, d.material, core1_0.StageVertex, 0, d.transform()); err != nil {
		return err
	}
	d.state.CmdBindVertexBuffer(buf, d.vertexBuffer)
	d.state.CmdBindIndexBuffer(buf, d.indexBuffer, core1_0.IndexTypeUInt32)
	d.state.CmdDrawIndexed(buf, len(d.mesh.Indices), 1)
	d.state.CmdEndRenderPass(buf)

	if err := d.state.CmdEnd(buf); err != nil {
		return err
	}

	families := d.state.QueueFamilies()
	if err := d.state.Submit(buf, *families.Graphics); err != nil {
		return err
	}
	return d.state.Present(*families.Present, imageIndex)
}

func (d *Demo) cleanup() {
	if err := d.state.WaitIdle(); err != nil {
		d.Log.Warn("Device did not go idle before cleanup", "error", err)
	}

	if d.pool.Initialized() {
		d.state.FreeCmdPool(d.pool)
	}
	for _, framebuffer := range d.framebuffers {
		d.state.FreeFramebuffer(framebuffer)
	}
	for _, view := range d.imageViews {
		d.state.FreeImageView(view)
	}
	if d.depthView.Initialized() {
		d.state.FreeImageView(d.depthView)
	}
	if d.depthImage.Initialized() {
		d.state.FreeImage(d.depthImage)
	}
	if d.indexBuffer.Initialized() {
		d.state.FreeBuffer(d.indexBuffer)
	}
	if d.vertexBuffer.Initialized() {
		d.state.FreeBuffer(d.vertexBuffer)
	}
	if d.material.Valid() {
		d.state.FreeMaterial(d.material)
	}
	if d.cache.Initialized() {
		d.writePipelineCache()
		d.state.FreeMaterialCache(d.cache)
	}
}

func run(configPath string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	demo := &Demo{App: a, state: a.State}
	defer demo.cleanup()
	return demo.Run()
}

func main() {
	runtime.LockOSThread()

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("%+v\n", err)
	}
}
