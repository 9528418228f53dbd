package vkng

import (
	"github.com/dcore-engine/dcore/graphics"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type commandBuffer struct {
	buffer core1_0.CommandBuffer
	pool   graphics.Handle
}

func (d *Driver) CreateCommandPool(family int) (graphics.CmdPool, error) {
	pool, _, err := d.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: family,
	})
	if err != nil {
		return graphics.CmdPool{}, err
	}
	return graphics.CmdPool{Handle: d.objects.put(pool)}, nil
}

// DestroyCommandPool also releases every command buffer allocated from pool.
func (d *Driver) DestroyCommandPool(pool graphics.CmdPool) {
	p, ok := get[core1_0.CommandPool](d.objects, pool.Handle)
	if !ok {
		return
	}
	for h, obj := range d.objects.objects {
		if cb, isBuffer := obj.(commandBuffer); isBuffer && cb.pool == pool.Handle {
			d.objects.remove(h)
		}
	}
	d.deviceDriver.DestroyCommandPool(p, nil)
	d.objects.remove(pool.Handle)
}

func (d *Driver) AllocateCommandBuffer(pool graphics.CmdPool) (graphics.CmdBuffer, error) {
	p, err := lookup[core1_0.CommandPool](d.objects, pool.Handle)
	if err != nil {
		return graphics.CmdBuffer{}, err
	}

	buffers, _, err := d.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        p,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return graphics.CmdBuffer{}, err
	}
	return graphics.CmdBuffer{Handle: d.objects.put(commandBuffer{buffer: buffers[0], pool: pool.Handle})}, nil
}

// cmd resolves a command buffer for recording calls that cannot return an
// error. Stale handles are logged and the command is dropped.
func (d *Driver) cmd(buffer graphics.CmdBuffer) (core1_0.CommandBuffer, bool) {
	cb, err := lookup[commandBuffer](d.objects, buffer.Handle)
	if err != nil {
		d.log.Error("Command dropped", "err", err)
		return core1_0.CommandBuffer{}, false
	}
	return cb.buffer, true
}

func (d *Driver) BeginCommandBuffer(buffer graphics.CmdBuffer) error {
	cb, err := lookup[commandBuffer](d.objects, buffer.Handle)
	if err != nil {
		return err
	}
	_, err = d.deviceDriver.BeginCommandBuffer(cb.buffer, core1_0.CommandBufferBeginInfo{})
	return err
}

func (d *Driver) EndCommandBuffer(buffer graphics.CmdBuffer) error {
	cb, err := lookup[commandBuffer](d.objects, buffer.Handle)
	if err != nil {
		return err
	}
	_, err = d.deviceDriver.EndCommandBuffer(cb.buffer)
	return err
}

func (d *Driver) CmdBeginRenderPass(buffer graphics.CmdBuffer, info graphics.RenderPassBeginInfo) error {
	cb, err := lookup[commandBuffer](d.objects, buffer.Handle)
	if err != nil {
		return err
	}
	renderPass, err := lookup[core1_0.RenderPass](d.objects, info.RenderPass.Handle)
	if err != nil {
		return err
	}
	framebuffer, err := lookup[core1_0.Framebuffer](d.objects, info.Framebuffer.Handle)
	if err != nil {
		return err
	}

	return d.deviceDriver.CmdBeginRenderPass(cb.buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  renderPass,
			Framebuffer: framebuffer,
			RenderArea:  info.Area,
			ClearValues: info.ClearValues,
		})
}

func (d *Driver) CmdEndRenderPass(buffer graphics.CmdBuffer) {
	if cb, ok := d.cmd(buffer); ok {
		d.deviceDriver.CmdEndRenderPass(cb)
	}
}

func (d *Driver) CmdBindPipeline(buffer graphics.CmdBuffer, pipeline graphics.Pipeline) {
	cb, ok := d.cmd(buffer)
	if !ok {
		return
	}
	p, err := lookup[core1_0.Pipeline](d.objects, pipeline.Handle)
	if err != nil {
		d.log.Error("Pipeline bind dropped", "err", err)
		return
	}
	d.deviceDriver.CmdBindPipeline(cb, core1_0.PipelineBindPointGraphics, p)
}

func (d *Driver) CmdPushConstants(buffer graphics.CmdBuffer, layout graphics.PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte) {
	cb, ok := d.cmd(buffer)
	if !ok {
		return
	}
	l, err := lookup[core1_0.PipelineLayout](d.objects, layout.Handle)
	if err != nil {
		d.log.Error("Push constants dropped", "err", err)
		return
	}
	d.deviceDriver.CmdPushConstants(cb, l, stages, offset, data)
}

func (d *Driver) CmdBindVertexBuffers(buffer graphics.CmdBuffer, first int, buffers []graphics.Buffer, offsets []int) {
	cb, ok := d.cmd(buffer)
	if !ok {
		return
	}
	vertexBuffers := make([]core1_0.Buffer, 0, len(buffers))
	for _, h := range buffers {
		b, err := lookup[boundBuffer](d.objects, h.Handle)
		if err != nil {
			d.log.Error("Vertex buffer bind dropped", "err", err)
			return
		}
		vertexBuffers = append(vertexBuffers, b.buffer)
	}
	d.deviceDriver.CmdBindVertexBuffers(cb, first, vertexBuffers, offsets)
}

func (d *Driver) CmdBindIndexBuffer(buffer graphics.CmdBuffer, index graphics.Buffer, offset int, indexType core1_0.IndexType) {
	cb, ok := d.cmd(buffer)
	if !ok {
		return
	}
	b, err := lookup[boundBuffer](d.objects, index.Handle)
	if err != nil {
		d.log.Error("Index buffer bind dropped", "err", err)
		return
	}
	d.deviceDriver.CmdBindIndexBuffer(cb, b.buffer, offset, indexType)
}

func (d *Driver) CmdDraw(buffer graphics.CmdBuffer, vertexCount, instanceCount, firstVertex, firstInstance int) {
	if cb, ok := d.cmd(buffer); ok {
		d.deviceDriver.CmdDraw(cb, vertexCount, instanceCount, uint32(firstVertex), uint32(firstInstance))
	}
}

func (d *Driver) CmdDrawIndexed(buffer graphics.CmdBuffer, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	if cb, ok := d.cmd(buffer); ok {
		d.deviceDriver.CmdDrawIndexed(cb, indexCount, instanceCount, uint32(firstIndex), vertexOffset, uint32(firstInstance))
	}
}

func (d *Driver) QueueSubmit(queue graphics.Queue, fence graphics.Fence, buffers ...graphics.CmdBuffer) error {
	q, err := lookup[core1_0.Queue](d.objects, queue.Handle)
	if err != nil {
		return err
	}

	commandBuffers := make([]core1_0.CommandBuffer, 0, len(buffers))
	for _, h := range buffers {
		cb, err := lookup[commandBuffer](d.objects, h.Handle)
		if err != nil {
			return err
		}
		commandBuffers = append(commandBuffers, cb.buffer)
	}

	var submitFence *core1_0.Fence
	if f, ok := get[core1_0.Fence](d.objects, fence.Handle); ok {
		submitFence = &f
	}

	_, err = d.deviceDriver.QueueSubmit(q, submitFence,
		core1_0.SubmitInfo{
			CommandBuffers: commandBuffers,
		},
	)
	return err
}

func (d *Driver) QueueWaitIdle(queue graphics.Queue) error {
	q, err := lookup[core1_0.Queue](d.objects, queue.Handle)
	if err != nil {
		return err
	}
	_, err = d.deviceDriver.QueueWaitIdle(q)
	return err
}

func (d *Driver) CreateFence() (graphics.Fence, error) {
	fence, _, err := d.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err != nil {
		return graphics.Fence{}, err
	}
	return graphics.Fence{Handle: d.objects.put(fence)}, nil
}

func (d *Driver) WaitForFence(fence graphics.Fence) error {
	f, err := lookup[core1_0.Fence](d.objects, fence.Handle)
	if err != nil {
		return err
	}
	_, err = d.deviceDriver.WaitForFences(true, common.NoTimeout, f)
	return err
}

func (d *Driver) ResetFence(fence graphics.Fence) error {
	f, err := lookup[core1_0.Fence](d.objects, fence.Handle)
	if err != nil {
		return err
	}
	_, err = d.deviceDriver.ResetFences(f)
	return err
}

func (d *Driver) DestroyFence(fence graphics.Fence) {
	if f, ok := get[core1_0.Fence](d.objects, fence.Handle); ok {
		d.deviceDriver.DestroyFence(f, nil)
		d.objects.remove(fence.Handle)
	}
}
