package graphics

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type CmdPoolType int

const (
	CmdPoolGraphics CmdPoolType = iota
	CmdPoolCompute
)

// NewCmdPool creates a command pool on the family serving t.
func (s *State) NewCmdPool(t CmdPoolType) (CmdPool, error) {
	var family *int
	switch t {
	case CmdPoolGraphics:
		family = s.families.Graphics
	case CmdPoolCompute:
		family = s.families.Compute
	default:
		s.log.Warn("Bad command pool type", "type", int(t))
	}
	if family == nil {
		return CmdPool{}, errors.Newf("no queue family for command pool type %d", t)
	}

	pool, err := s.driver.CreateCommandPool(*family)
	if err != nil {
		s.log.Fatal("Failed to create command pool", "error", err)
		return CmdPool{}, errors.Wrap(err, "create command pool")
	}
	return pool, nil
}

func (s *State) FreeCmdPool(pool CmdPool) {
	if !pool.Initialized() {
		s.log.Error("Tried to free null command pool")
		return
	}
	s.driver.DestroyCommandPool(pool)
}

// NewCmdBuffer allocates a primary command buffer from pool. It is freed
// with the pool.
func (s *State) NewCmdBuffer(pool CmdPool) (CmdBuffer, error) {
	buf, err := s.driver.AllocateCommandBuffer(pool)
	if err != nil {
		return CmdBuffer{}, errors.Wrap(err, "allocate command buffer")
	}
	return buf, nil
}

func (s *State) CmdBegin(buf CmdBuffer) error {
	return s.driver.BeginCommandBuffer(buf)
}

func (s *State) CmdEnd(buf CmdBuffer) error {
	return s.driver.EndCommandBuffer(buf)
}

type BeginRenderPassInfo struct {
	RenderPassIndex int
	Area            core1_0.Rect2D
	ClearValues     []core1_0.ClearValue
	Framebuffer     Framebuffer
}

// CmdBeginRenderPass begins the first render pass of the given table entry.
func (s *State) CmdBeginRenderPass(buf CmdBuffer, info BeginRenderPassInfo) error {
	return s.driver.CmdBeginRenderPass(buf, RenderPassBeginInfo{
		RenderPass:  s.RenderPass(info.RenderPassIndex),
		Framebuffer: info.Framebuffer,
		Area:        info.Area,
		ClearValues: info.ClearValues,
	})
}

func (s *State) CmdEndRenderPass(buf CmdBuffer) {
	s.driver.CmdEndRenderPass(buf)
}

func (s *State) CmdBindMaterial(buf CmdBuffer, m *Material) {
	if !m.Valid() {
		s.log.Error("Tried to bind an invalid material")
		return
	}
	s.driver.CmdBindPipeline(buf, m.Pipeline)
}

// CmdPushConstants encodes data and pushes it through the material's
// layout.
func (s *State) CmdPushConstants(buf CmdBuffer, m *Material, stages core1_0.ShaderStageFlags, offset int, data any) error {
	if !m.Valid() {
		return errors.New("push constants to an invalid material")
	}
	var b bytes.Buffer
	if err := binary.Write(&b, common.ByteOrder, data); err != nil {
		return errors.Wrap(err, "encode push constants")
	}
	s.driver.CmdPushConstants(buf, m.Layout, stages, offset, b.Bytes())
	return nil
}

func (s *State) CmdBindVertexBuffer(buf CmdBuffer, vertices Buffer) {
	s.driver.CmdBindVertexBuffers(buf, 0, []Buffer{vertices}, []int{0})
}

func (s *State) CmdBindIndexBuffer(buf CmdBuffer, indices Buffer, indexType core1_0.IndexType) {
	s.driver.CmdBindIndexBuffer(buf, indices, 0, indexType)
}

// CmdDraw draws vertices from the bound vertex buffer.
func (s *State) CmdDraw(buf CmdBuffer, vertices, instances int) {
	s.driver.CmdDraw(buf, vertices, instances, 0, 0)
}

// CmdDrawIndexed draws indices from the bound index buffer.
func (s *State) CmdDrawIndexed(buf CmdBuffer, indices, instances int) {
	s.driver.CmdDrawIndexed(buf, indices, instances, 0, 0, 0)
}

// Submit submits buf to the queue of the given family and waits until the
// queue is idle.
func (s *State) Submit(buf CmdBuffer, queue int) error {
	q := s.Queue(queue)
	if err := s.driver.QueueSubmit(q, Fence{}, buf); err != nil {
		return errors.Wrap(err, "queue submit")
	}
	return s.driver.QueueWaitIdle(q)
}
