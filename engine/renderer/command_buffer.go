package renderer

import (
	"math"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// commandRef places one command in the global replay order.
type commandRef struct {
	// stage order in the high 16 bits, per buffer command index in the low 16
	key    uint32
	buffer int
	// arena offset at record time, checked against the payload at replay
	params int
	cmd    command
}

func commandKey(order, cmdIdx uint16) uint32 {
	return uint32(order)<<16 | uint32(cmdIdx)
}

// commandBuffer is owned by one worker slot. Only that worker records into
// it, only slot 0 executes it.
type commandBuffer struct {
	index        int
	params       paramBuffer
	refs         []commandRef
	runningStage metadata.Stage
	stageOrder   uint16
	cmdIdx       uint16
}

func newCommandBuffer(index int) *commandBuffer {
	return &commandBuffer{
		index: index,
		refs:  make([]commandRef, 0, 256),
	}
}

func (cb *commandBuffer) push(cmd command, params int) {
	core.Assert(cb.cmdIdx < math.MaxUint16, "too many commands recorded in slot %d in one frame", cb.index)
	cb.refs = append(cb.refs, commandRef{
		key:    commandKey(cb.stageOrder, cb.cmdIdx),
		buffer: cb.index,
		params: params,
		cmd:    cmd,
	})
	cb.cmdIdx++
}

func (cb *commandBuffer) reset() {
	cb.params.reset()
	clear(cb.refs)
	cb.refs = cb.refs[:0]
	cb.cmdIdx = 0
}

func (cb *commandBuffer) pending() int {
	return len(cb.refs)
}
