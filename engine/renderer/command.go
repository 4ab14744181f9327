package renderer

import (
	"fmt"

	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// CommandType identifies a recorded command.
type CommandType uint8

const (
	CmdBeginDefaultPass CommandType = iota
	CmdBeginPass
	CmdApplyViewport
	CmdApplyScissorRect
	CmdApplyPipeline
	CmdApplyBindings
	CmdApplyUniforms
	CmdDraw
	CmdDispatch
	CmdEndPass
	CmdUpdateBuffer
	CmdUpdateImage
	CmdAppendBuffer
	CmdBeginProfile
	CmdEndProfile
	CmdStagePush
	CmdStagePop
	cmdCount
)

var commandTypeNames = [cmdCount]string{
	"BeginDefaultPass",
	"BeginPass",
	"ApplyViewport",
	"ApplyScissorRect",
	"ApplyPipeline",
	"ApplyBindings",
	"ApplyUniforms",
	"Draw",
	"Dispatch",
	"EndPass",
	"UpdateBuffer",
	"UpdateImage",
	"AppendBuffer",
	"BeginProfile",
	"EndProfile",
	"StagePush",
	"StagePop",
}

func (t CommandType) String() string {
	if t < cmdCount {
		return commandTypeNames[t]
	}
	return fmt.Sprintf("CommandType(%d)", uint8(t))
}

// command is one recorded call. Variable sized arguments are stored in the
// owning buffer's parameter arena and referenced by span.
type command interface {
	Type() CommandType
}

type beginDefaultPassCmd struct {
	action        metadata.PassAction
	width, height int
}

type beginPassCmd struct {
	pass   metadata.Pass
	action metadata.PassAction
}

type applyViewportCmd struct {
	x, y, width, height int
	originTopLeft       bool
}

type applyScissorRectCmd struct {
	x, y, width, height int
	originTopLeft       bool
}

type applyPipelineCmd struct {
	pip metadata.Pipeline
}

type applyBindingsCmd struct {
	bind metadata.Bindings
}

type applyUniformsCmd struct {
	stage   metadata.ShaderStage
	ubIndex int
	data    span
}

type drawCmd struct {
	baseElement, numElements, numInstances int
}

type dispatchCmd struct {
	x, y, z int
}

type endPassCmd struct{}

type updateBufferCmd struct {
	buf  metadata.Buffer
	data span
}

type subimageSpan struct {
	face, mip int
	data      span
}

type updateImageCmd struct {
	img       metadata.Image
	subimages []subimageSpan
}

type appendBufferCmd struct {
	buf    metadata.Buffer
	offset int
	data   span
}

type beginProfileCmd struct {
	name span
}

type endProfileCmd struct{}

type stagePushCmd struct {
	name span
}

type stagePopCmd struct{}

func (*beginDefaultPassCmd) Type() CommandType { return CmdBeginDefaultPass }
func (*beginPassCmd) Type() CommandType        { return CmdBeginPass }
func (*applyViewportCmd) Type() CommandType    { return CmdApplyViewport }
func (*applyScissorRectCmd) Type() CommandType { return CmdApplyScissorRect }
func (*applyPipelineCmd) Type() CommandType    { return CmdApplyPipeline }
func (*applyBindingsCmd) Type() CommandType    { return CmdApplyBindings }
func (*applyUniformsCmd) Type() CommandType    { return CmdApplyUniforms }
func (*drawCmd) Type() CommandType             { return CmdDraw }
func (*dispatchCmd) Type() CommandType         { return CmdDispatch }
func (endPassCmd) Type() CommandType           { return CmdEndPass }
func (*updateBufferCmd) Type() CommandType     { return CmdUpdateBuffer }
func (*updateImageCmd) Type() CommandType      { return CmdUpdateImage }
func (*appendBufferCmd) Type() CommandType     { return CmdAppendBuffer }
func (*beginProfileCmd) Type() CommandType     { return CmdBeginProfile }
func (endProfileCmd) Type() CommandType        { return CmdEndProfile }
func (*stagePushCmd) Type() CommandType        { return CmdStagePush }
func (stagePopCmd) Type() CommandType          { return CmdStagePop }
