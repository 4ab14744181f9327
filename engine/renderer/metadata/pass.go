package metadata

/** @brief What happens to an attachment at the start of a pass. */
type Action int

const (
	ActionDefault Action = iota
	ActionClear
	ActionLoad
	ActionDontCare
)

type ColorAttachmentAction struct {
	Action Action
	Value  [4]float32
}

type DepthAttachmentAction struct {
	Action Action
	Value  float32
}

type StencilAttachmentAction struct {
	Action Action
	Value  uint8
}

/** @brief Load actions applied when a pass begins. */
type PassAction struct {
	Colors  [MaxColorAttachments]ColorAttachmentAction
	Depth   DepthAttachmentAction
	Stencil StencilAttachmentAction
}

type AttachmentDesc struct {
	Image    Image
	MipLevel int
	Layer    int
}

/** @brief Describes an offscreen render pass. */
type PassDesc struct {
	ColorAttachments       [MaxColorAttachments]AttachmentDesc
	DepthStencilAttachment AttachmentDesc
	Label                  string
}

// Images returns every valid attachment image.
func (d *PassDesc) Images() []Image {
	var imgs []Image
	for _, a := range d.ColorAttachments {
		if a.Image.Valid() {
			imgs = append(imgs, a.Image)
		}
	}
	if d.DepthStencilAttachment.Image.Valid() {
		imgs = append(imgs, d.DepthStencilAttachment.Image)
	}
	return imgs
}
