package renderer

// span addresses a payload inside a parameter buffer. Offsets stay valid
// when the arena grows.
type span struct {
	offset int
	size   int
}

// paramBuffer is the per command buffer arena holding variable sized
// command payloads until the buffer is executed.
type paramBuffer struct {
	data []byte
}

func (p *paramBuffer) len() int {
	return len(p.data)
}

// alloc reserves size bytes and returns the span and a writable view of it.
func (p *paramBuffer) alloc(size int) (span, []byte) {
	offset := len(p.data)
	end := offset + alignUp(size, naturalAlignment)
	if end > cap(p.data) {
		grown := make([]byte, offset, max(end, 2*cap(p.data), 4096))
		copy(grown, p.data)
		p.data = grown
	}
	p.data = p.data[:end]
	return span{offset: offset, size: size}, p.data[offset : offset+size : offset+size]
}

func (p *paramBuffer) write(b []byte) span {
	s, dst := p.alloc(len(b))
	copy(dst, b)
	return s
}

func (p *paramBuffer) writeString(str string) span {
	s, dst := p.alloc(len(str))
	copy(dst, str)
	return s
}

func (p *paramBuffer) bytes(s span) []byte {
	return p.data[s.offset : s.offset+s.size : s.offset+s.size]
}

func (p *paramBuffer) string(s span) string {
	return string(p.bytes(s))
}

// reset empties the arena and keeps its memory for the next frame.
func (p *paramBuffer) reset() {
	p.data = p.data[:0]
}
