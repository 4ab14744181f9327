package renderer

import (
	"sort"
	"sync"
	"testing"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

func TestAppendBufferConcurrent(t *testing.T) {
	const (
		slots  = 4
		chunks = 32
		chunk  = 16
	)
	r, be, _ := newTestRenderer(t, slots)
	buf := r.MakeBuffer(&metadata.BufferDesc{Size: slots * chunks * chunk, Usage: metadata.UsageStream})

	stages := make([]metadata.Stage, slots)
	for i := range stages {
		stages[i] = r.RegisterStage("writer"+string(rune('a'+i)), 0)
	}

	type rng struct{ offset, slot int }
	var (
		mu     sync.Mutex
		ranges []rng
		wg     sync.WaitGroup
	)
	for slot := 0; slot < slots; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			data := make([]byte, chunk)
			for i := range data {
				data[i] = byte(slot + 1)
			}
			r.Staged.BeginStage(slot, stages[slot])
			for i := 0; i < chunks; i++ {
				off := r.Staged.AppendBuffer(slot, buf, data)
				mu.Lock()
				ranges = append(ranges, rng{off, slot})
				mu.Unlock()
			}
			r.Staged.EndStage(slot)
		}(slot)
	}
	wg.Wait()

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].offset < ranges[j].offset })
	for i, rg := range ranges {
		if rg.offset != i*chunk {
			t.Fatalf("range %d starts at %d, want %d: appends overlap or leave gaps", i, rg.offset, i*chunk)
		}
	}

	r.FrameEnd()
	contents := be.BufferData(buf)
	for _, rg := range ranges {
		for i := 0; i < chunk; i++ {
			if contents[rg.offset+i] != byte(rg.slot+1) {
				t.Fatalf("byte %d = %d, want %d", rg.offset+i, contents[rg.offset+i], rg.slot+1)
			}
		}
	}
}

func TestAppendBufferOverflow(t *testing.T) {
	r, _, _ := newTestRenderer(t, 3)
	buf := r.MakeBuffer(&metadata.BufferDesc{Size: 256, Usage: metadata.UsageStream})
	a := r.RegisterStage("a", 0)
	b := r.RegisterStage("b", 0)
	c := r.RegisterStage("c", 0)
	data := make([]byte, 100)

	var wg sync.WaitGroup
	offsets := make([]int, 2)
	for i, s := range []metadata.Stage{a, b} {
		wg.Add(1)
		go func(slot int, s metadata.Stage) {
			defer wg.Done()
			r.Staged.BeginStage(slot, s)
			offsets[slot] = r.Staged.AppendBuffer(slot, buf, data)
			r.Staged.EndStage(slot)
		}(i, s)
	}
	wg.Wait()

	sort.Ints(offsets)
	if offsets[0] != 0 || offsets[1] != 100 {
		t.Fatalf("offsets = %v, want [0 100]", offsets)
	}

	r.Staged.BeginStage(2, c)
	expectPanic(t, core.ErrContract, func() { r.Staged.AppendBuffer(2, buf, data) })
}

func TestAppendBufferRequiresStreamUsage(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)
	buf := r.MakeBuffer(&metadata.BufferDesc{Size: 64, Usage: metadata.UsageDynamic})
	s := r.RegisterStage("main", 0)

	r.Staged.BeginStage(0, s)
	expectPanic(t, core.ErrContract, func() { r.Staged.AppendBuffer(0, buf, []byte{1}) })
}

func TestStreamOffsetsResetEachFrame(t *testing.T) {
	r, _, clock := newTestRenderer(t, 1)
	buf := r.AllocBuffer()
	r.InitBuffer(buf, &metadata.BufferDesc{Size: 128, Usage: metadata.UsageStream})
	s := r.RegisterStage("main", 0)

	for frame := 0; frame < 3; frame++ {
		r.Staged.BeginStage(0, s)
		if off := r.Staged.AppendBuffer(0, buf, make([]byte, 100)); off != 0 {
			t.Fatalf("frame %d: first append at %d, want 0", frame, off)
		}
		r.Staged.EndStage(0)
		r.FrameEnd()
		clock.Advance()
	}
}
