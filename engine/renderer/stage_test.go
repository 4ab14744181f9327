package renderer

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

func TestStageOrderLayout(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)

	root := r.RegisterStage("shadow", 0)
	child := r.RegisterStage("opaque", root)
	grand := r.RegisterStage("transparent", child)

	tests := []struct {
		stage metadata.Stage
		depth int
		order uint16
	}{
		{root, 0, 0},
		{child, 1, 1<<10 | 1},
		{grand, 2, 2<<10 | 2},
	}
	for _, tt := range tests {
		if got := r.StageDepth(tt.stage); got != tt.depth {
			t.Errorf("StageDepth(%d) = %d, want %d", tt.stage, got, tt.depth)
		}
		if got := r.StageOrder(tt.stage); got != tt.order {
			t.Errorf("StageOrder(%d) = %#x, want %#x", tt.stage, got, tt.order)
		}
	}
	if r.StageParent(grand) != child {
		t.Errorf("StageParent(grand) = %d", r.StageParent(grand))
	}
	if !r.StageEnabled(grand) {
		t.Error("new stage should be enabled")
	}
}

func TestStageDepthLimit(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)

	parent := metadata.Stage(0)
	for depth := 0; depth < MaxStageDepth; depth++ {
		parent = r.RegisterStage(fmt.Sprintf("level%d", depth), parent)
		if got := r.StageDepth(parent); got != depth {
			t.Fatalf("depth of level%d = %d", depth, got)
		}
	}
	expectPanic(t, core.ErrContract, func() {
		r.RegisterStage("too-deep", parent)
	})
}

func TestRegisterStageContract(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		r, _, _ := newTestRenderer(t, 1)
		expectPanic(t, core.ErrContract, func() { r.RegisterStage("", 0) })
	})
	t.Run("unknown parent", func(t *testing.T) {
		r, _, _ := newTestRenderer(t, 1)
		expectPanic(t, core.ErrContract, func() { r.RegisterStage("orphan", 7) })
	})
	t.Run("capacity", func(t *testing.T) {
		r, _, _ := newTestRenderer(t, 1)
		for i := 0; i < MaxStages; i++ {
			r.RegisterStage(fmt.Sprintf("s%d", i), 0)
		}
		if r.StageCount() != MaxStages {
			t.Fatalf("StageCount() = %d", r.StageCount())
		}
		expectPanic(t, core.ErrContract, func() { r.RegisterStage("one-too-many", 0) })
	})
}

func TestFindStage(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)
	shadow := r.RegisterStage("shadow", 0)
	long := r.RegisterStage(strings.Repeat("x", 40), 0)

	if got := r.FindStage("shadow"); got != shadow {
		t.Errorf("FindStage(shadow) = %d, want %d", got, shadow)
	}
	if got := r.FindStage("missing"); got != metadata.InvalidStage {
		t.Errorf("FindStage(missing) = %d, want InvalidStage", got)
	}
	if got := r.FindStage(strings.Repeat("x", 40)); got != long {
		t.Errorf("FindStage(long name) = %d, want %d", got, long)
	}
	if got := r.StageName(long); len(got) != stageNameSize-1 {
		t.Errorf("long name kept %d bytes, want %d", len(got), stageNameSize-1)
	}
}

func TestStageNameMultiByteTruncation(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)
	name := strings.Repeat("é", 20)
	s := r.RegisterStage(name, 0)

	got := r.StageName(s)
	if !utf8.ValidString(got) {
		t.Errorf("stage name %q is not valid UTF-8", got)
	}
	if got != strings.Repeat("é", 15) {
		t.Errorf("stage name = %q (%d bytes)", got, len(got))
	}
	if found := r.FindStage(name); found != s {
		t.Errorf("FindStage(full name) = %d, want %d", found, s)
	}
	if found := r.FindStage(got); found != s {
		t.Errorf("FindStage(stored name) = %d, want %d", found, s)
	}
}

func TestStageChildrenHeadInsertion(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)
	root := r.RegisterStage("root", 0)
	a := r.RegisterStage("a", root)
	b := r.RegisterStage("b", root)

	got := r.StageChildren(root)
	if len(got) != 2 || got[0] != b || got[1] != a {
		t.Errorf("StageChildren = %v, want [%d %d]", got, b, a)
	}
}

func TestStageCascade(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)
	root := r.RegisterStage("root", 0)
	child := r.RegisterStage("child", root)
	grand := r.RegisterStage("grandchild", child)

	r.DisableStage(root)
	if r.StageEnabled(root) || r.StageEnabled(child) {
		t.Fatal("disable should reach the direct children")
	}
	if !r.StageEnabled(grand) {
		t.Fatal("disable must only cascade one level")
	}

	r.EnableStage(root)
	if !r.StageEnabled(root) || !r.StageEnabled(child) {
		t.Fatal("enable should restore the direct children")
	}

	r.DisableStage(grand)
	r.EnableStage(root)
	if r.StageEnabled(grand) {
		t.Error("grandchild disabled on its own must stay disabled after enabling the root")
	}

	r.DisableStage(child)
	r.DisableStage(root)
	r.EnableStage(root)
	if r.StageEnabled(child) {
		t.Error("child disabled on its own must stay disabled after a root disable/enable round trip")
	}
}

func TestBeginDisabledStage(t *testing.T) {
	r, be, _ := newTestRenderer(t, 1)
	s := r.RegisterStage("ui", 0)
	r.DisableStage(s)

	if r.Staged.BeginStage(0, s) {
		t.Fatal("BeginStage on a disabled stage returned true")
	}
	if feed, _ := r.PendingCommands(); feed != 0 {
		t.Errorf("disabled stage recorded %d commands", feed)
	}
	if r.StageState(s) != StageStateNone {
		t.Errorf("state = %s", r.StageState(s))
	}
	r.FrameEnd()
	if len(be.Calls()) != 0 {
		t.Errorf("backend calls = %v", be.Calls())
	}
}

func TestStageStateMachine(t *testing.T) {
	r, _, _ := newTestRenderer(t, 2)
	s := r.RegisterStage("opaque", 0)

	if !r.Staged.BeginStage(0, s) {
		t.Fatal("BeginStage failed")
	}
	if r.StageState(s) != StageStateSubmitting {
		t.Fatalf("state = %s, want submitting", r.StageState(s))
	}
	r.Staged.EndStage(0)
	if r.StageState(s) != StageStateDone {
		t.Fatalf("state = %s, want done", r.StageState(s))
	}

	expectPanic(t, core.ErrContract, func() { r.Staged.BeginStage(1, s) })

	r.FrameEnd()
	if r.StageState(s) != StageStateNone {
		t.Fatalf("state after frame end = %s, want none", r.StageState(s))
	}
	if !r.Staged.BeginStage(1, s) {
		t.Fatal("stage could not be begun again in the next frame")
	}
	r.Staged.EndStage(1)
}

func TestRegisterStagesFromConfig(t *testing.T) {
	r, _, _ := newTestRenderer(t, 1)
	handles := r.RegisterStages([]config.StageConfig{
		{Name: "shadow"},
		{Name: "opaque", Parent: "shadow"},
		{Name: "debug", Disabled: true},
	})

	if r.StageParent(handles["opaque"]) != handles["shadow"] {
		t.Error("opaque is not a child of shadow")
	}
	if r.StageEnabled(handles["debug"]) {
		t.Error("debug should be disabled")
	}
	if r.FindStage("opaque") != handles["opaque"] {
		t.Error("FindStage does not match the returned handle")
	}
}
