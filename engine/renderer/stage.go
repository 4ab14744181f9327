package renderer

import (
	"hash/fnv"
	"sync"
	"unicode/utf8"

	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

const (
	MaxStages = config.MaxStages
	// MaxStageDepth is the number of nesting levels the order key can encode.
	MaxStageDepth = 64

	stageOrderDepthMask  = 0xfc00
	stageOrderDepthShift = 10
	stageOrderIndexMask  = 0x03ff
	stageNameSize        = 32
)

type StageState int

const (
	StageStateNone StageState = iota
	StageStateSubmitting
	StageStateDone
)

func (s StageState) String() string {
	switch s {
	case StageStateNone:
		return "none"
	case StageStateSubmitting:
		return "submitting"
	case StageStateDone:
		return "done"
	}
	return "unknown"
}

type stage struct {
	name     string
	nameHash uint32
	state    StageState
	parent   metadata.Stage
	// depth in the high 6 bits, registration index in the low 10 bits
	order         uint16
	enabled       bool
	singleEnabled bool
}

func (s *stage) depth() int {
	return int(s.order&stageOrderDepthMask) >> stageOrderDepthShift
}

type stageGraph struct {
	mu       sync.Mutex
	stages   []stage
	children map[metadata.Stage][]metadata.Stage
}

func newStageGraph() *stageGraph {
	return &stageGraph{
		stages:   make([]stage, 0, 32),
		children: make(map[metadata.Stage][]metadata.Stage),
	}
}

// truncateStageName cuts name to fit a stage name buffer without splitting
// a multi-byte character.
func truncateStageName(name string) string {
	n := stageNameSize - 1
	if len(name) <= n {
		return name
	}
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}

func hashStageName(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}

func stageOrder(depth, index int) uint16 {
	return uint16(depth<<stageOrderDepthShift) | uint16(index&stageOrderIndexMask)
}

// get must be called with mu held.
func (g *stageGraph) get(s metadata.Stage) *stage {
	core.Assert(s.Valid() && int(s) <= len(g.stages), "invalid stage handle %d", s)
	return &g.stages[s-1]
}

// RegisterStage adds a stage below parent (0 for a root stage) and returns
// its handle. New stages start enabled.
func (r *Renderer) RegisterStage(name string, parent metadata.Stage) metadata.Stage {
	g := r.stages
	core.Assert(name != "", "stage name must not be empty")
	core.Assert(parent == 0 || parent.Valid(), "invalid parent stage")

	name = truncateStageName(name)

	g.mu.Lock()
	defer g.mu.Unlock()

	index := len(g.stages)
	core.Assert(index < MaxStages, "maximum stages (%d) exceeded", MaxStages)
	core.Assert(int(parent) <= len(g.stages), "parent stage %d is not registered", parent)

	depth := 0
	if parent != 0 {
		depth = g.stages[parent-1].depth() + 1
	}
	core.Assert(depth < MaxStageDepth, "stage '%s' is nested too deep (depth %d, maximum %d)", name, depth, MaxStageDepth-1)

	g.stages = append(g.stages, stage{
		name:          name,
		nameHash:      hashStageName(name),
		parent:        parent,
		order:         stageOrder(depth, index),
		enabled:       true,
		singleEnabled: true,
	})
	handle := metadata.Stage(index + 1)
	if parent != 0 {
		g.children[parent] = append([]metadata.Stage{handle}, g.children[parent]...)
	}
	return handle
}

// RegisterStages registers a declared stage tree. Parents must precede their
// children. Stages flagged as disabled are disabled after registration.
func (r *Renderer) RegisterStages(stages []config.StageConfig) map[string]metadata.Stage {
	handles := make(map[string]metadata.Stage, len(stages))
	for _, sc := range stages {
		var parent metadata.Stage
		if sc.Parent != "" {
			p, ok := handles[sc.Parent]
			core.Assert(ok, "stage '%s' references undeclared parent '%s'", sc.Name, sc.Parent)
			parent = p
		}
		handles[sc.Name] = r.RegisterStage(sc.Name, parent)
	}
	for _, sc := range stages {
		if sc.Disabled {
			r.DisableStage(handles[sc.Name])
		}
	}
	return handles
}

// EnableStage enables s and restores every direct child to its own enable flag.
func (r *Renderer) EnableStage(s metadata.Stage) {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.get(s)
	st.enabled = true
	st.singleEnabled = true
	for _, child := range g.children[s] {
		c := g.get(child)
		c.enabled = c.singleEnabled
	}
}

// DisableStage disables s and its direct children. The children keep their
// own enable flag so a later EnableStage on s restores them.
func (r *Renderer) DisableStage(s metadata.Stage) {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.get(s)
	st.enabled = false
	st.singleEnabled = false
	for _, child := range g.children[s] {
		g.get(child).enabled = false
	}
}

func (r *Renderer) StageEnabled(s metadata.Stage) bool {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.get(s).enabled
}

// FindStage looks a stage up by name. It returns metadata.InvalidStage when
// no stage has that name.
func (r *Renderer) FindStage(name string) metadata.Stage {
	hash := hashStageName(truncateStageName(name))

	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.stages {
		if g.stages[i].nameHash == hash && g.stages[i].name == name {
			return metadata.Stage(i + 1)
		}
	}
	return metadata.InvalidStage
}

func (r *Renderer) StageName(s metadata.Stage) string {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.get(s).name
}

func (r *Renderer) StageOrder(s metadata.Stage) uint16 {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.get(s).order
}

func (r *Renderer) StageDepth(s metadata.Stage) int {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.get(s).depth()
}

func (r *Renderer) StageParent(s metadata.Stage) metadata.Stage {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.get(s).parent
}

func (r *Renderer) StageState(s metadata.Stage) StageState {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.get(s).state
}

// StageChildren returns the direct children of s, most recently registered first.
func (r *Renderer) StageChildren(s metadata.Stage) []metadata.Stage {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	g.get(s)
	return append([]metadata.Stage(nil), g.children[s]...)
}

func (r *Renderer) StageCount() int {
	g := r.stages
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.stages)
}

// begin moves s to Submitting and returns its name and order. ok is
// false when the stage is disabled.
func (g *stageGraph) begin(s metadata.Stage) (name string, order uint16, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.get(s)
	core.Assert(st.state == StageStateNone, "stage '%s' already submitted this frame (state %s)", st.name, st.state)
	if !st.enabled {
		return st.name, st.order, false
	}
	st.state = StageStateSubmitting
	return st.name, st.order, true
}

func (g *stageGraph) end(s metadata.Stage) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.get(s)
	core.Assert(st.state == StageStateSubmitting, "stage '%s' ended without being begun (state %s)", st.name, st.state)
	st.state = StageStateDone
}

// validate reports every Done stage whose parent is not Done.
func (g *stageGraph) validate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.stages {
		st := &g.stages[i]
		if st.state != StageStateDone || st.parent == 0 {
			continue
		}
		p := &g.stages[st.parent-1]
		if p.state != StageStateDone {
			core.LogError("trying to execute stage '%s' that depends on '%s', but '%s' is not rendered",
				st.name, p.name, p.name)
			core.AssertErr(false, core.ErrStageDependency, "stage '%s' depends on '%s'", st.name, p.name)
		}
	}
}

func (g *stageGraph) resetStates() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.stages {
		g.stages[i].state = StageStateNone
	}
}
