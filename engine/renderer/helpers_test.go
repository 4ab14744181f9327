package renderer

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/headless"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

type testJobs int

func (n testJobs) ThreadCount() int { return int(n) }

func newTestRenderer(t *testing.T, threads int) (*Renderer, *headless.Backend, *core.FrameClock) {
	t.Helper()
	be := headless.New()
	clock := core.NewFrameClock()
	r, err := New(be, testJobs(threads), clock)
	if err != nil {
		t.Fatal(err)
	}
	be.ResetCalls()
	return r, be, clock
}

// expectPanic fails the test unless fn panics with an error matching target.
// It returns the recovered error.
func expectPanic(t *testing.T, target error, fn func()) (err error) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		if rec == nil {
			t.Fatalf("expected a panic matching %v", target)
		}
		var ok bool
		err, ok = rec.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic = %v, want %v", rec, target)
		}
	}()
	fn()
	return nil
}

// callsWithPrefix filters the backend call log.
func callsWithPrefix(be *headless.Backend, prefix string) []string {
	var out []string
	for _, c := range be.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
