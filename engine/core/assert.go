package core

import (
	"fmt"
	"sync/atomic"
)

var assertionsDisabled atomic.Bool

// SetAssertions toggles contract checking. Checks are on unless turned off.
func SetAssertions(enabled bool) {
	assertionsDisabled.Store(!enabled)
}

func AssertionsEnabled() bool {
	return !assertionsDisabled.Load()
}

// Assert logs and panics with a *ContractError when cond is false and
// assertions are enabled.
func Assert(cond bool, format string, args ...interface{}) {
	if cond || assertionsDisabled.Load() {
		return
	}
	fail(ErrContract, fmt.Sprintf(format, args...))
}

// AssertErr is Assert with a specific error attached to the panic value.
func AssertErr(cond bool, err error, format string, args ...interface{}) {
	if cond || assertionsDisabled.Load() {
		return
	}
	fail(err, fmt.Sprintf(format, args...))
}

func fail(err error, msg string) {
	l := getLogger()
	l.Helper()
	l.Errorf("assertion failed: %s", msg)
	panic(&ContractError{Err: err, Msg: msg})
}
