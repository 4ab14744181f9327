package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out small integer ids, reusing released slots first.
// Id 0 is never returned so it can stand for "invalid".
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
	free   []uint32
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 1, capacity+1),
	}
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Existing free spot. Take it.
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		p.owners[id] = owner
		return id
	}

	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Release(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == 0 || int(id) >= len(p.owners) {
		return fmt.Errorf("identifier: id '%d' out of range (max=%d). Nothing was done", id, len(p.owners)-1)
	}
	if p.owners[id] == nil {
		return fmt.Errorf("identifier: id '%d' already released", id)
	}
	p.owners[id] = nil
	p.free = append(p.free, id)
	return nil
}

// Owner returns what was registered with id, or nil.
func (p *IdentifierPool) Owner(id uint32) interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(id) >= len(p.owners) {
		return nil
	}
	return p.owners[id]
}

// Len returns the number of live ids.
func (p *IdentifierPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.owners) - 1 - len(p.free)
}
