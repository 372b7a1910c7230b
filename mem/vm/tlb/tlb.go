// Package tlb provides a fully associative translation lookaside buffer that
// caches page to frame mappings.
package tlb

import (
	"github.com/sarchlab/vmmgr/mem/vm"
	"github.com/sarchlab/vmmgr/mem/vm/tlb/internal"
	"github.com/sarchlab/vmmgr/sim"
)

// Entry is a cached page to frame mapping.
type Entry = internal.Entry

// HookPosEvict marks that an entry is evicted to make room for another page.
// The evicted Entry is the hook item.
var HookPosEvict = &sim.HookPos{Name: "TLBEvict"}

// Comp is a cache(TLB) that maintains some page information.
type Comp struct {
	*sim.HookableBase

	name       string
	numEntries int

	set internal.Set
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// Capacity returns the maximum number of entries the TLB holds.
func (c *Comp) Capacity() int {
	return c.numEntries
}

// Len returns the number of valid entries.
func (c *Comp) Len() int {
	return c.set.NumValid()
}

// Entries returns the valid entries ordered by slot.
func (c *Comp) Entries() []Entry {
	return c.set.Entries()
}

// Lookup returns the frame that the page is mapped to. On a hit, the entry
// becomes the most recently used one.
func (c *Comp) Lookup(page vm.PageNumber) (vm.FrameNumber, bool) {
	wayID, entry, found := c.set.Lookup(page)
	if !found {
		return 0, false
	}

	c.set.Visit(wayID)

	return entry.FrameNumber, true
}

// Insert caches the mapping as the most recently used entry. When the TLB is
// full, the least recently used entry is evicted and returned.
func (c *Comp) Insert(
	page vm.PageNumber,
	frame vm.FrameNumber,
) (evicted Entry, didEvict bool) {
	wayID, _, found := c.set.Lookup(page)
	if !found {
		wayID, evicted, didEvict = c.set.FindVictim()
	}

	c.set.Update(wayID, Entry{PageNumber: page, FrameNumber: frame})
	c.set.Visit(wayID)

	if didEvict {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosEvict,
			Item:   evicted,
		})
	}

	return evicted, didEvict
}

