package tlb

import (
	"github.com/sarchlab/vmmgr/mem/vm/tlb/internal"
	"github.com/sarchlab/vmmgr/sim"
)

// A Builder can build TLBs
type Builder struct {
	numEntries int
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{
		numEntries: 16,
	}
}

// WithNumEntries sets the number of entries the TLB can hold.
func (b Builder) WithNumEntries(n int) Builder {
	b.numEntries = n
	return b
}

// Build creates a new TLB
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	if b.numEntries <= 0 {
		panic("a TLB must have at least one entry")
	}

	tlb := &Comp{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		numEntries:   b.numEntries,
	}
	tlb.set = internal.NewSet(b.numEntries)

	return tlb
}
