package mmu

import (
	"log/slog"

	"github.com/sarchlab/vmmgr/mem/backingstore"
	"github.com/sarchlab/vmmgr/mem/vm"
	"github.com/sarchlab/vmmgr/mem/vm/tlb"
	"github.com/sarchlab/vmmgr/memory"
	"github.com/sarchlab/vmmgr/sim"
)

// A Builder can build MMU component
type Builder struct {
	numTLBEntries int
	numFrames     int
	tlb           *tlb.Comp
	pageTable     vm.PageTable
	backingStore  backingstore.Store
	logger        *slog.Logger
}

// MakeBuilder creates a new builder
func MakeBuilder() Builder {
	return Builder{
		numTLBEntries: 16,
		numFrames:     vm.NumPages,
	}
}

// WithNumTLBEntries sets the number of entries of the TLB that the builder
// creates. It is ignored if a TLB is given with WithTLB.
func (b Builder) WithNumTLBEntries(n int) Builder {
	b.numTLBEntries = n
	return b
}

// WithNumFrames sets the number of frames of the physical memory. A memory
// smaller than the address space can run out of frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithTLB sets the TLB that the MMU uses.
func (b Builder) WithTLB(t *tlb.Comp) Builder {
	b.tlb = t
	return b
}

// WithPageTable sets the page table that the MMU uses.
func (b Builder) WithPageTable(pageTable vm.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// WithBackingStore sets the store that pages are loaded from.
func (b Builder) WithBackingStore(store backingstore.Store) Builder {
	b.backingStore = store
	return b
}

// WithLogger sets the logger for diagnostics. slog.Default is used if not
// set.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.backingStore == nil {
		panic("backing store is not set")
	}
}

// Build returns a newly created MMU component
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)
	b.parametersMustBeValid()

	mmu := &Comp{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		logger:       b.logger,
		tlb:          b.tlb,
		pageTable:    b.pageTable,
		framePool:    memory.NewFramePool(b.numFrames),
		storage:      memory.NewStorage(b.numFrames),
		backingStore: b.backingStore,
	}

	if mmu.logger == nil {
		mmu.logger = slog.Default()
	}

	if mmu.tlb == nil {
		mmu.tlb = tlb.MakeBuilder().
			WithNumEntries(b.numTLBEntries).
			Build(name + ".TLB")
	}

	if mmu.pageTable == nil {
		mmu.pageTable = vm.NewPageTable()
	}

	return mmu
}
