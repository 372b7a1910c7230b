// Package mmu resolves logical addresses of the simulated process to bytes of
// physical memory.
package mmu

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/vmmgr/mem/backingstore"
	"github.com/sarchlab/vmmgr/mem/vm"
	"github.com/sarchlab/vmmgr/mem/vm/tlb"
	"github.com/sarchlab/vmmgr/memory"
	"github.com/sarchlab/vmmgr/sim"
)

// HookPosTranslationDone marks that a logical address has been resolved. The
// Translation is the hook item.
var HookPosTranslationDone = &sim.HookPos{Name: "TranslationDone"}

// Comp is the translation engine of one run. It owns the TLB, the page table,
// the free frame pool and the physical memory, and fills memory from the
// backing store on page faults.
//
// A Comp is not safe for concurrent use.
type Comp struct {
	*sim.HookableBase

	name   string
	logger *slog.Logger

	tlb          *tlb.Comp
	pageTable    vm.PageTable
	framePool    *memory.FramePool
	storage      *memory.Storage
	backingStore backingstore.Store

	stats Stats
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// TLB returns the TLB of the MMU.
func (c *Comp) TLB() *tlb.Comp {
	return c.tlb
}

// PageTable returns the page table of the MMU.
func (c *Comp) PageTable() vm.PageTable {
	return c.pageTable
}

// FramePool returns the pool that the MMU allocates frames from.
func (c *Comp) FramePool() *memory.FramePool {
	return c.framePool
}

// Storage returns the physical memory.
func (c *Comp) Storage() *memory.Storage {
	return c.storage
}

// Stats returns the counters collected so far.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Translate resolves a logical address.
func (c *Comp) Translate(addr vm.LogicalAddress) (Translation, error) {
	page, offset := vm.Decompose(addr)
	return c.TranslatePage(page, offset)
}

// TranslatePage resolves the offset within the page. It consults the TLB
// first, then the page table, and loads the page from the backing store if
// neither has it.
func (c *Comp) TranslatePage(
	page vm.PageNumber,
	offset vm.Offset,
) (Translation, error) {
	c.stats.NumAddresses++

	if frame, found := c.tlb.Lookup(page); found {
		c.stats.NumTLBHits++
		return c.complete(page, offset, frame, TLBHit)
	}

	if entry, found := c.pageTable.Find(page); found {
		c.stats.NumPageTableHits++

		t, err := c.complete(page, offset, entry.FrameNumber, PageTableHit)
		if err != nil {
			return t, err
		}

		c.insertIntoTLB(page, entry.FrameNumber)

		return t, nil
	}

	return c.handlePageFault(page, offset)
}

func (c *Comp) handlePageFault(
	page vm.PageNumber,
	offset vm.Offset,
) (Translation, error) {
	c.stats.NumPageFaults++

	frame, err := c.framePool.Allocate()
	if err != nil {
		return Translation{}, fmt.Errorf("page fault on page %d: %w", page, err)
	}

	data, err := c.backingStore.ReadPage(page)
	if err != nil {
		return Translation{}, fmt.Errorf("page fault on page %d: %w", page, err)
	}

	err = c.storage.WriteFrame(frame, data)
	if err != nil {
		return Translation{}, fmt.Errorf("page fault on page %d: %w", page, err)
	}

	err = c.pageTable.MarkValid(page, frame)
	if err != nil {
		return Translation{}, fmt.Errorf("page fault on page %d: %w", page, err)
	}

	c.logger.Debug("page fault",
		"mmu", c.name,
		"page", page,
		"frame", frame,
	)

	c.insertIntoTLB(page, frame)

	return c.complete(page, offset, frame, PageFault)
}

func (c *Comp) insertIntoTLB(page vm.PageNumber, frame vm.FrameNumber) {
	evicted, didEvict := c.tlb.Insert(page, frame)
	if !didEvict {
		return
	}

	c.stats.NumTLBEvictions++

	c.logger.Debug("tlb eviction",
		"mmu", c.name,
		"page", page,
		"evicted_page", evicted.PageNumber,
		"evicted_recency", evicted.Recency,
	)
}

func (c *Comp) complete(
	page vm.PageNumber,
	offset vm.Offset,
	frame vm.FrameNumber,
	kind TranslationKind,
) (Translation, error) {
	value, err := c.storage.ReadSignedByte(frame, offset)
	if err != nil {
		return Translation{}, fmt.Errorf("page %d frame %d: %w", page, frame, err)
	}

	t := Translation{
		Logical:  vm.LogicalAddress(uint16(page)<<vm.Log2PageSize | uint16(offset)),
		Page:     page,
		Offset:   offset,
		Frame:    frame,
		Physical: vm.PhysicalAddress(frame, offset),
		Value:    value,
		Kind:     kind,
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTranslationDone,
		Item:   t,
	})

	return t, nil
}
