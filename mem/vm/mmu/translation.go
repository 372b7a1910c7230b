package mmu

import (
	"github.com/sarchlab/vmmgr/mem/vm"
)

// TranslationKind tells which structure resolved a translation.
type TranslationKind int

// The ways a translation can be resolved.
const (
	TLBHit TranslationKind = iota
	PageTableHit
	PageFault
)

func (k TranslationKind) String() string {
	switch k {
	case TLBHit:
		return "tlb-hit"
	case PageTableHit:
		return "page-table-hit"
	case PageFault:
		return "page-fault"
	default:
		return "unknown"
	}
}

// A Translation is the result of resolving one logical address.
type Translation struct {
	Logical  vm.LogicalAddress
	Page     vm.PageNumber
	Offset   vm.Offset
	Frame    vm.FrameNumber
	Physical uint32
	Value    int8
	Kind     TranslationKind
}
