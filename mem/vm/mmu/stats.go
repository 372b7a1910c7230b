package mmu

// Stats counts how the translations of a run were resolved.
type Stats struct {
	NumAddresses     uint64
	NumTLBHits       uint64
	NumPageTableHits uint64
	NumPageFaults    uint64
	NumTLBEvictions  uint64
}

// PageFaultRate returns the percentage of addresses that caused a page fault.
func (s Stats) PageFaultRate() float64 {
	return percentage(s.NumPageFaults, s.NumAddresses)
}

// TLBHitRate returns the percentage of addresses resolved by the TLB. Page
// table hits are not counted.
func (s Stats) TLBHitRate() float64 {
	return percentage(s.NumTLBHits, s.NumAddresses)
}

func percentage(n, total uint64) float64 {
	if total == 0 {
		return 0
	}

	return float64(n) / float64(total) * 100
}
