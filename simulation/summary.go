package simulation

import (
	"fmt"
	"io"

	"github.com/sarchlab/vmmgr/mem/vm/mmu"
)

// Summary reports the outcome of a run.
type Summary struct {
	Stats mmu.Stats

	PageFaultRate float64
	TLBHitRate    float64
}

// NewSummary computes the rates of the stats.
func NewSummary(stats mmu.Stats) Summary {
	return Summary{
		Stats:         stats,
		PageFaultRate: stats.PageFaultRate(),
		TLBHitRate:    stats.TLBHitRate(),
	}
}

// PrintSummary writes the two rates of the run.
func PrintSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w,
		"\nPage-fault rate: %f%%\nTLB hit rate: %f%%\n",
		s.PageFaultRate, s.TLBHitRate)

	return err
}
