package memory

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmmgr/mem/vm"
)

// ErrFrameExhausted is returned when every frame is already in use. The
// address space and the physical memory have the same number of pages, so a
// correct run never sees it.
var ErrFrameExhausted = errors.New("no free frame")

// A FramePool tracks which frames of the physical memory are unused. Frames
// are never returned to the pool.
type FramePool struct {
	free    []bool
	numFree int
}

// NewFramePool creates a pool with every frame free.
func NewFramePool(numFrames int) *FramePool {
	if numFrames <= 0 || numFrames > vm.NumPages {
		panic(fmt.Sprintf("number of frames must be in (0, %d]", vm.NumPages))
	}

	p := &FramePool{
		free:    make([]bool, numFrames),
		numFree: numFrames,
	}

	for i := range p.free {
		p.free[i] = true
	}

	return p
}

// Allocate claims the free frame with the lowest index.
func (p *FramePool) Allocate() (vm.FrameNumber, error) {
	for i, free := range p.free {
		if free {
			p.free[i] = false
			p.numFree--

			return vm.FrameNumber(i), nil
		}
	}

	return 0, fmt.Errorf("%d frames in use: %w", len(p.free), ErrFrameExhausted)
}

// IsFree tells if the frame has not been allocated.
func (p *FramePool) IsFree(frame vm.FrameNumber) bool {
	return int(frame) < len(p.free) && p.free[frame]
}

// NumFree returns the number of frames that are still free.
func (p *FramePool) NumFree() int {
	return p.numFree
}

// NumFrames returns the total number of frames in the pool.
func (p *FramePool) NumFrames() int {
	return len(p.free)
}
