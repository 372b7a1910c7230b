// Package internal provides the definition required for defining TLB.
package internal

import (
	"fmt"

	"github.com/sarchlab/vmmgr/mem/vm"
)

// An Entry is a cached page to frame mapping.
type Entry struct {
	PageNumber  vm.PageNumber
	FrameNumber vm.FrameNumber

	// Recency counts the accesses to other entries since this entry was last
	// used. 0 means just used.
	Recency uint64
}

// A Set holds a fixed number of entries and decides which one to evict.
type Set interface {
	Lookup(page vm.PageNumber) (wayID int, entry Entry, found bool)
	Update(wayID int, entry Entry)
	FindVictim() (wayID int, victim Entry, occupied bool)
	Visit(wayID int)
	Entries() []Entry
	NumValid() int
}

// NewSet creates a new TLB set.
func NewSet(numWays int) Set {
	if numWays <= 0 {
		panic("a set must have at least one way")
	}

	s := &setImpl{}
	s.blocks = make([]*block, numWays)
	s.pageWayIDMap = make(map[vm.PageNumber]int)

	for i := range s.blocks {
		s.blocks[i] = &block{wayID: i}
	}

	return s
}

// block is same as way.
type block struct {
	Entry
	wayID int
	valid bool
}

type setImpl struct {
	blocks       []*block
	pageWayIDMap map[vm.PageNumber]int
}

func (s *setImpl) Lookup(page vm.PageNumber) (
	wayID int,
	entry Entry,
	found bool,
) {
	wayID, ok := s.pageWayIDMap[page]
	if !ok {
		return 0, Entry{}, false
	}

	block := s.blocks[wayID]

	return block.wayID, block.Entry, true
}

// Update overwrites the way with a new entry. The recency of the entry is kept
// as given; callers Visit the way to mark it as used.
func (s *setImpl) Update(wayID int, entry Entry) {
	block := s.blocks[wayID]

	if block.valid {
		delete(s.pageWayIDMap, block.PageNumber)
	}

	if otherWayID, ok := s.pageWayIDMap[entry.PageNumber]; ok {
		panic(fmt.Sprintf("page %d already cached in way %d",
			entry.PageNumber, otherWayID))
	}

	block.Entry = entry
	block.valid = true
	s.pageWayIDMap[entry.PageNumber] = wayID
}

// FindVictim returns the lowest free way. If all ways are in use, it returns
// the way with the largest recency, preferring the lowest way on ties, together
// with the entry it holds.
func (s *setImpl) FindVictim() (wayID int, victim Entry, occupied bool) {
	for _, b := range s.blocks {
		if !b.valid {
			return b.wayID, Entry{}, false
		}
	}

	lru := s.blocks[0]
	for _, b := range s.blocks[1:] {
		if b.Recency > lru.Recency {
			lru = b
		}
	}

	return lru.wayID, lru.Entry, true
}

// Visit marks the way as just used and ages every other valid way by one.
func (s *setImpl) Visit(wayID int) {
	for _, b := range s.blocks {
		if !b.valid {
			continue
		}

		if b.wayID == wayID {
			b.Recency = 0
		} else {
			b.Recency++
		}
	}
}

// Entries returns the valid entries ordered by way.
func (s *setImpl) Entries() []Entry {
	entries := make([]Entry, 0, len(s.pageWayIDMap))

	for _, b := range s.blocks {
		if b.valid {
			entries = append(entries, b.Entry)
		}
	}

	return entries
}

func (s *setImpl) NumValid() int {
	return len(s.pageWayIDMap)
}

