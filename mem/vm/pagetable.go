package vm

import (
	"errors"
	"fmt"
)

// ErrPageRemapped is returned when a valid page is asked to point to a
// different frame. Pages are never evicted, so a valid mapping is final.
var ErrPageRemapped = errors.New("page is already mapped to another frame")

// ErrFrameInUse is returned when a frame is already owned by another page.
var ErrFrameInUse = errors.New("frame is owned by another page")

// A Page is an entry in the page table, maintaining the information about how
// to translate a page number to a frame.
type Page struct {
	PageNumber  PageNumber
	FrameNumber FrameNumber
	Valid       bool
}

// A PageTable holds one entry for every page of the address space.
type PageTable interface {
	// Find returns the entry of the page. The bool return value indicates if
	// the entry is valid.
	Find(page PageNumber) (Page, bool)

	// MarkValid maps the page to the frame.
	MarkValid(page PageNumber, frame FrameNumber) error

	// ValidPages returns the valid entries ordered by page number.
	ValidPages() []Page
}

// NewPageTable creates a page table with every entry invalid.
func NewPageTable() PageTable {
	pt := &pageTableImpl{}

	for i := range pt.entries {
		pt.entries[i].PageNumber = PageNumber(i)
	}

	return pt
}

// pageTableImpl is the default implementation of a Page Table
type pageTableImpl struct {
	entries [NumPages]Page

	// frameOwners records which page holds each frame.
	frameOwners [NumPages]*Page
}

// Find returns the entry of the page.
func (pt *pageTableImpl) Find(page PageNumber) (Page, bool) {
	entry := pt.entries[page]
	return entry, entry.Valid
}

// MarkValid sets the entry valid and records its frame.
func (pt *pageTableImpl) MarkValid(page PageNumber, frame FrameNumber) error {
	entry := &pt.entries[page]

	if entry.Valid {
		if entry.FrameNumber == frame {
			return nil
		}

		return fmt.Errorf("page %d to frame %d: %w", page, frame, ErrPageRemapped)
	}

	if owner := pt.frameOwners[frame]; owner != nil {
		return fmt.Errorf("frame %d owned by page %d: %w",
			frame, owner.PageNumber, ErrFrameInUse)
	}

	entry.FrameNumber = frame
	entry.Valid = true
	pt.frameOwners[frame] = entry

	return nil
}

// ValidPages returns the valid entries ordered by page number.
func (pt *pageTableImpl) ValidPages() []Page {
	pages := make([]Page, 0)

	for _, entry := range pt.entries {
		if entry.Valid {
			pages = append(pages, entry)
		}
	}

	return pages
}
