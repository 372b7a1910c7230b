// Package vm defines the address model of the simulated process and the page
// table that maps its pages to physical frames.
package vm

// The simulated address space is 16 bits wide, split evenly into an 8-bit page
// number and an 8-bit offset.
const (
	Log2PageSize = 8
	PageSize     = 1 << Log2PageSize
	NumPages     = 1 << (16 - Log2PageSize)
)

// LogicalAddress is a 16-bit address issued by the simulated process.
type LogicalAddress uint16

// PageNumber identifies a page of the logical address space.
type PageNumber uint8

// FrameNumber identifies a frame of physical memory.
type FrameNumber uint8

// Offset is the byte position within a page or a frame.
type Offset uint8

// LogicalAddressFromInt truncates v to its low 16 bits. Negative values are
// taken in two's complement.
func LogicalAddressFromInt(v int64) LogicalAddress {
	return LogicalAddress(uint64(v) & 0xFFFF)
}

// Decompose splits a logical address into its page number and offset.
func Decompose(addr LogicalAddress) (PageNumber, Offset) {
	return PageNumber(addr >> Log2PageSize), Offset(addr & (PageSize - 1))
}

// PhysicalAddress returns the byte address of offset within frame.
func PhysicalAddress(frame FrameNumber, offset Offset) uint32 {
	return uint32(frame)<<Log2PageSize | uint32(offset)
}
