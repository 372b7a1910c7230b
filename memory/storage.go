// Package memory models the physical memory of the simulated machine and the
// pool of frames that are still free.
package memory

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmmgr/mem/vm"
)

// ErrOutOfCapacity is returned when an access goes beyond the last frame.
var ErrOutOfCapacity = errors.New(
	"accessing physical address beyond the storage capacity")

// A Storage keeps the bytes of the physical memory.
//
// The storage is divided into frames of vm.PageSize bytes. A frame is only
// allocated when it is touched by Read or Write.
type Storage struct {
	unitSize  uint64
	numFrames int
	capacity  uint64
	frames    [][]byte
}

// NewStorage creates a storage with the given number of frames.
func NewStorage(numFrames int) *Storage {
	if numFrames <= 0 || numFrames > vm.NumPages {
		panic(fmt.Sprintf("number of frames must be in (0, %d]", vm.NumPages))
	}

	storage := new(Storage)

	storage.unitSize = vm.PageSize
	storage.numFrames = numFrames
	storage.capacity = uint64(numFrames) * vm.PageSize
	storage.frames = make([][]byte, numFrames)

	return storage
}

// NumFrames returns the number of frames in the storage.
func (s *Storage) NumFrames() int {
	return s.numFrames
}

// Capacity returns the number of bytes the storage holds.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// createOrGetFrame retrieves a frame if the frame has been created before.
// Otherwise it initializes the frame.
func (s *Storage) createOrGetFrame(address uint64) ([]byte, error) {
	if address >= s.capacity {
		return nil, fmt.Errorf("address 0x%x: %w", address, ErrOutOfCapacity)
	}

	frameIndex, _ := s.parseAddress(address)

	frame := s.frames[frameIndex]
	if frame == nil {
		frame = make([]byte, s.unitSize)
		s.frames[frameIndex] = frame
	}

	return frame, nil
}

func (s *Storage) parseAddress(addr uint64) (frameIndex, inFrameAddr uint64) {
	inFrameAddr = addr % s.unitSize
	frameIndex = addr / s.unitSize

	return frameIndex, inFrameAddr
}

// Read returns length bytes starting at the physical address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	currAddr := address
	lenLeft := length
	dataOffset := uint64(0)
	res := make([]byte, length)

	for lenLeft > 0 {
		frame, err := s.createOrGetFrame(currAddr)
		if err != nil {
			return nil, err
		}

		_, inFrameAddr := s.parseAddress(currAddr)
		lenToRead := min(lenLeft, s.unitSize-inFrameAddr)

		copy(res[dataOffset:dataOffset+lenToRead],
			frame[inFrameAddr:inFrameAddr+lenToRead])

		lenLeft -= lenToRead
		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores the data starting at the physical address.
func (s *Storage) Write(address uint64, data []byte) error {
	if address+uint64(len(data)) > s.capacity {
		return fmt.Errorf("address 0x%x, %d bytes: %w",
			address, len(data), ErrOutOfCapacity)
	}

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < uint64(len(data)) {
		frame, err := s.createOrGetFrame(currAddr)
		if err != nil {
			return err
		}

		_, inFrameAddr := s.parseAddress(currAddr)
		lenToWrite := min(uint64(len(data))-dataOffset, s.unitSize-inFrameAddr)

		copy(frame[inFrameAddr:inFrameAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])

		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}

// WriteFrame replaces the content of a whole frame.
func (s *Storage) WriteFrame(frame vm.FrameNumber, data []byte) error {
	if len(data) != vm.PageSize {
		return fmt.Errorf("frame %d: got %d bytes, want %d",
			frame, len(data), vm.PageSize)
	}

	return s.Write(uint64(vm.PhysicalAddress(frame, 0)), data)
}

// ReadSignedByte returns the byte at offset within the frame, interpreted as
// a signed value.
func (s *Storage) ReadSignedByte(
	frame vm.FrameNumber,
	offset vm.Offset,
) (int8, error) {
	data, err := s.Read(uint64(vm.PhysicalAddress(frame, offset)), 1)
	if err != nil {
		return 0, err
	}

	return int8(data[0]), nil
}
