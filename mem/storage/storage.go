// Package storage keeps the contents of a simulated memory array.
package storage

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfRange is returned when an access touches bytes beyond the capacity.
var ErrOutOfRange = errors.New("accessing address beyond the storage capacity")

// A Storage keeps the data of a memory array.
//
// The storage implementation manages the storage in units, similar to the
// concept of a page. For the units that are not touched by Write, no memory
// is allocated and reads return zeros.
type Storage struct {
	sync.RWMutex
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// New creates a storage object with the specified capacity.
func New(capacity uint64) *Storage {
	return NewWithUnitSize(capacity, 4096)
}

// NewWithUnitSize creates a storage whose allocation unit is unitSize bytes.
func NewWithUnitSize(capacity, unitSize uint64) *Storage {
	if unitSize == 0 {
		panic("unit size must be positive")
	}

	s := new(Storage)
	s.unitSize = unitSize
	s.capacity = capacity
	s.data = make(map[uint64][]byte)

	return s
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// NumAllocatedUnits returns how many units have been written to.
func (s *Storage) NumAllocatedUnits() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.data)
}

func (s *Storage) checkRange(address, length uint64) error {
	if address+length > s.capacity || address+length < address {
		return fmt.Errorf("%w: 0x%x+%d, capacity %d",
			ErrOutOfRange, address, length, s.capacity)
	}

	return nil
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns length bytes starting at address.
func (s *Storage) Read(address, length uint64) ([]byte, error) {
	if err := s.checkRange(address, length); err != nil {
		return nil, err
	}

	s.RLock()
	defer s.RUnlock()

	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToRead := min(length-dataOffset, s.unitSize-inUnitAddr)

		if unit, ok := s.data[baseAddr]; ok {
			copy(res[dataOffset:dataOffset+lenToRead],
				unit[inUnitAddr:inUnitAddr+lenToRead])
		}

		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if err := s.checkRange(address, length); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToWrite := min(length-dataOffset, s.unitSize-inUnitAddr)

		unit, ok := s.data[baseAddr]
		if !ok {
			unit = make([]byte, s.unitSize)
			s.data[baseAddr] = unit
		}

		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])
		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}

// Clear drops every allocated unit.
func (s *Storage) Clear() {
	s.Lock()
	s.data = make(map[uint64][]byte)
	s.Unlock()
}
