// Package addressmapping splits a client byte address into the bank, row,
// column and byte lane of the device.
package addressmapping

import "fmt"

// Location is the position of a byte inside the device.
type Location struct {
	Bank int
	Row  int
	Col  int
	Lane int
}

func (l Location) String() string {
	return fmt.Sprintf("b%d r0x%x c0x%x l%d", l.Bank, l.Row, l.Col, l.Lane)
}

// A Mapper converts between byte addresses and locations.
type Mapper interface {
	Map(addr uint64) Location
	Address(loc Location) uint64
	AddressBits() int
}

// Builder builds address mappers.
type Builder struct {
	busWidth int
	numBank  int
	numRow   int
	numCol   int
}

// MakeBuilder creates a builder with the geometry of a 4 bank, 2048 row,
// 256 column, 32-bit wide device.
func MakeBuilder() Builder {
	return Builder{
		busWidth: 32,
		numBank:  4,
		numRow:   2048,
		numCol:   256,
	}
}

// WithBusWidth sets the width of the device data bus in bits.
func (b Builder) WithBusWidth(n int) Builder {
	b.busWidth = n
	return b
}

// WithNumBank sets the number of banks.
func (b Builder) WithNumBank(n int) Builder {
	b.numBank = n
	return b
}

// WithNumRow sets the number of rows per bank.
func (b Builder) WithNumRow(n int) Builder {
	b.numRow = n
	return b
}

// WithNumCol sets the number of columns per row.
func (b Builder) WithNumCol(n int) Builder {
	b.numCol = n
	return b
}

// Build creates a mapper that places the bank bits on top of the row bits,
// the row bits on top of the column bits and the lane bits at the bottom.
func (b Builder) Build() Mapper {
	b.mustBeValid()

	m := &bankRowColMapper{}
	m.laneBits = mustLog2(uint64(b.busWidth / 8))
	m.colBits = mustLog2(uint64(b.numCol))
	m.rowBits = mustLog2(uint64(b.numRow))
	m.bankBits = mustLog2(uint64(b.numBank))

	m.colPos = m.laneBits
	m.rowPos = m.colPos + m.colBits
	m.bankPos = m.rowPos + m.rowBits

	return m
}

func (b Builder) mustBeValid() {
	if b.busWidth < 8 || b.busWidth%8 != 0 {
		panic(fmt.Sprintf("bus width %d is not a whole number of bytes",
			b.busWidth))
	}

	for _, n := range []int{b.busWidth / 8, b.numBank, b.numRow, b.numCol} {
		if _, ok := log2(uint64(n)); !ok {
			panic(fmt.Sprintf("%d is not a power of 2", n))
		}
	}
}

type bankRowColMapper struct {
	laneBits, colBits, rowBits, bankBits uint64
	colPos, rowPos, bankPos              uint64
}

func (m *bankRowColMapper) Map(addr uint64) Location {
	return Location{
		Lane: int(field(addr, 0, m.laneBits)),
		Col:  int(field(addr, m.colPos, m.colBits)),
		Row:  int(field(addr, m.rowPos, m.rowBits)),
		Bank: int(field(addr, m.bankPos, m.bankBits)),
	}
}

func (m *bankRowColMapper) Address(loc Location) uint64 {
	return uint64(loc.Lane) |
		uint64(loc.Col)<<m.colPos |
		uint64(loc.Row)<<m.rowPos |
		uint64(loc.Bank)<<m.bankPos
}

func (m *bankRowColMapper) AddressBits() int {
	return int(m.bankPos + m.bankBits)
}

func field(addr, pos, bits uint64) uint64 {
	return (addr >> pos) & (1<<bits - 1)
}

func mustLog2(n uint64) uint64 {
	v, ok := log2(n)
	if !ok {
		panic(fmt.Sprintf("%d is not a power of 2", n))
	}

	return v
}

// log2 returns the log2 of a number. It also returns false if it is not a log2
// number.
func log2(n uint64) (uint64, bool) {
	oneCount := 0
	onePos := uint64(0)

	for i := uint64(0); i < 64; i++ {
		if n&(1<<i) > 0 {
			onePos = i
			oneCount++
		}
	}

	return onePos, oneCount == 1
}
