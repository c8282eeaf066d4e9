// Package harness provides the clients that drive an SDRAM controller in
// tests and demonstrations.
//
// Clients tick on the phase-shifted clock, after the controller. In each
// tick they see the Busy and DataReady outputs of the controller edge that
// has just passed, and a request they issue is sampled at the next edge.
package harness

import "github.com/sarchlab/sdramctl/mem/sdram"

// A Port is the client side of a controller.
type Port interface {
	Issue(kind sdram.RequestKind, addr uint32, data uint32)
	Busy() bool
	DataReady() bool
	ReadData() uint32
	DataWidth() int
}

// A Client drives a Port, one tick at a time.
type Client interface {
	// Tick runs one edge of the client clock.
	Tick() bool

	// Done tells if the client has nothing more to do.
	Done() bool

	// Mismatches returns the number of reads that did not return the
	// expected data.
	Mismatches() int
}

type operation struct {
	kind sdram.RequestKind
	addr uint32
	data uint32
	age  int
}

// requester keeps at most one request in flight on a port.
type requester struct {
	port Port
	op   *operation
}

func (r *requester) canIssue() bool {
	return r.op == nil && !r.port.Busy()
}

func (r *requester) issue(kind sdram.RequestKind, addr, data uint32) {
	r.op = &operation{kind: kind, addr: addr, data: data}
	r.port.Issue(kind, addr, data)
}

// poll returns the operation that finished in the last controller edge,
// together with the read data when the operation is a read.
func (r *requester) poll() (finished *operation, readData uint32) {
	if r.op == nil {
		return nil, 0
	}

	r.op.age++
	op := r.op

	switch {
	case op.kind == sdram.RequestRead && r.port.DataReady():
		readData = r.port.ReadData()
	case op.kind != sdram.RequestRead && op.age > 0 && !r.port.Busy():
	default:
		return nil, 0
	}

	r.op = nil

	return op, readData
}

// bytesPerWord returns the number of bytes moved by one request.
func bytesPerWord(p Port) uint32 {
	return uint32(p.DataWidth() / 8)
}

// patternWord returns the test pattern word for an address. Every byte
// holds the low 8 bits of its own address.
func patternWord(addr uint32, bytes uint32) uint32 {
	var w uint32
	for i := uint32(0); i < bytes; i++ {
		w |= ((addr + i) & 0xFF) << (8 * i)
	}

	return w
}
