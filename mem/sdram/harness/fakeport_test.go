package harness

import "github.com/sarchlab/sdramctl/mem/sdram"

type fakeRequest struct {
	kind sdram.RequestKind
	addr uint32
	data uint32
}

// fakePort is a controller that finishes every request after a fixed number
// of cycles.
type fakePort struct {
	width     int
	latency   int
	mem       map[uint32]uint32
	corrupt   map[uint32]bool
	strobe    *fakeRequest
	current   *fakeRequest
	busyLeft  int
	dataReady bool
	readData  uint32
	ignored   int
	accepted  []fakeRequest
}

func newFakePort(width int) *fakePort {
	return &fakePort{
		width:   width,
		latency: 5,
		mem:     make(map[uint32]uint32),
		corrupt: make(map[uint32]bool),
	}
}

func (p *fakePort) Issue(kind sdram.RequestKind, addr, data uint32) {
	p.strobe = &fakeRequest{kind: kind, addr: addr, data: data}
}

func (p *fakePort) Busy() bool       { return p.busyLeft > 0 }
func (p *fakePort) DataReady() bool  { return p.dataReady }
func (p *fakePort) ReadData() uint32 { return p.readData }
func (p *fakePort) DataWidth() int   { return p.width }

func (p *fakePort) align(addr uint32) uint32 {
	return addr &^ uint32(p.width/8-1)
}

// tick runs one controller edge.
func (p *fakePort) tick() {
	p.dataReady = false

	if p.strobe != nil {
		if p.busyLeft > 0 {
			p.ignored++
		} else {
			p.current = p.strobe
			p.accepted = append(p.accepted, *p.strobe)
			p.busyLeft = p.latency
		}

		p.strobe = nil
	}

	if p.busyLeft == 0 {
		return
	}

	p.busyLeft--
	if p.busyLeft > 0 {
		return
	}

	req := p.current
	addr := p.align(req.addr)

	switch req.kind {
	case sdram.RequestWrite:
		p.mem[addr] = req.data & p.mask()
	case sdram.RequestRead:
		p.dataReady = true
		p.readData = p.mem[addr]

		if p.corrupt[addr] {
			p.readData ^= 1
		}
	}
}

func (p *fakePort) mask() uint32 {
	if p.width == 32 {
		return 0xFFFFFFFF
	}

	return 1<<p.width - 1
}

func run(p *fakePort, c Client, limit int) {
	for i := 0; i < limit && !c.Done(); i++ {
		p.tick()
		c.Tick()
	}
}
