package harness

import (
	"math/rand"

	"github.com/golang/glog"

	"github.com/sarchlab/sdramctl/mem/sdram"
)

// An Agent generates a random mix of reads, writes and refreshes and checks
// the read data against the values it has written.
type Agent struct {
	requester

	MaxAddress  uint32
	ReadLeft    int
	WriteLeft   int
	RefreshLeft int

	// KnownMemValue is the last value written to each address.
	KnownMemValue map[uint32]uint32

	knownAddrs []uint32
	rng        *rand.Rand
	mismatches int
}

// Done tells if all the requests have been issued and have finished.
func (a *Agent) Done() bool {
	return a.ReadLeft == 0 && a.WriteLeft == 0 && a.RefreshLeft == 0 &&
		a.op == nil
}

// Mismatches returns the number of reads that returned wrong data.
func (a *Agent) Mismatches() int {
	return a.mismatches
}

// Tick checks the finished request and issues a new one.
func (a *Agent) Tick() bool {
	madeProgress := false

	if op, data := a.poll(); op != nil {
		a.checkReadResult(op, data)
		madeProgress = true
	}

	if !a.canIssue() || a.left() == 0 {
		return madeProgress
	}

	switch {
	case a.shouldRefresh():
		a.RefreshLeft--
		a.issue(sdram.RequestRefresh, 0, 0)
	case a.shouldRead():
		a.ReadLeft--
		a.issue(sdram.RequestRead, a.randomReadAddress(), 0)
	default:
		a.doWrite()
	}

	return true
}

func (a *Agent) left() int {
	return a.ReadLeft + a.WriteLeft + a.RefreshLeft
}

func (a *Agent) checkReadResult(op *operation, data uint32) {
	if op.kind != sdram.RequestRead {
		return
	}

	expected := a.KnownMemValue[op.addr]
	if data == expected {
		return
	}

	a.mismatches++
	glog.Warningf("read 0x%06X returned 0x%X, expected 0x%X",
		op.addr, data, expected)
}

func (a *Agent) shouldRefresh() bool {
	if a.RefreshLeft == 0 {
		return false
	}

	return a.rng.Intn(a.left()) < a.RefreshLeft
}

func (a *Agent) shouldRead() bool {
	if len(a.knownAddrs) == 0 || a.ReadLeft == 0 {
		return false
	}

	if a.WriteLeft == 0 {
		return true
	}

	return a.rng.Float64() > 0.5
}

func (a *Agent) randomReadAddress() uint32 {
	return a.knownAddrs[a.rng.Intn(len(a.knownAddrs))]
}

func (a *Agent) doWrite() {
	bytes := bytesPerWord(a.port)
	addr := a.rng.Uint32() % (a.MaxAddress / bytes) * bytes
	data := a.rng.Uint32()

	if bytes < 4 {
		data &= 1<<(8*bytes) - 1
	}

	a.WriteLeft--
	a.addKnownValue(addr, data)
	a.issue(sdram.RequestWrite, addr, data)
}

func (a *Agent) addKnownValue(addr, data uint32) {
	if _, exist := a.KnownMemValue[addr]; !exist {
		a.knownAddrs = append(a.knownAddrs, addr)
	}

	a.KnownMemValue[addr] = data
}

// AgentBuilder can build random traffic agents.
type AgentBuilder struct {
	seed        int64
	maxAddress  uint32
	readLeft    int
	writeLeft   int
	refreshLeft int
}

// MakeAgentBuilder creates a builder for an agent that issues 10000 reads
// and 10000 writes in the first MiB.
func MakeAgentBuilder() AgentBuilder {
	return AgentBuilder{
		seed:       1,
		maxAddress: 1 << 20,
		readLeft:   10000,
		writeLeft:  10000,
	}
}

// WithSeed sets the seed of the random generator.
func (b AgentBuilder) WithSeed(seed int64) AgentBuilder {
	b.seed = seed
	return b
}

// WithMaxAddress limits the addresses to [0, n).
func (b AgentBuilder) WithMaxAddress(n uint32) AgentBuilder {
	b.maxAddress = n
	return b
}

// WithReadLeft sets the number of reads to issue.
func (b AgentBuilder) WithReadLeft(n int) AgentBuilder {
	b.readLeft = n
	return b
}

// WithWriteLeft sets the number of writes to issue.
func (b AgentBuilder) WithWriteLeft(n int) AgentBuilder {
	b.writeLeft = n
	return b
}

// WithRefreshLeft sets the number of external refreshes to issue.
func (b AgentBuilder) WithRefreshLeft(n int) AgentBuilder {
	b.refreshLeft = n
	return b
}

// Build creates an agent on the port.
func (b AgentBuilder) Build(port Port) *Agent {
	bytes := bytesPerWord(port)
	if b.maxAddress < bytes {
		panic("max address is smaller than one word")
	}

	return &Agent{
		requester:     requester{port: port},
		MaxAddress:    b.maxAddress,
		ReadLeft:      b.readLeft,
		WriteLeft:     b.writeLeft,
		RefreshLeft:   b.refreshLeft,
		KnownMemValue: make(map[uint32]uint32),
		rng:           rand.New(rand.NewSource(b.seed)),
	}
}
