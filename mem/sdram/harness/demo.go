package harness

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/sarchlab/sdramctl/mem/sdram"
)

type demoPhase int

const (
	demoWaitStart demoPhase = iota
	demoWaitReady
	demoScenario
	demoBlockWrite
	demoBlockVerify
	demoDone
)

const maxReportedMismatches = 8

type scenarioStep struct {
	kind sdram.RequestKind
	word uint32
	data uint32
}

// The fixed scenario writes two words and reads the second one back. Words
// are counted in port widths, so the two writes never share a word.
var scenario = []scenarioStep{
	{kind: sdram.RequestWrite, word: 0, data: 0x3E},
	{kind: sdram.RequestWrite, word: 1, data: 0xED},
	{kind: sdram.RequestRead, word: 1, data: 0xED},
}

// Demo is the demonstration client. After the start button is pressed and
// the controller is ready, it runs a short write and read scenario, then
// fills a block with a pattern and verifies it. It reports to a serial line.
type Demo struct {
	requester

	serial    io.Writer
	blockSize uint32

	phase      demoPhase
	started    bool
	step       int
	next       uint32
	reported   uint32
	mismatches int
	passed     bool
}

// Press pushes the start button.
func (d *Demo) Press() {
	d.started = true
}

// Done tells if the demonstration has finished.
func (d *Demo) Done() bool {
	return d.phase == demoDone
}

// Passed tells if the demonstration finished without a mismatch.
func (d *Demo) Passed() bool {
	return d.phase == demoDone && d.passed
}

// Mismatches returns the number of reads that returned wrong data.
func (d *Demo) Mismatches() int {
	return d.mismatches
}

// Tick runs one edge of the client clock.
func (d *Demo) Tick() bool {
	switch d.phase {
	case demoWaitStart:
		if !d.started {
			return false
		}

		d.printf("SDRAM controller test, %d-bit port\r\n",
			d.port.DataWidth())
		d.phase = demoWaitReady

		return true
	case demoWaitReady:
		if d.port.Busy() {
			return false
		}

		d.printf("controller ready\r\n")
		d.phase = demoScenario
	case demoDone:
		return false
	}

	finished, data := d.poll()
	if finished != nil {
		d.check(finished, data)
	}

	if d.canIssue() {
		d.issueNext()
	}

	return true
}

func (d *Demo) check(op *operation, data uint32) {
	switch d.phase {
	case demoScenario:
		d.checkScenarioStep(op, data)
	case demoBlockVerify:
		d.checkBlockWord(op, data)
	}
}

func (d *Demo) checkScenarioStep(op *operation, data uint32) {
	if op.kind == sdram.RequestWrite {
		d.printf("write 0x%02X to 0x%06X\r\n", op.data, op.addr)
		return
	}

	result := "PASS"
	if data != op.data {
		result = "FAIL"
		d.mismatches++
	}

	d.printf("read 0x%06X: 0x%02X, expected 0x%02X %s\r\n",
		op.addr, data, op.data, result)
}

func (d *Demo) checkBlockWord(op *operation, data uint32) {
	if data == op.data {
		return
	}

	d.mismatches++
	if d.mismatches <= maxReportedMismatches {
		d.printf("mismatch at 0x%06X: 0x%X, expected 0x%X\r\n",
			op.addr, data, op.data)
	}

	glog.V(1).Infof("mismatch at 0x%06X: 0x%X, expected 0x%X",
		op.addr, data, op.data)
}

func (d *Demo) issueNext() {
	switch d.phase {
	case demoScenario:
		d.issueScenarioStep()
	case demoBlockWrite:
		d.issueBlockWord(sdram.RequestWrite)
	case demoBlockVerify:
		d.issueBlockWord(sdram.RequestRead)
	}
}

func (d *Demo) issueScenarioStep() {
	if d.step == len(scenario) {
		d.printf("block write, %d bytes\r\n", d.blockSize)
		d.phase = demoBlockWrite
		d.next = 0
		d.reported = 0
		d.issueBlockWord(sdram.RequestWrite)

		return
	}

	s := scenario[d.step]
	d.step++
	d.issue(s.kind, s.word*bytesPerWord(d.port), s.data)
}

func (d *Demo) issueBlockWord(kind sdram.RequestKind) {
	if d.next >= d.blockSize {
		d.finishBlockPass()
		return
	}

	d.reportProgress()

	bytes := bytesPerWord(d.port)
	d.issue(kind, d.next, patternWord(d.next, bytes))
	d.next += bytes
}

func (d *Demo) finishBlockPass() {
	if d.phase == demoBlockWrite {
		d.printf("verify, %d bytes\r\n", d.blockSize)
		d.phase = demoBlockVerify
		d.next = 0
		d.reported = 0
		d.issueBlockWord(sdram.RequestRead)

		return
	}

	d.printf("%d mismatches\r\n", d.mismatches)

	d.passed = d.mismatches == 0
	if d.passed {
		d.printf("PASS\r\n")
	} else {
		d.printf("FAIL\r\n")
	}

	d.phase = demoDone
}

func (d *Demo) reportProgress() {
	quarter := max(d.blockSize/4, 1)
	if d.next == 0 || d.next < d.reported+quarter {
		return
	}

	d.reported = d.next / quarter * quarter
	d.printf("  %3d%%\r\n", uint64(d.reported)*100/uint64(d.blockSize))
}

func (d *Demo) printf(format string, args ...any) {
	glog.V(2).Infof(format, args...)

	if d.serial == nil {
		return
	}

	fmt.Fprintf(d.serial, format, args...)
}

// DemoBuilder can build demonstration clients.
type DemoBuilder struct {
	serial    io.Writer
	blockSize uint32
	autoStart bool
}

// MakeDemoBuilder creates a builder for a demonstration that verifies 1 MiB
// and waits for the start button.
func MakeDemoBuilder() DemoBuilder {
	return DemoBuilder{blockSize: 1 << 20}
}

// WithSerial sets where the report is written.
func (b DemoBuilder) WithSerial(w io.Writer) DemoBuilder {
	b.serial = w
	return b
}

// WithBlockSize sets the number of bytes to write and verify.
func (b DemoBuilder) WithBlockSize(n uint32) DemoBuilder {
	b.blockSize = n
	return b
}

// WithAutoStart presses the start button at power-up.
func (b DemoBuilder) WithAutoStart() DemoBuilder {
	b.autoStart = true
	return b
}

// Build creates a demonstration client on the port.
func (b DemoBuilder) Build(port Port) *Demo {
	if b.blockSize%4 != 0 {
		panic("block size must be a multiple of 4")
	}

	d := &Demo{
		requester: requester{port: port},
		serial:    b.serial,
		blockSize: b.blockSize,
		started:   b.autoStart,
	}

	return d
}
