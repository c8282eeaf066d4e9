package board

import (
	"bytes"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdramctl/mem/sdram"
	"github.com/sarchlab/sdramctl/mem/sdram/device"
	"github.com/sarchlab/sdramctl/mem/sdram/harness"
	"github.com/sarchlab/sdramctl/sim/timing"
)

var _ = Describe("Board", func() {
	var spec sdram.DeviceSpec

	BeforeEach(func() {
		spec = sdram.DefaultDeviceSpec()
		spec.PowerOnWait = 20 * time.Microsecond
	})

	expectCleanRun := func(b *Board) {
		Expect(b.Device.Violations()).To(BeEmpty())
		Expect(b.Client.Mismatches()).To(BeZero())

		stats := b.Controller.Stats()
		Expect(stats.IgnoredStrobes).To(BeZero())
		Expect(stats.MaxRefreshGap).
			To(BeNumerically("<=", b.Controller.Timing().MaxRefreshInterval))
	}

	DescribeTable("should pass the demonstration",
		func(policy sdram.RowPolicy, width int) {
			b := MakeBuilder().
				WithDeviceSpec(spec).
				WithRowPolicy(policy).
				WithDataWidth(width).
				Build("Board")

			serial := new(bytes.Buffer)
			demo := harness.MakeDemoBuilder().
				WithSerial(serial).
				WithBlockSize(8 << 10).
				WithAutoStart().
				Build(b.Controller)
			b.Attach(demo)

			Expect(b.RunToCompletion(10_000_000)).To(Succeed())

			Expect(demo.Passed()).To(BeTrue())
			Expect(serial.String()).To(HaveSuffix("PASS\r\n"))
			Expect(b.Controller.Stats().ScheduledRefreshes).
				To(BeNumerically(">", 0))
			expectCleanRun(b)
		},
		Entry("close page, 8 bits", sdram.ClosePage, 8),
		Entry("close page, 16 bits", sdram.ClosePage, 16),
		Entry("close page, 32 bits", sdram.ClosePage, 32),
		Entry("open page, 8 bits", sdram.OpenPage, 8),
		Entry("open page, 32 bits", sdram.OpenPage, 32),
	)

	It("should run on the event engine", func() {
		engine := timing.NewSerialEngine()
		b := MakeBuilder().
			WithEngine(engine).
			WithDeviceSpec(spec).
			Build("Board")

		demo := harness.MakeDemoBuilder().
			WithBlockSize(1 << 10).
			WithAutoStart().
			Build(b.Controller)
		b.Attach(demo)

		Expect(b.Run()).To(Succeed())

		Expect(demo.Passed()).To(BeTrue())
		Expect(b.PoweredOff()).To(BeTrue())
		Expect(b.Device.CurrentCycle()).
			To(Equal(b.Controller.CurrentCycle()))
		Expect(b.CurrentCycle()).To(Equal(b.Controller.CurrentCycle()))
		Expect(engine.EventsHandled(timing.ControlEdge)).
			To(BeNumerically(">=", b.Controller.CurrentCycle()))
		Expect(engine.EventsHandled(timing.ShiftedEdge)).
			To(BeNumerically(">", engine.EventsHandled(timing.ControlEdge)))
		expectCleanRun(b)
	})

	It("should report stats while the engine runs", func() {
		engine := timing.NewSerialEngine()
		b := MakeBuilder().
			WithEngine(engine).
			WithDeviceSpec(spec).
			Build("Board")

		agent := harness.MakeAgentBuilder().
			WithSeed(7).
			WithMaxAddress(1 << 16).
			WithReadLeft(500).
			WithWriteLeft(500).
			WithRefreshLeft(10).
			Build(b.Controller)
		b.Attach(agent)

		done := make(chan struct{})
		reported := make(chan int)

		go func() {
			defer GinkgoRecover()

			n := 0
			for {
				Expect(b.Controller.ReportStats()).To(HaveKey("cycles"))
				Expect(b.Device.ReportStats()).To(HaveKey("violations"))
				_ = b.Controller.Stats()
				n++

				select {
				case <-done:
					reported <- n
					return
				default:
				}
			}
		}()

		err := b.Run()
		close(done)

		Expect(err).To(Succeed())
		Expect(<-reported).To(BeNumerically(">", 0))
		Expect(b.Controller.ReportStats()["cmd_REF"]).To(BeNumerically(">", 0))
		expectCleanRun(b)
	})

	DescribeTable("should drive the device within its datasheet at",
		func(mhz float64, policy sdram.RowPolicy) {
			b := MakeBuilder().
				WithFreq(timing.Freq(mhz) * timing.MHz).
				WithDeviceSpec(spec).
				WithRowPolicy(policy).
				Build("Board")

			agent := harness.MakeAgentBuilder().
				WithSeed(int64(mhz)).
				WithMaxAddress(1 << 16).
				WithReadLeft(2000).
				WithWriteLeft(2000).
				WithRefreshLeft(50).
				Build(b.Controller)
			b.Attach(agent)

			Expect(b.RunToCompletion(10_000_000)).To(Succeed())
			expectCleanRun(b)
		},
		Entry("25 MHz", 25.0, sdram.ClosePage),
		Entry("50 MHz", 50.0, sdram.ClosePage),
		Entry("64 MHz", 64.0, sdram.OpenPage),
		Entry("100 MHz", 100.0, sdram.ClosePage),
		Entry("133 MHz", 133.0, sdram.OpenPage),
		Entry("166 MHz", 166.0, sdram.ClosePage),
	)

	It("should work again after a reset", func() {
		b := MakeBuilder().WithDeviceSpec(spec).Build("Board")

		first := harness.MakeAgentBuilder().Build(b.Controller)
		b.Attach(first)
		b.RunCycles(3000)
		Expect(first.Done()).To(BeFalse())

		b.Reset()
		Expect(b.Controller.Busy()).To(BeTrue())

		demo := harness.MakeDemoBuilder().
			WithBlockSize(1 << 10).
			WithAutoStart().
			Build(b.Controller)
		b.Attach(demo)

		Expect(b.RunToCompletion(1_000_000)).To(Succeed())
		Expect(demo.Passed()).To(BeTrue())
		expectCleanRun(b)
	})

	It("should tell the time of the last edge", func() {
		b := MakeBuilder().WithDeviceSpec(spec).Build("Board")

		b.RunCycles(64)

		Expect(b.CurrentCycle()).To(Equal(uint64(64)))
		Expect(b.Now()).To(BeNumerically("~", 1e-6, 1e-12))
	})

	It("should give up at the cycle limit", func() {
		b := MakeBuilder().WithDeviceSpec(spec).Build("Board")
		b.Attach(harness.MakeDemoBuilder().Build(b.Controller))

		Expect(b.RunToCompletion(100)).To(MatchError(ErrCycleLimit))
	})

	It("should expose a controller that trusts the wrong datasheet", func() {
		dev := device.MakeBuilder().WithDeviceSpec(spec).Build("Device")

		fast := spec
		fast.TRCD = sdram.Ns(5)
		ctrl := sdram.MakeBuilder().
			WithDeviceSpec(fast).
			WithDevice(dev).
			Build("Ctrl")

		for ctrl.Busy() {
			ctrl.Tick()
			dev.Tick()
		}

		ctrl.Issue(sdram.RequestWrite, 0, 1)
		for i := 0; i < 10; i++ {
			ctrl.Tick()
			dev.Tick()
		}

		Expect(dev.Violations()).NotTo(BeEmpty())
		Expect(dev.Violations()[0].Rule).To(Equal(device.RuleTRCD))
	})

	It("should write and verify 1 MiB", func() {
		if testing.Short() {
			Skip("long end-to-end run")
		}

		b := MakeBuilder().Build("Board")

		serial := new(bytes.Buffer)
		demo := harness.MakeDemoBuilder().
			WithSerial(serial).
			WithAutoStart().
			Build(b.Controller)
		b.Attach(demo)

		Expect(b.RunToCompletion(100_000_000)).To(Succeed())

		Expect(demo.Passed()).To(BeTrue())
		Expect(serial.String()).
			To(ContainSubstring("read 0x000001: 0xED, expected 0xED PASS"))
		Expect(serial.String()).To(ContainSubstring("0 mismatches"))
		expectCleanRun(b)
	})
})
