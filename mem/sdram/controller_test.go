package sdram

import (
	"fmt"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
	"github.com/sarchlab/sdramctl/sim/hooking"
)

type commandLog struct {
	cmds   []CommandIssued
	states []StateChange
}

func (l *commandLog) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosCommand:
		l.cmds = append(l.cmds, ctx.Item.(CommandIssued))
	case HookPosStateChange:
		l.states = append(l.states, ctx.Item.(StateChange))
	}
}

func (l *commandLog) since(cycle uint64) []CommandIssued {
	var cmds []CommandIssued

	for _, c := range l.cmds {
		if c.Cycle >= cycle {
			cmds = append(cmds, c)
		}
	}

	return cmds
}

func kindsOf(cmds []CommandIssued) []string {
	kinds := make([]string, 0, len(cmds))
	for _, c := range cmds {
		kinds = append(kinds, c.Command)
	}

	return kinds
}

func relativeTrace(cmds []CommandIssued, base uint64) []string {
	trace := make([]string, 0, len(cmds))
	for _, c := range cmds {
		trace = append(trace, fmt.Sprintf("%d %s b%d r%d c%d",
			c.Cycle-base, c.Command, c.Bank, c.Row, c.Col))
	}

	return trace
}

type cycleTeller struct {
	c *Comp
}

func (t cycleTeller) Now() float64 {
	return float64(t.c.CurrentCycle())
}

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		device   *MockDevice
		log      *commandLog
		lastPins Pins
		spec     DeviceSpec
		c        *Comp
	)

	build := func(b Builder) *Comp {
		return b.WithDeviceSpec(spec).
			WithDevice(device).
			WithAdditionalHooks(log).
			Build("Ctrl")
	}

	tick := func(n int) {
		for i := 0; i < n; i++ {
			c.Tick()
		}
	}

	tickUntilIdle := func() {
		for i := 0; c.Busy() && i < 100000; i++ {
			c.Tick()
		}

		Expect(c.Busy()).To(BeFalse())
	}

	tickUntilDataReady := func(limit int) {
		for i := 0; i < limit; i++ {
			c.Tick()
			if c.DataReady() {
				return
			}
		}

		Fail("data ready never pulsed")
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		device = NewMockDevice(mockCtrl)
		device.EXPECT().Drive(gomock.Any()).
			Do(func(p Pins) { lastPins = p }).
			AnyTimes()

		log = &commandLog{}
		spec = DefaultDeviceSpec()
		spec.PowerOnWait = time.Microsecond
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("close page", func() {
		BeforeEach(func() {
			c = build(MakeBuilder())
		})

		It("should be busy until the device is initialized", func() {
			Expect(c.Busy()).To(BeTrue())
			Expect(c.State()).To(Equal(StatePowerWait))

			tick(c.Timing().PowerOnCycles - 1)
			Expect(log.cmds).To(BeEmpty())
			Expect(c.Busy()).To(BeTrue())

			tickUntilIdle()

			Expect(kindsOf(log.cmds)).To(Equal([]string{
				"PREA", "REF", "REF", "REF", "REF",
				"REF", "REF", "REF", "REF", "MRS",
			}))
			Expect(log.cmds[0].Cycle).
				To(Equal(uint64(c.Timing().PowerOnCycles)))
			Expect(c.State()).To(Equal(StateIdle))
		})

		It("should load the CAS latency into the mode register", func() {
			var mrs Pins
			for c.Busy() {
				c.Tick()

				if signal.Decode(lastPins).Kind == signal.CmdKindModeRegisterSet {
					mrs = lastPins
				}
			}

			Expect(signal.DecodeModeRegister(mrs.Addr).CASLatency).
				To(Equal(c.Timing().CL))
			Expect(signal.DecodeModeRegister(mrs.Addr).BurstLength).
				To(Equal(1))
		})

		It("should read in 5 cycles", func() {
			tickUntilIdle()
			device.EXPECT().Sample().Return(uint32(0xED00), true)

			c.Issue(RequestRead, 1, 0)
			start := c.CurrentCycle() + 1

			pulses := 0
			latency := uint64(0)

			for i := 0; i < 20; i++ {
				c.Tick()

				if c.DataReady() {
					pulses++
					latency = c.CurrentCycle() - start
					Expect(c.ReadData()).To(Equal(uint32(0xED)))
				}
			}

			Expect(pulses).To(Equal(1))
			Expect(latency).To(Equal(uint64(5)))
			Expect(relativeTrace(log.since(start), start)).To(Equal([]string{
				"0 ACT b0 r0 c0",
				"2 READA b0 r0 c0",
			}))
		})

		It("should place write data on its byte lane", func() {
			tickUntilIdle()

			c.Issue(RequestWrite, 1, 0x1ED)

			var writePins Pins
			busyCycles := 0

			for c.Busy() || busyCycles == 0 {
				c.Tick()

				if signal.Decode(lastPins).Kind.IsWrite() {
					writePins = lastPins
				}

				if c.Busy() {
					busyCycles++
				}
			}

			t := c.Timing()
			Expect(writePins.DQ).To(Equal(uint32(0xED00)))
			Expect(writePins.DQM).To(Equal(uint8(0b1101)))
			Expect(writePins.DQOE).To(BeTrue())
			Expect(signal.Decode(writePins).Kind).
				To(Equal(signal.CmdKindWritePrecharge))
			Expect(busyCycles).To(Equal(t.TRCD + t.TWR + t.TRP - 1))
		})

		It("should accept the next request as soon as busy falls", func() {
			tickUntilIdle()

			c.Issue(RequestWrite, 7, 1)
			c.Tick()
			tickUntilIdle()

			c.Issue(RequestWrite, 7, 2)
			c.Tick()

			last := log.cmds[len(log.cmds)-1]
			Expect(last.Command).To(Equal("ACT"))
			Expect(last.Cycle).To(Equal(c.CurrentCycle()))
		})

		It("should ignore strobes while busy", func() {
			tickUntilIdle()
			device.EXPECT().Sample().Return(uint32(0), true)

			c.Issue(RequestRead, 0x20, 0)
			c.Tick()
			c.Issue(RequestWrite, 0x20, 1)
			tickUntilIdle()

			Expect(c.Stats().IgnoredStrobes).To(Equal(uint64(1)))
			Expect(c.Stats().Writes).To(Equal(uint64(0)))
			Expect(kindsOf(log.cmds)).NotTo(ContainElement("WRITEA"))
		})

		It("should refresh before a request that arrives when refresh is due",
			func() {
				tickUntilIdle()

				threshold := c.Timing().RefreshThreshold
				for c.RefreshScheduler().Counter() < threshold-1 {
					c.Tick()
				}

				Expect(c.RefreshScheduler().Due()).To(BeFalse())
				device.EXPECT().Sample().Return(uint32(0x5A), true)

				c.Issue(RequestRead, 0x10, 0)
				start := c.CurrentCycle() + 1
				tickUntilDataReady(50)

				Expect(kindsOf(log.since(start))).
					To(Equal([]string{"REF", "ACT", "READA"}))
				Expect(log.since(start)[0].Cycle).To(Equal(start))
				Expect(c.ReadData()).To(Equal(uint32(0x5A)))
				Expect(c.Stats().ScheduledRefreshes).To(Equal(uint64(1)))
			})

		It("should run an external refresh", func() {
			tickUntilIdle()
			tick(100)

			c.Issue(RequestRefresh, 0, 0)
			start := c.CurrentCycle() + 1
			tickUntilIdle()

			Expect(kindsOf(log.since(start))).To(Equal([]string{"REF"}))
			Expect(c.RefreshScheduler().Counter()).
				To(BeNumerically("<", c.Timing().TRFC+2))
			Expect(c.Stats().ExternalRefreshes).To(Equal(uint64(1)))
		})

		It("should trace request latency through task hooks", func() {
			tracer := hooking.NewLatencyTracer(
				cycleTeller{c}, hooking.WhatFilter("read"))
			c.AcceptHook(tracer)

			tickUntilIdle()
			device.EXPECT().Sample().Return(uint32(0), true)

			c.Issue(RequestRead, 0x30, 0)
			tickUntilIdle()

			Expect(tracer.TotalCount()).To(Equal(uint64(1)))
			Expect(tracer.AverageTime()).
				To(BeNumerically("==", c.Timing().ReadLatency()))
		})
	})

	Context("wider client port", func() {
		It("should use two byte lanes for 16-bit data", func() {
			c = build(MakeBuilder().WithDataWidth(16))
			tickUntilIdle()

			c.Issue(RequestWrite, 3, 0xBEEF)

			var writePins Pins
			for i := 0; i < 10; i++ {
				c.Tick()
				if signal.Decode(lastPins).Kind.IsWrite() {
					writePins = lastPins
				}
			}

			Expect(writePins.DQ).To(Equal(uint32(0xBEEF0000)))
			Expect(writePins.DQM).To(Equal(uint8(0b0011)))

			device.EXPECT().Sample().Return(uint32(0xBEEF1234), true)
			c.Issue(RequestRead, 2, 0)
			tickUntilDataReady(10)

			Expect(c.ReadData()).To(Equal(uint32(0xBEEF)))
		})
	})

	Context("reset", func() {
		runScenario := func() []CommandIssued {
			tickUntilIdle()
			c.Issue(RequestWrite, 0x1234, 0x77)
			c.Tick()
			tickUntilIdle()
			c.Issue(RequestRead, 0x1234, 0)
			tickUntilDataReady(20)
			tickUntilIdle()

			return log.cmds
		}

		DescribeTable("should behave the same after a reset from any state",
			func(ticksIntoRequest int) {
				device.EXPECT().Sample().Return(uint32(0x77), true).AnyTimes()

				c = build(MakeBuilder())
				fresh := relativeTrace(runScenario(), 0)

				log = &commandLog{}
				c = build(MakeBuilder())
				tickUntilIdle()
				c.Issue(RequestRead, 0x40000, 0)
				tick(ticksIntoRequest)

				c.Reset()
				Expect(c.Busy()).To(BeTrue())
				Expect(c.State()).To(Equal(StatePowerWait))

				base := c.CurrentCycle()
				log.cmds = nil
				again := relativeTrace(runScenario(), base)

				Expect(again).To(Equal(fresh))
			},
			Entry("while idle", 0),
			Entry("after activate", 1),
			Entry("after read", 3),
			Entry("while waiting for data", 4),
			Entry("right before sampling", 5),
		)

		It("should reset during initialization", func() {
			c = build(MakeBuilder())
			tick(c.Timing().PowerOnCycles + 3)
			Expect(log.cmds).NotTo(BeEmpty())

			c.Reset()
			base := c.CurrentCycle()
			log.cmds = nil
			tickUntilIdle()

			Expect(log.cmds[0].Command).To(Equal("PREA"))
			Expect(log.cmds[0].Cycle - base).
				To(Equal(uint64(c.Timing().PowerOnCycles)))
		})
	})

	Context("open page", func() {
		BeforeEach(func() {
			c = build(MakeBuilder().WithRowPolicy(OpenPage))
		})

		It("should keep rows open", func() {
			tickUntilIdle()
			device.EXPECT().Sample().Return(uint32(0), true).Times(3)
			start := c.CurrentCycle() + 1

			for _, addr := range []uint32{0x0, 0x4, 0x400} {
				c.Issue(RequestRead, addr, 0)
				tickUntilDataReady(20)
				tickUntilIdle()
			}

			Expect(kindsOf(log.since(start))).To(Equal([]string{
				"ACT", "READ", "READ", "PRE", "ACT", "READ",
			}))
		})

		It("should read a hit in CL+1 cycles", func() {
			tickUntilIdle()
			device.EXPECT().Sample().Return(uint32(0), true).Times(2)

			c.Issue(RequestRead, 0x0, 0)
			tickUntilDataReady(20)
			tickUntilIdle()

			c.Issue(RequestRead, 0x8, 0)
			start := c.CurrentCycle() + 1
			tickUntilDataReady(20)

			Expect(c.CurrentCycle() - start).
				To(Equal(uint64(c.Timing().CL + 1)))
		})

		It("should close open rows before refreshing", func() {
			tickUntilIdle()

			c.Issue(RequestWrite, 0x0, 1)
			c.Tick()
			tickUntilIdle()

			start := c.CurrentCycle() + 1
			for c.Stats().ScheduledRefreshes == 0 || c.Busy() {
				c.Tick()
			}

			Expect(kindsOf(log.since(start))).
				To(Equal([]string{"PREA", "REF"}))
		})
	})

	Context("without a device", func() {
		It("should complete a read with an undriven bus", func() {
			c = MakeBuilder().WithDeviceSpec(spec).Build("Ctrl")
			tickUntilIdle()

			c.Issue(RequestRead, 0x10, 0)
			tickUntilDataReady(20)

			Expect(c.ReadData()).To(BeZero())

			tickUntilIdle()
			Expect(c.Stats().Reads).To(Equal(uint64(1)))
		})
	})

	DescribeTable("should keep the refresh cadence under random traffic",
		func(policy RowPolicy) {
			device.EXPECT().Sample().Return(uint32(0), true).AnyTimes()
			c = build(MakeBuilder().WithRowPolicy(policy))

			rng := rand.New(rand.NewSource(int64(policy) + 1))
			kinds := []RequestKind{RequestRead, RequestWrite}

			t := c.Timing()
			reads, pulses := 0, 0

			for i := 0; i < 20*t.RefreshThreshold; i++ {
				if !c.Busy() && rng.Intn(8) != 0 {
					kind := kinds[rng.Intn(len(kinds))]
					if kind == RequestRead {
						reads++
					}

					c.Issue(kind, rng.Uint32(), rng.Uint32())
				}

				c.Tick()

				if c.DataReady() {
					pulses++
				}
			}

			for c.Busy() {
				c.Tick()

				if c.DataReady() {
					pulses++
				}
			}

			Expect(pulses).To(Equal(reads))
			Expect(c.Stats().ScheduledRefreshes).To(BeNumerically(">=", 19))
			Expect(c.Stats().MaxRefreshGap).
				To(BeNumerically("<=", t.MaxRefreshInterval))
			Expect(c.Stats().IgnoredStrobes).To(BeZero())
		},
		Entry("close page", ClosePage),
		Entry("open page", OpenPage),
	)
})
