package org

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("ChannelImpl", func() {
	var (
		mockCtrl *gomock.Controller
		banks    []*MockBank
		channel  *ChannelImpl
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		banks = nil
		channel = &ChannelImpl{}

		for i := 0; i < 4; i++ {
			b := NewMockBank(mockCtrl)
			banks = append(banks, b)
			channel.Banks = append(channel.Banks, b)
		}

		channel.Timing = Timing{
			SameBank:   MakeTimeTable(),
			OtherBanks: MakeTimeTable(),
		}
		channel.Timing.SameBank.Add(
			signal.CmdKindActivate, signal.CmdKindRead, 2)
		channel.Timing.OtherBanks.Add(
			signal.CmdKindActivate, signal.CmdKindActivate, 1)
		channel.Timing.SameBank.Add(
			signal.CmdKindRefresh, signal.CmdKindActivate, 5)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should ask the addressed bank if a command is ready", func() {
		cmd := &signal.Command{Kind: signal.CmdKindRead, Bank: 2}
		banks[2].EXPECT().CyclesToCmdAvailable(signal.CmdKindRead).Return(0)

		Expect(channel.Ready(cmd)).To(BeTrue())
	})

	It("should need every bank for rank level commands", func() {
		cmd := &signal.Command{Kind: signal.CmdKindRefresh}
		banks[0].EXPECT().CyclesToCmdAvailable(signal.CmdKindRefresh).Return(0)
		banks[1].EXPECT().CyclesToCmdAvailable(signal.CmdKindRefresh).Return(3)

		Expect(channel.Ready(cmd)).To(BeFalse())
	})

	It("should tell if commands become ready within a number of cycles", func() {
		banks[1].EXPECT().CyclesToCmdAvailable(signal.CmdKindRead).Return(1)
		banks[1].EXPECT().CyclesToCmdAvailable(signal.CmdKindWrite).Return(1)

		Expect(channel.ReadyWithin(1, 1,
			signal.CmdKindRead, signal.CmdKindWrite)).To(BeTrue())
	})

	It("should update the same bank and the other banks", func() {
		cmd := &signal.Command{Kind: signal.CmdKindActivate, Bank: 1}

		banks[1].EXPECT().UpdateTiming(signal.CmdKindRead, 2)
		banks[0].EXPECT().UpdateTiming(signal.CmdKindActivate, 1)
		banks[2].EXPECT().UpdateTiming(signal.CmdKindActivate, 1)
		banks[3].EXPECT().UpdateTiming(signal.CmdKindActivate, 1)

		channel.UpdateTiming(cmd)
	})

	It("should apply rank level commands to every bank", func() {
		cmd := &signal.Command{Kind: signal.CmdKindRefresh}

		for _, b := range banks {
			b.EXPECT().UpdateTiming(signal.CmdKindActivate, 5)
			b.EXPECT().StartCommand(cmd)
		}

		channel.UpdateTiming(cmd)
		channel.StartCommand(cmd)
	})

	It("should tell if any row is open", func() {
		banks[0].EXPECT().OpenRow().Return(-1, false)
		banks[1].EXPECT().OpenRow().Return(7, true)

		Expect(channel.AnyRowOpen()).To(BeTrue())
	})
})

var _ = Describe("BankImpl", func() {
	It("should count down to the command", func() {
		b := NewBankImpl("Ctrl.Bank[0]")

		b.UpdateTiming(signal.CmdKindRead, 2)
		b.UpdateTiming(signal.CmdKindRead, 1)
		Expect(b.CyclesToCmdAvailable(signal.CmdKindRead)).To(Equal(2))

		b.Tick()
		b.Tick()
		b.Tick()
		Expect(b.CyclesToCmdAvailable(signal.CmdKindRead)).To(Equal(0))
	})

	It("should track the open row", func() {
		b := NewBankImpl("Ctrl.Bank[0]")

		b.StartCommand(&signal.Command{Kind: signal.CmdKindActivate, Row: 9})
		row, open := b.OpenRow()
		Expect(open).To(BeTrue())
		Expect(row).To(Equal(9))

		b.StartCommand(&signal.Command{Kind: signal.CmdKindReadPrecharge})
		_, open = b.OpenRow()
		Expect(open).To(BeFalse())
	})

	It("should reset", func() {
		b := NewBankImpl("Ctrl.Bank[0]")
		b.StartCommand(&signal.Command{Kind: signal.CmdKindActivate, Row: 1})
		b.UpdateTiming(signal.CmdKindPrecharge, 4)

		b.Reset()

		_, open := b.OpenRow()
		Expect(open).To(BeFalse())
		Expect(b.CyclesToCmdAvailable(signal.CmdKindPrecharge)).To(Equal(0))
	})
})

var _ = Describe("TimeTable", func() {
	It("should return the largest restriction", func() {
		t := MakeTimeTable()
		t.Add(signal.CmdKindWrite, signal.CmdKindPrecharge, 2)
		t.Add(signal.CmdKindWrite, signal.CmdKindPrecharge, 3)

		Expect(t.MinCycles(signal.CmdKindWrite, signal.CmdKindPrecharge)).
			To(Equal(3))
		Expect(t.MinCycles(signal.CmdKindWrite, signal.CmdKindRead)).
			To(Equal(0))
	})
})
