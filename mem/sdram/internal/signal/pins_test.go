package signal

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pins", func() {
	It("should drive the truth table levels", func() {
		p := Encode(Command{Kind: CmdKindActivate, Bank: 2, Row: 0x5A5})
		Expect([]bool{p.CSn, p.RASn, p.CASn, p.WEn}).
			To(Equal([]bool{false, false, true, true}))
		Expect(p.BA).To(Equal(uint8(2)))
		Expect(p.Addr).To(Equal(uint16(0x5A5)))

		p = Encode(Command{Kind: CmdKindWritePrecharge, Bank: 1, Col: 0x3F})
		Expect([]bool{p.CSn, p.RASn, p.CASn, p.WEn}).
			To(Equal([]bool{false, true, false, false}))
		Expect(p.Addr).To(Equal(uint16(0x43F)))

		p = Encode(Command{Kind: CmdKindRefresh})
		Expect([]bool{p.CSn, p.RASn, p.CASn, p.WEn}).
			To(Equal([]bool{false, false, false, true}))
	})

	DescribeTable("should decode what it encodes",
		func(cmd Command) {
			Expect(Decode(Encode(cmd))).To(Equal(cmd))
		},
		Entry("nop", Command{Kind: CmdKindNOP}),
		Entry("deselect", Command{Kind: CmdKindDeselect}),
		Entry("activate", Command{Kind: CmdKindActivate, Bank: 3, Row: 0x7FF}),
		Entry("read", Command{Kind: CmdKindRead, Bank: 1, Col: 0xFF}),
		Entry("read auto precharge",
			Command{Kind: CmdKindReadPrecharge, Bank: 2, Col: 0x10}),
		Entry("write", Command{Kind: CmdKindWrite, Bank: 0, Col: 0x01}),
		Entry("write auto precharge",
			Command{Kind: CmdKindWritePrecharge, Bank: 3, Col: 0x80}),
		Entry("precharge", Command{Kind: CmdKindPrecharge, Bank: 2}),
		Entry("precharge all", Command{Kind: CmdKindPrechargeAll}),
		Entry("refresh", Command{Kind: CmdKindRefresh}),
		Entry("mode register set",
			Command{Kind: CmdKindModeRegisterSet, ModeRegister: 0x20}),
		Entry("burst stop", Command{Kind: CmdKindBurstStop}),
	)

	It("should ignore every other pin when deselected", func() {
		p := Encode(Command{Kind: CmdKindRefresh})
		p.CSn = true

		Expect(Decode(p).Kind).To(Equal(CmdKindDeselect))
	})
})

var _ = Describe("ModeRegister", func() {
	It("should select burst length 1 and the CAS latency", func() {
		m := DecodeModeRegister(ModeRegisterValue(3))

		Expect(m.BurstLength).To(Equal(1))
		Expect(m.CASLatency).To(Equal(3))
		Expect(m.Interleaved).To(BeFalse())
		Expect(ModeRegisterValue(2)).To(Equal(uint16(0x20)))
	})

	It("should decode other burst lengths", func() {
		Expect(DecodeModeRegister(0x23).BurstLength).To(Equal(8))
		Expect(DecodeModeRegister(0x27).BurstLength).To(Equal(-1))
		Expect(DecodeModeRegister(0x28).Interleaved).To(BeTrue())
	})
})

var _ = Describe("CommandKind", func() {
	It("should tell rank level commands", func() {
		Expect(CmdKindRefresh.IsRankLevel()).To(BeTrue())
		Expect(CmdKindPrechargeAll.IsRankLevel()).To(BeTrue())
		Expect(CmdKindPrecharge.IsRankLevel()).To(BeFalse())
	})

	It("should print", func() {
		Expect(CmdKindReadPrecharge.String()).To(Equal("READA"))
		Expect(Command{Kind: CmdKindActivate, Bank: 1, Row: 0x10}.String()).
			To(Equal("ACT b1 r0x10"))
		Expect(CommandKind(99).String()).To(Equal("CommandKind(99)"))
	})
})
