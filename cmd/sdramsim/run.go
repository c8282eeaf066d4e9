package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/sdramctl/mem/sdram/harness"
)

func newRunCmd() *cobra.Command {
	opts := &boardOptions{}
	var blockSize uint32

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demonstration: a short scenario, then a block test.",
		Long: `run writes 0x3E to word 0 and 0xED to word 1 of the port, ` +
			`reads word 1 back, then writes a block with byte i = i mod 256 ` +
			`and verifies it. The report is printed as it would appear on ` +
			`the serial link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			if blockSize == 0 || blockSize%4 != 0 {
				return fmt.Errorf("block size %d is not a positive multiple of 4",
					blockSize)
			}

			requests := 3 + 2*uint64(blockSize)/uint64(opts.width/8)

			s, err := newSession(opts, "demo", requests)
			if err != nil {
				return err
			}
			defer s.close()

			demo := harness.MakeDemoBuilder().
				WithSerial(cmd.OutOrStdout()).
				WithBlockSize(blockSize).
				WithAutoStart().
				Build(s.board.Controller)
			s.board.Attach(demo)

			if err := s.run(requests); err != nil {
				return err
			}

			if err := s.report(cmd.OutOrStdout()); err != nil {
				return err
			}

			if !demo.Passed() {
				return fmt.Errorf("demo failed with %d mismatches",
					demo.Mismatches())
			}

			return nil
		},
	}

	opts.addFlags(cmd.Flags())
	cmd.Flags().Uint32Var(&blockSize, "block",
		uint32(envInt("SDRAMSIM_BLOCK_SIZE", 1<<20)),
		"bytes to write and verify")

	return cmd
}
