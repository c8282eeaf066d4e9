package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/sdramctl/mem/sdram/harness"
)

func newTrafficCmd() *cobra.Command {
	opts := &boardOptions{}

	var (
		seed       int64
		reads      int
		writes     int
		refreshes  int
		maxAddress uint32
	)

	cmd := &cobra.Command{
		Use:   "traffic",
		Short: "Run seeded random reads, writes and refreshes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reads < 0 || writes < 0 || refreshes < 0 {
				return fmt.Errorf("request counts cannot be negative")
			}

			if err := opts.validate(); err != nil {
				return err
			}

			if maxAddress < uint32(opts.width/8) {
				return fmt.Errorf("max address %d is smaller than one word",
					maxAddress)
			}

			requests := uint64(reads + writes + refreshes)

			s, err := newSession(opts, "traffic", requests)
			if err != nil {
				return err
			}
			defer s.close()

			agent := harness.MakeAgentBuilder().
				WithSeed(seed).
				WithMaxAddress(maxAddress).
				WithReadLeft(reads).
				WithWriteLeft(writes).
				WithRefreshLeft(refreshes).
				Build(s.board.Controller)
			s.board.Attach(agent)

			if err := s.run(requests); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d mismatches\n", agent.Mismatches())

			if err := s.report(cmd.OutOrStdout()); err != nil {
				return err
			}

			if agent.Mismatches() > 0 {
				return fmt.Errorf("%d mismatches", agent.Mismatches())
			}

			return nil
		},
	}

	opts.addFlags(cmd.Flags())

	fs := cmd.Flags()
	fs.Int64Var(&seed, "seed", int64(envInt("SDRAMSIM_SEED", 1)),
		"seed of the random traffic")
	fs.IntVar(&reads, "reads", envInt("SDRAMSIM_READS", 2000), "reads to issue")
	fs.IntVar(&writes, "writes", envInt("SDRAMSIM_WRITES", 2000),
		"writes to issue")
	fs.IntVar(&refreshes, "refreshes", envInt("SDRAMSIM_REFRESHES", 20),
		"external refreshes to issue")
	fs.Uint32Var(&maxAddress, "max-address", 1<<20,
		"addresses are drawn from [0, max-address)")

	return cmd
}
