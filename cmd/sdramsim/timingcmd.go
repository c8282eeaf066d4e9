package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/sdramctl/mem/sdram"
	"github.com/sarchlab/sdramctl/sim/timing"
)

func newTimingCmd() *cobra.Command {
	var (
		freqMHz   float64
		refreshUs int
	)

	cmd := &cobra.Command{
		Use:   "timing",
		Short: "Print the delays derived for a clock frequency.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := sdram.DefaultDeviceSpec()
			freq := timing.Freq(freqMHz) * timing.MHz

			t, err := sdram.DeriveTiming(freq, spec, refreshUs)
			if freqMHz > 0 {
				if perr := printTiming(cmd, t); perr != nil {
					return perr
				}
			}

			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "validation: %v\n", err)
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "validation: ok")

			return nil
		},
	}

	cmd.Flags().Float64Var(&freqMHz, "freq",
		envFloat("SDRAMSIM_FREQ_MHZ", 64), "clock frequency in MHz")
	cmd.Flags().IntVar(&refreshUs, "refresh-us",
		envInt("SDRAMSIM_REFRESH_US", 15), "microseconds between refreshes")

	return cmd
}

func printTiming(cmd *cobra.Command, t sdram.Timing) error {
	rows := []struct {
		name   string
		cycles int
		min    sdram.Constraint
	}{
		{"tRCD", t.TRCD, t.Spec.TRCD},
		{"tRP", t.TRP, t.Spec.TRP},
		{"tRAS", t.TRAS, t.Spec.TRAS},
		{"tRC", t.TRC, t.Spec.TRC},
		{"tRFC", t.TRFC, t.Spec.TRFC},
		{"tWR", t.TWR, t.Spec.TWR},
		{"tMRD", t.TMRD, t.Spec.TMRD},
		{"tRRD", t.TRRD, t.Spec.TRRD},
		{"CL", t.CL, t.Spec.TAA},
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "clock\t%.3f MHz\t%.3f ns\n",
		float64(t.Freq)/float64(timing.MHz), t.Period()*1e9)
	fmt.Fprintln(w, "delay\tcycles\tminimum")

	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%v\n", r.name, r.cycles, r.min)
	}

	fmt.Fprintf(w, "power-on wait\t%d\t%v\n", t.PowerOnCycles, t.Spec.PowerOnWait)
	fmt.Fprintf(w, "init refreshes\t%d\t\n", t.InitRefreshes)
	fmt.Fprintf(w, "refresh threshold\t%d\t\n", t.RefreshThreshold)
	fmt.Fprintf(w, "worst refresh delay\t%d\t\n", t.WorstCaseRefreshDelay())
	fmt.Fprintf(w, "max refresh interval\t%d\t%v\n",
		t.MaxRefreshInterval, t.Spec.MaxRefreshInterval())
	fmt.Fprintf(w, "read latency\t%d\t\n", t.ReadLatency())

	return w.Flush()
}
