package cmd

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Lynxx9/MNFTL/ftlevent"
)

var tiotechCmd = &cobra.Command{
	Use:   "tiotech <threads> [dataset_MB] [write_ratio] [seed]",
	Short: "Interleave per-thread logical regions of random mixed read/write traffic",
	Args:  cobra.RangeArgs(1, 4),
	RunE: func(_ *cobra.Command, args []string) error {
		threads, err := strconv.Atoi(args[0])
		if err != nil || threads <= 0 {
			return fmt.Errorf("mnftlsim: invalid threads %q", args[0])
		}

		datasetMB := 8
		writeRatio := 0.5
		seed := int64(1)

		if len(args) >= 2 {
			datasetMB, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("mnftlsim: invalid dataset_MB %q", args[1])
			}
		}
		if len(args) >= 3 {
			writeRatio, err = strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("mnftlsim: invalid write_ratio %q", args[2])
			}
		}
		if len(args) == 4 {
			seed, err = strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return fmt.Errorf("mnftlsim: invalid seed %q", args[3])
			}
		}

		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.close()

		pages := r.datasetPages(datasetMB)
		stripe := pages / uint64(threads)
		if stripe == 0 {
			stripe = 1
		}

		rng := rand.New(rand.NewSource(seed))
		opsPerStripe := int(stripe) * 4

		// Threads here are logical regions of the address space interleaved
		// round-robin, not OS threads: the core has no suspension points to
		// interleave around (spec.md §5), so concurrency is simulated by
		// address striping rather than goroutines.
		for round := 0; round < opsPerStripe; round++ {
			for thread := 0; thread < threads; thread++ {
				base := uint64(thread) * stripe
				lpn := base + uint64(rng.Int63n(int64(stripe)))

				var err error
				if rng.Float64() < writeRatio {
					err = r.issue(ftlevent.Write, lpn)
				} else {
					err = r.issue(ftlevent.Read, lpn)
				}
				if err != nil {
					return err
				}
			}
		}

		printSummary("tiotech", r)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tiotechCmd)
}
