package cmd

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Lynxx9/MNFTL/ftlevent"
)

var postmarkCmd = &cobra.Command{
	Use:   "postmark <dataset_MB> <write_ratio> [ops_mul] [warmup_mul] [seed]",
	Short: "Prefill, warm up, then replay a random mixed read/write workload",
	Args:  cobra.RangeArgs(2, 5),
	RunE: func(_ *cobra.Command, args []string) error {
		datasetMB, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("mnftlsim: invalid dataset_MB %q", args[0])
		}
		writeRatio, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("mnftlsim: invalid write_ratio %q", args[1])
		}

		opsMul := 4.0
		warmupMul := 1.0
		seed := int64(1)

		if len(args) >= 3 {
			opsMul, err = strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("mnftlsim: invalid ops_mul %q", args[2])
			}
		}
		if len(args) >= 4 {
			warmupMul, err = strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("mnftlsim: invalid warmup_mul %q", args[3])
			}
		}
		if len(args) == 5 {
			seed, err = strconv.ParseInt(args[4], 10, 64)
			if err != nil {
				return fmt.Errorf("mnftlsim: invalid seed %q", args[4])
			}
		}

		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.close()

		pages := r.datasetPages(datasetMB)
		rng := rand.New(rand.NewSource(seed))

		// Prefill: every logical page gets an initial write.
		for lpn := uint64(0); lpn < pages; lpn++ {
			if err := r.issue(ftlevent.Write, lpn); err != nil {
				return err
			}
		}

		// Warmup: random mixed traffic. It goes through the same recorder as
		// the measured phase, so the final summary includes the prefill and
		// warmup operations as well as the measured ones.
		warmupOps := int(float64(pages) * warmupMul)
		for i := 0; i < warmupOps; i++ {
			lpn := uint64(rng.Int63n(int64(pages)))
			if rng.Float64() < writeRatio {
				if err := r.issue(ftlevent.Write, lpn); err != nil {
					return err
				}
			} else if err := r.issue(ftlevent.Read, lpn); err != nil {
				return err
			}
		}
		measuredOps := int(float64(pages) * opsMul)
		for i := 0; i < measuredOps; i++ {
			lpn := uint64(rng.Int63n(int64(pages)))
			if rng.Float64() < writeRatio {
				if err := r.issue(ftlevent.Write, lpn); err != nil {
					return err
				}
			} else if err := r.issue(ftlevent.Read, lpn); err != nil {
				return err
			}
		}

		printSummary("postmark", r)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postmarkCmd)
}
