package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Lynxx9/MNFTL/ftlevent"
)

var bonnieCmd = &cobra.Command{
	Use:   "bonnie <dataset_MB> [write_passes]",
	Short: "Sequential write then sequential read over the dataset",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		datasetMB, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("mnftlsim: invalid dataset_MB %q", args[0])
		}
		writePasses := 1
		if len(args) == 2 {
			writePasses, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("mnftlsim: invalid write_passes %q", args[1])
			}
		}

		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.close()

		pages := r.datasetPages(datasetMB)

		for pass := 0; pass < writePasses; pass++ {
			for lpn := uint64(0); lpn < pages; lpn++ {
				if err := r.issue(ftlevent.Write, lpn); err != nil {
					return err
				}
			}
		}

		for lpn := uint64(0); lpn < pages; lpn++ {
			if err := r.issue(ftlevent.Read, lpn); err != nil {
				return err
			}
		}

		printSummary("bonnie", r)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bonnieCmd)
}
