// Command mnftlsim drives the MNFTL core with the three benchmark
// workloads named in spec.md §6.6.
package main

import "github.com/Lynxx9/MNFTL/cmd/mnftlsim/cmd"

func main() {
	cmd.Execute()
}
