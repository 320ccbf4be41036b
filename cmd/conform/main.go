package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "conform",
	Short: "conform — HTTP contract harness for the user/product/order services",
	Long: "conform runs named test cases against a deployed user, product or order\n" +
		"service (or the gateway in front of them), judges each response against\n" +
		"the expectation encoded in the case name and the expected-body fixture,\n" +
		"and writes a report. Exit status is non-zero when any case fails.",
}

func init() {
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(workloadCmd)
	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(historyCmd)
}
