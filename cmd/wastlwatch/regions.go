package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/wastlwatch/config"
)

// regionsCmd lists the region catalog.
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List known regions",
	Long: `List the regions that can be used as "region:" in a config file,
together with the number of dispatch pages each one expands to.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME\tPAGES")
		for _, r := range config.Regions() {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Key, r.Name, len(r.Pages))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
