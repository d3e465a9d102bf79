package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Normalize a request and print its canonical form",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(input, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "valid request\n")
			fmt.Fprintf(out, "  granularity: %s\n", req.Granularity)
			fmt.Fprintf(out, "  horizon: %d\n", req.Horizon)
			fmt.Fprintf(out, "  backend: %s\n", req.Backend)
			if req.DemoMode {
				fmt.Fprintf(out, "  demo series: %d\n", req.DemoSeriesCount)
				return nil
			}
			for _, s := range req.Series() {
				fmt.Fprintf(out, "  series %s: %d points\n", s.Name, len(s.Values))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (JSON or YAML)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
