package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"devtriage/internal/discovery"
)

func newDiscoverCmd(a *app) *cobra.Command {
	var (
		ports            string
		serviceDetection bool
		skipPing         bool
	)

	cmd := &cobra.Command{
		Use:   "discover <cidr|host>...",
		Short: "Scan networks for devices reachable over ssh or adb",
		Long:  "Runs nmap against the given ranges and lists hosts with an open ssh or adb-over-tcp port.\nRequires the nmap binary.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			dc := cfg.Discovery
			if cmd.Flags().Changed("ports") {
				dc.Ports = ports
			}
			if cmd.Flags().Changed("service-detection") {
				dc.ServiceDetection = serviceDetection
			}
			if cmd.Flags().Changed("skip-ping") {
				dc.SkipHostDiscovery = skipPing
			}

			candidates, err := discovery.FromConfig(dc).Scan(cmd.Context(), args)
			if err != nil {
				return err
			}
			if candidates == nil {
				candidates = []discovery.Candidate{}
			}

			w := cmd.OutOrStdout()
			if format != "text" {
				return encode(w, format, candidates)
			}
			if len(candidates) == 0 {
				fmt.Fprintln(w, "No devices found.")
				return nil
			}
			tw := newTable(w)
			fmt.Fprintln(tw, "ADDRESS\tHOSTNAME\tTRANSPORT\tPORT\tSERVICE")
			for _, c := range candidates {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.Address, c.Hostname, c.Transport, c.Port, c.Service)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&ports, "ports", discovery.DefaultPorts, "ports to scan")
	cmd.Flags().BoolVar(&serviceDetection, "service-detection", false, "enable nmap service detection (-sV)")
	cmd.Flags().BoolVar(&skipPing, "skip-ping", false, "treat all hosts as up (-Pn)")
	return cmd
}
