package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"devtriage/internal/domain"
	"devtriage/internal/dumper"
)

func newDumpCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the settings namespaces of a device",
		Long:  "Runs 'settings list' for the system, secure and global namespaces and prints the result.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			conn, err := a.connect(cmd.Context(), target)
			if err != nil {
				return err
			}
			defer conn.Close()

			snapshot, err := dumper.Dump(cmd.Context(), conn)
			if err != nil {
				return err
			}
			return writeSnapshot(cmd.OutOrStdout(), format, snapshot)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "configured target name")
	return cmd
}

// writeSnapshot prints a snapshot as settings list sections, JSON or YAML
func writeSnapshot(w io.Writer, format string, snapshot domain.Snapshot) error {
	if format != "text" && format != "" {
		return encode(w, format, snapshot)
	}
	for i, ns := range snapshot.Namespaces() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s]\n", ns)
		settings := snapshot[ns]
		for _, key := range settings.Keys() {
			if _, err := fmt.Fprintf(w, "%s=%s\n", key, settings[key]); err != nil {
				return err
			}
		}
	}
	return nil
}
