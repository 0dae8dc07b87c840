package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the packed CLI version. Release builds override it with
// -ldflags "-X .../cli.Version=...".
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "packed", Version)
			return nil
		},
	}
}
