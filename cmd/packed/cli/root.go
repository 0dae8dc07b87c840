package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the root command for the packed CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packed",
		Short: "Embed compressed assets through native object files",
		Long: "packed embeds large binary assets into Go programs without the compile-time\n" +
			"cost of literal byte inclusion. 'packed pack' compresses each asset once into\n" +
			"a native object file resolved by the linker; 'packed gen' emits a small\n" +
			"accessor per use-site that decompresses the linked bytes at run time.",
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("packed {{.Version}}\n")
	cmd.Version = Version

	// Register all subcommands.
	cmd.AddCommand(newPackCmd())
	cmd.AddCommand(newGenCmd())
	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Run executes the root command and exits with the appropriate code.
func Run() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !IsSilentError(err) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		}
		os.Exit(1)
	}
}
