package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build output directory and all artifacts",
		Long: "clean deletes the artifact directory wholesale. Preparation never removes\n" +
			"individual artifacts, so assets deleted between pack runs leave orphaned\n" +
			"pairs behind; clean followed by pack yields a directory with no leftovers.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			root, err := FindProjectRoot(wd)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}

			out := outDir
			if out == "" {
				out = DefaultOutDir(root)
			}
			if err := os.RemoveAll(out); err != nil {
				return fmt.Errorf("remove %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Artifacts cleaned.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <project>/"+OutDirName+")")
	return cmd
}
