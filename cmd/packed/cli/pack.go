package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packed-dev/packed"
	"github.com/packed-dev/packed/cmd/packed/cli/gensite"
	"github.com/packed-dev/packed/cmd/packed/cli/packer"
	"github.com/packed-dev/packed/cmd/packed/cli/target"
)

func newPackCmd() *cobra.Command {
	var (
		level  int
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "pack <root>",
		Short: "Compress assets under a root into linkable object artifacts",
		Long: "pack walks the given file or directory (relative to the project root, the\n" +
			"directory containing go.mod), compresses every regular file with zstd, and\n" +
			"writes one object artifact plus one length record per asset into the build\n" +
			"output directory. Run it once per build, before any 'packed gen'.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			goarch := buildGOARCH()
			if gensite.SelectStrategy(goarch) == gensite.Inline {
				// Inline targets embed at the use-site; there is nothing
				// to prepare.
				fmt.Fprintf(cmd.ErrOrStderr(), "target %s embeds assets inline; no artifacts to prepare\n", goarch)
				return nil
			}

			tgt, err := target.FromBuildEnv(buildGOOS(), goarch)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}

			out := outDir
			if out == "" {
				out = DefaultOutDir(root)
			}

			manifest, err := packer.New(args[0]).
				Level(level).
				ProjectRoot(root).
				OutDir(out).
				Target(tgt).
				Hooks(packer.Directives{W: cmd.OutOrStdout()}).
				Run()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}

			files, original, compressed, ratio := manifest.Summary()
			fmt.Fprintf(cmd.ErrOrStderr(), "packed %d assets: %d bytes -> %d bytes (mean ratio %.2fx)\n",
				files, original, compressed, ratio)
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", packed.DefaultLevel, "zstd compression level (1-21)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <project>/"+OutDirName+")")
	return cmd
}
