package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packed-dev/packed"
	"github.com/packed-dev/packed/cmd/packed/cli/gensite"
)

func newGenCmd() *cobra.Command {
	var (
		artifacts string
		pkgName   string
		funcName  string
		output    string
		level     int
	)

	cmd := &cobra.Command{
		Use:   "gen <asset>",
		Short: "Generate the use-site accessor for one asset",
		Long: "gen emits a Go source file with an accessor returning the decompressed\n" +
			"contents of one asset. The asset path is relative to the project root (the\n" +
			"directory containing go.mod). On native targets the accessor references the\n" +
			"object artifact written by 'packed pack'; on targets without native linking\n" +
			"(GOARCH=wasm) the compressed bytes are inlined and pack is not needed.\n\n" +
			"Typical use is a go:generate directive next to the consuming code:\n\n" +
			"    //go:generate packed gen assets/logo.png",
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

			asset := filepath.ToSlash(args[0])

			outPath := output
			if outPath == "" {
				base := filepath.Base(asset)
				base = strings.TrimSuffix(base, filepath.Ext(base))
				outPath = fileStem(base) + "_packed.go"
			}
			if !filepath.IsAbs(outPath) {
				outPath = filepath.Join(wd, outPath)
			}
			genDir := filepath.Dir(outPath)

			pkg := pkgName
			if pkg == "" {
				pkg, err = DefaultPackage(root, genDir)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return NewSilentError(err)
				}
			}
			fn := funcName
			if fn == "" {
				fn = gensite.AccessorName(asset)
			}

			out := artifacts
			if out == "" {
				out = DefaultOutDir(root)
			}

			strategy := gensite.SelectStrategy(buildGOARCH())
			src, err := gensite.Generate(gensite.Site{
				AssetPath:   asset,
				ProjectRoot: root,
				OutDir:      out,
				GenDir:      genDir,
				Package:     pkg,
				FuncName:    fn,
				Strategy:    strategy,
				Level:       level,
			})
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}

			if err := os.WriteFile(outPath, src, 0o644); err != nil {
				return fmt.Errorf("write generated file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", outPath, strategy)
			return nil
		},
	}

	cmd.Flags().StringVar(&artifacts, "artifacts", "", "artifact directory written by pack (default <project>/"+OutDirName+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "generated file path (default <asset>_packed.go in the current directory)")
	cmd.Flags().StringVar(&pkgName, "package", "", "package name for the generated file (default from its directory)")
	cmd.Flags().StringVar(&funcName, "func", "", "accessor function name (default derived from the asset name)")
	cmd.Flags().IntVar(&level, "level", packed.DefaultInlineLevel, "zstd level for inline embedding (1-21)")
	return cmd
}

// fileStem reduces s to something safe in a file name.
func fileStem(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "asset"
	}
	return b.String()
}
