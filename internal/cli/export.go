package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/artifact"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format      string
		generations int
		outDir      string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "export <animal-id>",
		Short: "Export a pedigree as PNG, PDF or JSON",
		Long: `Export the ancestry of an animal to a file named
pedigree_<name>_<YYYYMMDD_HHMM>.<ext> in the output directory.

PDF export requires rsvg-convert (librsvg) on PATH.`,
		Example: `  pedigree export 3f2a... --format png
  pedigree export 3f2a... -f pdf -g 4 -o exports/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg, err := c.openRegistry(ctx, cfg)
			if err != nil {
				return err
			}
			defer reg.Close()

			sink, err := artifact.NewDirSink(outDir)
			if err != nil {
				return err
			}
			deps, err := c.newPipeline(ctx, cfg, newSpinnerSurface(ctx), sink, noCache, nil)
			if err != nil {
				return err
			}
			defer deps.Close()

			prog := newProgress(ctx)
			tree, err := c.newResolver(reg).Resolve(ctx, args[0], generations)
			if err != nil {
				return err
			}
			prog.done("resolved pedigree", "animals", tree.Count())

			a, err := deps.Pipeline.Export(ctx, f, tree)
			if err != nil {
				return err
			}
			printFile(a.Location)
			printStats(tree.Count(), tree.MaxDepth(), a.Cached)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", render.FormatPNG, "output format: png, pdf or json")
	cmd.Flags().IntVarP(&generations, "generations", "g", pedigree.DefaultGenerations, "generations above the animal (1-5)")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}
