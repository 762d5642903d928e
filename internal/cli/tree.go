package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

// treeCommand creates the tree command, which prints a pedigree.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		generations int
		asJSON      bool
		plain       bool
	)

	cmd := &cobra.Command{
		Use:   "tree <animal-id>",
		Short: "Print the ancestry of an animal",
		Long: `Print the ancestry of an animal as an indented tree, mother first.

Use --json for the raw pedigree structure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg, err := c.openRegistry(ctx, cfg)
			if err != nil {
				return err
			}
			defer reg.Close()

			prog := newProgress(ctx)
			tree, err := c.newResolver(reg).Resolve(ctx, args[0], generations)
			if err != nil {
				return err
			}
			prog.done("resolved pedigree", "animals", tree.Count(), "generations", pedigree.ClampGenerations(generations))

			if asJSON {
				return writeJSON(tree)
			}
			fmt.Print(treeText(presentation.Build(tree, tree.Identifier), presentation.DefaultScale, plain))
			printStats(tree.Count(), tree.MaxDepth(), false)
			return nil
		},
	}

	cmd.Flags().IntVarP(&generations, "generations", "g", pedigree.DefaultGenerations, "generations above the animal (1-5)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the pedigree as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")

	return cmd
}
