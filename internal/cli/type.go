package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/animal"
)

// typeCommand creates the animal type management command.
func (c *CLI) typeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage animal types",
	}
	cmd.AddCommand(c.typeAddCommand())
	cmd.AddCommand(c.typeListCommand())
	return cmd
}

func (c *CLI) typeAddCommand() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an animal type",
		Args:  cobra.ExactArgs(1),
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

			t, err := reg.CreateType(ctx, &animal.Type{Name: args[0], Description: description})
			if err != nil {
				return err
			}
			printSuccess("Created type %s", StyleHighlight.Render(t.Name))
			printKeyValue("ID", t.ID)
			printNextStep("Register an animal", fmt.Sprintf("pedigree animal add --type %s --identifier <tag>", t.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	return cmd
}

func (c *CLI) typeListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List animal types",
		Args:  cobra.NoArgs,
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

			types, err := reg.ListTypes(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(types)
			}
			if len(types) == 0 {
				printInfo("No animal types yet")
				return nil
			}
			for _, t := range types {
				fmt.Printf("%s  %s\n", StyleValue.Render(t.Name), StyleDim.Render(t.ID))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
