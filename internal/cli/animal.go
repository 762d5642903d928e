package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/animal"
)

// animalCommand creates the animal management command.
func (c *CLI) animalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animal",
		Short: "Manage animal records",
	}

	cmd.AddCommand(c.animalAddCommand())
	cmd.AddCommand(c.animalListCommand())
	cmd.AddCommand(c.animalShowCommand())
	cmd.AddCommand(c.animalRemoveCommand())
	cmd.AddCommand(c.animalOffspringCommand())

	return cmd
}

// animalFlags are the writable record fields.
type animalFlags struct {
	identifier string
	name       string
	gender     string
	born       string
	typeID     string
	mother     string
	father     string
	inactive   bool
	notes      string
}

func (f *animalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.identifier, "identifier", "", "tag or registration number (required)")
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.gender, "gender", "unknown", "female, male or unknown")
	cmd.Flags().StringVar(&f.born, "born", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.typeID, "type", "", "animal type ID (required)")
	cmd.Flags().StringVar(&f.mother, "mother", "", "mother's animal ID")
	cmd.Flags().StringVar(&f.father, "father", "", "father's animal ID")
	cmd.Flags().BoolVar(&f.inactive, "inactive", false, "mark the animal inactive")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("identifier")
	_ = cmd.MarkFlagRequired("type")
}

func (f *animalFlags) record() (*animal.Record, error) {
	g, err := animal.ParseGender(f.gender)
	if err != nil {
		return nil, err
	}
	r := &animal.Record{
		Identifier: f.identifier,
		Name:       f.name,
		Gender:     g,
		TypeID:     f.typeID,
		MotherID:   f.mother,
		FatherID:   f.father,
		Active:     !f.inactive,
		Notes:      f.notes,
	}
	if f.born != "" {
		d, err := animal.ParseDate(f.born)
		if err != nil {
			return nil, err
		}
		r.BirthDate = &d
	}
	return r, nil
}

func (c *CLI) animalAddCommand() *cobra.Command {
	var flags animalFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an animal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rec, err := flags.record()
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

			created, err := reg.CreateAnimal(ctx, rec)
			if err != nil {
				return err
			}
			printSuccess("Registered %s", StyleHighlight.Render(created.Identifier))
			printKeyValue("ID", created.ID)
			printKeyValue("Type", created.TypeName)
			printNextStep("View its pedigree", "pedigree tree "+created.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) animalListCommand() *cobra.Command {
	var (
		filter     animal.Filter
		activeOnly bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List animals",
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

			if activeOnly {
				t := true
				filter.Active = &t
			}
			recs, err := reg.ListAnimals(ctx, filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(recs)
			}
			if len(recs) == 0 {
				printInfo("No animals found")
				return nil
			}
			fmt.Println(animalTable(recs))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.TypeID, "type", "", "only animals of this type ID")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "match name or identifier")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active animals")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (c *CLI) animalShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <animal-id>",
		Short: "Show one animal",
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

			r, err := reg.GetAnimal(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render(r.Identifier))
			printKeyValue("ID", r.ID)
			printKeyValue("Name", r.Name)
			printKeyValue("Gender", string(r.Gender)+" "+r.Gender.Glyph())
			if r.BirthDate != nil {
				printKeyValue("Born", r.BirthDate.String())
			}
			printKeyValue("Type", r.TypeName)
			printKeyValue("Mother", r.MotherID)
			printKeyValue("Father", r.FatherID)
			printKeyValue("Active", strconv.FormatBool(r.Active))
			if r.Notes != "" {
				printKeyValue("Notes", r.Notes)
			}
			return nil
		},
	}
}

func (c *CLI) animalRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <animal-id>",
		Aliases: []string{"remove"},
		Short:   "Delete an animal that is nobody's parent",
		Args:    cobra.ExactArgs(1),
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

			if err := reg.DeleteAnimal(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

func (c *CLI) animalOffspringCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "offspring <animal-id>",
		Short: "List the children of an animal",
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

			kids, err := reg.Offspring(ctx, args[0])
			if err != nil {
				return err
			}
			if len(kids) == 0 {
				printInfo("No offspring recorded")
				return nil
			}
			for _, k := range kids {
				fmt.Printf("%s %s %s\n",
					genderStyle(k.Gender).Render(k.Gender.Glyph()),
					StyleValue.Render(k.Identifier),
					StyleDim.Render(fmt.Sprintf("(%s, via %s)", k.Name, k.Relationship)))
			}
			return nil
		},
	}
}

func animalTable(recs []*animal.Record) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		born := "—"
		if r.BirthDate != nil {
			born = r.BirthDate.String()
		}
		rows = append(rows, []string{r.Identifier, r.Name, r.Gender.Glyph(), r.TypeName, born, r.ID})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Identifier", "Name", "", "Type", "Born", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return genderStyle(recs[row].Gender)
			}
			if col == 5 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
