package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/model"
)

func newCategoriesCommand(g *globalFlags) *cobra.Command {
	catCmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
	}
	catCmd.AddCommand(newCategoriesListCommand(g), newCategoriesAddCommand(g))
	return catCmd
}

func newCategoriesListCommand(g *globalFlags) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k model.Kind
			if kind != "" {
				var err error
				if k, err = model.ParseKind(kind); err != nil {
					return err
				}
			}

			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cats, err := a.ListCategories(cmd.Context(), k)
			if err != nil {
				return err
			}

			t := newTable("ID", "Category", "Kind", "Color", "Default")
			for _, c := range cats {
				def := ""
				if c.IsDefault {
					def = "yes"
				}
				t.Row(strconv.FormatInt(c.ID, 10), categoryLabel(c), string(c.Kind), c.Color, def)
			}
			printTable(cmd.OutOrStdout(), t)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only income or expense categories")
	return cmd
}

func newCategoriesAddCommand(g *globalFlags) *cobra.Command {
	var c model.Category
	var kind string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}
			c.Name = args[0]
			c.Kind = k

			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.SaveCategory(cmd.Context(), &c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category #%d %s\n", id, categoryLabel(c))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "expense", "income or expense")
	cmd.Flags().StringVar(&c.Icon, "icon", "", "icon (default: first letter)")
	cmd.Flags().StringVar(&c.Color, "color", "", "hex color (default: "+model.DefaultColor+")")
	return cmd
}
