package cli

import (
	"fmt"
	"strings"

	"meal-planner/internal/app"
	"meal-planner/internal/cli/formatter"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app.App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the recipe catalog by name or category",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" && strings.TrimSpace(category) == "" {
				return fmt.Errorf("give a query or --category")
			}
			recipes, err := a.Search(commandContext(cmd), query, category)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecipes(recipes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "restrict results to a category")
	return cmd
}

func newCategoriesCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.Categories(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCategories(cats))
			return nil
		},
	}
}
