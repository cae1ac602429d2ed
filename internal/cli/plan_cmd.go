package cli

import (
	"fmt"
	"strings"

	"meal-planner/internal/app"
	"meal-planner/internal/cli/formatter"
	"meal-planner/internal/planner"

	"github.com/spf13/cobra"
)

func newPlanCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the weekly meal plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlan(a.Plan()))
			return nil
		},
	}
}

func newAssignCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:     "assign <day> <recipe-id>",
		Short:   "Plan a recipe on a day",
		Example: "  meal-planner assign mon 52772",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := planner.ParseDay(args[0])
			if err != nil {
				return err
			}
			r, err := a.AssignRecipe(commandContext(cmd), day, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("%s planned for %s", r.Name, day.LongName())))
			return nil
		},
	}
}

func newUnassignCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <day>",
		Short: "Clear a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := planner.ParseDay(args[0])
			if err != nil {
				return err
			}
			if err := a.Unassign(commandContext(cmd), day); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(day.LongName()+" cleared"))
			return nil
		},
	}
}

func newListCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Generate the shopping list for the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.ShoppingList(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatShoppingList(entries))
			return nil
		},
	}
}

func newToggleCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <item-key>",
		Short:   "Mark a shopping list item done or not done",
		Example: "  meal-planner toggle salt-1 tsp",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keys contain spaces, so unquoted words are joined back together.
			key := strings.Join(args, " ")
			state := "not done"
			if a.Toggle(commandContext(cmd), key) {
				state = "done"
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("%s marked %s", key, state)))
			return nil
		},
	}
}

func newClearCompletedCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Forget every item marked done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.ClearCompleted(commandContext(cmd))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Cleared %d completed items", n)))
			return nil
		},
	}
}
