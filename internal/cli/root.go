package cli

import (
	"context"

	"meal-planner/internal/app"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "meal-planner" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *app.App) *cobra.Command {
	root := &cobra.Command{
		Use:           "meal-planner",
		Short:         "Weekly meal planner with a derived shopping list",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(a),
		newAssignCmd(a),
		newUnassignCmd(a),
		newListCmd(a),
		newToggleCmd(a),
		newClearCompletedCmd(a),
		newSearchCmd(a),
		newCategoriesCmd(a),
		newServeCmd(a),
		newTokenCmd(a),
		newMetricsCmd(a),
		newMetricsCleanupCmd(a),
	)

	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
